package scene

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/goresin/pkg/mesh"
	"github.com/philipparndt/goresin/pkg/slicer"
)

// Store holds the scene's bodies keyed by their identifiers
type Store struct {
	mu     sync.RWMutex
	bodies map[uuid.UUID]*Body
	order  []uuid.UUID
}

// NewStore creates an empty body store
func NewStore() *Store {
	return &Store{
		bodies: make(map[uuid.UUID]*Body),
	}
}

// Add creates a body for the mesh and registers it
func (s *Store) Add(name string, m *mesh.Mesh) *Body {
	b := NewBody(name, m)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[b.ID()] = b
	s.order = append(s.order, b.ID())
	return b
}

// Get looks up a body by identifier
func (s *Store) Get(id uuid.UUID) (*Body, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bodies[id]
	return b, ok
}

// Remove deletes a body from the store
func (s *Store) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bodies[id]; !ok {
		return
	}
	delete(s.bodies, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Bodies returns all bodies in insertion order
func (s *Store) Bodies() []*Body {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Body, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.bodies[id])
	}
	return out
}

// Len returns the number of bodies
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bodies)
}

// InvalidateByName discards cached slice results for every body whose name
// matches. Used when a watched model file changes on disk.
func (s *Store) InvalidateByName(name string) []*Body {
	var matched []*Body
	for _, b := range s.Bodies() {
		if b.Name() == name {
			matched = append(matched, b)
		}
	}
	for _, b := range matched {
		b.Invalidate()
	}
	return matched
}

// SliceAll slices every enabled body concurrently and returns the results
// keyed by body identifier. Bodies slice in parallel with each other while
// each body's own pass stays serialized. The first failure cancels the
// remaining passes.
func (s *Store) SliceAll(ctx context.Context, sl *slicer.Slicer, cfg slicer.LayerConfig) (map[uuid.UUID]*slicer.Result, error) {
	bodies := s.Bodies()

	var mu sync.Mutex
	results := make(map[uuid.UUID]*slicer.Result)

	g, ctx := errgroup.WithContext(ctx)
	for _, b := range bodies {
		if !b.Enabled() {
			continue
		}
		g.Go(func() error {
			result, err := b.Slice(ctx, sl, cfg)
			if err != nil {
				return fmt.Errorf("body %q: %w", b.Name(), err)
			}
			mu.Lock()
			results[b.ID()] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SortedIDs returns body identifiers in lexical order, for deterministic
// iteration in reports.
func (s *Store) SortedIDs() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.bodies))
	for id := range s.bodies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
