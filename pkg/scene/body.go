// Package scene holds the mutable body state surrounding the slicing
// engine: an entity store keyed by stable identifiers, per-body slice
// result caching and undoable transform commands. The engine itself only
// ever sees immutable mesh snapshots taken from here.
package scene

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/philipparndt/goresin/pkg/geometry"
	"github.com/philipparndt/goresin/pkg/mesh"
	"github.com/philipparndt/goresin/pkg/slicer"
)

// Body is one scene entity: a mesh with a transform and a cached slice
// result. The body owns its identity; the mesh stays immutable and is
// replaced wholesale on reload.
type Body struct {
	id   uuid.UUID
	name string

	mu       sync.Mutex
	mesh     *mesh.Mesh
	position geometry.Vector3
	rotation geometry.Vector3 // degrees around X, Y, Z
	scale    geometry.Vector3
	enabled  bool

	version uint64 // bumped on any mutation; cache key
	cached  *slicer.Result
	cachedV uint64

	// sliceMu serializes slicing passes: only one may be in flight per
	// body. Distinct bodies slice concurrently.
	sliceMu sync.Mutex
}

// NewBody creates a body with identity transform
func NewBody(name string, m *mesh.Mesh) *Body {
	return &Body{
		id:      uuid.New(),
		name:    name,
		mesh:    m,
		scale:   geometry.NewVector3(1, 1, 1),
		enabled: true,
		version: 1,
	}
}

// ID returns the stable body identifier
func (b *Body) ID() uuid.UUID {
	return b.id
}

// Name returns the body name
func (b *Body) Name() string {
	return b.name
}

// Mesh returns the current immutable mesh
func (b *Body) Mesh() *mesh.Mesh {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mesh
}

// SetMesh replaces the mesh (a reload after an edit) and discards any
// cached slice result.
func (b *Body) SetMesh(m *mesh.Mesh) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mesh = m
	b.invalidateLocked()
}

// Enabled reports whether the body takes part in slice-all requests
func (b *Body) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// SetEnabled toggles slice-all participation
func (b *Body) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
}

// Position returns the body translation
func (b *Body) Position() geometry.Vector3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.position
}

// SetPosition moves the body and discards any cached slice result
func (b *Body) SetPosition(p geometry.Vector3) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.position = p
	b.invalidateLocked()
}

// Rotation returns the body rotation in degrees around X, Y and Z
func (b *Body) Rotation() geometry.Vector3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rotation
}

// SetRotation rotates the body and discards any cached slice result
func (b *Body) SetRotation(r geometry.Vector3) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rotation = r
	b.invalidateLocked()
}

// Scale returns the body scale
func (b *Body) Scale() geometry.Vector3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scale
}

// SetScale scales the body and discards any cached slice result
func (b *Body) SetScale(s geometry.Vector3) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scale = s
	b.invalidateLocked()
}

func (b *Body) invalidateLocked() {
	b.version++
	b.cached = nil
}

// Invalidate discards any cached slice result without changing the body
func (b *Body) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invalidateLocked()
}

// CachedResult returns the most recent slice result, or nil if none exists
// or the body changed since it was computed.
func (b *Body) CachedResult() *slicer.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cachedV != b.version {
		return nil
	}
	return b.cached
}

// Snapshot returns an immutable world-space copy of the mesh with the body
// transform applied. The slicing engine consumes this snapshot, never the
// shared scene state.
func (b *Body) Snapshot() *mesh.Mesh {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Body) snapshotLocked() *mesh.Mesh {
	rotation := geometry.RotationZ(b.rotation.Z).
		Mul(geometry.RotationY(b.rotation.Y)).
		Mul(geometry.RotationX(b.rotation.X))
	return b.mesh.Transformed(rotation, b.scale, b.position)
}

// Slice runs one slicing pass over the body's current snapshot and caches
// the result. Passes on the same body are serialized; a caller that wants
// to abandon a pending pass cancels its context instead.
func (b *Body) Slice(ctx context.Context, s *slicer.Slicer, cfg slicer.LayerConfig) (*slicer.Result, error) {
	b.sliceMu.Lock()
	defer b.sliceMu.Unlock()

	b.mu.Lock()
	version := b.version
	if b.cachedV == version && b.cached != nil {
		cached := b.cached
		b.mu.Unlock()
		return cached, nil
	}
	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	planes, err := slicer.PlanesForBounds(snapshot.Bounds(), cfg)
	if err != nil {
		return nil, err
	}
	result, err := s.Slice(ctx, snapshot, planes)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if b.version == version {
		b.cached = result
		b.cachedV = version
	}
	b.mu.Unlock()
	return result, nil
}
