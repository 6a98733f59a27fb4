package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/philipparndt/goresin/pkg/mesh"
)

// ErrIslandDisconnected is informational: the mesh consists of more than
// one connected component. It never blocks slicing.
var ErrIslandDisconnected = errors.New("analysis: disconnected vertex islands")

// Island is one connected component of the mesh's vertex-adjacency graph.
// Two vertices are adjacent if they co-occur in any triangle. A mesh with
// more than one island is physically disconnected.
type Island struct {
	Vertices  []int
	Triangles []int
}

// Islands partitions the mesh's vertices into connected components using
// union-find over triangle membership, O(V + T). The result is ordered by
// each island's smallest vertex index so repeated runs are deterministic.
// Multiple islands are diagnostic information, never an error.
func Islands(m *mesh.Mesh) []Island {
	uf := newUnionFind(m.VertexCount())

	triangles := m.Triangles()
	for _, t := range triangles {
		if !inRange(t, m.VertexCount()) {
			continue
		}
		uf.union(t[0], t[1])
		uf.union(t[1], t[2])
	}

	// Group vertices by root, keyed by the smallest member index.
	groups := make(map[int]*Island)
	for v := 0; v < m.VertexCount(); v++ {
		root := uf.find(v)
		island, ok := groups[root]
		if !ok {
			island = &Island{}
			groups[root] = island
		}
		island.Vertices = append(island.Vertices, v)
	}
	for i, t := range triangles {
		if !inRange(t, m.VertexCount()) {
			continue
		}
		groups[uf.find(t[0])].Triangles = append(groups[uf.find(t[0])].Triangles, i)
	}

	islands := make([]Island, 0, len(groups))
	for _, island := range groups {
		islands = append(islands, *island)
	}
	sort.Slice(islands, func(i, j int) bool {
		return islands[i].Vertices[0] < islands[j].Vertices[0]
	})
	return islands
}

// CheckConnected reports a disconnected mesh as an error wrapping
// ErrIslandDisconnected. A connected mesh yields nil.
func CheckConnected(m *mesh.Mesh) error {
	if islands := Islands(m); len(islands) > 1 {
		return fmt.Errorf("%w: %d islands", ErrIslandDisconnected, len(islands))
	}
	return nil
}

func inRange(t mesh.Triangle, vertexCount int) bool {
	for _, idx := range t {
		if idx < 0 || idx >= vertexCount {
			return false
		}
	}
	return true
}

// unionFind is a union-find structure with path compression and union by
// size
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(v int) int {
	for uf.parent[v] != v {
		uf.parent[v] = uf.parent[uf.parent[v]]
		v = uf.parent[v]
	}
	return v
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}
