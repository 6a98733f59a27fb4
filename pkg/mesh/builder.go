package mesh

import (
	"math"

	"github.com/philipparndt/goresin/pkg/geometry"
)

// WeldTolerance is the default distance below which two face corners are
// merged into one vertex.
const WeldTolerance = 1e-6

// Builder accumulates triangle-soup faces and welds shared corners into an
// indexed mesh. Face normals are accumulated per vertex and normalized on
// Build.
type Builder struct {
	name      string
	tolerance float64
	vertices  []Vertex
	triangles []Triangle
	lookup    map[quantizedKey]int
}

// quantizedKey identifies a vertex position quantized to the weld tolerance
type quantizedKey struct {
	x, y, z int64
}

// NewBuilder creates a mesh builder with the default weld tolerance
func NewBuilder(name string) *Builder {
	return &Builder{
		name:      name,
		tolerance: WeldTolerance,
		lookup:    make(map[quantizedKey]int),
	}
}

// SetTolerance overrides the weld tolerance. Zero disables welding entirely.
func (b *Builder) SetTolerance(tolerance float64) {
	b.tolerance = tolerance
}

func (b *Builder) key(p geometry.Vector3) quantizedKey {
	scale := 1.0 / b.tolerance
	return quantizedKey{
		x: int64(math.Round(p.X * scale)),
		y: int64(math.Round(p.Y * scale)),
		z: int64(math.Round(p.Z * scale)),
	}
}

// AddFace appends one triangle given its corner positions and face normal.
// Corners within the weld tolerance of an existing vertex reuse it.
func (b *Builder) AddFace(normal geometry.Vector3, corners [3]geometry.Vector3) {
	var tri Triangle
	for i, p := range corners {
		if b.tolerance <= 0 {
			tri[i] = b.appendVertex(p, normal)
			continue
		}
		key := b.key(p)
		if idx, ok := b.lookup[key]; ok {
			b.vertices[idx].Normal = b.vertices[idx].Normal.Add(normal)
			tri[i] = idx
		} else {
			idx := b.appendVertex(p, normal)
			b.lookup[key] = idx
			tri[i] = idx
		}
	}
	b.triangles = append(b.triangles, tri)
}

func (b *Builder) appendVertex(p, normal geometry.Vector3) int {
	b.vertices = append(b.vertices, Vertex{Position: p, Normal: normal})
	return len(b.vertices) - 1
}

// FaceCount returns the number of faces added so far
func (b *Builder) FaceCount() int {
	return len(b.triangles)
}

// Build finalizes the mesh. Accumulated vertex normals are normalized and
// degenerate triangles are screened out by the mesh constructor.
func (b *Builder) Build() *Mesh {
	for i := range b.vertices {
		b.vertices[i].Normal = b.vertices[i].Normal.Normalize()
	}
	return New(b.name, b.vertices, b.triangles)
}
