// Package mesh provides the immutable indexed triangle mesh consumed by the
// slicing engine and the island analyzer.
package mesh

import (
	"github.com/philipparndt/goresin/pkg/geometry"
)

// Vertex is a mesh vertex with position and normal
type Vertex struct {
	Position geometry.Vector3
	Normal   geometry.Vector3
}

// Triangle references three vertices by index
type Triangle [3]int

// InvalidTriangle records a triangle excluded from slicing and why
type InvalidTriangle struct {
	Index  int
	Reason string
}

// Mesh is an indexed triangle mesh. It owns its vertex and triangle slices
// and is never mutated after construction; edits produce a new Mesh.
type Mesh struct {
	name      string
	vertices  []Vertex
	triangles []Triangle
	valid     []Triangle
	invalid   []InvalidTriangle
	bounds    geometry.BoundingBox
}

// degenerateAreaEps is the minimum doubled triangle area (cross product
// length) below which a triangle is considered degenerate.
const degenerateAreaEps = 1e-9

// New builds a mesh from vertices and triangles. Triangles with out-of-range
// or duplicate indices, or with near-zero area, are recorded as invalid and
// excluded from the slicing set; they do not fail the construction.
func New(name string, vertices []Vertex, triangles []Triangle) *Mesh {
	m := &Mesh{
		name:      name,
		vertices:  append([]Vertex(nil), vertices...),
		triangles: append([]Triangle(nil), triangles...),
		bounds:    geometry.NewBoundingBox(),
	}

	for _, v := range m.vertices {
		m.bounds.Extend(v.Position)
	}

	for i, t := range m.triangles {
		if reason, ok := m.screen(t); !ok {
			m.invalid = append(m.invalid, InvalidTriangle{Index: i, Reason: reason})
			continue
		}
		m.valid = append(m.valid, t)
	}

	return m
}

// screen checks a single triangle for slicing suitability
func (m *Mesh) screen(t Triangle) (string, bool) {
	for _, idx := range t {
		if idx < 0 || idx >= len(m.vertices) {
			return "vertex index out of range", false
		}
	}
	if t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
		return "duplicate vertex index", false
	}

	a := m.vertices[t[0]].Position
	b := m.vertices[t[1]].Position
	c := m.vertices[t[2]].Position
	if b.Sub(a).Cross(c.Sub(a)).Length() <= degenerateAreaEps {
		return "zero area", false
	}
	return "", true
}

// Name returns the mesh name
func (m *Mesh) Name() string {
	return m.name
}

// VertexCount returns the number of vertices
func (m *Mesh) VertexCount() int {
	return len(m.vertices)
}

// TriangleCount returns the total number of triangles, including invalid ones
func (m *Mesh) TriangleCount() int {
	return len(m.triangles)
}

// Vertices returns the vertex slice. Callers must not modify it.
func (m *Mesh) Vertices() []Vertex {
	return m.vertices
}

// Triangles returns all triangles. Callers must not modify the slice.
func (m *Mesh) Triangles() []Triangle {
	return m.triangles
}

// ValidTriangles returns the triangles that passed validation and take part
// in slicing. Callers must not modify the slice.
func (m *Mesh) ValidTriangles() []Triangle {
	return m.valid
}

// Invalid returns the triangles excluded from slicing
func (m *Mesh) Invalid() []InvalidTriangle {
	return m.invalid
}

// Bounds returns the axis-aligned bounding box of all vertices
func (m *Mesh) Bounds() geometry.BoundingBox {
	return m.bounds
}

// SurfaceArea calculates the total area of the valid triangles
func (m *Mesh) SurfaceArea() float64 {
	total := 0.0
	for _, t := range m.valid {
		a := m.vertices[t[0]].Position
		b := m.vertices[t[1]].Position
		c := m.vertices[t[2]].Position
		total += b.Sub(a).Cross(c.Sub(a)).Length() / 2.0
	}
	return total
}

// FlatPositions returns the valid triangles as a flat float32 array of nine
// components per triangle, the layout the GPU slicer uploads.
func (m *Mesh) FlatPositions() []float32 {
	out := make([]float32, 0, len(m.valid)*9)
	for _, t := range m.valid {
		for _, idx := range t {
			p := m.vertices[idx].Position
			out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
		}
	}
	return out
}

// Transformed returns a new mesh with every vertex rotated, scaled and then
// translated. Normals are rotated only.
func (m *Mesh) Transformed(rotation geometry.Matrix3, scale, translation geometry.Vector3) *Mesh {
	vertices := make([]Vertex, len(m.vertices))
	for i, v := range m.vertices {
		p := rotation.MulVec(geometry.Vector3{
			X: v.Position.X * scale.X,
			Y: v.Position.Y * scale.Y,
			Z: v.Position.Z * scale.Z,
		}).Add(translation)
		vertices[i] = Vertex{Position: p, Normal: rotation.MulVec(v.Normal)}
	}
	return New(m.name, vertices, m.triangles)
}

// Centered returns a new mesh translated so its bounding box center sits at
// the origin.
func (m *Mesh) Centered() *Mesh {
	center := m.bounds.Center()
	return m.Transformed(geometry.Identity3(), geometry.NewVector3(1, 1, 1), center.Mul(-1))
}
