// Package analysis provides mesh diagnostics: measurements and vertex
// island detection.
package analysis

import (
	"fmt"
	"math"

	"github.com/philipparndt/goresin/pkg/geometry"
	"github.com/philipparndt/goresin/pkg/mesh"
)

// MeasurementResult contains various measurements of a mesh
type MeasurementResult struct {
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	SurfaceArea   float64
	VertexCount   int
	TriangleCount int
	InvalidCount  int
	EdgeCount     int
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
}

// edgeKey identifies an undirected edge by its vertex indices
type edgeKey struct {
	a, b int
}

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// AnalyzeMesh performs comprehensive analysis on a mesh
func AnalyzeMesh(m *mesh.Mesh) *MeasurementResult {
	result := &MeasurementResult{
		BoundingBox:   m.Bounds(),
		SurfaceArea:   m.SurfaceArea(),
		VertexCount:   m.VertexCount(),
		TriangleCount: m.TriangleCount(),
		InvalidCount:  len(m.Invalid()),
	}
	result.Dimensions = result.BoundingBox.Size()

	vertices := m.Vertices()
	seen := make(map[edgeKey]struct{})

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0

	for _, t := range m.ValidTriangles() {
		for i := 0; i < 3; i++ {
			key := newEdgeKey(t[i], t[(i+1)%3])
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			length := vertices[key.a].Position.Distance(vertices[key.b].Position)
			totalLength += length
			if length < minLength {
				minLength = length
			}
			if length > maxLength {
				maxLength = length
			}
		}
	}

	result.EdgeCount = len(seen)
	if result.EdgeCount > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float64(result.EdgeCount)
	}

	return result
}

// FormatVector formats a vector for display
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
