package slicer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/philipparndt/goresin/pkg/geometry"
	"github.com/philipparndt/goresin/pkg/mesh"
)

// cubeVertices returns the eight corners of an axis-aligned cube
func cubeVertices(origin geometry.Vector3, size float64) []mesh.Vertex {
	o := origin
	s := size
	return []mesh.Vertex{
		{Position: geometry.NewVector3(o.X, o.Y, o.Z)},
		{Position: geometry.NewVector3(o.X+s, o.Y, o.Z)},
		{Position: geometry.NewVector3(o.X+s, o.Y+s, o.Z)},
		{Position: geometry.NewVector3(o.X, o.Y+s, o.Z)},
		{Position: geometry.NewVector3(o.X, o.Y, o.Z+s)},
		{Position: geometry.NewVector3(o.X+s, o.Y, o.Z+s)},
		{Position: geometry.NewVector3(o.X+s, o.Y+s, o.Z+s)},
		{Position: geometry.NewVector3(o.X, o.Y+s, o.Z+s)},
	}
}

// cubeTriangles returns the twelve faces of a cube, offset into a shared
// vertex list.
func cubeTriangles(offset int) []mesh.Triangle {
	base := []mesh.Triangle{
		{0, 2, 1}, {0, 3, 2}, // bottom
		{4, 5, 6}, {4, 6, 7}, // top
		{0, 1, 5}, {0, 5, 4}, // front
		{2, 3, 7}, {2, 7, 6}, // back
		{3, 0, 4}, {3, 4, 7}, // left
		{1, 2, 6}, {1, 6, 5}, // right
	}
	out := make([]mesh.Triangle, len(base))
	for i, t := range base {
		out[i] = mesh.Triangle{t[0] + offset, t[1] + offset, t[2] + offset}
	}
	return out
}

func unitCube() *mesh.Mesh {
	return mesh.New("cube", cubeVertices(geometry.NewVector3(0, 0, 0), 1), cubeTriangles(0))
}

func mustPlanes(t *testing.T, heights []float64) *PlaneSet {
	t.Helper()
	planes, err := NewPlaneSet(heights)
	if err != nil {
		t.Fatalf("NewPlaneSet failed: %v", err)
	}
	return planes
}

func TestSliceUnitCubeMidHeight(t *testing.T) {
	s := New()
	result, err := s.Slice(context.Background(), unitCube(), mustPlanes(t, []float64{0.5}))
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	if len(result.Layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(result.Layers))
	}
	layer := result.Layers[0]
	if layer.Err != nil {
		t.Fatalf("layer error: %v", layer.Err)
	}
	if len(layer.Contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(layer.Contours))
	}

	contour := layer.Contours[0]
	if contour.Hole {
		t.Error("cube cross-section should be an outer boundary, not a hole")
	}
	// Outward winding slices to a counter-clockwise loop, so the signed
	// area is positive.
	if math.Abs(contour.Area-1.0) > 1e-9 {
		t.Errorf("contour area: expected 1.0, got %v", contour.Area)
	}
	// The two collinear segments per cube face collapse into one edge.
	if len(contour.Points) != 4 {
		t.Errorf("expected a 4-point square, got %d points", len(contour.Points))
	}
}

func TestSliceWindingSurvivesVertexRotation(t *testing.T) {
	// Cyclic rotation of a triangle's vertices leaves its winding unchanged,
	// so contour orientation must not depend on which corner comes first.
	vertices := cubeVertices(geometry.NewVector3(0, 0, 0), 1)
	triangles := cubeTriangles(0)
	for i, tri := range triangles {
		triangles[i] = mesh.Triangle{tri[1], tri[2], tri[0]}
	}
	m := mesh.New("cube", vertices, triangles)

	s := New()
	result, err := s.Slice(context.Background(), m, mustPlanes(t, []float64{0.5}))
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	layer := result.Layers[0]
	if layer.Err != nil {
		t.Fatalf("layer error: %v", layer.Err)
	}
	if len(layer.Contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(layer.Contours))
	}
	contour := layer.Contours[0]
	if contour.Hole || contour.Area <= 0 {
		t.Errorf("outer boundary should stay counter-clockwise, got area %v", contour.Area)
	}
}

func TestSliceTubeInnerContourIsHole(t *testing.T) {
	// A square tube: outer walls face outward, inner walls face the cavity.
	// The slice must mark the inner loop as a hole from the winding alone.
	outerV := cubeVertices(geometry.NewVector3(0, 0, 0), 1)
	innerV := cubeVertices(geometry.NewVector3(0.25, 0.25, 0.25), 0.5)
	vertices := append(outerV, innerV...)

	walls := func(offset int, flip bool) []mesh.Triangle {
		side := []mesh.Triangle{
			{0, 1, 5}, {0, 5, 4},
			{2, 3, 7}, {2, 7, 6},
			{3, 0, 4}, {3, 4, 7},
			{1, 2, 6}, {1, 6, 5},
		}
		out := make([]mesh.Triangle, len(side))
		for i, tri := range side {
			a, b, c := tri[0]+offset, tri[1]+offset, tri[2]+offset
			if flip {
				b, c = c, b
			}
			out[i] = mesh.Triangle{a, b, c}
		}
		return out
	}
	triangles := append(walls(0, false), walls(len(outerV), true)...)
	m := mesh.New("tube", vertices, triangles)

	s := New()
	result, err := s.Slice(context.Background(), m, mustPlanes(t, []float64{0.5}))
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	layer := result.Layers[0]
	if layer.Err != nil {
		t.Fatalf("layer error: %v", layer.Err)
	}
	if len(layer.Contours) != 2 {
		t.Fatalf("expected 2 contours, got %d", len(layer.Contours))
	}

	for _, c := range layer.Contours {
		switch {
		case math.Abs(c.Area-1.0) < 1e-9:
			if c.Hole {
				t.Error("outer boundary marked as hole")
			}
		case math.Abs(c.Area+0.25) < 1e-9:
			if !c.Hole {
				t.Error("cavity boundary not marked as hole")
			}
		default:
			t.Errorf("unexpected contour area %v", c.Area)
		}
	}
}

func TestSlicePlaneThroughTopVertices(t *testing.T) {
	// The plane sits exactly on the top face. Vertices on the plane count as
	// the positive side, so the side walls still produce one closed square.
	s := New()
	result, err := s.Slice(context.Background(), unitCube(), mustPlanes(t, []float64{1.0}))
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	layer := result.Layers[0]
	if layer.Err != nil {
		t.Fatalf("layer error: %v", layer.Err)
	}
	if len(layer.Contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(layer.Contours))
	}
	if math.Abs(math.Abs(layer.Contours[0].Area)-1.0) > 1e-9 {
		t.Errorf("contour area: expected 1.0, got %v", layer.Contours[0].Area)
	}
}

func TestSlicePlaneBelowMesh(t *testing.T) {
	// A plane at the very bottom leaves every vertex on the positive side:
	// no intersection, an empty but healthy layer.
	s := New()
	result, err := s.Slice(context.Background(), unitCube(), mustPlanes(t, []float64{0.0}))
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	layer := result.Layers[0]
	if layer.Err != nil {
		t.Errorf("empty layer should not fail: %v", layer.Err)
	}
	if len(layer.Contours) != 0 {
		t.Errorf("expected no contours, got %d", len(layer.Contours))
	}
}

func TestSliceMultipleLayers(t *testing.T) {
	s := New()
	heights := []float64{0.25, 0.5, 0.75}
	result, err := s.Slice(context.Background(), unitCube(), mustPlanes(t, heights))
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	if len(result.Layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(result.Layers))
	}
	for i, layer := range result.Layers {
		if layer.Index != i {
			t.Errorf("layer %d has index %d", i, layer.Index)
		}
		if layer.Z != heights[i] {
			t.Errorf("layer %d has z %v, expected %v", i, layer.Z, heights[i])
		}
		if len(layer.Contours) != 1 {
			t.Errorf("layer %d: expected 1 contour, got %d", i, len(layer.Contours))
		}
	}
	if result.ContourCount() != 3 {
		t.Errorf("ContourCount: expected 3, got %d", result.ContourCount())
	}
}

func TestSliceOpenMeshReportsUnclosedLayer(t *testing.T) {
	// A closed cube from z=0..1 plus a lone vertical wall from z=1..2. Layers
	// through the cube close fine; a layer through the wall cannot.
	vertices := cubeVertices(geometry.NewVector3(0, 0, 0), 1)
	triangles := cubeTriangles(0)

	wallBase := len(vertices)
	vertices = append(vertices,
		mesh.Vertex{Position: geometry.NewVector3(0, 0, 1)},
		mesh.Vertex{Position: geometry.NewVector3(1, 0, 1)},
		mesh.Vertex{Position: geometry.NewVector3(1, 0, 2)},
		mesh.Vertex{Position: geometry.NewVector3(0, 0, 2)},
	)
	triangles = append(triangles,
		mesh.Triangle{wallBase, wallBase + 1, wallBase + 2},
		mesh.Triangle{wallBase, wallBase + 2, wallBase + 3},
	)
	m := mesh.New("cube-with-wall", vertices, triangles)

	s := New()
	result, err := s.Slice(context.Background(), m, mustPlanes(t, []float64{0.5, 1.5}))
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	if result.Layers[0].Err != nil {
		t.Errorf("closed layer should not fail: %v", result.Layers[0].Err)
	}
	if !errors.Is(result.Layers[1].Err, ErrContourUnclosed) {
		t.Errorf("open layer should fail with ErrContourUnclosed, got %v", result.Layers[1].Err)
	}

	failed := result.FailedLayers()
	if len(failed) != 1 {
		t.Fatalf("FailedLayers: expected 1 layer, got %d", len(failed))
	}
	if failed[0].Index != 1 {
		t.Errorf("failed layer index: expected 1, got %d", failed[0].Index)
	}
	if !errors.Is(failed[0].Err, ErrContourUnclosed) {
		t.Errorf("failed layer should carry its error, got %v", failed[0].Err)
	}
}

func TestSliceRecordsExcludedTriangles(t *testing.T) {
	vertices := cubeVertices(geometry.NewVector3(0, 0, 0), 1)
	triangles := append(cubeTriangles(0), mesh.Triangle{0, 1, 1})
	m := mesh.New("cube", vertices, triangles)

	s := New()
	result, err := s.Slice(context.Background(), m, mustPlanes(t, []float64{0.5}))
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	if len(result.Excluded) != 1 {
		t.Fatalf("expected 1 excluded triangle, got %d", len(result.Excluded))
	}

	errs := result.Errs()
	if len(errs) != 1 || !errors.Is(errs[0], ErrMeshInvalid) {
		t.Errorf("Errs: expected one ErrMeshInvalid, got %v", errs)
	}
}

func TestSliceNoPlanesFails(t *testing.T) {
	s := New()
	if _, err := s.Slice(context.Background(), unitCube(), nil); !errors.Is(err, ErrPlaneConfig) {
		t.Errorf("expected ErrPlaneConfig, got %v", err)
	}
}

func TestSliceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()
	_, err := s.Slice(ctx, unitCube(), mustPlanes(t, []float64{0.5}))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCPUExtractorDeterministic(t *testing.T) {
	m := unitCube()
	planes := mustPlanes(t, []float64{0.25, 0.5, 0.75})

	first := &CPUExtractor{Workers: 1}
	second := &CPUExtractor{Workers: 4}

	a, err := first.Extract(context.Background(), m, planes)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	b, err := second.Extract(context.Background(), m, planes)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	for pi := range a {
		if len(a[pi]) != len(b[pi]) {
			t.Errorf("plane %d: worker counts disagree, %d vs %d segments",
				pi, len(a[pi]), len(b[pi]))
		}
	}
}
