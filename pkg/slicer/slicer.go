// Package slicer computes per-layer cross-section contours of a triangle
// mesh for resin printing. Mesh and plane set go in, an ordered set of
// layers with closed contours comes out.
package slicer

import (
	"context"
	"fmt"

	"github.com/philipparndt/goresin/pkg/mesh"
)

// Layer is the cross-section of the mesh at one plane. Err carries a
// per-layer failure (ErrContourUnclosed); other layers are unaffected.
type Layer struct {
	Index    int
	Z        float64
	Contours []Contour
	Err      error
}

// Result is the outcome of slicing one mesh. Excluded triangles and failed
// layers are recorded rather than silently dropped.
type Result struct {
	Layers   []Layer
	Excluded []mesh.InvalidTriangle
}

// FailedLayers returns the layers whose contours could not be closed
func (r *Result) FailedLayers() []Layer {
	var failed []Layer
	for _, layer := range r.Layers {
		if layer.Err != nil {
			failed = append(failed, layer)
		}
	}
	return failed
}

// Errs collects every anomaly of the result: one ErrMeshInvalid per excluded
// triangle and each failed layer's error.
func (r *Result) Errs() []error {
	var errs []error
	for _, inv := range r.Excluded {
		errs = append(errs, fmt.Errorf("%w: triangle %d: %s", ErrMeshInvalid, inv.Index, inv.Reason))
	}
	for _, layer := range r.Layers {
		if layer.Err != nil {
			errs = append(errs, fmt.Errorf("layer %d (z=%g): %w", layer.Index, layer.Z, layer.Err))
		}
	}
	return errs
}

// ContourCount returns the total number of contours across all layers
func (r *Result) ContourCount() int {
	count := 0
	for _, layer := range r.Layers {
		count += len(layer.Contours)
	}
	return count
}

// Slicer runs an extractor and stitches its segments into layers
type Slicer struct {
	Extractor Extractor
}

// New creates a slicer with the CPU extractor
func New() *Slicer {
	return &Slicer{Extractor: &CPUExtractor{}}
}

// Slice computes the cross-section contours of a mesh at every plane of the
// set. Per-layer closure failures are recorded on the layer; only extraction
// itself failing (cancellation, GPU overflow) fails the call.
func (s *Slicer) Slice(ctx context.Context, m *mesh.Mesh, planes *PlaneSet) (*Result, error) {
	if planes == nil || planes.Len() == 0 {
		return nil, fmt.Errorf("%w: no planes", ErrPlaneConfig)
	}

	perPlane, err := s.Extractor.Extract(ctx, m, planes)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Layers:   make([]Layer, planes.Len()),
		Excluded: m.Invalid(),
	}
	for _, p := range planes.Planes() {
		contours, cerr := BuildContours(perPlane[p.Index])
		result.Layers[p.Index] = Layer{
			Index:    p.Index,
			Z:        p.Z,
			Contours: contours,
			Err:      cerr,
		}
	}
	return result, nil
}
