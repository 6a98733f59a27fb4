package slicer

import (
	"fmt"

	"github.com/philipparndt/goresin/pkg/geometry"
)

// DefaultLayerHeight is the fallback layer thickness (50 µm) used when no
// layer configuration is supplied.
const DefaultLayerHeight = 0.05

// Plane is one horizontal slicing plane
type Plane struct {
	Z     float64
	Index int
}

// PlaneSet is an ordered set of slicing planes with strictly increasing
// z-values.
type PlaneSet struct {
	planes []Plane
}

// NewPlaneSet builds a plane set from explicit heights. The heights must be
// non-empty and strictly increasing.
func NewPlaneSet(heights []float64) (*PlaneSet, error) {
	if len(heights) == 0 {
		return nil, fmt.Errorf("%w: no planes", ErrPlaneConfig)
	}
	planes := make([]Plane, len(heights))
	for i, z := range heights {
		if i > 0 && z <= heights[i-1] {
			return nil, fmt.Errorf("%w: z values not strictly increasing at index %d", ErrPlaneConfig, i)
		}
		planes[i] = Plane{Z: z, Index: i}
	}
	return &PlaneSet{planes: planes}, nil
}

// LayerConfig is the layer-thickness policy used to derive planes from mesh
// bounds. Zero values fall back to DefaultLayerHeight.
type LayerConfig struct {
	LayerHeight      float64
	FirstLayerHeight float64
}

// PlanesForBounds derives a plane set from mesh bounds and a layer policy.
// The first plane sits one first-layer height above the bottom of the mesh
// and planes continue at the layer height until the top is passed.
func PlanesForBounds(bounds geometry.BoundingBox, cfg LayerConfig) (*PlaneSet, error) {
	if bounds.IsEmpty() {
		return nil, fmt.Errorf("%w: empty mesh bounds", ErrPlaneConfig)
	}
	if cfg.LayerHeight < 0 || cfg.FirstLayerHeight < 0 {
		return nil, fmt.Errorf("%w: negative layer height", ErrPlaneConfig)
	}

	layer := cfg.LayerHeight
	if layer == 0 {
		layer = DefaultLayerHeight
	}
	first := cfg.FirstLayerHeight
	if first == 0 {
		first = layer
	}

	var heights []float64
	for z := bounds.Min.Z + first; z <= bounds.Max.Z; z += layer {
		heights = append(heights, z)
	}
	if len(heights) == 0 {
		// Mesh thinner than one layer: slice once through the middle.
		heights = []float64{(bounds.Min.Z + bounds.Max.Z) / 2.0}
	}
	return NewPlaneSet(heights)
}

// Len returns the number of planes
func (ps *PlaneSet) Len() int {
	return len(ps.planes)
}

// Planes returns the ordered planes. Callers must not modify the slice.
func (ps *PlaneSet) Planes() []Plane {
	return ps.planes
}

// Heights returns the ordered z-values
func (ps *PlaneSet) Heights() []float64 {
	heights := make([]float64, len(ps.planes))
	for i, p := range ps.planes {
		heights[i] = p.Z
	}
	return heights
}
