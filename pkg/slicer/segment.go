package slicer

import (
	"github.com/philipparndt/goresin/pkg/geometry"
)

// minSegmentLength is the length below which an intersection segment is
// considered a point touch and discarded. The GPU path applies the same
// cutoff so both extractors produce equivalent sets.
const minSegmentLength = 1e-6

// Segment is one 2D line piece where a triangle crosses a slicing plane.
// Segments are transient: they exist only between extraction and contour
// building.
type Segment struct {
	A, B  geometry.Vector2
	Plane int
}

// crossSection computes the intersection segment of one triangle with a
// horizontal plane. A vertex lying exactly on the plane counts as being on
// the positive side for both of its edges, so coincident-vertex crossings
// are neither lost nor doubled. Triangles entirely on one side, coplanar
// triangles and point touches yield no segment.
//
// The segment is directed by the triangle's winding: it runs from the
// crossing on the descending edge to the crossing on the ascending edge.
// Loops stitched from these segments inherit the mesh orientation, so an
// outward-facing solid yields counter-clockwise outer boundaries and
// clockwise holes.
func crossSection(a, b, c geometry.Vector3, planeZ float64) (s [2]geometry.Vector2, ok bool) {
	corners := [3]geometry.Vector3{a, b, c}
	var dist [3]float64
	below := false
	above := false
	for i, p := range corners {
		dist[i] = p.Z - planeZ
		if dist[i] < 0 {
			below = true
		} else {
			above = true
		}
	}
	if !below || !above {
		return s, false
	}

	hasStart, hasEnd := false, false
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		di, dj := dist[i], dist[j]
		if (di < 0) == (dj < 0) {
			continue
		}
		t := di / (di - dj)
		p := corners[i].Lerp(corners[j], t)
		if di < 0 {
			// Ascending edge, crossing from below the plane to above.
			s[1] = p.XY()
			hasEnd = true
		} else {
			s[0] = p.XY()
			hasStart = true
		}
	}
	if !hasStart || !hasEnd {
		return s, false
	}
	if s[0].Distance(s[1]) < minSegmentLength {
		return s, false
	}
	return s, true
}
