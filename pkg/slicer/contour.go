package slicer

import (
	"fmt"
	"math"

	"github.com/philipparndt/goresin/pkg/geometry"
)

// endpointTolerance is the distance below which two segment endpoints are
// treated as the same point when stitching contours.
const endpointTolerance = 1e-6

// Contour is a closed polygon loop in one layer. Points are ordered and the
// closing edge from the last point back to the first is implicit. Positive
// signed area marks an outer boundary, negative a hole.
type Contour struct {
	Points []geometry.Vector2
	Area   float64
	Hole   bool
}

type pointKey struct {
	x, y int64
}

func keyOf(p geometry.Vector2) pointKey {
	scale := 1.0 / endpointTolerance
	return pointKey{
		x: int64(math.Round(p.X * scale)),
		y: int64(math.Round(p.Y * scale)),
	}
}

type halfEdge struct {
	to      pointKey
	seg     int
	forward bool
}

// BuildContours stitches one plane's unordered segment set into closed
// loops. Leftover open chains are not dropped: the contours found so far are
// returned together with an error wrapping ErrContourUnclosed.
func BuildContours(segments []Segment) ([]Contour, error) {
	if len(segments) == 0 {
		return nil, nil
	}

	coords := make(map[pointKey]geometry.Vector2)
	adjacency := make(map[pointKey][]halfEdge)
	keys := make([][2]pointKey, len(segments))

	for i, s := range segments {
		ka, kb := keyOf(s.A), keyOf(s.B)
		keys[i] = [2]pointKey{ka, kb}
		if _, ok := coords[ka]; !ok {
			coords[ka] = s.A
		}
		if _, ok := coords[kb]; !ok {
			coords[kb] = s.B
		}
		adjacency[ka] = append(adjacency[ka], halfEdge{to: kb, seg: i, forward: true})
		adjacency[kb] = append(adjacency[kb], halfEdge{to: ka, seg: i})
	}

	var contours []Contour
	openChains := 0
	visited := make([]bool, len(segments))

	for i := range segments {
		if visited[i] {
			continue
		}
		visited[i] = true

		start, current := keys[i][0], keys[i][1]
		if start == current {
			// Point-touch segment that survived extraction; nothing to walk.
			continue
		}

		loop := []pointKey{start}
		closed := false
		for {
			if current == start {
				closed = true
				break
			}
			loop = append(loop, current)

			next, ok := step(adjacency[current], visited)
			if !ok {
				break
			}
			current = next
		}

		if !closed {
			openChains++
			continue
		}
		if len(loop) < 3 {
			// A closed loop of two back-to-back segments spans no area.
			continue
		}

		points := make([]geometry.Vector2, len(loop))
		for j, k := range loop {
			points[j] = coords[k]
		}
		points = dropCollinear(points)
		if len(points) < 3 {
			continue
		}
		area := geometry.SignedArea(points)
		contours = append(contours, Contour{
			Points: points,
			Area:   area,
			Hole:   area < 0,
		})
	}

	if openChains > 0 {
		return contours, fmt.Errorf("%w: %d open chains", ErrContourUnclosed, openChains)
	}
	return contours, nil
}

// collinearEps bounds the doubled area of the triangle spanned by three
// consecutive loop points below which the middle point is redundant.
const collinearEps = 1e-9

// dropCollinear removes loop points that lie on the straight line between
// their neighbors. Adjacent triangles sharing a face emit collinear segment
// chains; dropping the midpoints leaves the minimal polygon.
func dropCollinear(points []geometry.Vector2) []geometry.Vector2 {
	n := len(points)
	if n < 3 {
		return points
	}
	out := make([]geometry.Vector2, 0, n)
	for i := 0; i < n; i++ {
		prev := points[(i+n-1)%n]
		curr := points[i]
		next := points[(i+1)%n]
		if math.Abs(curr.Sub(prev).Cross(next.Sub(curr))) <= collinearEps {
			continue
		}
		out = append(out, curr)
	}
	return out
}

// step picks the next unvisited half-edge leaving a point and marks its
// segment visited. Forward edges come first so the walk follows segment
// direction and loops keep the orientation the extractor gave them; a
// reversed edge is only taken when no forward continuation exists, which
// recovers loops containing flipped segments.
func step(edges []halfEdge, visited []bool) (pointKey, bool) {
	for _, e := range edges {
		if e.forward && !visited[e.seg] {
			visited[e.seg] = true
			return e.to, true
		}
	}
	for _, e := range edges {
		if !visited[e.seg] {
			visited[e.seg] = true
			return e.to, true
		}
	}
	return pointKey{}, false
}
