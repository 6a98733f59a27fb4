package slicer

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/goresin/pkg/mesh"
)

// Extractor computes, for every plane, the set of segments where the mesh
// surface crosses that plane. Segment order within a plane is unspecified.
type Extractor interface {
	Extract(ctx context.Context, m *mesh.Mesh, planes *PlaneSet) ([][]Segment, error)
}

// CPUExtractor extracts segments on a worker pool, data-parallel over
// triangles. Workers accumulate per-plane results privately and the chunks
// are merged after the parallel phase; no locking happens in flight.
type CPUExtractor struct {
	// Workers bounds the pool size. Zero means runtime.NumCPU().
	Workers int
}

// Extract implements Extractor
func (e *CPUExtractor) Extract(ctx context.Context, m *mesh.Mesh, planes *PlaneSet) ([][]Segment, error) {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	triangles := m.ValidTriangles()
	vertices := m.Vertices()
	heights := planes.Heights()

	if len(triangles) < workers {
		workers = len(triangles)
	}
	if workers == 0 {
		return make([][]Segment, planes.Len()), nil
	}

	chunkSize := (len(triangles) + workers - 1) / workers
	results := make([][][]Segment, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := min(w*chunkSize, len(triangles))
		end := min(start+chunkSize, len(triangles))
		results[w] = make([][]Segment, planes.Len())
		local := results[w]

		g.Go(func() error {
			for _, t := range triangles[start:end] {
				if err := ctx.Err(); err != nil {
					return err
				}
				a := vertices[t[0]].Position
				b := vertices[t[1]].Position
				c := vertices[t[2]].Position

				// Planes can only cut the triangle inside its own z-range.
				minZ := min(a.Z, b.Z, c.Z)
				maxZ := max(a.Z, b.Z, c.Z)
				lo := sort.SearchFloat64s(heights, minZ)
				for pi := lo; pi < len(heights) && heights[pi] <= maxZ; pi++ {
					if heights[pi] <= minZ {
						continue
					}
					if s, ok := crossSection(a, b, c, heights[pi]); ok {
						local[pi] = append(local[pi], Segment{A: s[0], B: s[1], Plane: pi})
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([][]Segment, planes.Len())
	for _, local := range results {
		for pi, segs := range local {
			merged[pi] = append(merged[pi], segs...)
		}
	}
	return merged, nil
}
