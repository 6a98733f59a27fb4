package slicer

import "errors"

// Error kinds reported by the slicing engine. Per-triangle and per-layer
// failures are collected on the Result; only an invalid plane set aborts a
// whole request.
var (
	// ErrMeshInvalid marks a degenerate or out-of-range triangle. The
	// triangle is excluded from slicing; the mesh as a whole still slices.
	ErrMeshInvalid = errors.New("slicer: invalid triangle")

	// ErrPlaneConfig marks an empty or non-monotonic plane set. Fatal to
	// the slicing request.
	ErrPlaneConfig = errors.New("slicer: invalid plane set")

	// ErrBufferOverflow means the GPU atomic counter passed the output
	// buffer capacity. Recoverable: resubmit with a larger buffer.
	ErrBufferOverflow = errors.New("slicer: segment buffer overflow")

	// ErrContourUnclosed means a layer's segments could not be stitched
	// into closed loops within tolerance. Only that layer is marked failed.
	ErrContourUnclosed = errors.New("slicer: open contour")
)
