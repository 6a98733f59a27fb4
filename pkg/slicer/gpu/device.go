package gpu

import (
	"fmt"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan backend via its init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// NewDefault opens the default compute device from the registered HAL
// backends and builds the slice pipeline on it. When no usable device is
// found, or the pipeline cannot be built, the extractor falls back to the
// reference executor, which runs the same kernel on the host.
func NewDefault() *Extractor {
	instance, device, queue, err := openDevice()
	if err != nil {
		e, _ := New(nil, nil)
		return e
	}

	e, err := New(device, queue)
	if err != nil {
		device.Destroy()
		instance.Destroy()
		e, _ = New(nil, nil)
		return e
	}
	e.instance = instance
	e.ownsDevice = true
	return e
}

// openDevice creates an instance on the Vulkan backend and opens a device
// on the best available adapter, preferring discrete over integrated GPUs
func openDevice() (hal.Instance, hal.Device, hal.Queue, error) {
	backend, ok := hal.GetBackend(types.BackendVulkan)
	if !ok {
		return nil, nil, nil, fmt.Errorf("gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("gpu: no adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == types.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == types.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(types.Features(0), types.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("gpu: open device: %w", err)
	}
	return instance, openDev.Device, openDev.Queue, nil
}
