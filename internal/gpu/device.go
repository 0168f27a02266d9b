package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL backend.
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/lineview/lineview"
)

// gpuContext is the device and queue a RenderSurface renders with.
// When the surface opened the device itself it also owns the instance and
// destroys both on release; a shared device is only dropped.
type gpuContext struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adapter  string
	external bool
}

// openContext creates a Vulkan instance and opens the first hardware
// adapter, preferring discrete and integrated GPUs over software ones.
func openContext() (*gpuContext, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, &lineview.ContextCreationError{Reason: "vulkan backend not available"}
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, &lineview.ContextCreationError{Reason: "create instance", Err: err}
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, &lineview.ContextCreationError{Reason: "no GPU adapters found"}
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, &lineview.ContextCreationError{Reason: "open device", Err: err}
	}
	lineview.Logger().Info("gpu: device opened", "adapter", selected.Info.Name)
	return &gpuContext{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		adapter:  selected.Info.Name,
	}, nil
}

// sharedContext wraps a device and queue owned by someone else.
func sharedContext(device hal.Device, queue hal.Queue, name string) (*gpuContext, error) {
	if device == nil || queue == nil {
		return nil, &lineview.ContextCreationError{Reason: "shared device or queue is nil"}
	}
	return &gpuContext{device: device, queue: queue, adapter: name, external: true}, nil
}

// contextFromProvider extracts HAL objects from a host that exposes
// HalDevice() any and HalQueue() any, such as a gogpu window.
func contextFromProvider(provider any) (*gpuContext, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, &lineview.ContextCreationError{Reason: "provider does not expose HAL types"}
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, &lineview.ContextCreationError{Reason: "provider HalDevice is not hal.Device"}
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, &lineview.ContextCreationError{Reason: "provider HalQueue is not hal.Queue"}
	}
	return sharedContext(device, queue, fmt.Sprintf("shared (%T)", provider))
}

// release destroys owned objects. Shared objects are left alone.
func (c *gpuContext) release() {
	if c == nil {
		return
	}
	if !c.external {
		if c.device != nil {
			c.device.Destroy()
		}
		if c.instance != nil {
			c.instance.Destroy()
		}
	}
	c.device = nil
	c.queue = nil
	c.instance = nil
}
