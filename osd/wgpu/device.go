//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/subd"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device owns a HAL device and queue for stencil evaluation. A Device
// may be created standalone or wrapped around a device shared with a
// renderer; only standalone devices are destroyed on Close.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	external bool
}

// NewDevice opens the first usable GPU adapter, preferring discrete
// over integrated devices. It returns subd.ErrUnavailable when no
// backend or adapter is present, which callers should treat as a
// signal to use a CPU evaluator instead.
func NewDevice() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("wgpu: vulkan backend not registered: %w", subd.ErrUnavailable)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", subd.ErrUnavailable)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: no GPU adapters found: %w", subd.ErrUnavailable)
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
		return nil, fmt.Errorf("wgpu: open device: %w", subd.ErrUnavailable)
	}

	subd.Logger().Debug("wgpu: device opened",
		"adapter", selected.Info.Name,
		"type", selected.Info.DeviceType)

	return &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
	}, nil
}

// NewDeviceFrom wraps an existing HAL device and queue. The caller
// retains ownership; Close leaves them untouched.
func NewDeviceFrom(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("wgpu: nil device or queue: %w", subd.ErrUnavailable)
	}
	return &Device{device: device, queue: queue, external: true}, nil
}

// Close releases the device and instance unless they are shared.
func (d *Device) Close() {
	if d.external {
		d.device = nil
		d.queue = nil
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}
