// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/stage"
	"github.com/gogpu/stage/backend"
	"github.com/gogpu/stage/render"
)

// Backend is the wgpu HAL rendering backend.
type Backend struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	adapter *Adapter

	initialized    bool
	externalDevice bool // true when using a shared device (don't destroy on Close)
}

// init registers the webgpu backend on package import.
func init() {
	backend.Register(backend.BackendWebGPU, func() backend.RenderBackend {
		return New()
	})
}

// New creates a webgpu rendering backend. The GPU device is acquired in
// Init or handed over via UseDeviceProvider.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendWebGPU
}

// Init acquires a standalone Vulkan device and builds the render
// adapter on it. A no-op when a device was already provided through
// UseDeviceProvider.
func (b *Backend) Init() error {
	if b.initialized {
		return nil
	}
	if b.device == nil {
		if err := b.initGPU(); err != nil {
			return fmt.Errorf("webgpu: %w", err)
		}
	}
	b.adapter = NewAdapter(b.device, b.queue)
	b.initialized = true
	return nil
}

// Close releases all backend resources. Shared devices are not
// destroyed; the providing host owns them.
func (b *Backend) Close() {
	if b.adapter != nil {
		b.adapter.release()
		b.adapter = nil
	}
	if !b.externalDevice {
		if b.device != nil {
			b.device.Destroy()
		}
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
	b.instance = nil
	b.initialized = false
	b.externalDevice = false
}

// Adapter returns the render-target adapter for this backend. Nil
// before Init succeeds.
func (b *Backend) Adapter() render.Adapter {
	if b.adapter == nil {
		return nil
	}
	return b.adapter
}

// UseDeviceProvider switches the backend to a shared GPU device from an
// external host (e.g. a windowing framework that owns the device). The
// provider must expose HAL types via HalDevice() any and HalQueue() any;
// gpucontext.DeviceProvider implementations from the gogpu stack do.
func (b *Backend) UseDeviceProvider(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("webgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("webgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("webgpu: provider HalQueue is not hal.Queue")
	}

	// Drop own resources if we created them.
	if b.adapter != nil {
		b.adapter.release()
		b.adapter = nil
	}
	if !b.externalDevice && b.device != nil {
		b.device.Destroy()
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}

	b.device = device
	b.queue = queue
	b.externalDevice = true
	b.adapter = NewAdapter(device, queue)
	b.initialized = true

	stage.Logger().Debug("webgpu: switched to shared GPU device")
	return nil
}

// initGPU creates a standalone Vulkan device. This is the fallback path
// when no external device is provided via UseDeviceProvider.
func (b *Backend) initGPU() error {
	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	b.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
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
		return fmt.Errorf("open device: %w", err)
	}
	b.device = openDev.Device
	b.queue = openDev.Queue

	stage.Logger().Info("webgpu: GPU initialized (standalone)", "adapter", selected.Info.Name)
	return nil
}
