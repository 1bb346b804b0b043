// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stage"
)

// frameEncoder owns the command encoder of the current frame. Binding a
// render target ends the open pass and begins the next one on the same
// encoder; flush submits everything recorded since the frame began and
// waits for the GPU.
type frameEncoder struct {
	device hal.Device
	queue  hal.Queue

	enc       hal.CommandEncoder
	pass      hal.RenderPassEncoder
	recording bool
}

func newFrameEncoder(device hal.Device, queue hal.Queue) *frameEncoder {
	return &frameEncoder{device: device, queue: queue}
}

// begin starts command recording for a new frame, flushing any work the
// previous frame left behind.
func (e *frameEncoder) begin() error {
	if e.recording {
		if err := e.flush(); err != nil {
			stage.Logger().Warn("webgpu: flushing stale frame failed", "error", err)
		}
	}
	enc, err := e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "stage_frame",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("stage_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	e.enc = enc
	e.recording = true
	return nil
}

// beginPass ends the open render pass, if any, and begins a new one
// with the given descriptor. Returns nil when no frame is recording.
func (e *frameEncoder) beginPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	if !e.recording {
		if err := e.begin(); err != nil {
			stage.Logger().Warn("webgpu: implicit frame begin failed", "error", err)
			return nil
		}
	}
	e.endPass()
	rp := e.enc.BeginRenderPass(desc)
	e.pass = rp
	return rp
}

// endPass ends the open render pass, leaving the encoder ready for
// copies or the next pass.
func (e *frameEncoder) endPass() {
	if e.pass != nil {
		e.pass.End()
		e.pass = nil
	}
}

// withEncoder ends the open pass and hands the raw command encoder to
// fn, for copy commands that must run outside a render pass.
func (e *frameEncoder) withEncoder(fn func(hal.CommandEncoder)) {
	if !e.recording {
		if err := e.begin(); err != nil {
			stage.Logger().Warn("webgpu: implicit frame begin failed", "error", err)
			return
		}
	}
	e.endPass()
	fn(e.enc)
}

// flush ends the frame: closes the open pass, submits the command
// buffer, and blocks until the GPU signals completion.
func (e *frameEncoder) flush() error {
	if !e.recording {
		return nil
	}
	e.endPass()
	e.recording = false

	cmdBuf, err := e.enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer e.device.FreeCommandBuffer(cmdBuf)
	e.enc = nil

	// The HAL tracks submissions internally; WaitIdle blocks until the
	// returned submission index is complete.
	if _, err := e.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := e.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}
	return nil
}

// discard abandons the current frame without submitting.
func (e *frameEncoder) discard() {
	if !e.recording {
		return
	}
	e.endPass()
	e.enc.DiscardEncoding()
	e.enc = nil
	e.recording = false
}
