// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// SurfaceContext is the swap-chain access a windowing host provides for
// one canvas. The adapter configures it once per target (and again on
// resize) and acquires the current frame's texture each pass.
//
// Configure failures are reported to the adapter, which logs and keeps
// going with an unconfigured context rather than aborting the frame.
type SurfaceContext interface {
	// Configure (re)configures the swap chain for the given physical
	// size and format. Called before the first acquire and whenever the
	// target is resized.
	Configure(device hal.Device, width, height int, format gputypes.TextureFormat) error

	// Acquire returns the swap-chain texture and view for the current
	// frame. The returned handles stay valid until the frame is
	// presented by the host.
	Acquire() (hal.Texture, hal.TextureView, error)
}
