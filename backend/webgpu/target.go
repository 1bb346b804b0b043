// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"github.com/gogpu/wgpu/hal"
)

// Sample counts used by the subsystem: 4 when the color source requests
// antialiasing, 1 otherwise.
const (
	sampleCountMSAA = 4
	sampleCountNone = 1
)

// attachment is the GPU realization of one color attachment. The kind
// of view it renders into is fixed at target creation: window-backed
// attachments acquire a swap-chain view per pass, plain attachments
// reuse the view of their registered device texture.
type attachment struct {
	// surface is the swap chain behind a window-backed attachment, nil
	// for plain texture attachments.
	surface    SurfaceContext
	configured bool

	// acquired holds the swap-chain texture of the current frame, valid
	// between pass start and present.
	acquired hal.Texture

	// msaaTexture/msaaView are the 4x multisample buffer, present iff
	// the target's color source requested antialiasing. Drawing lands in
	// msaaView; the single-sample view becomes the resolve target.
	msaaTexture hal.Texture
	msaaView    hal.TextureView
}

// Target is the GPU realization of a render target.
type Target struct {
	attachments []attachment

	// depthTexture/depthView back the depth/stencil attachment, nil
	// without one. Sample count always matches the color attachments.
	depthTexture hal.Texture
	depthView    hal.TextureView

	sampleCount int

	// cached physical dimensions, compared against the live attachment
	// size to detect resizes.
	width  int
	height int

	// lastPass is the most recently built render pass descriptor.
	lastPass *hal.RenderPassDescriptor
}

// SampleCount returns 4 for antialiased targets, 1 otherwise.
func (t *Target) SampleCount() int { return t.sampleCount }

// CachedSize returns the dimensions recorded at creation or last resize.
func (t *Target) CachedSize() (int, int) { return t.width, t.height }

// Multisampled reports whether the target carries MSAA buffers.
func (t *Target) Multisampled() bool { return t.sampleCount > 1 }

// LastPass returns the most recently built pass descriptor, or nil if
// the target has never been bound.
func (t *Target) LastPass() *hal.RenderPassDescriptor { return t.lastPass }

// destroy releases the GPU buffers owned by the target. Attachment
// textures are not touched here; they belong to the adapter's
// per-source registry.
func (t *Target) destroy(device hal.Device) {
	for i := range t.attachments {
		att := &t.attachments[i]
		if att.msaaView != nil {
			device.DestroyTextureView(att.msaaView)
			att.msaaView = nil
		}
		if att.msaaTexture != nil {
			device.DestroyTexture(att.msaaTexture)
			att.msaaTexture = nil
		}
		att.acquired = nil
	}
	if t.depthView != nil {
		device.DestroyTextureView(t.depthView)
		t.depthView = nil
	}
	if t.depthTexture != nil {
		device.DestroyTexture(t.depthTexture)
		t.depthTexture = nil
	}
	t.lastPass = nil
}
