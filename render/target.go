// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"sync/atomic"

	"github.com/gogpu/stage"
)

// targetUID allocates dense RenderTarget identifiers. Identifiers are
// never reused, so backend maps keyed by uid cannot alias a destroyed
// target's resources to a new one.
var targetUID atomic.Int32

// RenderTarget is the logical description of a set of attachments to
// draw into. It carries no GPU resources; those live in the backend
// realization obtained through TargetSystem.GetBackendTarget.
//
// A target's dimensions always follow its first color attachment. When
// the attachment's source changes size, the next Bind detects the
// mismatch against the cached backend size and resizes the backend
// resources before the pass begins.
type RenderTarget struct {
	uid int32

	// ColorTextures are the ordered color attachments. Never empty.
	ColorTextures []*stage.Texture

	// DepthStencil is the optional depth/stencil storage.
	DepthStencil *stage.TextureSource

	// isRoot marks the swap-chain-backed frame root.
	isRoot bool

	// projection cache, rebuilt when the target size changes.
	projection     stage.Matrix
	projW, projH   int
	projectionInit bool
}

// TargetOptions configures NewRenderTarget.
type TargetOptions struct {
	// ColorTextures are the color attachments, in attachment order.
	ColorTextures []*stage.Texture

	// DepthStencil optionally attaches depth/stencil storage.
	DepthStencil *stage.TextureSource

	// IsRoot marks the target as the frame root.
	IsRoot bool
}

// NewRenderTarget creates a render target over existing textures.
// At least one color texture is required.
func NewRenderTarget(opts TargetOptions) *RenderTarget {
	if len(opts.ColorTextures) == 0 {
		panic("render: render target needs at least one color texture")
	}
	return &RenderTarget{
		uid:           targetUID.Add(1),
		ColorTextures: opts.ColorTextures,
		DepthStencil:  opts.DepthStencil,
		isRoot:        opts.IsRoot,
	}
}

// UID returns the unique identifier of this target.
func (t *RenderTarget) UID() int32 { return t.uid }

// IsRoot reports whether this is the frame's root target.
func (t *RenderTarget) IsRoot() bool { return t.isRoot }

// ColorSource returns the source of the first color attachment.
func (t *RenderTarget) ColorSource() *stage.TextureSource {
	return t.ColorTextures[0].Source
}

// Width returns the live logical width, which is always the width of the
// first color attachment.
func (t *RenderTarget) Width() int { return t.ColorSource().Width }

// Height returns the live logical height of the first color attachment.
func (t *RenderTarget) Height() int { return t.ColorSource().Height }

// PixelWidth returns the live physical width of the first color attachment.
func (t *RenderTarget) PixelWidth() int { return t.ColorSource().PixelWidth() }

// PixelHeight returns the live physical height of the first color attachment.
func (t *RenderTarget) PixelHeight() int { return t.ColorSource().PixelHeight() }

// Resolution returns the scale factor of the first color attachment.
func (t *RenderTarget) Resolution() float64 { return t.ColorSource().Resolution }

// Antialias reports whether the color source requested multisampling.
func (t *RenderTarget) Antialias() bool { return t.ColorSource().Antialias }

// WindowBacked reports whether the first color attachment presents
// through a native canvas.
func (t *RenderTarget) WindowBacked() bool { return t.ColorSource().WindowBacked() }

// Projection returns the orthographic projection matrix for the target's
// current dimensions. Window-backed targets flip Y so that the scene's
// downward Y axis maps onto the surface correctly; texture targets keep
// Y upward so sampled results are not mirrored.
func (t *RenderTarget) Projection() stage.Matrix {
	w, h := t.Width(), t.Height()
	if !t.projectionInit || w != t.projW || h != t.projH {
		t.projection = stage.Ortho(0, 0, float64(w), float64(h), t.WindowBacked())
		t.projW, t.projH = w, h
		t.projectionInit = true
	}
	return t.projection
}
