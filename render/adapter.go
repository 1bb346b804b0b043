// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/stage"
)

// Surface is anything drawing can target. The TargetSystem accepts:
//
//   - *RenderTarget: used unchanged, marked root when passed to Start
//   - *stage.Texture: wrapped into a single-color-attachment target that
//     adopts the texture's associated depth/stencil
//   - *stage.TextureSource: wrapped into a fresh texture first
//   - stage.Canvas: wrapped into a window-backed texture source
//
// Surfaces act purely as identity keys and construction input; the
// system never mutates them. Passing any other type is a programming
// error and panics.
type Surface = any

// BackendTarget is the backend realization of a RenderTarget: native
// surface contexts, multisample buffers, and cached pass state. Concrete
// types live in the backend packages; the core only needs size and
// sample-count bookkeeping.
type BackendTarget interface {
	// SampleCount returns the uniform sample count of the target:
	// 4 when the color source requested antialiasing, 1 otherwise.
	SampleCount() int

	// CachedSize returns the physical dimensions recorded when the
	// backend resources were created or last resized. Bind compares
	// this against the target's live dimensions to detect resizes.
	CachedSize() (width, height int)
}

// Adapter is the backend half of the TargetSystem. One adapter instance
// serves one backend device; the system calls it synchronously on the
// render thread.
//
// Resource-allocation failures inside an adapter are best-effort: the
// adapter logs and continues with a possibly non-functional target
// rather than aborting the frame. There is no error channel back to the
// core by design.
type Adapter interface {
	// BeginFrame starts command recording for a new frame. Called once
	// per frame from TargetSystem.Start before the initial push.
	BeginFrame()

	// InitTarget creates the backend resources for t: native context
	// acquisition and configuration, multisample buffer allocation.
	// Called exactly once per RenderTarget.
	InitTarget(t *RenderTarget) BackendTarget

	// StartPass builds a fresh pass descriptor for t and begins a new
	// native pass. When clear is set the color load op clears to
	// clearColor, otherwise prior contents are loaded. The depth/stencil
	// attachment, if present, mirrors the color clear flag.
	StartPass(t *RenderTarget, bt BackendTarget, clear bool, clearColor gputypes.Color)

	// Resize synchronizes backend resources with the target's live
	// dimensions: updates the cached size and resizes every multisample
	// buffer to its color attachment's width, height, and resolution.
	Resize(t *RenderTarget, bt BackendTarget)

	// CopyToTexture copies region (in src's pixel coordinates) into the
	// top-left corner of dst. Bounds are not validated here; a region
	// outside the source is a backend-level fault.
	CopyToTexture(src *RenderTarget, bt BackendTarget, dst *stage.Texture, region image.Rectangle)

	// ColorTexture returns the live native texture handle of the
	// target's first color attachment: the current swap-chain texture
	// for window-backed targets, the backing texture otherwise.
	ColorTexture(t *RenderTarget, bt BackendTarget) any

	// DestroyTarget releases the backend resources of t, including any
	// multisample buffers owned by bt.
	DestroyTarget(t *RenderTarget, bt BackendTarget)
}

// PipelineState receives the active sample count on every bind so that
// pipeline/rasterizer state matches the bound target's attachments.
type PipelineState interface {
	SetMultisample(sampleCount int)
}

// TargetListener observes changes of the actively bound render target.
// Dependent systems that cache per-target state (batchers, uniform
// uploaders) register a listener and invalidate on change.
type TargetListener interface {
	OnRenderTargetChange(t *RenderTarget)
}

// TargetListenerFunc adapts a plain function to the TargetListener
// interface.
type TargetListenerFunc func(t *RenderTarget)

// OnRenderTargetChange calls f(t).
func (f TargetListenerFunc) OnRenderTargetChange(t *RenderTarget) { f(t) }
