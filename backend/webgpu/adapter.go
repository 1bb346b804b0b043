// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stage"
	"github.com/gogpu/stage/render"
)

// sourceTexture is the device texture backing one texture source.
// Stored per source, not per target, so a target rendering into a
// texture and a later bind of that texture reference one GPU resource.
type sourceTexture struct {
	texture hal.Texture
	view    hal.TextureView
	width   int
	height  int
}

// Adapter implements render.Adapter on the wgpu HAL.
//
// Failures are best-effort per the adapter contract: allocation and
// surface-configuration errors are logged and the frame continues with
// a possibly non-functional target.
type Adapter struct {
	device hal.Device
	queue  hal.Queue

	encoder   *frameEncoder
	pipelines *PipelineCache

	// storage maps texture sources to their device textures.
	storage map[*stage.TextureSource]*sourceTexture

	// surfaces maps canvases to the swap-chain contexts the windowing
	// host registered for them.
	surfaces map[stage.Canvas]SurfaceContext
}

// NewAdapter creates an adapter on the given device and queue.
func NewAdapter(device hal.Device, queue hal.Queue) *Adapter {
	a := &Adapter{
		device:   device,
		queue:    queue,
		encoder:  newFrameEncoder(device, queue),
		storage:  make(map[*stage.TextureSource]*sourceTexture),
		surfaces: make(map[stage.Canvas]SurfaceContext),
	}
	pipelines, err := NewPipelineCache(device)
	if err != nil {
		stage.Logger().Warn("webgpu: pipeline cache unavailable", "error", err)
	} else {
		a.pipelines = pipelines
	}
	return a
}

var _ render.Adapter = (*Adapter)(nil)

// RegisterSurface associates a swap-chain context with a canvas. The
// windowing host calls this before the canvas is first rendered to.
func (a *Adapter) RegisterSurface(c stage.Canvas, sc SurfaceContext) {
	a.surfaces[c] = sc
}

// Pipelines returns the composite pipeline cache, which also serves as
// the render.PipelineState fed to the target system. Nil when pipeline
// setup failed.
func (a *Adapter) Pipelines() *PipelineCache { return a.pipelines }

// BeginFrame starts command recording for a new frame.
func (a *Adapter) BeginFrame() {
	if err := a.encoder.begin(); err != nil {
		stage.Logger().Warn("webgpu: begin frame failed", "error", err)
	}
}

// EndFrame submits everything recorded since BeginFrame and blocks
// until the GPU finishes. Hosts call this before presenting.
func (a *Adapter) EndFrame() error {
	return a.encoder.flush()
}

// InitTarget creates the GPU realization of t: device textures or
// swap-chain configuration per color attachment, a 4x multisample
// buffer per attachment when the color source requested antialiasing,
// and a depth/stencil texture when the target carries that attachment.
func (a *Adapter) InitTarget(t *render.RenderTarget) render.BackendTarget {
	w, h := t.PixelWidth(), t.PixelHeight()

	bt := &Target{
		width:  w,
		height: h,
	}
	if t.Antialias() {
		bt.sampleCount = sampleCountMSAA
	} else {
		bt.sampleCount = sampleCountNone
	}

	for _, tex := range t.ColorTextures {
		src := tex.Source
		att := attachment{}

		if src.WindowBacked() {
			sc, ok := a.surfaces[src.Canvas]
			if !ok {
				stage.Logger().Warn("webgpu: no surface registered for canvas", "uid", t.UID())
			} else {
				att.surface = sc
				if err := sc.Configure(a.device, src.PixelWidth(), src.PixelHeight(), src.Format); err != nil {
					stage.Logger().Warn("webgpu: surface configure failed", "uid", t.UID(), "error", err)
				} else {
					att.configured = true
				}
			}
		} else {
			a.sourceTexture(src)
		}

		if t.Antialias() {
			a.createMultisample(&att, src)
		}
		bt.attachments = append(bt.attachments, att)
	}

	if t.DepthStencil != nil {
		a.createDepthStencil(bt, w, h)
	}

	stage.Logger().Debug("webgpu: target initialized",
		"uid", t.UID(), "width", w, "height", h, "samples", bt.sampleCount)
	return bt
}

// StartPass builds a fresh render pass descriptor for t and begins the
// pass: swap-chain views are acquired for window-backed attachments,
// multisample buffers become the render view with the single-sample
// view as resolve target, and load ops follow the clear flag. The
// depth/stencil attachment mirrors the color clear flag.
func (a *Adapter) StartPass(t *render.RenderTarget, b render.BackendTarget, clear bool, clearColor gputypes.Color) {
	bt := b.(*Target)

	op := gputypes.LoadOpLoad
	if clear {
		op = gputypes.LoadOpClear
	}

	desc := &hal.RenderPassDescriptor{Label: "stage_pass"}
	for i := range bt.attachments {
		att := &bt.attachments[i]
		view := a.attachmentView(att, t.ColorTextures[i].Source)
		if view == nil {
			continue
		}

		ca := hal.RenderPassColorAttachment{
			View:       view,
			LoadOp:     op,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clearColor,
		}
		if att.msaaView != nil {
			// Draw into the multisample buffer; the single-sample view
			// becomes the resolve destination.
			ca.View = att.msaaView
			ca.ResolveTarget = view
		}
		desc.ColorAttachments = append(desc.ColorAttachments, ca)
	}
	if bt.depthView != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              bt.depthView,
			DepthLoadOp:       op,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     op,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		}
	}

	bt.lastPass = desc
	a.encoder.beginPass(desc)
}

// Resize synchronizes bt with the target's live dimensions: device
// textures and multisample buffers are recreated at each attachment's
// physical size, window surfaces are reconfigured, and the depth
// texture follows the target.
func (a *Adapter) Resize(t *render.RenderTarget, b render.BackendTarget) {
	bt := b.(*Target)
	w, h := t.PixelWidth(), t.PixelHeight()
	stage.Logger().Debug("webgpu: target resized",
		"uid", t.UID(), "width", w, "height", h)

	for i := range bt.attachments {
		att := &bt.attachments[i]
		src := t.ColorTextures[i].Source

		if att.surface != nil {
			if err := att.surface.Configure(a.device, src.PixelWidth(), src.PixelHeight(), src.Format); err != nil {
				stage.Logger().Warn("webgpu: surface reconfigure failed", "uid", t.UID(), "error", err)
				att.configured = false
			} else {
				att.configured = true
			}
		} else if st, ok := a.storage[src]; ok {
			if st.width != src.PixelWidth() || st.height != src.PixelHeight() {
				a.destroySourceTexture(src)
				a.sourceTexture(src)
			}
		}

		if att.msaaTexture != nil {
			a.device.DestroyTextureView(att.msaaView)
			a.device.DestroyTexture(att.msaaTexture)
			att.msaaTexture = nil
			att.msaaView = nil
			a.createMultisample(att, src)
		}
	}

	if bt.depthTexture != nil {
		a.device.DestroyTextureView(bt.depthView)
		a.device.DestroyTexture(bt.depthTexture)
		bt.depthTexture = nil
		bt.depthView = nil
		a.createDepthStencil(bt, w, h)
	}

	bt.width = w
	bt.height = h
}

// CopyToTexture copies region (in src pixel coordinates) from src's
// first color attachment into the top-left corner of dst. The copy is
// texel-for-texel and runs outside any render pass; the open pass is
// ended first so the copy observes everything drawn so far.
func (a *Adapter) CopyToTexture(src *render.RenderTarget, b render.BackendTarget, dst *stage.Texture, region image.Rectangle) {
	bt := b.(*Target)

	srcTex := a.attachmentTexture(&bt.attachments[0], src.ColorTextures[0].Source)
	if srcTex == nil {
		stage.Logger().Warn("webgpu: copy source has no texture", "uid", src.UID())
		return
	}
	dstTex := a.sourceTexture(dst.Source)
	if dstTex == nil {
		return
	}

	a.encoder.withEncoder(func(enc hal.CommandEncoder) {
		enc.CopyTextureToTexture(srcTex, dstTex.texture, []hal.TextureCopy{{
			SrcBase: hal.ImageCopyTexture{
				Texture:  srcTex,
				MipLevel: 0,
				Origin:   hal.Origin3D{X: uint32(region.Min.X), Y: uint32(region.Min.Y)},
			},
			DstBase: hal.ImageCopyTexture{
				Texture:  dstTex.texture,
				MipLevel: 0,
			},
			Size: hal.Extent3D{
				Width:              uint32(region.Dx()),
				Height:             uint32(region.Dy()),
				DepthOrArrayLayers: 1,
			},
		}})
	})
}

// ColorTexture returns the live HAL texture of the target's first color
// attachment: the swap-chain texture acquired by the current pass for
// window-backed targets, the device texture otherwise.
func (a *Adapter) ColorTexture(t *render.RenderTarget, b render.BackendTarget) any {
	bt := b.(*Target)
	return a.attachmentTexture(&bt.attachments[0], t.ColorTextures[0].Source)
}

// DestroyTarget releases the GPU buffers owned by bt and drops device
// textures of sources that have been released.
func (a *Adapter) DestroyTarget(t *render.RenderTarget, b render.BackendTarget) {
	bt := b.(*Target)
	bt.destroy(a.device)
	for _, tex := range t.ColorTextures {
		if tex.Source.Destroyed() {
			a.destroySourceTexture(tex.Source)
		}
	}
}

// release drops every device resource the adapter owns.
func (a *Adapter) release() {
	a.encoder.discard()
	for src := range a.storage {
		a.destroySourceTexture(src)
	}
	if a.pipelines != nil {
		a.pipelines.Release()
		a.pipelines = nil
	}
	a.surfaces = make(map[stage.Canvas]SurfaceContext)
}

// attachmentView returns the view rendering should target for the
// attachment: the swap-chain view of the current frame for
// window-backed attachments, the device texture view otherwise.
func (a *Adapter) attachmentView(att *attachment, src *stage.TextureSource) hal.TextureView {
	if att.surface != nil {
		tex, view, err := att.surface.Acquire()
		if err != nil {
			stage.Logger().Warn("webgpu: surface acquire failed", "error", err)
			return nil
		}
		att.acquired = tex
		return view
	}
	if st := a.sourceTexture(src); st != nil {
		return st.view
	}
	return nil
}

// attachmentTexture returns the live HAL texture behind the attachment.
func (a *Adapter) attachmentTexture(att *attachment, src *stage.TextureSource) hal.Texture {
	if att.surface != nil {
		return att.acquired
	}
	if st := a.sourceTexture(src); st != nil {
		return st.texture
	}
	return nil
}

// sourceTexture returns (allocating if needed) the device texture
// backing src. Returns nil when allocation fails; the failure is
// logged.
func (a *Adapter) sourceTexture(src *stage.TextureSource) *sourceTexture {
	if st, ok := a.storage[src]; ok {
		return st
	}
	w, h := src.PixelWidth(), src.PixelHeight()

	tex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label: src.Label,
		Size: hal.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        src.Format,
		Usage: gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		stage.Logger().Warn("webgpu: create texture failed", "label", src.Label, "error", err)
		return nil
	}
	view, err := a.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: src.Label,
	})
	if err != nil {
		a.device.DestroyTexture(tex)
		stage.Logger().Warn("webgpu: create texture view failed", "label", src.Label, "error", err)
		return nil
	}

	st := &sourceTexture{texture: tex, view: view, width: w, height: h}
	a.storage[src] = st
	return st
}

// destroySourceTexture releases the device texture backing src.
func (a *Adapter) destroySourceTexture(src *stage.TextureSource) {
	st, ok := a.storage[src]
	if !ok {
		return
	}
	a.device.DestroyTextureView(st.view)
	a.device.DestroyTexture(st.texture)
	delete(a.storage, src)
}

// createMultisample allocates the attachment's 4x multisample buffer at
// the source's physical size.
func (a *Adapter) createMultisample(att *attachment, src *stage.TextureSource) {
	tex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label: "stage_msaa",
		Size: hal.Extent3D{
			Width:              uint32(src.PixelWidth()),
			Height:             uint32(src.PixelHeight()),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   sampleCountMSAA,
		Dimension:     gputypes.TextureDimension2D,
		Format:        src.Format,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		stage.Logger().Warn("webgpu: create MSAA texture failed", "error", err)
		return
	}
	view, err := a.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "stage_msaa_view",
	})
	if err != nil {
		a.device.DestroyTexture(tex)
		stage.Logger().Warn("webgpu: create MSAA view failed", "error", err)
		return
	}
	att.msaaTexture = tex
	att.msaaView = view
}

// createDepthStencil allocates the target's depth/stencil texture. Its
// sample count always matches the color attachments.
func (a *Adapter) createDepthStencil(bt *Target, w, h int) {
	tex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label: "stage_depth_stencil",
		Size: hal.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   uint32(bt.sampleCount),
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatDepth24PlusStencil8,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		stage.Logger().Warn("webgpu: create depth/stencil texture failed", "error", err)
		return
	}
	view, err := a.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "stage_depth_stencil_view",
	})
	if err != nil {
		a.device.DestroyTexture(tex)
		stage.Logger().Warn("webgpu: create depth/stencil view failed", "error", err)
		return
	}
	bt.depthTexture = tex
	bt.depthView = view
}
