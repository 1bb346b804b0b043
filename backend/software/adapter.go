package software

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/stage"
	"github.com/gogpu/stage/render"
)

// Adapter implements render.Adapter on CPU pixmaps.
//
// Pixel storage is held per texture source, so a target rendering into
// a texture and a later read of that texture observe the same memory —
// the CPU equivalent of both referencing one GPU texture.
type Adapter struct {
	// storage maps texture sources to their backing pixmaps.
	storage map[*stage.TextureSource]*image.RGBA

	// active is the target whose pass is currently open; its simulated
	// MSAA buffers resolve when the next pass starts.
	active *Target
}

// NewAdapter creates a software adapter with empty storage.
func NewAdapter() *Adapter {
	return &Adapter{storage: make(map[*stage.TextureSource]*image.RGBA)}
}

var _ render.Adapter = (*Adapter)(nil)

// BeginFrame starts a new frame. Any pass left open by the previous
// frame is resolved first so its MSAA content is not lost.
func (a *Adapter) BeginFrame() {
	a.resolveActive()
}

// InitTarget creates the pixmap realization of t: per-attachment
// storage, simulated multisample buffers when the color source requested
// antialiasing, and a depth plane when a depth/stencil attachment is
// present.
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
		bt.pixmaps = append(bt.pixmaps, a.sourcePixmap(tex.Source))
		if t.Antialias() {
			pw := tex.Source.PixelWidth()
			ph := tex.Source.PixelHeight()
			bt.msaa = append(bt.msaa, image.NewRGBA(image.Rect(0, 0, pw, ph)))
		}
	}
	if t.DepthStencil != nil {
		bt.depth = make([]uint8, w*h)
	}

	stage.Logger().Debug("software: target initialized",
		"uid", t.UID(), "width", w, "height", h, "samples", bt.sampleCount)
	return bt
}

// StartPass resolves the previously open pass, builds a fresh pass
// descriptor for t, and applies its load operations: clearing
// attachments when clear is set, leaving prior contents in place
// otherwise.
func (a *Adapter) StartPass(t *render.RenderTarget, b render.BackendTarget, clear bool, clearColor gputypes.Color) {
	bt := b.(*Target)
	a.resolveActive()

	op := loadOpLoad
	if clear {
		op = loadOpClear
	}

	desc := &passDescriptor{}
	for i := range bt.pixmaps {
		att := colorAttachment{
			View:  bt.pixmaps[i],
			Load:  op,
			Clear: clearColor,
		}
		if len(bt.msaa) > 0 {
			// Draw into the multisample buffer; the single-sample
			// pixmap becomes the resolve destination.
			att.View = bt.msaa[i]
			att.Resolve = bt.pixmaps[i]
		}
		desc.Colors = append(desc.Colors, att)
	}
	if bt.depth != nil {
		desc.DepthStencil = &depthStencilAttachment{Buffer: bt.depth, Load: op}
	}

	for _, att := range desc.Colors {
		if att.Load == loadOpClear {
			fill(att.View, att.Clear)
			if att.Resolve != nil {
				fill(att.Resolve, att.Clear)
			}
		}
	}
	if desc.DepthStencil != nil && desc.DepthStencil.Load == loadOpClear {
		for i := range desc.DepthStencil.Buffer {
			desc.DepthStencil.Buffer[i] = 0
		}
	}

	bt.lastPass = desc
	a.active = bt
}

// Resize synchronizes bt with the target's live dimensions. Storage
// pixmaps are reallocated per attachment, and every multisample buffer
// follows its attachment's width, height, and resolution. The depth
// plane is reallocated alongside so its sample layout stays in step
// with the color attachments.
func (a *Adapter) Resize(t *render.RenderTarget, b render.BackendTarget) {
	bt := b.(*Target)
	w, h := t.PixelWidth(), t.PixelHeight()
	stage.Logger().Debug("software: target resized",
		"uid", t.UID(), "width", w, "height", h)

	for i, tex := range t.ColorTextures {
		pw := tex.Source.PixelWidth()
		ph := tex.Source.PixelHeight()
		pm := a.sourcePixmap(tex.Source)
		if pm.Bounds().Dx() != pw || pm.Bounds().Dy() != ph {
			pm = image.NewRGBA(image.Rect(0, 0, pw, ph))
			a.storage[tex.Source] = pm
		}
		bt.pixmaps[i] = pm
		if len(bt.msaa) > 0 {
			bt.msaa[i] = image.NewRGBA(image.Rect(0, 0, pw, ph))
		}
	}
	if bt.depth != nil {
		bt.depth = make([]uint8, w*h)
	}

	bt.width = w
	bt.height = h
}

// CopyToTexture copies region from src's first color attachment into
// the top-left corner of dst. When source and destination resolutions
// differ the region is rescaled; otherwise it is copied untouched.
// Bounds are not validated: a region outside the source is clipped by
// the pixmap operation, matching the unchecked-core contract.
func (a *Adapter) CopyToTexture(src *render.RenderTarget, b render.BackendTarget, dst *stage.Texture, region image.Rectangle) {
	bt := b.(*Target)
	if a.active == bt {
		// Snapshot semantics: the copy must observe everything drawn
		// so far, so resolve pending MSAA content first.
		bt.resolve()
	}

	from := bt.pixmaps[0]
	to := a.sourcePixmap(dst.Source)

	if src.Resolution() == dst.Source.Resolution {
		xdraw.Copy(to, image.Point{}, from, region, xdraw.Src, nil)
		return
	}
	scale := dst.Source.Resolution / src.Resolution()
	dr := image.Rect(0, 0,
		int(float64(region.Dx())*scale),
		int(float64(region.Dy())*scale))
	xdraw.ApproxBiLinear.Scale(to, dr, from, region, xdraw.Src, nil)
}

// ColorTexture returns the live single-sample pixmap of the target's
// first color attachment as the native handle.
func (a *Adapter) ColorTexture(t *render.RenderTarget, b render.BackendTarget) any {
	return b.(*Target).pixmaps[0]
}

// DestroyTarget releases the simulated buffers owned by bt and drops
// storage for sources that have been released.
func (a *Adapter) DestroyTarget(t *render.RenderTarget, b render.BackendTarget) {
	bt := b.(*Target)
	if a.active == bt {
		a.active = nil
	}
	bt.msaa = nil
	bt.depth = nil
	bt.lastPass = nil
	for _, tex := range t.ColorTextures {
		if tex.Source.Destroyed() {
			delete(a.storage, tex.Source)
		}
	}
}

// DrawBuffer returns the pixmap drawing currently lands in for the
// given backend target: the multisample buffer when antialiased, the
// plain attachment pixmap otherwise. Rasterizers write here.
func (a *Adapter) DrawBuffer(b render.BackendTarget) *image.RGBA {
	return b.(*Target).drawBuffer(0)
}

// TexturePixmap returns (allocating if needed) the storage behind a
// texture source. Readback paths use this to inspect texture contents.
func (a *Adapter) TexturePixmap(src *stage.TextureSource) *image.RGBA {
	return a.sourcePixmap(src)
}

// resolveActive resolves the open pass's MSAA buffers, if any.
func (a *Adapter) resolveActive() {
	if a.active != nil {
		a.active.resolve()
	}
	a.active = nil
}

// release drops all storage and state.
func (a *Adapter) release() {
	a.storage = make(map[*stage.TextureSource]*image.RGBA)
	a.active = nil
}

// sourcePixmap returns the pixmap backing src, allocating it at the
// source's physical size on first use.
func (a *Adapter) sourcePixmap(src *stage.TextureSource) *image.RGBA {
	if pm, ok := a.storage[src]; ok {
		return pm
	}
	pm := image.NewRGBA(image.Rect(0, 0, src.PixelWidth(), src.PixelHeight()))
	a.storage[src] = pm
	return pm
}

// resolve copies each multisample buffer into its attachment pixmap.
func (t *Target) resolve() {
	for i, ms := range t.msaa {
		draw.Draw(t.pixmaps[i], t.pixmaps[i].Bounds(), ms, image.Point{}, draw.Src)
	}
}

// fill floods a pixmap with the given clear color.
func fill(pm *image.RGBA, c gputypes.Color) {
	draw.Draw(pm, pm.Bounds(), image.NewUniform(toRGBA(c)), image.Point{}, draw.Src)
}

// toRGBA converts a normalized clear color to 8-bit RGBA.
func toRGBA(c gputypes.Color) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
