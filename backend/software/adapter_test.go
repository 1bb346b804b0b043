package software

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/stage"
	"github.com/gogpu/stage/render"
)

var (
	red  = gputypes.Color{R: 1, A: 1}
	blue = gputypes.Color{B: 1, A: 1}
)

func newSystem() (*render.TargetSystem, *Adapter) {
	a := NewAdapter()
	return render.NewTargetSystem(a, render.SystemOptions{}), a
}

func newTexture(w, h int, antialias bool) *stage.Texture {
	return stage.NewTexture(stage.NewTextureSource(stage.SourceOptions{
		Width: w, Height: h, Antialias: antialias,
	}))
}

// TestClearPass verifies that a clearing bind floods the attachment
// with the clear color.
func TestClearPass(t *testing.T) {
	sys, a := newSystem()
	tex := newTexture(8, 8, false)

	rt := sys.Start(tex, true, red)
	pm := a.TexturePixmap(rt.ColorSource())

	want := color.RGBA{R: 255, A: 255}
	if got := pm.RGBAAt(0, 0); got != want {
		t.Errorf("pixel (0,0) = %v, want %v", got, want)
	}
	if got := pm.RGBAAt(7, 7); got != want {
		t.Errorf("pixel (7,7) = %v, want %v", got, want)
	}
}

// TestPopPreservesContent verifies load semantics on pop: content drawn
// into the parent before a nested pass survives the rebind.
func TestPopPreservesContent(t *testing.T) {
	sys, a := newSystem()
	root := newTexture(8, 8, false)
	nested := newTexture(4, 4, false)

	rt := sys.Start(root, true, red)
	bt := sys.GetBackendTarget(rt)
	a.DrawBuffer(bt).Set(3, 3, color.RGBA{G: 255, A: 255})

	sys.Push(nested, true, blue)
	sys.Pop()

	pm := a.TexturePixmap(rt.ColorSource())
	if got := pm.RGBAAt(3, 3); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("pixel (3,3) after pop = %v, want green", got)
	}
	if got := pm.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel (0,0) after pop = %v, want red", got)
	}
}

// TestMultisampleBuffers verifies the MSAA invariant: antialiased
// targets draw through a same-size multisample buffer that resolves
// into the attachment on the next pass.
func TestMultisampleBuffers(t *testing.T) {
	sys, a := newSystem()
	tex := newTexture(8, 8, true)

	rt := sys.Start(tex, true, gputypes.Color{})
	bt := sys.GetBackendTarget(rt).(*Target)

	if bt.SampleCount() != 4 {
		t.Errorf("SampleCount() = %d, want 4", bt.SampleCount())
	}
	if !bt.Multisampled() {
		t.Fatal("antialiased target has no multisample buffer")
	}

	// Drawing lands in the MSAA buffer, not the attachment.
	draw := a.DrawBuffer(bt)
	pm := a.TexturePixmap(rt.ColorSource())
	if draw == pm {
		t.Fatal("draw buffer is the attachment pixmap, want multisample buffer")
	}
	draw.Set(2, 2, color.RGBA{B: 255, A: 255})
	if pm.RGBAAt(2, 2) == (color.RGBA{B: 255, A: 255}) {
		t.Error("attachment observed draw before resolve")
	}

	// Starting the next frame resolves.
	sys.Start(tex, false, gputypes.Color{})
	if got := pm.RGBAAt(2, 2); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("pixel (2,2) after resolve = %v, want blue", got)
	}
}

// TestPlainTargetSampleCount verifies single-sample targets.
func TestPlainTargetSampleCount(t *testing.T) {
	sys, _ := newSystem()
	rt := sys.Start(newTexture(8, 8, false), true, gputypes.Color{})
	bt := sys.GetBackendTarget(rt).(*Target)

	if bt.SampleCount() != 1 {
		t.Errorf("SampleCount() = %d, want 1", bt.SampleCount())
	}
	if bt.Multisampled() {
		t.Error("plain target carries multisample buffers")
	}
}

// TestPassDescriptor verifies descriptor construction: load op follows
// the clear flag, MSAA redirects the view, depth mirrors color.
func TestPassDescriptor(t *testing.T) {
	sys, a := newSystem()
	src := stage.NewTextureSource(stage.SourceOptions{Width: 8, Height: 8, Antialias: true})
	tex := stage.NewTexture(src)
	tex.DepthStencil = stage.NewTextureSource(stage.SourceOptions{Width: 8, Height: 8})

	rt := sys.Start(tex, true, red)
	bt := sys.GetBackendTarget(rt).(*Target)

	desc := bt.LastPass()
	if desc == nil {
		t.Fatal("LastPass() = nil after bind")
	}
	if len(desc.Colors) != 1 {
		t.Fatalf("descriptor has %d color attachments, want 1", len(desc.Colors))
	}
	att := desc.Colors[0]
	if att.Load != loadOpClear {
		t.Error("clearing bind built load op, want clear")
	}
	if att.Clear != red {
		t.Errorf("clear value = %v, want %v", att.Clear, red)
	}
	if att.View != a.DrawBuffer(bt) {
		t.Error("descriptor view is not the multisample buffer")
	}
	if att.Resolve != a.TexturePixmap(src) {
		t.Error("resolve target is not the attachment pixmap")
	}
	if desc.DepthStencil == nil {
		t.Fatal("descriptor has no depth/stencil attachment")
	}
	if desc.DepthStencil.Load != loadOpClear {
		t.Error("depth load op does not mirror color clear")
	}

	// A load bind mirrors through to both attachments.
	sys.Bind(tex, false, gputypes.Color{})
	desc = bt.LastPass()
	if desc.Colors[0].Load != loadOpLoad || desc.DepthStencil.Load != loadOpLoad {
		t.Error("non-clearing bind built clear ops, want load")
	}
}

// TestResizeReallocates verifies that a source size change reallocates
// storage and updates the cached size.
func TestResizeReallocates(t *testing.T) {
	sys, a := newSystem()
	src := stage.NewTextureSource(stage.SourceOptions{Width: 8, Height: 8})
	tex := stage.NewTexture(src)

	rt := sys.Start(tex, true, red)
	bt := sys.GetBackendTarget(rt)

	src.Width, src.Height = 16, 12
	sys.Bind(tex, false, gputypes.Color{})

	if w, h := bt.CachedSize(); w != 16 || h != 12 {
		t.Errorf("CachedSize() = %dx%d, want 16x12", w, h)
	}
	pm := a.TexturePixmap(src)
	if pm.Bounds().Dx() != 16 || pm.Bounds().Dy() != 12 {
		t.Errorf("pixmap = %v, want 16x12", pm.Bounds())
	}
}

// TestCopyToTexture verifies a same-resolution region copy is
// pixel-exact.
func TestCopyToTexture(t *testing.T) {
	sys, a := newSystem()
	tex := newTexture(8, 8, false)

	rt := sys.Start(tex, true, red)
	bt := sys.GetBackendTarget(rt)
	a.DrawBuffer(bt).Set(5, 5, color.RGBA{G: 255, A: 255})

	dst := newTexture(4, 4, false)
	sys.CopyToTexture(rt, dst, image.Rect(4, 4, 8, 8))

	to := a.TexturePixmap(dst.Source)
	if got := to.RGBAAt(1, 1); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("dst pixel (1,1) = %v, want green", got)
	}
	if got := to.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("dst pixel (0,0) = %v, want red", got)
	}
}

// TestCopyToTextureScales verifies resolution-aware rescaling.
func TestCopyToTextureScales(t *testing.T) {
	sys, a := newSystem()
	tex := newTexture(8, 8, false)
	rt := sys.Start(tex, true, red)

	dst := stage.NewTexture(stage.NewTextureSource(stage.SourceOptions{
		Width: 8, Height: 8, Resolution: 2,
	}))
	sys.CopyToTexture(rt, dst, image.Rect(0, 0, 8, 8))

	to := a.TexturePixmap(dst.Source)
	// The 8x8 region lands as 16x16 in the higher-resolution texture.
	if got := to.RGBAAt(15, 15); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("dst pixel (15,15) = %v, want red", got)
	}
}

// TestCopySharedStorage verifies that a copy into a texture is visible
// when that texture is later bound as a target.
func TestCopySharedStorage(t *testing.T) {
	sys, a := newSystem()
	tex := newTexture(8, 8, false)
	rt := sys.Start(tex, true, red)

	dst := newTexture(8, 8, false)
	sys.CopyToTexture(rt, dst, image.Rect(0, 0, 8, 8))

	// Bind dst with load semantics: the copied content must be there.
	drt := sys.Push(dst, false, gputypes.Color{})
	pm := a.TexturePixmap(drt.ColorSource())
	if got := pm.RGBAAt(4, 4); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel (4,4) in rebound copy target = %v, want red", got)
	}
}

// TestCopyResolvesPendingMSAA verifies snapshot semantics: copying from
// an antialiased target mid-pass observes everything drawn so far.
func TestCopyResolvesPendingMSAA(t *testing.T) {
	sys, a := newSystem()
	tex := newTexture(8, 8, true)

	rt := sys.Start(tex, true, gputypes.Color{})
	bt := sys.GetBackendTarget(rt)
	a.DrawBuffer(bt).Set(1, 1, color.RGBA{G: 255, A: 255})

	dst := newTexture(8, 8, false)
	sys.CopyToTexture(rt, dst, image.Rect(0, 0, 8, 8))

	to := a.TexturePixmap(dst.Source)
	if got := to.RGBAAt(1, 1); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("dst pixel (1,1) = %v, want green", got)
	}
}
