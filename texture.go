package stage

import (
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// Canvas is the native windowing resource backing a window surface.
// The windowing layer (outside this module) provides the concrete type;
// the render backends only need its pixel dimensions and use the handle
// itself to acquire a swap-chain context.
type Canvas interface {
	// CanvasSize returns the canvas dimensions in physical pixels.
	CanvasSize() (width, height int)
}

// sourceUID allocates unique TextureSource identifiers.
var sourceUID atomic.Int64

// TextureSource describes the pixel storage a texture renders into or
// samples from. The render-target subsystem consumes it read-only: it
// never resizes or reformats a source, it only reacts to sources that
// changed size since the last bind.
type TextureSource struct {
	// Label is an optional debug label carried into GPU resource labels.
	Label string

	// Width and Height are the logical dimensions in pixels.
	Width  int
	Height int

	// Resolution is the device-pixel scale factor (logical to physical).
	// NewTextureSource defaults it to 1.
	Resolution float64

	// Format is the pixel format of the storage.
	Format gputypes.TextureFormat

	// Antialias requests 4x multisampled rendering when this source is
	// used as a color attachment.
	Antialias bool

	// Canvas is the native windowing handle when the source is
	// window-backed, nil otherwise.
	Canvas Canvas

	uid       int64
	destroyed bool
	onDestroy []func()
}

// SourceOptions configures NewTextureSource. Zero values fall back to
// sensible defaults (1x1, resolution 1, RGBA8).
type SourceOptions struct {
	Label      string
	Width      int
	Height     int
	Resolution float64
	Format     gputypes.TextureFormat
	Antialias  bool
	Canvas     Canvas
}

// NewTextureSource creates a texture source with defaults applied.
func NewTextureSource(opts SourceOptions) *TextureSource {
	if opts.Width <= 0 {
		opts.Width = 1
	}
	if opts.Height <= 0 {
		opts.Height = 1
	}
	if opts.Resolution <= 0 {
		opts.Resolution = 1
	}
	if opts.Format == gputypes.TextureFormatUndefined {
		opts.Format = gputypes.TextureFormatRGBA8Unorm
	}
	return &TextureSource{
		Label:      opts.Label,
		Width:      opts.Width,
		Height:     opts.Height,
		Resolution: opts.Resolution,
		Format:     opts.Format,
		Antialias:  opts.Antialias,
		Canvas:     opts.Canvas,
		uid:        sourceUID.Add(1),
	}
}

// UID returns the unique identifier of this source.
func (s *TextureSource) UID() int64 { return s.uid }

// PixelWidth returns the physical width (logical width times resolution).
func (s *TextureSource) PixelWidth() int {
	return int(float64(s.Width) * s.Resolution)
}

// PixelHeight returns the physical height (logical height times resolution).
func (s *TextureSource) PixelHeight() int {
	return int(float64(s.Height) * s.Resolution)
}

// WindowBacked reports whether the source presents through a native canvas.
func (s *TextureSource) WindowBacked() bool { return s.Canvas != nil }

// OnDestroy registers fn to run when the source is destroyed. The
// render-target subsystem uses this to drop cached targets when their
// surface is released.
func (s *TextureSource) OnDestroy(fn func()) {
	s.onDestroy = append(s.onDestroy, fn)
}

// Destroyed reports whether Destroy has been called.
func (s *TextureSource) Destroyed() bool { return s.destroyed }

// Destroy marks the source as released and runs destroy listeners.
// Safe to call more than once; listeners run only on the first call.
func (s *TextureSource) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	for _, fn := range s.onDestroy {
		fn()
	}
	s.onDestroy = nil
}

// Texture is a drawable view of a TextureSource. The render-target
// subsystem treats textures as attachment handles; sampling, frames, and
// upload belong to the texture management layer outside this module.
type Texture struct {
	// Source is the backing storage. Never nil for a valid texture.
	Source *TextureSource

	// DepthStencil is the depth/stencil storage associated with this
	// texture, if any. A render target wrapping this texture adopts it.
	DepthStencil *TextureSource
}

// NewTexture creates a texture over an existing source.
func NewTexture(source *TextureSource) *Texture {
	return &Texture{Source: source}
}

// Width returns the logical width of the backing source.
func (t *Texture) Width() int { return t.Source.Width }

// Height returns the logical height of the backing source.
func (t *Texture) Height() int { return t.Source.Height }
