package software

import (
	"image"

	"github.com/gogpu/gputypes"
)

// Sample counts used by the subsystem: 4 when the color source requests
// antialiasing, 1 otherwise.
const (
	sampleCountMSAA = 4
	sampleCountNone = 1
)

// loadOp mirrors the GPU load operation for a software pass.
type loadOp int

const (
	loadOpLoad loadOp = iota
	loadOpClear
)

// colorAttachment is one color slot of a software pass descriptor. View
// is the pixmap drawing lands in; Resolve, when non-nil, receives the
// view's contents on pass end (the CPU stand-in for an MSAA resolve).
type colorAttachment struct {
	View    *image.RGBA
	Resolve *image.RGBA
	Load    loadOp
	Clear   gputypes.Color
}

// passDescriptor is the software analog of a GPU render pass
// descriptor. It is rebuilt on every bind and never cached across
// binds; Target keeps only the most recently built one for resolve
// bookkeeping and tests.
type passDescriptor struct {
	Colors       []colorAttachment
	DepthStencil *depthStencilAttachment
}

// depthStencilAttachment clears or loads the target's depth buffer,
// mirroring the color clear flag.
type depthStencilAttachment struct {
	Buffer []uint8
	Load   loadOp
}

// Target is the software realization of a render target. Pixmaps are
// shared with the adapter's per-source storage registry so that copies
// into a texture become visible when that texture is later bound.
type Target struct {
	// pixmaps holds the single-sample storage of each color attachment.
	pixmaps []*image.RGBA

	// msaa holds one simulated multisample buffer per color attachment.
	// Present iff the owning target's color source requested
	// antialiasing; nil otherwise.
	msaa []*image.RGBA

	// depth is the simulated depth/stencil plane, nil without an
	// attachment.
	depth []uint8

	sampleCount int

	// cached physical dimensions, compared against the live attachment
	// size to detect resizes.
	width  int
	height int

	// lastPass is the most recently built pass descriptor.
	lastPass *passDescriptor
}

// SampleCount returns 4 for antialiased targets, 1 otherwise.
func (t *Target) SampleCount() int { return t.sampleCount }

// CachedSize returns the dimensions recorded at creation or last resize.
func (t *Target) CachedSize() (int, int) { return t.width, t.height }

// Multisampled reports whether the target carries simulated MSAA buffers.
func (t *Target) Multisampled() bool { return len(t.msaa) > 0 }

// LastPass returns the most recently built pass descriptor, or nil if
// the target has never been bound.
func (t *Target) LastPass() *passDescriptor { return t.lastPass }

// drawBuffer returns the pixmap drawing lands in for attachment i: the
// multisample buffer when present, the plain pixmap otherwise.
func (t *Target) drawBuffer(i int) *image.RGBA {
	if len(t.msaa) > 0 {
		return t.msaa[i]
	}
	return t.pixmaps[i]
}
