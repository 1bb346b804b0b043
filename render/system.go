// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/stage"
)

// TargetSystem maps render surfaces to RenderTargets, RenderTargets to
// backend resources, and exposes the push/pop/bind operations backend
// code and the filter subsystem use to redirect drawing output.
//
// All operations execute synchronously on the render thread. The system
// exclusively owns the surface and backend maps; no other component
// writes to them, so no locking is needed.
type TargetSystem struct {
	adapter   Adapter
	pipeline  PipelineState
	listeners []TargetListener

	// surfaceTargets caches targets by surface identity so repeated
	// lookups return the same instance and backend resources are never
	// duplicated per surface.
	surfaceTargets map[Surface]*RenderTarget

	// targets indexes known targets by uid; backendTargets caches the
	// backend resources under the same key.
	targets        map[int32]*RenderTarget
	backendTargets map[int32]BackendTarget

	// stack holds the actively bound targets, root at position zero.
	stack []*RenderTarget

	root    *RenderTarget
	active  *RenderTarget
	started bool

	antialias bool
}

// SystemOptions configures NewTargetSystem.
type SystemOptions struct {
	// Pipeline optionally receives the active sample count on bind.
	Pipeline PipelineState

	// Antialias requests multisampling for targets the system creates
	// itself (canvas-backed root targets).
	Antialias bool
}

// NewTargetSystem creates a target system over the given backend adapter.
func NewTargetSystem(adapter Adapter, opts SystemOptions) *TargetSystem {
	if adapter == nil {
		panic("render: nil adapter")
	}
	return &TargetSystem{
		adapter:        adapter,
		pipeline:       opts.Pipeline,
		antialias:      opts.Antialias,
		surfaceTargets: make(map[Surface]*RenderTarget),
		targets:        make(map[int32]*RenderTarget),
		backendTargets: make(map[int32]BackendTarget),
	}
}

// AddListener registers a listener notified on every target change.
// Listeners run synchronously, in registration order, on the render
// thread.
func (s *TargetSystem) AddListener(l TargetListener) {
	s.listeners = append(s.listeners, l)
}

// Active returns the currently bound target, or nil before Start.
func (s *TargetSystem) Active() *RenderTarget { return s.active }

// Root returns the frame's root target, or nil before Start.
func (s *TargetSystem) Root() *RenderTarget { return s.root }

// StackDepth returns the current nesting depth, including the root.
func (s *TargetSystem) StackDepth() int { return len(s.stack) }

// Start begins a frame: resolves the root surface into a RenderTarget,
// resets the stack unconditionally, begins command recording, and
// performs the initial push. Must be called exactly once per frame
// before any drawing.
func (s *TargetSystem) Start(rootSurface Surface, clear bool, clearColor gputypes.Color) *RenderTarget {
	s.stack = s.stack[:0]
	s.started = true

	s.root = s.GetRenderTarget(rootSurface)
	s.root.isRoot = true

	s.adapter.BeginFrame()
	return s.Push(rootSurface, clear, clearColor)
}

// Bind resolves the surface's RenderTarget, resizes backend resources if
// the target's live dimensions drifted from the cached backend size,
// begins a new native pass (clearing or loading per the clear flag),
// propagates the sample count to the pipeline state, and notifies
// listeners. This is the single mutation point for what is currently
// being drawn into.
//
// Bind before Start is a contract violation and panics.
func (s *TargetSystem) Bind(surface Surface, clear bool, clearColor gputypes.Color) *RenderTarget {
	if !s.started {
		panic("render: Bind called before Start")
	}

	t := s.GetRenderTarget(surface)
	bt := s.GetBackendTarget(t)

	if cw, ch := bt.CachedSize(); cw != t.PixelWidth() || ch != t.PixelHeight() {
		s.adapter.Resize(t, bt)
	}

	s.adapter.StartPass(t, bt, clear, clearColor)

	if s.pipeline != nil {
		s.pipeline.SetMultisample(bt.SampleCount())
	}

	s.active = t
	for _, l := range s.listeners {
		l.OnRenderTargetChange(t)
	}
	return t
}

// Push binds the surface and appends its target to the stack,
// establishing nested rendering.
func (s *TargetSystem) Push(surface Surface, clear bool, clearColor gputypes.Color) *RenderTarget {
	t := s.Bind(surface, clear, clearColor)
	s.stack = append(s.stack, t)
	return t
}

// Pop removes the top of the stack and rebinds the new top with load
// semantics: resuming a parent target never erases what was already
// drawn there.
//
// Popping when only the root remains is a contract violation and panics.
func (s *TargetSystem) Pop() {
	if len(s.stack) <= 1 {
		panic("render: Pop below root render target")
	}
	s.stack = s.stack[:len(s.stack)-1]
	s.Bind(s.stack[len(s.stack)-1], false, gputypes.Color{})
}

// Restart rebinds the root target without clearing. Used to resume
// top-level drawing after the stack has been fully unwound.
func (s *TargetSystem) Restart() *RenderTarget {
	return s.Bind(s.root, false, gputypes.Color{})
}

// GetRenderTarget resolves a surface to its RenderTarget, creating and
// caching one on first reference. Lookups are keyed by surface identity:
// subsequent calls with the same surface return the same instance.
func (s *TargetSystem) GetRenderTarget(surface Surface) *RenderTarget {
	if t, ok := s.surfaceTargets[surface]; ok {
		return t
	}

	var t *RenderTarget
	switch sf := surface.(type) {
	case *RenderTarget:
		// An explicit target is used unchanged. Root marking happens in
		// Start; resolving here (e.g. on Pop rebinds) must not promote
		// nested targets.
		t = sf

	case *stage.Texture:
		t = NewRenderTarget(TargetOptions{
			ColorTextures: []*stage.Texture{sf},
			DepthStencil:  sf.DepthStencil,
		})
		s.watchSource(surface, sf.Source)

	case *stage.TextureSource:
		t = NewRenderTarget(TargetOptions{
			ColorTextures: []*stage.Texture{stage.NewTexture(sf)},
		})
		s.watchSource(surface, sf)

	case stage.Canvas:
		w, h := sf.CanvasSize()
		src := stage.NewTextureSource(stage.SourceOptions{
			Label:     "canvas",
			Width:     w,
			Height:    h,
			Antialias: s.antialias,
			Canvas:    sf,
		})
		t = NewRenderTarget(TargetOptions{
			ColorTextures: []*stage.Texture{stage.NewTexture(src)},
			IsRoot:        true,
		})

	default:
		panic(fmt.Sprintf("render: unsupported render surface type %T", surface))
	}

	s.surfaceTargets[surface] = t
	s.targets[t.uid] = t
	return t
}

// GetBackendTarget resolves a RenderTarget to its backend resources,
// performing first-time setup (native context configuration, multisample
// buffer allocation) exactly once per target.
func (s *TargetSystem) GetBackendTarget(t *RenderTarget) BackendTarget {
	if bt, ok := s.backendTargets[t.uid]; ok {
		return bt
	}
	bt := s.adapter.InitTarget(t)
	s.backendTargets[t.uid] = bt
	return bt
}

// CopyToTexture copies region (in src's pixel coordinates) into the
// top-left corner of dst and returns dst. The region must lie within the
// source target's bounds; the core does not validate this.
func (s *TargetSystem) CopyToTexture(src *RenderTarget, dst *stage.Texture, region image.Rectangle) *stage.Texture {
	s.adapter.CopyToTexture(src, s.GetBackendTarget(src), dst, region)
	return dst
}

// ColorTexture returns the live native texture handle for the target's
// first color attachment: the current swap-chain texture for
// window-backed targets, the backing texture otherwise.
func (s *TargetSystem) ColorTexture(t *RenderTarget) any {
	return s.adapter.ColorTexture(t, s.GetBackendTarget(t))
}

// Destroy releases every cached backend target and resets all state.
// The system is unusable afterwards.
func (s *TargetSystem) Destroy() {
	for uid, bt := range s.backendTargets {
		if t, ok := s.targets[uid]; ok {
			s.adapter.DestroyTarget(t, bt)
		}
		delete(s.backendTargets, uid)
	}
	s.surfaceTargets = make(map[Surface]*RenderTarget)
	s.targets = make(map[int32]*RenderTarget)
	s.stack = nil
	s.root = nil
	s.active = nil
	s.started = false
}

// watchSource drops the cached target and its backend resources when
// the backing source is released, so per-surface GPU resources follow
// the surface's lifetime.
func (s *TargetSystem) watchSource(key Surface, src *stage.TextureSource) {
	src.OnDestroy(func() {
		t, ok := s.surfaceTargets[key]
		if !ok {
			return
		}
		delete(s.surfaceTargets, key)
		delete(s.targets, t.uid)
		if bt, ok := s.backendTargets[t.uid]; ok {
			s.adapter.DestroyTarget(t, bt)
			delete(s.backendTargets, t.uid)
		}
	})
}
