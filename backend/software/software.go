// Package software provides the CPU pixmap realization of the
// render-target subsystem. It backs targets with *image.RGBA storage,
// applies clear/load pass semantics directly, and simulates 4x
// multisampling with same-size intermediate pixmaps that resolve into
// their attachment on pass end.
//
// The backend is fully headless, which makes it the reference
// implementation for the render-target contract and the backend used by
// the package tests and examples.
package software

import (
	"github.com/gogpu/stage/backend"
	"github.com/gogpu/stage/render"
)

// Backend is the CPU-based rendering backend.
type Backend struct {
	initialized bool
	adapter     *Adapter
}

// init registers the software backend on package import.
func init() {
	backend.Register(backend.BackendSoftware, func() backend.RenderBackend {
		return New()
	})
}

// New creates a software rendering backend.
func New() *Backend {
	return &Backend{adapter: NewAdapter()}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendSoftware
}

// Init initializes the backend. The software backend has no device to
// acquire, so this only flips the initialized flag.
func (b *Backend) Init() error {
	b.initialized = true
	return nil
}

// Close releases all backend resources.
func (b *Backend) Close() {
	b.adapter.release()
	b.initialized = false
}

// Adapter returns the render-target adapter for this backend.
func (b *Backend) Adapter() render.Adapter {
	return b.adapter
}
