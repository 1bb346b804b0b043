package backend

import (
	"errors"

	"github.com/gogpu/stage/render"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU pixmap backend.
	BackendSoftware = "software"
	// BackendWebGPU is the name of the gogpu/wgpu HAL backend.
	BackendWebGPU = "webgpu"
)

// RenderBackend is the interface for rendering backends. It abstracts
// the realization of render targets, allowing the engine to support
// multiple backends (software, webgpu) behind one render.Adapter
// contract.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type RenderBackend interface {
	// Name returns the backend identifier (e.g., "software", "webgpu").
	Name() string

	// Init initializes the backend.
	// This should be called before any rendering operations.
	Init() error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()

	// Adapter returns the render-target adapter backed by this
	// backend's device. The adapter is only valid after Init.
	Adapter() render.Adapter
}
