// Package stage provides a 2D scene-graph rendering engine for the GoGPU
// ecosystem, built around a backend-independent render-target subsystem.
//
// # Overview
//
// Drawing in stage always happens into a render target: the window surface,
// an offscreen texture, or an explicitly constructed target. The render
// package multiplexes these logical destinations onto backend GPU resources
// and exposes a push/pop stack so that filters and render-to-texture effects
// can temporarily redirect output and reliably restore the previous target.
//
// # Architecture
//
// The module is organized into:
//   - Public data model: Texture, TextureSource, Matrix (this package)
//   - render: RenderTarget entity, TargetSystem core, backend Adapter contract
//   - backend: backend registry and selection (webgpu > software)
//   - backend/software: CPU pixmap realization, used headless and in tests
//   - backend/webgpu: gogpu/wgpu HAL realization with MSAA resolve targets
//   - blend: blend-mode shader snippet data consumed by the webgpu backend
//
// # Quick Start
//
//	sys := render.NewTargetSystem(softwareBackend.Adapter(), render.SystemOptions{})
//	root := sys.Start(canvasTexture, true, gputypes.Color{})
//	// ... draw into root ...
//	sys.Push(offscreen, true, gputypes.Color{})
//	// ... draw into the offscreen texture ...
//	sys.Pop() // resume root, previous contents preserved
package stage
