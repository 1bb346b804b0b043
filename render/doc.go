// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render implements the render-target subsystem of stage.
//
// The package multiplexes logical render surfaces (native canvases,
// textures, explicit render targets) onto backend GPU resources and
// exposes a stack-based push/pop model for nested rendering:
//
//	sys.Start(canvas, true, gputypes.Color{})  // frame root, stack = [root]
//	sys.Push(texture, true, gputypes.Color{})  // redirect into the texture
//	// ... draw ...
//	sys.Pop()                                  // resume root, contents kept
//
// Surfaces resolve to RenderTarget entities (cached by surface identity)
// and RenderTargets resolve to backend resources through the Adapter
// interface (cached by target uid). Both lookups are idempotent: backend
// resources are created exactly once per target, regardless of how often
// a surface is bound.
//
// The package owns no GPU code itself. Backends (backend/software,
// backend/webgpu) provide Adapter implementations that realize targets,
// build pass descriptors, and issue copies.
package render
