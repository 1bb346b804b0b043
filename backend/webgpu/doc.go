// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package webgpu provides the GPU realization of the render-target
// subsystem on top of the wgpu HAL.
//
// Render targets become HAL textures and views: plain targets render
// into device textures registered per texture source, window-backed
// targets render into swap-chain views acquired from a SurfaceContext
// each pass. Antialiased targets get a 4x multisample buffer per color
// attachment that resolves into the single-sample view on pass end.
//
// The backend owns a frame command encoder and an LRU-cached render
// pipeline factory keyed by target format, sample count, and blend
// mode; pipeline shaders are WGSL compiled to SPIR-V through naga.
// Copies between targets run on the frame encoder outside render
// passes and require matching texture formats.
//
// The package initializes a standalone Vulkan device by default; hosts
// that already own a device hand it over with UseDeviceProvider so both
// sides share one GPU context.
package webgpu
