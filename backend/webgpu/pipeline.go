// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stage"
	"github.com/gogpu/stage/blend"
)

// pipelineCacheSize bounds the number of specialized pipelines kept
// alive. Eviction destroys the pipeline; a re-request rebuilds it.
const pipelineCacheSize = 64

// compositeVertexStride is the byte size of one composite vertex:
// position (2x f32) + color (4x f32).
const compositeVertexStride = 24

// PipelineKey identifies one pipeline specialization. Pipelines vary by
// the bound target's attachment format and sample count, and by the
// active blend mode.
type PipelineKey struct {
	Format      gputypes.TextureFormat
	SampleCount int
	Blend       blend.Mode
}

// PipelineCache builds and caches composite render pipelines, one per
// (format, sample count, blend mode) combination. It also implements
// render.PipelineState: the target system feeds it the sample count of
// every bound target, so Get specializes against the live target.
//
// Pipelines for advanced blend modes carry a backdrop texture and
// sampler in their bind group layout; renderers bind the previous pass
// contents there. Normal-mode pipelines blend fixed-function and need
// only the uniform binding.
type PipelineCache struct {
	device hal.Device

	cache *lru.Cache[PipelineKey, hal.RenderPipeline]

	// shaders holds the compiled module per blend mode, built lazily and
	// kept for the cache's lifetime (modules are cheap, pipelines are
	// not).
	shaders map[blend.Mode]hal.ShaderModule

	uniformLayout  hal.BindGroupLayout
	backdropLayout hal.BindGroupLayout
	normalLayout   hal.PipelineLayout
	advancedLayout hal.PipelineLayout

	// sampleCount is the sample count of the currently bound target,
	// pushed by the target system on every bind.
	sampleCount int
}

// NewPipelineCache creates a pipeline cache on the given device.
func NewPipelineCache(device hal.Device) (*PipelineCache, error) {
	pc := &PipelineCache{
		device:      device,
		shaders:     make(map[blend.Mode]hal.ShaderModule),
		sampleCount: sampleCountNone,
	}
	cache, err := lru.NewWithEvict(pipelineCacheSize, func(key PipelineKey, p hal.RenderPipeline) {
		stage.Logger().Debug("webgpu: evicting pipeline",
			"format", key.Format, "samples", key.SampleCount, "blend", key.Blend.String())
		device.DestroyRenderPipeline(p)
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline cache: %w", err)
	}
	pc.cache = cache

	if err := pc.initLayouts(); err != nil {
		pc.Release()
		return nil, err
	}
	return pc, nil
}

// SetMultisample records the sample count of the bound target. Part of
// the render.PipelineState contract.
func (pc *PipelineCache) SetMultisample(sampleCount int) {
	pc.sampleCount = sampleCount
}

// Get returns the pipeline for the given attachment format and blend
// mode at the currently bound sample count, building it on first use.
func (pc *PipelineCache) Get(format gputypes.TextureFormat, mode blend.Mode) (hal.RenderPipeline, error) {
	key := PipelineKey{Format: format, SampleCount: pc.sampleCount, Blend: mode}
	if p, ok := pc.cache.Get(key); ok {
		return p, nil
	}
	p, err := pc.build(key)
	if err != nil {
		return nil, err
	}
	pc.cache.Add(key, p)
	return p, nil
}

// BackdropLayout returns the bind group layout of advanced-blend
// pipelines: uniform, backdrop texture, sampler. Renderers use it to
// create their draw-time bind groups.
func (pc *PipelineCache) BackdropLayout() hal.BindGroupLayout { return pc.backdropLayout }

// UniformLayout returns the bind group layout of normal-blend
// pipelines: uniform only.
func (pc *PipelineCache) UniformLayout() hal.BindGroupLayout { return pc.uniformLayout }

// Len returns the number of live pipelines, for tests and diagnostics.
func (pc *PipelineCache) Len() int { return pc.cache.Len() }

// Release destroys every cached pipeline, shader module, and layout.
func (pc *PipelineCache) Release() {
	if pc.cache != nil {
		pc.cache.Purge() // evict callback destroys each pipeline
	}
	for mode, m := range pc.shaders {
		pc.device.DestroyShaderModule(m)
		delete(pc.shaders, mode)
	}
	if pc.normalLayout != nil {
		pc.device.DestroyPipelineLayout(pc.normalLayout)
		pc.normalLayout = nil
	}
	if pc.advancedLayout != nil {
		pc.device.DestroyPipelineLayout(pc.advancedLayout)
		pc.advancedLayout = nil
	}
	if pc.uniformLayout != nil {
		pc.device.DestroyBindGroupLayout(pc.uniformLayout)
		pc.uniformLayout = nil
	}
	if pc.backdropLayout != nil {
		pc.device.DestroyBindGroupLayout(pc.backdropLayout)
		pc.backdropLayout = nil
	}
}

func (pc *PipelineCache) initLayouts() error {
	uniformLayout, err := pc.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "composite_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create composite uniform layout: %w", err)
	}
	pc.uniformLayout = uniformLayout

	backdropLayout, err := pc.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "composite_backdrop_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create composite backdrop layout: %w", err)
	}
	pc.backdropLayout = backdropLayout

	normalLayout, err := pc.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "composite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{pc.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create composite pipeline layout: %w", err)
	}
	pc.normalLayout = normalLayout

	advancedLayout, err := pc.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "composite_backdrop_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{pc.backdropLayout},
	})
	if err != nil {
		return fmt.Errorf("create composite backdrop pipeline layout: %w", err)
	}
	pc.advancedLayout = advancedLayout
	return nil
}

// build compiles the shader for the key's blend mode (if not yet done)
// and creates the specialized pipeline.
func (pc *PipelineCache) build(key PipelineKey) (hal.RenderPipeline, error) {
	shader, ok := pc.shaders[key.Blend]
	if !ok {
		var err error
		shader, err = compileShader(pc.device,
			"composite_"+key.Blend.String(), compositeShaderWGSL(key.Blend))
		if err != nil {
			return nil, err
		}
		pc.shaders[key.Blend] = shader
	}

	layout := pc.normalLayout
	if key.Blend.Advanced() {
		layout = pc.advancedLayout
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := pc.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "composite_" + key.Blend.String(),
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    compositeVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    key.Format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: uint32(key.SampleCount),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create composite pipeline (%s): %w", key.Blend, err)
	}
	return pipeline, nil
}

// compositeVertexLayout returns the vertex buffer layout of the
// composite pipeline.
func compositeVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: compositeVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1}, // color
			},
		},
	}
}

// compositeShaderWGSL assembles the WGSL source for the given blend
// mode. Normal mode relies on fixed-function blending; advanced modes
// sample the backdrop and splice in the mode's snippet.
func compositeShaderWGSL(mode blend.Mode) string {
	if !mode.Advanced() {
		return compositeShaderNormal
	}
	return fmt.Sprintf(compositeShaderAdvanced, mode.WGSL())
}

const compositeShaderCommon = `
struct Uniforms {
    // viewport width, height in pixels; zw unused
    viewport: vec4<f32>,
};

@group(0) @binding(0) var<uniform> u: Uniforms;

struct VertexIn {
    @location(0) pos: vec2<f32>,
    @location(1) color: vec4<f32>,
};

struct VertexOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) color: vec4<f32>,
    @location(1) screen_uv: vec2<f32>,
};

@vertex
fn vs_main(in: VertexIn) -> VertexOut {
    var out: VertexOut;
    let ndc = vec2<f32>(
        in.pos.x / u.viewport.x * 2.0 - 1.0,
        1.0 - in.pos.y / u.viewport.y * 2.0,
    );
    out.pos = vec4<f32>(ndc, 0.0, 1.0);
    out.color = in.color;
    out.screen_uv = in.pos / u.viewport.xy;
    return out;
}
`

const compositeShaderNormal = compositeShaderCommon + `
@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    return in.color;
}
`

const compositeShaderAdvanced = compositeShaderCommon + `
@group(0) @binding(1) var backdrop_tex: texture_2d<f32>;
@group(0) @binding(2) var backdrop_samp: sampler;

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    let src = in.color;
    let dst = textureSample(backdrop_tex, backdrop_samp, in.screen_uv);
    var blended = src;
%s
    return blended;
}
`
