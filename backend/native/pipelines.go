// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch/render"
)

// viewportUniformSize is two column-major mat4x4<f32>: world_to_clip and
// screen_to_clip.
const viewportUniformSize = 2 * 16 * 4

// defaultSampler is used for texture slots whose SamplerPair entry is nil.
var defaultSampler = hal.SamplerDescriptor{
	Label:        "batch_default_sampler",
	AddressModeU: gputypes.AddressModeClampToEdge,
	AddressModeV: gputypes.AddressModeClampToEdge,
	AddressModeW: gputypes.AddressModeClampToEdge,
	MagFilter:    gputypes.FilterModeLinear,
	MinFilter:    gputypes.FilterModeLinear,
	MipmapFilter: gputypes.FilterModeLinear,
}

// pipelineCache creates one render pipeline per state bundle and shares the
// bind group layouts between them. Samplers are cached per descriptor.
type pipelineCache struct {
	mu     sync.Mutex
	device hal.Device
	format gputypes.TextureFormat

	viewportLayout hal.BindGroupLayout
	textureLayout  hal.BindGroupLayout
	pipeLayout     hal.PipelineLayout

	shaders   map[*render.StateBundle]hal.ShaderModule
	pipelines map[*render.StateBundle]hal.RenderPipeline
	samplers  map[*hal.SamplerDescriptor]hal.Sampler
}

func newPipelineCache(device hal.Device, format gputypes.TextureFormat) *pipelineCache {
	return &pipelineCache{
		device:    device,
		format:    format,
		shaders:   make(map[*render.StateBundle]hal.ShaderModule),
		pipelines: make(map[*render.StateBundle]hal.RenderPipeline),
		samplers:  make(map[*hal.SamplerDescriptor]hal.Sampler),
	}
}

// ensureLayouts creates the shared layouts.
//
//	Group 0: viewport uniform (vertex)
//	Group 1: tex1, samp1, tex2, samp2 (fragment)
//
// The caller must hold c.mu.
func (c *pipelineCache) ensureLayouts() error {
	if c.pipeLayout != nil {
		return nil
	}

	viewportLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "batch_viewport_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("native: create viewport layout: %w", err)
	}

	entries := make([]gputypes.BindGroupLayoutEntry, 0, 4)
	for slot := range uint32(2) {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    slot * 2,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    slot*2 + 1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			})
	}
	textureLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "batch_texture_layout",
		Entries: entries,
	})
	if err != nil {
		c.device.DestroyBindGroupLayout(viewportLayout)
		return fmt.Errorf("native: create texture layout: %w", err)
	}

	pipeLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "batch_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{viewportLayout, textureLayout},
	})
	if err != nil {
		c.device.DestroyBindGroupLayout(textureLayout)
		c.device.DestroyBindGroupLayout(viewportLayout)
		return fmt.Errorf("native: create pipeline layout: %w", err)
	}

	c.viewportLayout = viewportLayout
	c.textureLayout = textureLayout
	c.pipeLayout = pipeLayout
	return nil
}

// pipeline returns the render pipeline for bundle, creating it on first use.
func (c *pipelineCache) pipeline(bundle *render.StateBundle) (hal.RenderPipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pipelines[bundle]; ok {
		return p, nil
	}
	if len(bundle.Shader) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoShader, bundle.Label)
	}
	if err := c.ensureLayouts(); err != nil {
		return nil, err
	}

	shader, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  bundle.Label,
		Source: hal.ShaderSource{SPIRV: bundle.Shader},
	})
	if err != nil {
		return nil, fmt.Errorf("native: compile shader %q: %w", bundle.Label, err)
	}

	primitive := gputypes.PrimitiveState{
		Topology: gputypes.PrimitiveTopologyTriangleList,
		CullMode: gputypes.CullModeNone,
	}
	if bundle.Raster != nil {
		primitive = *bundle.Raster
	}

	var fragment *hal.FragmentState
	if bundle.FragmentEntry != "" {
		fragment = &hal.FragmentState{
			Module:     shader,
			EntryPoint: bundle.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    c.format,
					Blend:     bundle.Blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		}
	}

	p, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  bundle.Label,
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: bundle.VertexEntry,
			Buffers:    []gputypes.VertexBufferLayout{render.InstanceLayout()},
		},
		Fragment:     fragment,
		DepthStencil: bundle.DepthStencil,
		Primitive:    primitive,
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		c.device.DestroyShaderModule(shader)
		return nil, fmt.Errorf("native: create pipeline %q: %w", bundle.Label, err)
	}

	c.shaders[bundle] = shader
	c.pipelines[bundle] = p
	Logger().Debug("native: pipeline created", "bundle", bundle.ID, "label", bundle.Label)
	return p, nil
}

// sampler returns the GPU sampler for desc, or the default sampler when
// desc is nil.
func (c *pipelineCache) sampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	if desc == nil {
		desc = &defaultSampler
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.samplers[desc]; ok {
		return s, nil
	}
	s, err := c.device.CreateSampler(desc)
	if err != nil {
		return nil, fmt.Errorf("native: create sampler %q: %w", desc.Label, err)
	}
	c.samplers[desc] = s
	return s, nil
}

// layouts returns the viewport and texture bind group layouts.
func (c *pipelineCache) layouts() (viewport, texture hal.BindGroupLayout, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLayouts(); err != nil {
		return nil, nil, err
	}
	return c.viewportLayout, c.textureLayout, nil
}

func (c *pipelineCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pipelines)
}

// destroy releases all GPU objects in reverse creation order.
func (c *pipelineCache) destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for b, p := range c.pipelines {
		c.device.DestroyRenderPipeline(p)
		delete(c.pipelines, b)
	}
	for b, s := range c.shaders {
		c.device.DestroyShaderModule(s)
		delete(c.shaders, b)
	}
	for d, s := range c.samplers {
		c.device.DestroySampler(s)
		delete(c.samplers, d)
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.textureLayout != nil {
		c.device.DestroyBindGroupLayout(c.textureLayout)
		c.textureLayout = nil
	}
	if c.viewportLayout != nil {
		c.device.DestroyBindGroupLayout(c.viewportLayout)
		c.viewportLayout = nil
	}
}
