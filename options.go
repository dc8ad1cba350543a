// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch/material"
	"github.com/gogpu/batch/render"
)

// Resolver turns a base material and state overrides into a bindable
// state bundle. *material.Resolver implements it.
type Resolver interface {
	Default() *material.Material
	Resolve(base *material.Material, blend *gputypes.BlendState, depth *hal.DepthStencilState,
		raster *gputypes.PrimitiveState) (*render.StateBundle, error)
}

// ManagerOption configures a Manager during creation.
//
// Example:
//
//	m, err := batch.NewManager(dev,
//	    batch.WithWorkers(2),
//	    batch.WithResolver(material.NewResolver(material.WithCapacity(64))),
//	)
type ManagerOption func(*managerOptions)

type managerOptions struct {
	workers        int
	resolver       Resolver
	batchCapacity  int
	combineBatches bool
}

func defaultManagerOptions() managerOptions {
	return managerOptions{
		workers:        0, // GOMAXPROCS
		batchCapacity:  64,
		combineBatches: true,
	}
}

// WithWorkers sets the number of Prepare workers. 0 uses GOMAXPROCS.
func WithWorkers(n int) ManagerOption {
	return func(o *managerOptions) {
		o.workers = n
	}
}

// WithResolver sets the material resolver. The default is
// material.NewResolver().
func WithResolver(r Resolver) ManagerOption {
	return func(o *managerOptions) {
		o.resolver = r
	}
}

// WithBatchCapacity sets the initial draw call capacity of new batches.
func WithBatchCapacity(n int) ManagerOption {
	return func(o *managerOptions) {
		if n > 0 {
			o.batchCapacity = n
		}
	}
}

// WithBatchCombining enables or disables merging equal batches in
// Frame.Prepare. It is enabled by default.
func WithBatchCombining(on bool) ManagerOption {
	return func(o *managerOptions) {
		o.combineBatches = on
	}
}

// RendererOption configures a Renderer during creation.
type RendererOption func(*Renderer)

// WithLayer sets the initial layer.
func WithLayer(layer int) RendererOption {
	return func(r *Renderer) { r.layer = layer }
}

// WithWorldSpace sets whether draw calls are in world space by default.
func WithWorldSpace(on bool) RendererOption {
	return func(r *Renderer) { r.setFlag(FlagWorldSpace, on) }
}

// WithDepth enables the depth buffer. zOnly makes the depth test the only
// ordering, prePass adds a depth pre-pass.
func WithDepth(zOnly, prePass bool) RendererOption {
	return func(r *Renderer) {
		r.setFlag(FlagUseZBuffer, true)
		r.setFlag(FlagZBufferOnlySorting, zOnly)
		r.setFlag(FlagDepthPrePass, prePass)
	}
}

// WithBlend sets the blend state.
func WithBlend(b *gputypes.BlendState) RendererOption {
	return func(r *Renderer) { r.blend = b }
}

// WithSamplers sets the samplers of texture slots 0 and 1.
func WithSamplers(s1, s2 *hal.SamplerDescriptor) RendererOption {
	return func(r *Renderer) { r.samplers = render.SamplerPair{s1, s2} }
}

// WithMaterial sets a custom base material.
func WithMaterial(m *material.Material) RendererOption {
	return func(r *Renderer) { r.material = m }
}

// WithSorter selects declarative sorting with s.
func WithSorter(s *Sorter) RendererOption {
	return func(r *Renderer) {
		r.sorter = s
		r.sortMode = SortDeclarative
	}
}

// WithAutoIncrementLayer makes every draw go to a new layer.
func WithAutoIncrementLayer() RendererOption {
	return func(r *Renderer) { r.autoIncrementLayer = true }
}
