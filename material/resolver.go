// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package material

import (
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch/internal/cache"
	"github.com/gogpu/batch/render"
)

// DefaultCapacity is the default number of state bundles a Resolver keeps.
const DefaultCapacity = 256

// resolveKey is the 4-tuple a bundle is cached on. All fields compare by
// pointer.
type resolveKey struct {
	base   *Material
	blend  *gputypes.BlendState
	depth  *hal.DepthStencilState
	raster *gputypes.PrimitiveState
}

// Resolver turns a base material plus blend, depth and raster overrides into
// concrete state bundles, caching each combination.
//
// Resolver is safe for concurrent use.
type Resolver struct {
	cache      *cache.Cache[resolveKey, *render.StateBundle]
	def        *Material
	nextBundle atomic.Uint64

	// premultiplied is used when no blend override is given.
	premultiplied gputypes.BlendState
}

// Option configures a Resolver.
type Option func(*resolverOptions)

type resolverOptions struct {
	capacity int
	def      *Material
}

// WithCapacity bounds the number of cached bundles. 0 means unlimited.
func WithCapacity(n int) Option {
	return func(o *resolverOptions) { o.capacity = n }
}

// WithDefault sets the material used when a renderer has no custom one.
// The default is Sprite().
func WithDefault(m *Material) Option {
	return func(o *resolverOptions) { o.def = m }
}

// NewResolver creates a resolver.
func NewResolver(opts ...Option) *Resolver {
	o := resolverOptions{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.def == nil {
		o.def = Sprite()
	}
	r := &Resolver{
		cache:         cache.New[resolveKey, *render.StateBundle](o.capacity),
		def:           o.def,
		premultiplied: gputypes.BlendStatePremultiplied(),
	}
	r.cache.OnEvict(func(k resolveKey, b *render.StateBundle) {
		Logger().Debug("material: bundle evicted", "material", k.base.Name(), "bundle", b.ID)
	})
	return r
}

// Default returns the default base material.
func (r *Resolver) Default() *Material { return r.def }

// Resolve returns the state bundle for base with the given overrides. A nil
// blend means premultiplied alpha blending; nil depth and raster mean no
// depth attachment and a triangle list without culling.
//
// The same arguments always return the same *render.StateBundle while it
// stays cached.
func (r *Resolver) Resolve(base *Material, blend *gputypes.BlendState, depth *hal.DepthStencilState,
	raster *gputypes.PrimitiveState) (*render.StateBundle, error) {
	if base == nil {
		return nil, ErrNilMaterial
	}
	key := resolveKey{base: base, blend: blend, depth: depth, raster: raster}
	return r.cache.GetOrCreate(key, func() (*render.StateBundle, error) {
		return r.build(key)
	})
}

func (r *Resolver) build(k resolveKey) (*render.StateBundle, error) {
	spirv, err := k.base.SPIRV()
	if err != nil {
		return nil, err
	}

	blend := k.blend
	if blend == nil {
		blend = &r.premultiplied
	}
	bundle := &render.StateBundle{
		ID:            r.nextBundle.Add(1),
		Label:         k.base.Name(),
		Shader:        spirv,
		VertexEntry:   k.base.cfg.VertexEntry,
		FragmentEntry: k.base.cfg.FragmentEntry,
		Blend:         blend,
		DepthStencil:  k.depth,
		Raster:        k.raster,
	}
	if k.depth != nil && k.base.HasDepthVariant() {
		bundle.DepthOnly = &render.StateBundle{
			ID:            r.nextBundle.Add(1),
			Label:         k.base.Name() + "/depth",
			Shader:        spirv,
			VertexEntry:   k.base.cfg.VertexEntry,
			FragmentEntry: k.base.cfg.DepthEntry,
			DepthStencil:  k.depth,
			Raster:        k.raster,
		}
	}

	Logger().Debug("material: bundle resolved",
		"material", k.base.Name(),
		"bundle", bundle.ID,
		"depthOnly", bundle.DepthOnly != nil)
	return bundle, nil
}

// Stats reports the bundle cache counters.
type Stats struct {
	Bundles int
	Hits    uint64
	Misses  uint64
}

// Stats returns the bundle cache counters.
func (r *Resolver) Stats() Stats {
	s := r.cache.Stats()
	return Stats{Bundles: s.Len, Hits: s.Hits, Misses: s.Misses}
}

// Clear drops every cached bundle.
func (r *Resolver) Clear() {
	r.cache.Clear()
}
