// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch/material"
	"github.com/gogpu/batch/render"
)

// Renderer is an immediate-mode drawing context bound to one frame.
//
// It holds the current render state and a Cache of open batches, so
// consecutive draws with the same state land in the same batch. A Renderer
// is not safe for concurrent use; create one per goroutine or draw context.
// It must not outlive its frame: after Manager.EndFrame every call fails
// with ErrStaleFrame.
type Renderer struct {
	frame      *Frame
	frameIndex uint64
	resolver   Resolver
	cache      Cache

	layer              int
	autoIncrementLayer bool
	flags              Flags

	blend        *gputypes.BlendState
	depthStencil *hal.DepthStencilState
	raster       *gputypes.PrimitiveState
	samplers     render.SamplerPair
	material     *material.Material

	lowPriorityMaterialOrdering bool

	sortMode SortMode
	sorter   *Sorter
	params   Parameters
}

// NewRenderer creates a renderer drawing into f.
func NewRenderer(f *Frame, opts ...RendererOption) (*Renderer, error) {
	if f == nil {
		return nil, ErrNilContainer
	}
	idx := f.Index()
	if idx == 0 {
		return nil, ErrStaleFrame
	}
	r := &Renderer{
		frame:      f,
		frameIndex: idx,
		resolver:   f.manager.resolver,
		flags:      FlagWorldSpace,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Frame returns the frame the renderer draws into.
func (r *Renderer) Frame() *Frame { return r.frame }

// Cache returns the renderer's batch cache.
func (r *Renderer) Cache() *Cache { return &r.cache }

func (r *Renderer) setFlag(f Flags, on bool) {
	if on {
		r.flags |= f
	} else {
		r.flags &^= f
	}
}

// Layer returns the current layer.
func (r *Renderer) Layer() int { return r.layer }

// SetLayer sets the layer of subsequent draws.
func (r *Renderer) SetLayer(layer int) { r.layer = layer }

// SetAutoIncrementLayer makes every draw advance the layer by one.
func (r *Renderer) SetAutoIncrementLayer(on bool) { r.autoIncrementLayer = on }

// SetWorldSpace sets whether draw calls are in world space by default.
func (r *Renderer) SetWorldSpace(on bool) { r.setFlag(FlagWorldSpace, on) }

// SetUseZBuffer enables depth testing. Draw calls get z = SortKey.Order.
func (r *Renderer) SetUseZBuffer(on bool) { r.setFlag(FlagUseZBuffer, on) }

// SetZBufferOnlySorting leaves ordering to the depth buffer and only groups
// by texture. Effective together with SetUseZBuffer.
func (r *Renderer) SetZBufferOnlySorting(on bool) { r.setFlag(FlagZBufferOnlySorting, on) }

// SetDepthPrePass requests a depth-only pass before the color pass.
func (r *Renderer) SetDepthPrePass(on bool) { r.setFlag(FlagDepthPrePass, on) }

// Flags returns the current key flags.
func (r *Renderer) Flags() Flags { return r.flags }

// SetBlend sets the blend state. Nil uses the material default.
func (r *Renderer) SetBlend(b *gputypes.BlendState) { r.blend = b }

// SetDepthStencil sets the depth-stencil state.
func (r *Renderer) SetDepthStencil(d *hal.DepthStencilState) { r.depthStencil = d }

// SetRaster sets the primitive state.
func (r *Renderer) SetRaster(p *gputypes.PrimitiveState) { r.raster = p }

// SetSamplers sets the samplers of texture slots 0 and 1.
func (r *Renderer) SetSamplers(s1, s2 *hal.SamplerDescriptor) {
	r.samplers = render.SamplerPair{s1, s2}
}

// SetMaterial sets a custom base material. Nil restores the resolver
// default.
func (r *Renderer) SetMaterial(m *material.Material) { r.material = m }

// SetLowPriorityMaterialOrdering makes draws with different state share a
// multi-texture sprite batch per layer, ordered by sort key first and state
// second.
func (r *Renderer) SetLowPriorityMaterialOrdering(on bool) { r.lowPriorityMaterialOrdering = on }

// SetSortMode sets how new batches sort their draw calls.
func (r *Renderer) SetSortMode(m SortMode) { r.sortMode = m }

// SetSorter selects declarative sorting with s. Nil restores
// SortOrderThenTexture.
func (r *Renderer) SetSorter(s *Sorter) {
	r.sorter = s
	if s != nil {
		r.sortMode = SortDeclarative
	} else if r.sortMode == SortDeclarative {
		r.sortMode = SortOrderThenTexture
	}
}

// Parameters returns the material parameter overrides applied to new
// batches. Batches only match when their parameters are equal.
func (r *Renderer) Parameters() *Parameters { return &r.params }

// Key returns the key the next draw would use.
func (r *Renderer) Key() Key {
	kind := KindSprite
	if r.lowPriorityMaterialOrdering {
		kind = KindMultiTextureSprite
	}
	k := Key{
		Kind:         kind,
		Container:    r.frame,
		Layer:        r.layer,
		Flags:        r.flags,
		Blend:        r.blend,
		DepthStencil: r.depthStencil,
		Raster:       r.raster,
		Sampler1:     r.samplers[0],
		Sampler2:     r.samplers[1],
	}
	if r.material != nil {
		k.Extra = MaterialKey(r.material.ID())
	}
	return k
}

func (r *Renderer) checkFrame() error {
	if r.frame.Index() != r.frameIndex {
		return ErrStaleFrame
	}
	return nil
}

func (r *Renderer) resolve() (*render.StateBundle, error) {
	base := r.material
	if base == nil {
		base = r.resolver.Default()
	}
	bundle, err := r.resolver.Resolve(base, r.blend, r.depthStencil, r.raster)
	if err != nil {
		return nil, fmt.Errorf("batch: resolve material %q: %w", base.Name(), err)
	}
	return bundle, nil
}

// Acquire returns the open batch for the current state, creating it on a
// cache miss.
func (r *Renderer) Acquire() (*Batch, error) {
	return r.AcquireKey(r.Key())
}

// AcquireKey returns the open batch for key, creating it on a cache miss.
// A nil key.Container means the renderer's frame.
//
// A batch pushed out of the cache is finalized; later appends to it fail
// with ErrBatchFinalized.
func (r *Renderer) AcquireKey(key Key) (*Batch, error) {
	if err := r.checkFrame(); err != nil {
		return nil, err
	}
	if key.Container == nil {
		key.Container = r.frame
	}
	if key.Container != r.frame {
		return nil, fmt.Errorf("%w: key targets another frame", ErrStaleFrame)
	}

	key = key.normalized()

	if b, ok := r.cache.Lookup(key, &r.params); ok && !b.IsFinalized() {
		return b, nil
	}

	var bundle *render.StateBundle
	if key.Kind != KindMultiTextureSprite {
		var err error
		if bundle, err = r.resolve(); err != nil {
			return nil, err
		}
	}

	b, err := r.frame.NewBatch(key, BatchOptions{
		Bundle:     bundle,
		Samplers:   render.SamplerPair{key.Sampler1, key.Sampler2},
		Parameters: &r.params,
		Sort:       r.sortMode,
		Sorter:     r.sorter,
	})
	if err != nil {
		return nil, err
	}

	if evicted := r.cache.Insert(key, b); evicted != nil && !evicted.IsFinalized() {
		evicted.evicted = true
		evicted.Finalize()
	}
	return b, nil
}

// Draw queues dc with the current state.
func (r *Renderer) Draw(dc DrawCall) error {
	b, err := r.Acquire()
	if err != nil {
		return err
	}
	var bundle *render.StateBundle
	if b.key.Kind == KindMultiTextureSprite {
		if bundle, err = r.resolve(); err != nil {
			return err
		}
	}
	if err := b.appendWithBundle(dc, bundle); err != nil {
		return err
	}
	r.advanceLayer()
	return nil
}

// DrawBatch queues every draw call of dcs with the current state.
func (r *Renderer) DrawBatch(dcs []DrawCall) error {
	if len(dcs) == 0 {
		return nil
	}
	b, err := r.Acquire()
	if err != nil {
		return err
	}
	if b.key.Kind == KindMultiTextureSprite {
		bundle, err := r.resolve()
		if err != nil {
			return err
		}
		for _, dc := range dcs {
			if err := b.appendWithBundle(dc, bundle); err != nil {
				return err
			}
		}
	} else if err := b.AppendAll(dcs); err != nil {
		return err
	}
	r.advanceLayer()
	return nil
}

// Reserve reserves n draw call slots in the batch for the current state.
func (r *Renderer) Reserve(n int) (*Reservation, error) {
	b, err := r.Acquire()
	if err != nil {
		return nil, err
	}
	res, err := b.Reserve(n)
	if err != nil {
		return nil, err
	}
	if b.key.Kind == KindMultiTextureSprite && n > 0 {
		bundle, err := r.resolve()
		if err != nil {
			return nil, err
		}
		for i := range n {
			b.bundles[res.start+i] = bundle
		}
	}
	r.advanceLayer()
	return res, nil
}

// Flush finalizes every cached batch and clears the cache.
func (r *Renderer) Flush() {
	for _, b := range r.cache.Batches() {
		b.Finalize()
	}
	r.cache.Clear()
}

func (r *Renderer) advanceLayer() {
	if r.autoIncrementLayer {
		r.layer++
	}
}
