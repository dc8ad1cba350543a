// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/batch/render"
)

// NativeBatch is one GPU-issuable run of instance records sharing a texture
// set and state bundle.
type NativeBatch struct {
	Bundle   *render.StateBundle
	Samplers render.SamplerPair
	Textures TextureSet

	// Info holds the metadata of the primary and secondary texture.
	Info [2]render.TextureInfo

	Range render.VertexRange

	// Valid is cleared when a texture of the set was disposed between
	// Prepare and Issue. Invalid native batches are skipped.
	Valid bool
}

// InstanceCount returns the number of instances drawn by the native batch.
func (n *NativeBatch) InstanceCount() int { return n.Range.Count }

// issueState tracks device bindings across the batches of one Issue call
// so redundant binds are skipped.
type issueState struct {
	bundle   *render.StateBundle
	samplers render.SamplerPair
	tex      [2]uint64
	texBound [2]bool
	bound    bool
}

func (st *issueState) bindState(dev render.Device, bundle *render.StateBundle, samplers render.SamplerPair) error {
	if st.bound && st.bundle == bundle && st.samplers == samplers {
		return nil
	}
	if err := dev.BindState(bundle, samplers); err != nil {
		return fmt.Errorf("batch: bind state: %w", err)
	}
	st.bundle, st.samplers, st.bound = bundle, samplers, true
	return nil
}

func (st *issueState) bindTextures(dev render.Device, set TextureSet) error {
	for slot, tex := range [2]render.Texture{set.Primary, set.Secondary} {
		id := textureID(tex)
		if st.texBound[slot] && st.tex[slot] == id {
			continue
		}
		if render.IsNil(tex) {
			tex = nil
		}
		if err := dev.BindTextureSlot(slot, tex); err != nil {
			return fmt.Errorf("batch: bind texture slot %d: %w", slot, err)
		}
		st.tex[slot], st.texBound[slot] = id, true
	}
	return nil
}

// depthPrePassWarned makes the missing depth buffer warning fire once per
// process.
var depthPrePassWarned atomic.Bool

// depthPrePassUsable reports whether a depth pre-pass with bundle can run
// on dev, logging a single warning the first time it cannot.
func depthPrePassUsable(dev render.Device, bundle *render.StateBundle) bool {
	dt, ok := dev.(render.DepthTarget)
	if ok && dt.HasDepthBuffer() && bundle != nil && bundle.DepthOnly != nil {
		return true
	}
	if depthPrePassWarned.CompareAndSwap(false, true) {
		Logger().Warn("batch: depth pre-pass requested without a usable depth buffer, skipping pre-pass",
			"hasDepthBuffer", ok && dt.HasDepthBuffer(),
			"hasDepthOnlyBundle", bundle != nil && bundle.DepthOnly != nil)
	}
	return false
}

// issueNatives submits the native batches of b: first the depth pre-pass
// when requested and possible, then the color pass.
func issueNatives(b *Batch, st *issueState) error {
	dev := b.device

	for i := range b.natives {
		n := &b.natives[i]
		if !render.TextureUsable(n.Textures.Primary) ||
			(!render.IsNil(n.Textures.Secondary) && n.Textures.Secondary.IsDisposed()) {
			n.Valid = false
			b.invalidNatives++
			Logger().Warn("batch: texture disposed before issue, skipping native batch",
				"layer", b.key.Layer, "instances", n.Range.Count)
		}
	}

	if b.key.Flags.Has(FlagDepthPrePass) {
		for i := range b.natives {
			n := &b.natives[i]
			if !n.Valid || !depthPrePassUsable(dev, n.Bundle) {
				continue
			}
			if err := drawNative(dev, st, n, n.Bundle.DepthOnly); err != nil {
				return err
			}
		}
	}

	for i := range b.natives {
		n := &b.natives[i]
		if !n.Valid {
			continue
		}
		if err := drawNative(dev, st, n, n.Bundle); err != nil {
			return err
		}
	}
	return nil
}

func drawNative(dev render.Device, st *issueState, n *NativeBatch, bundle *render.StateBundle) error {
	if err := st.bindState(dev, bundle, n.Samplers); err != nil {
		return err
	}
	if err := st.bindTextures(dev, n.Textures); err != nil {
		return err
	}
	if err := dev.SubmitInstancedDraw(bundle.Topology(), n.Range, n.Range.Count); err != nil {
		return fmt.Errorf("batch: submit %d instances: %w", n.Range.Count, err)
	}
	return nil
}
