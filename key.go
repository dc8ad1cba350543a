// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Kind is the kind of operation a batch collects.
type Kind uint8

const (
	KindSprite Kind = iota
	// KindMultiTextureSprite batches carry a state bundle per draw call and
	// ignore blend, depth and raster state in their key.
	KindMultiTextureSprite
	KindGeometry
	KindRasterShape
	KindStroke
)

func (k Kind) String() string {
	switch k {
	case KindSprite:
		return "Sprite"
	case KindMultiTextureSprite:
		return "MultiTextureSprite"
	case KindGeometry:
		return "Geometry"
	case KindRasterShape:
		return "RasterShape"
	case KindStroke:
		return "Stroke"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Flags are boolean batch settings that take part in the key.
type Flags uint8

const (
	FlagWorldSpace Flags = 1 << iota
	FlagUseZBuffer
	FlagZBufferOnlySorting
	FlagDepthPrePass
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// ExtraKind selects the variant of an ExtraKey.
type ExtraKind uint8

const (
	ExtraNone ExtraKind = iota
	ExtraMaterial
	ExtraTexture
)

// ExtraKey extends a batch key with a custom material or secondary texture.
type ExtraKey struct {
	Kind ExtraKind
	ID   uint64
}

// MaterialKey returns the extra key of a custom material.
func MaterialKey(id uint64) ExtraKey { return ExtraKey{Kind: ExtraMaterial, ID: id} }

// TextureKey returns the extra key of a secondary texture.
func TextureKey(id uint64) ExtraKey { return ExtraKey{Kind: ExtraTexture, ID: id} }

// Key identifies the batch a draw call belongs to.
//
// Keys are compared with ==. State descriptors compare by pointer, so two
// distinct descriptors with equal contents select different batches.
type Key struct {
	Kind      Kind
	Container *Frame
	Layer     int
	Flags     Flags

	Blend        *gputypes.BlendState
	DepthStencil *hal.DepthStencilState
	Raster       *gputypes.PrimitiveState
	Sampler1     *hal.SamplerDescriptor
	Sampler2     *hal.SamplerDescriptor

	Extra ExtraKey
}

// normalized returns the key as stored in the cache. Multi-texture sprite
// batches resolve blend, depth and raster state per draw call, so their
// key drops those descriptors. Samplers are bound per batch and stay.
func (k Key) normalized() Key {
	if k.Kind != KindMultiTextureSprite {
		return k
	}
	return Key{
		Kind:      k.Kind,
		Container: k.Container,
		Layer:     k.Layer,
		Flags:     k.Flags,
		Sampler1:  k.Sampler1,
		Sampler2:  k.Sampler2,
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s(layer=%d flags=%04b extra=%d:%d)", k.Kind, k.Layer, k.Flags, k.Extra.Kind, k.Extra.ID)
}
