// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"github.com/gogpu/batch/render"
	"golang.org/x/image/math/f32"
)

// Bounds is a rectangle in normalized texture coordinates.
type Bounds struct {
	Min, Max f32.Vec2
}

// FullTexture covers the whole texture.
var FullTexture = Bounds{Max: f32.Vec2{1, 1}}

// TextureSet is the one or two textures sampled by a draw call.
//
// Sets are equal when both slots hold the same texture id. A nil slot has
// id 0.
type TextureSet struct {
	Primary   render.Texture
	Secondary render.Texture
}

// Textures returns a set holding only tex.
func Textures(tex render.Texture) TextureSet {
	return TextureSet{Primary: tex}
}

func textureID(t render.Texture) uint64 {
	if render.IsNil(t) {
		return 0
	}
	return t.ID()
}

// Equal reports whether s and o reference the same textures.
func (s TextureSet) Equal(o TextureSet) bool {
	return textureID(s.Primary) == textureID(o.Primary) &&
		textureID(s.Secondary) == textureID(o.Secondary)
}

// Compare orders texture sets by primary id, then secondary id.
func (s TextureSet) Compare(o TextureSet) int {
	if c := compareUint64(textureID(s.Primary), textureID(o.Primary)); c != 0 {
		return c
	}
	return compareUint64(textureID(s.Secondary), textureID(o.Secondary))
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SortKey orders draw calls inside a batch.
type SortKey struct {
	Tags  Tags
	Order float32
}

// WorldSpace overrides the world-space flag of the batch for one draw call.
type WorldSpace uint8

const (
	// WorldSpaceInherit uses the flag of the batch key.
	WorldSpaceInherit WorldSpace = iota
	WorldSpaceOn
	WorldSpaceOff
)

// DrawCall describes one textured quad.
//
// Colors are premultiplied RGBA. The quad is Region of the primary texture
// scaled by Scale and rotated by Rotation radians around Origin, which is
// given in normalized quad coordinates.
type DrawCall struct {
	Position f32.Vec2
	Rotation float32
	Scale    f32.Vec2
	Origin   f32.Vec2

	MultiplyColor f32.Vec4
	AddColor      f32.Vec4

	Textures TextureSet
	Region   Bounds

	// Region2 is sampled from the secondary texture when HasRegion2 is set.
	Region2    Bounds
	HasRegion2 bool

	UserData f32.Vec4

	Sort       SortKey
	WorldSpace WorldSpace
}

// NewDrawCall returns a draw call of the whole of tex at position with unit
// scale and an opaque white multiply color.
func NewDrawCall(tex render.Texture, position f32.Vec2) DrawCall {
	return DrawCall{
		Position:      position,
		Scale:         f32.Vec2{1, 1},
		MultiplyColor: f32.Vec4{1, 1, 1, 1},
		Textures:      Textures(tex),
		Region:        FullTexture,
	}
}

// IsValid reports whether the draw call has a primary texture.
func (dc *DrawCall) IsValid() bool {
	return !render.IsNil(dc.Textures.Primary)
}
