// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"reflect"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"
)

// Texture is an opaque handle to a GPU texture owned by the host.
//
// ID must be stable for the lifetime of the texture and unique among live
// textures. It defines both equality and the total order used to group
// draw calls.
type Texture interface {
	ID() uint64
	Width() uint32
	Height() uint32
	Format() gputypes.TextureFormat

	// IsDisposed reports whether the texture has been released. Disposed
	// textures are skipped at compile time and at issue time.
	IsDisposed() bool
}

// IsNil reports whether tex is absent: a nil interface or a nil pointer
// stored in one.
func IsNil(tex Texture) bool {
	if tex == nil {
		return true
	}
	v := reflect.ValueOf(tex)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// TextureUsable reports whether tex can be sampled.
func TextureUsable(tex Texture) bool {
	return !IsNil(tex) && !tex.IsDisposed()
}

// TextureInfo holds the per-slot texture metadata carried by a native batch.
type TextureInfo struct {
	Width     uint32
	Height    uint32
	HalfTexel f32.Vec2
	Format    gputypes.TextureFormat
	Traits    FormatTraits
}

// FormatTraits describes how a shader should interpret a texture format.
type FormatTraits struct {
	BytesPerPixel int
	Channels      int
	SRGB          bool
	Depth         bool
	// SingleChannel formats are sampled as alpha masks by the sprite shader.
	SingleChannel bool
}

// NewTextureInfo resolves metadata for tex. A nil texture yields the zero
// TextureInfo.
func NewTextureInfo(tex Texture) TextureInfo {
	if IsNil(tex) {
		return TextureInfo{}
	}
	w, h := tex.Width(), tex.Height()
	info := TextureInfo{
		Width:  w,
		Height: h,
		Format: tex.Format(),
		Traits: TraitsOf(tex.Format()),
	}
	if w > 0 {
		info.HalfTexel[0] = 0.5 / float32(w)
	}
	if h > 0 {
		info.HalfTexel[1] = 0.5 / float32(h)
	}
	return info
}

// TraitsOf returns the traits of the known color and depth formats.
// Unknown formats report four 8-bit channels.
func TraitsOf(format gputypes.TextureFormat) FormatTraits {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return FormatTraits{BytesPerPixel: 1, Channels: 1, SingleChannel: true}
	case gputypes.TextureFormatRGBA8UnormSrgb, gputypes.TextureFormatBGRA8UnormSrgb:
		return FormatTraits{BytesPerPixel: 4, Channels: 4, SRGB: true}
	case gputypes.TextureFormatRGBA16Float:
		return FormatTraits{BytesPerPixel: 8, Channels: 4}
	case gputypes.TextureFormatDepth24PlusStencil8, gputypes.TextureFormatDepth32Float:
		return FormatTraits{BytesPerPixel: 4, Channels: 1, Depth: true}
	default:
		return FormatTraits{BytesPerPixel: 4, Channels: 4}
	}
}
