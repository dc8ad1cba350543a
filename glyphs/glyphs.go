// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphs

import (
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/batch"
	"github.com/gogpu/batch/render"
)

// Key identifies a rasterized glyph in an atlas.
type Key struct {
	FontID uint64
	GID    font.GID
	Size   fixed.Int26_6
}

// Glyph is an atlas entry.
type Glyph struct {
	Texture render.Texture
	Region  batch.Bounds

	// Bearing is the offset from the pen position to the top-left corner of
	// the glyph image, in atlas pixels.
	Bearing f32.Vec2

	// RasterSize is the size the glyph was rasterized at. Zero means the
	// requested size, so the glyph is drawn at scale 1.
	RasterSize fixed.Int26_6
}

// Atlas looks up rasterized glyphs. Lookup reports false for glyphs with
// no image, such as spaces.
type Atlas interface {
	Lookup(key Key) (Glyph, bool)
}

// Options control how a shaped run becomes draw calls.
type Options struct {
	// FontID selects the font in the atlas.
	FontID uint64

	// Color is the premultiplied multiply color. Zero means opaque white.
	Color f32.Vec4

	Sort batch.SortKey
}

// Result summarizes a Layout or Draw call.
type Result struct {
	// Drawn is the number of glyphs that produced a draw call.
	Drawn int
	// Missing is the number of glyphs the atlas had no image for.
	Missing int
	// Advance is the pen displacement of the whole run in pixels.
	Advance f32.Vec2
}

// fixedToFloat converts a fixed.Int26_6 value to float32.
func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

// Layout appends one draw call per visible glyph of out to dst, with the
// pen starting at origin.
func Layout(dst []batch.DrawCall, atlas Atlas, out *shaping.Output, origin f32.Vec2, opts Options) ([]batch.DrawCall, Result) {
	var res Result
	if out == nil || len(out.Glyphs) == 0 {
		return dst, res
	}

	color := opts.Color
	if color == (f32.Vec4{}) {
		color = f32.Vec4{1, 1, 1, 1}
	}
	vertical := out.Direction.IsVertical()

	var x, y float32
	for i := range out.Glyphs {
		g := &out.Glyphs[i]

		entry, ok := atlas.Lookup(Key{FontID: opts.FontID, GID: g.GlyphID, Size: out.Size})
		if ok && entry.Texture != nil {
			scale := float32(1)
			if entry.RasterSize != 0 {
				scale = fixedToFloat(out.Size) / fixedToFloat(entry.RasterSize)
			}
			dc := batch.DrawCall{
				Position: f32.Vec2{
					origin[0] + x + fixedToFloat(g.XOffset) + entry.Bearing[0]*scale,
					origin[1] + y + fixedToFloat(g.YOffset) + entry.Bearing[1]*scale,
				},
				Scale:         f32.Vec2{scale, scale},
				MultiplyColor: color,
				Textures:      batch.Textures(entry.Texture),
				Region:        entry.Region,
				Sort:          opts.Sort,
			}
			dst = append(dst, dc)
			res.Drawn++
		} else if !ok {
			res.Missing++
		}

		adv := fixedToFloat(g.Advance)
		if vertical {
			y += adv
		} else {
			x += adv
		}
	}
	res.Advance = f32.Vec2{x, y}
	return dst, res
}

// Draw lays out out and queues the draw calls on r as one batch.
func Draw(r *batch.Renderer, atlas Atlas, out *shaping.Output, origin f32.Vec2, opts Options) (Result, error) {
	dcs, res := Layout(nil, atlas, out, origin, opts)
	if err := r.DrawBatch(dcs); err != nil {
		return Result{}, err
	}
	return res, nil
}
