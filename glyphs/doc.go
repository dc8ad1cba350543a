// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package glyphs turns shaped text into sprite draw calls.
//
// Shaping is done by go-text/typesetting. Shape splits text into runs of
// one bidi direction and script and shapes each run; Layout and Draw walk
// the shaped glyphs, look each one up in a glyph atlas and emit one
// batch.DrawCall per visible glyph:
//
//	for _, out := range glyphs.Shape(face, text, fixed.I(16), di.DirectionLTR, lang) {
//	    res, err := glyphs.Draw(renderer, atlas, &out, origin, glyphs.Options{FontID: 1})
//	    if err != nil {
//	        return err
//	    }
//	    origin[0] += res.Advance[0]
//	    origin[1] += res.Advance[1]
//	}
//
// Glyphs of one run usually share an atlas page, so a run typically
// compiles to a single native batch.
package glyphs
