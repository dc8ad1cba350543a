// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphs

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// Run is a span of text [Start, End) in runes with one direction and one
// script. Each run is shaped on its own.
type Run struct {
	Start     int
	End       int
	Direction di.Direction
	Script    language.Script
}

// Runs splits text into runs by bidi direction and script.
//
// base is the paragraph direction; di.DirectionRTL starts a right-to-left
// paragraph, anything else lets the first strong character decide.
// Characters of the Common and Inherited scripts (spaces, digits,
// combining marks) join the run before them at the same direction, or the
// one after them at the start of a direction change.
func Runs(text []rune, base di.Direction) []Run {
	if len(text) == 0 {
		return nil
	}
	rtl := bidiLevels(text, base)
	scripts := resolveScripts(text, rtl)

	runs := make([]Run, 0, 2)
	start := 0
	for i := 1; i <= len(text); i++ {
		if i < len(text) && rtl[i] == rtl[start] && scripts[i] == scripts[start] {
			continue
		}
		dir := di.DirectionLTR
		if rtl[start] {
			dir = di.DirectionRTL
		}
		runs = append(runs, Run{Start: start, End: i, Direction: dir, Script: scripts[start]})
		start = i
	}
	return runs
}

// bidiLevels reports for every rune whether it sits in a right-to-left run.
func bidiLevels(text []rune, base di.Direction) []bool {
	rtl := make([]bool, len(text))

	def := bidi.Neutral
	if base == di.DirectionRTL {
		def = bidi.RightToLeft
	}
	var p bidi.Paragraph
	if _, err := p.SetString(string(text), bidi.DefaultDirection(def)); err != nil {
		return rtl
	}
	ordering, err := p.Order()
	if err != nil {
		return rtl
	}

	// Run positions are inclusive rune indices.
	for i := range ordering.NumRuns() {
		run := ordering.Run(i)
		if run.Direction() != bidi.RightToLeft {
			continue
		}
		start, end := run.Pos()
		for j := start; j <= end && j < len(rtl); j++ {
			rtl[j] = true
		}
	}
	return rtl
}

// resolveScripts assigns every rune a concrete script. Neutral runes take
// the script before them within the same direction segment, or the first
// one after them in that segment. A segment with no concrete script
// continues the script of the text before it.
func resolveScripts(text []rune, rtl []bool) []language.Script {
	scripts := make([]language.Script, len(text))
	global := language.Common
	for i, r := range text {
		scripts[i] = language.LookupScript(r)
		if global == language.Common && isConcrete(scripts[i]) {
			global = scripts[i]
		}
	}

	for start := 0; start < len(text); {
		end := start + 1
		for end < len(text) && rtl[end] == rtl[start] {
			end++
		}
		prev := global
		for _, s := range scripts[start:end] {
			if isConcrete(s) {
				prev = s
				break
			}
		}
		for i := start; i < end; i++ {
			if isConcrete(scripts[i]) {
				prev = scripts[i]
				continue
			}
			scripts[i] = prev
		}
		global = prev
		start = end
	}
	return scripts
}

func isConcrete(s language.Script) bool {
	return s != language.Common && s != language.Inherited && s != language.Unknown
}

// Input returns the shaping input of the run over the full text.
func (r Run) Input(text []rune, face *font.Face, size fixed.Int26_6, lang language.Language) shaping.Input {
	return shaping.Input{
		Text:      text,
		RunStart:  r.Start,
		RunEnd:    r.End,
		Direction: r.Direction,
		Face:      face,
		Size:      size,
		Script:    r.Script,
		Language:  lang,
	}
}

// HarfbuzzShaper is not safe for concurrent use; pool one per caller.
var shapers = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// Shape splits text into runs and shapes each of them with face at size.
// The outputs are in logical order and can be passed to Layout one after
// another, advancing the origin by each Result.Advance.
func Shape(face *font.Face, text []rune, size fixed.Int26_6, base di.Direction, lang language.Language) []shaping.Output {
	runs := Runs(text, base)
	if len(runs) == 0 || face == nil {
		return nil
	}
	hb := shapers.Get().(*shaping.HarfbuzzShaper)
	defer shapers.Put(hb)

	out := make([]shaping.Output, len(runs))
	for i, run := range runs {
		out[i] = hb.Shape(run.Input(text, face, size, lang))
	}
	return out
}
