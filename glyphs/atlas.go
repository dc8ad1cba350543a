// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyphs

import "sync"

// MapAtlas is an Atlas backed by a map. Glyphs are added by the host after
// rasterizing them into its atlas textures.
//
// MapAtlas is safe for concurrent use.
type MapAtlas struct {
	mu     sync.RWMutex
	glyphs map[Key]Glyph
}

// NewMapAtlas creates an empty atlas.
func NewMapAtlas() *MapAtlas {
	return &MapAtlas{glyphs: make(map[Key]Glyph)}
}

// Add stores g under key, replacing any previous entry.
func (a *MapAtlas) Add(key Key, g Glyph) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.glyphs[key] = g
}

// Lookup implements Atlas.
func (a *MapAtlas) Lookup(key Key) (Glyph, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	g, ok := a.glyphs[key]
	return g, ok
}

// Len returns the number of stored glyphs.
func (a *MapAtlas) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.glyphs)
}

// Clear removes every glyph.
func (a *MapAtlas) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.glyphs)
}
