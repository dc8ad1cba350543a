// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"errors"
	"fmt"
	"sync"
)

// MaxTags is the number of distinct tags a process can create.
const MaxTags = 64

// ErrTooManyTags is returned by NewTag once MaxTags names are registered.
var ErrTooManyTags = errors.New("batch: too many sort tags")

// Tag is an interned sort tag. Tags with the same name are the same Tag.
type Tag uint8

// Tags is a set of tags.
type Tags uint64

var tagRegistry struct {
	mu    sync.Mutex
	ids   map[string]Tag
	names []string
}

// NewTag returns the tag named name, registering it on first use.
func NewTag(name string) (Tag, error) {
	tagRegistry.mu.Lock()
	defer tagRegistry.mu.Unlock()

	if t, ok := tagRegistry.ids[name]; ok {
		return t, nil
	}
	if len(tagRegistry.names) >= MaxTags {
		return 0, fmt.Errorf("%w: cannot register %q", ErrTooManyTags, name)
	}
	if tagRegistry.ids == nil {
		tagRegistry.ids = make(map[string]Tag)
	}
	t := Tag(len(tagRegistry.names)) //nolint:gosec // bounded by MaxTags
	tagRegistry.ids[name] = t
	tagRegistry.names = append(tagRegistry.names, name)
	return t, nil
}

// MustTag is like NewTag but panics on error. Meant for package-level
// variables.
func MustTag(name string) Tag {
	t, err := NewTag(name)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the tag name.
func (t Tag) String() string {
	tagRegistry.mu.Lock()
	defer tagRegistry.mu.Unlock()
	if int(t) < len(tagRegistry.names) {
		return tagRegistry.names[t]
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// TagsOf returns the set holding tags.
func TagsOf(tags ...Tag) Tags {
	var s Tags
	for _, t := range tags {
		s = s.With(t)
	}
	return s
}

// With returns s plus t.
func (s Tags) With(t Tag) Tags { return s | 1<<t }

// Has reports whether s contains t.
func (s Tags) Has(t Tag) bool { return s&(1<<t) != 0 }

// Sorter orders tag sets by declared rules.
//
// Rules are checked in declaration order; the first rule that applies
// decides. Rules should not contradict each other, otherwise the resulting
// order between the involved draw calls is unspecified (but still stable
// for everything else).
type Sorter struct {
	rules []sortRule
}

type sortRule struct {
	first, then Tag
}

// NewSorter returns a sorter without rules. It considers all tag sets equal.
func NewSorter() *Sorter {
	return &Sorter{}
}

// Before adds a rule drawing anything tagged first before anything tagged
// then. It returns s for chaining.
func (s *Sorter) Before(first, then Tag) *Sorter {
	s.rules = append(s.rules, sortRule{first: first, then: then})
	return s
}

// Compare orders a before b (-1), after b (1) or leaves them tied (0).
func (s *Sorter) Compare(a, b Tags) int {
	if s == nil || a == b {
		return 0
	}
	for _, r := range s.rules {
		if a.Has(r.first) && b.Has(r.then) {
			return -1
		}
		if b.Has(r.first) && a.Has(r.then) {
			return 1
		}
	}
	return 0
}
