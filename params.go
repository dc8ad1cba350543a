// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"slices"
	"strings"

	"golang.org/x/image/math/f32"
)

// Parameter is one named material uniform override.
type Parameter struct {
	Name  string
	Value f32.Vec4
}

// Parameters is an ordered set of material parameter overrides.
// The zero value is empty and ready to use.
type Parameters struct {
	list []Parameter
}

// Set adds or replaces the value of name.
func (p *Parameters) Set(name string, v f32.Vec4) {
	i, found := slices.BinarySearchFunc(p.list, name, func(e Parameter, n string) int {
		return strings.Compare(e.Name, n)
	})
	if found {
		p.list[i].Value = v
		return
	}
	p.list = slices.Insert(p.list, i, Parameter{Name: name, Value: v})
}

// Get returns the value of name.
func (p *Parameters) Get(name string) (f32.Vec4, bool) {
	i, found := slices.BinarySearchFunc(p.list, name, func(e Parameter, n string) int {
		return strings.Compare(e.Name, n)
	})
	if !found {
		return f32.Vec4{}, false
	}
	return p.list[i].Value, true
}

// Len returns the number of parameters.
func (p *Parameters) Len() int { return len(p.list) }

// All returns the parameters sorted by name. The slice must not be modified.
func (p *Parameters) All() []Parameter { return p.list }

// Equal reports whether p and o hold the same names and values.
func (p *Parameters) Equal(o *Parameters) bool {
	return slices.Equal(p.list, o.list)
}

// Clone returns an independent copy of p.
func (p *Parameters) Clone() Parameters {
	return Parameters{list: slices.Clone(p.list)}
}

// Clear removes all parameters, keeping the storage.
func (p *Parameters) Clear() {
	p.list = p.list[:0]
}

// replaceWith copies o into p, reusing p's storage.
func (p *Parameters) replaceWith(o *Parameters) {
	p.list = append(p.list[:0], o.list...)
}
