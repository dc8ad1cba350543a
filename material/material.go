// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package material

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/naga"
)

//go:embed shaders/sprite.wgsl
var spriteShaderSource string

// ErrNilMaterial is returned when resolving without a base material.
var ErrNilMaterial = errors.New("material: nil material")

var nextMaterialID atomic.Uint64

// Config describes a material.
type Config struct {
	Name   string
	Source string // WGSL

	// VertexEntry and FragmentEntry default to vs_main and fs_main.
	VertexEntry   string
	FragmentEntry string

	// DepthEntry is the fragment entry point of the depth pre-pass. Empty
	// means the material has no depth-only variant.
	DepthEntry string

	// SPIRV, when set, is used instead of compiling Source.
	SPIRV []uint32
}

// Material is a WGSL shader program used as the base of state bundles.
// Its SPIR-V is compiled once, on first use.
//
// Materials are compared by identity; ID is unique per process.
type Material struct {
	id  uint64
	cfg Config

	once  sync.Once
	spirv []uint32
	err   error
}

// New creates a material from cfg.
func New(cfg Config) *Material {
	if cfg.VertexEntry == "" {
		cfg.VertexEntry = "vs_main"
	}
	if cfg.FragmentEntry == "" {
		cfg.FragmentEntry = "fs_main"
	}
	return &Material{
		id:  nextMaterialID.Add(1),
		cfg: cfg,
	}
}

var sprite = sync.OnceValue(func() *Material {
	return New(Config{
		Name:       "sprite",
		Source:     spriteShaderSource,
		DepthEntry: "fs_depth",
	})
})

// Sprite returns the built-in instanced sprite material.
func Sprite() *Material { return sprite() }

// ID returns the process-unique id of the material.
func (m *Material) ID() uint64 { return m.id }

// Name returns the material name.
func (m *Material) Name() string { return m.cfg.Name }

// Source returns the WGSL source.
func (m *Material) Source() string { return m.cfg.Source }

// HasDepthVariant reports whether the material defines a depth pre-pass
// entry point.
func (m *Material) HasDepthVariant() bool { return m.cfg.DepthEntry != "" }

// SPIRV compiles the WGSL source with naga on first call and returns the
// SPIR-V words. The result, or the compile error, is cached.
func (m *Material) SPIRV() ([]uint32, error) {
	m.once.Do(func() {
		if m.cfg.SPIRV != nil {
			m.spirv = m.cfg.SPIRV
			return
		}
		spirvBytes, err := naga.Compile(m.cfg.Source)
		if err != nil {
			m.err = fmt.Errorf("material: compile %q: %w", m.cfg.Name, err)
			return
		}
		m.spirv = spirvWords(spirvBytes)
		Logger().Debug("material: compiled", "name", m.cfg.Name, "words", len(m.spirv))
	})
	return m.spirv, m.err
}

// spirvWords converts little-endian SPIR-V bytes to 32-bit words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words
}
