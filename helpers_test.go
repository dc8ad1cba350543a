// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"encoding/binary"
	"math"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/batch/material"
	"github.com/gogpu/batch/recording"
	"github.com/gogpu/batch/render"
)

// testTexture is a render.Texture whose disposal can be toggled.
type testTexture struct {
	id       uint64
	disposed atomic.Bool
}

func newTexture(id uint64) *testTexture { return &testTexture{id: id} }

func (t *testTexture) ID() uint64                     { return t.id }
func (t *testTexture) Width() uint32                  { return 64 }
func (t *testTexture) Height() uint32                 { return 32 }
func (t *testTexture) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }
func (t *testTexture) IsDisposed() bool               { return t.disposed.Load() }

// testMaterial carries precompiled SPIR-V so tests never invoke the shader
// compiler.
var testMaterial = material.New(material.Config{
	Name:       "test",
	SPIRV:      []uint32{0x07230203, 0x00010000},
	DepthEntry: "fs_depth",
})

func testResolver() *material.Resolver {
	return material.NewResolver(material.WithDefault(testMaterial))
}

// newTestManager returns a manager issuing to a recording device.
func newTestManager(t testing.TB, devOpts ...recording.Option) (*Manager, *recording.Device) {
	t.Helper()
	dev := recording.NewDevice(devOpts...)
	m, err := NewManager(dev, WithWorkers(2), WithResolver(testResolver()))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(m.Close)
	return m, dev
}

// beginFrame starts a frame and a renderer on it.
func beginFrame(t testing.TB, m *Manager, opts ...RendererOption) (*Frame, *Renderer) {
	t.Helper()
	f, err := m.BeginFrame()
	if err != nil {
		t.Fatalf("BeginFrame failed: %v", err)
	}
	r, err := NewRenderer(f, opts...)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	return f, r
}

// newTestBatch creates a batch on a fresh frame with its default bundle.
func newTestBatch(t testing.TB, key Key, opts BatchOptions) (*Batch, *Frame, *recording.Device) {
	t.Helper()
	m, dev := newTestManager(t)
	f, err := m.BeginFrame()
	if err != nil {
		t.Fatalf("BeginFrame failed: %v", err)
	}
	if opts.Bundle == nil {
		opts.Bundle, err = m.Resolver().Resolve(testMaterial, nil, nil, nil)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
	}
	b, err := f.NewBatch(key, opts)
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}
	return b, f, dev
}

func draw(tex render.Texture, order float32) DrawCall {
	dc := NewDrawCall(tex, f32.Vec2{order, 0})
	dc.Sort.Order = order
	return dc
}

// unpackInstance reads an instance record back into its attribute lanes.
func unpackInstance(rec []byte) [8][4]float32 {
	var attrs [8][4]float32
	off := 0
	for a := range attrs {
		for l := range attrs[a] {
			attrs[a][l] = math.Float32frombits(binary.LittleEndian.Uint32(rec[off:]))
			off += 4
		}
	}
	return attrs
}

// instancesOf returns the record of every instance of n in draw order.
func instancesOf(n *NativeBatch) [][8][4]float32 {
	out := make([][8][4]float32, n.Range.Count)
	for i := range out {
		out[i] = unpackInstance(n.Range.Region.Record(n.Range.First + i))
	}
	return out
}

// testBlend returns a new premultiplied blend descriptor. Every call yields
// a distinct pointer.
func testBlend() *gputypes.BlendState {
	b := gputypes.BlendStatePremultiplied()
	return &b
}
