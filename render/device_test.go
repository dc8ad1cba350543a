// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

type testTexture struct {
	id       uint64
	w, h     uint32
	format   gputypes.TextureFormat
	disposed bool
}

func (t *testTexture) ID() uint64                     { return t.id }
func (t *testTexture) Width() uint32                  { return t.w }
func (t *testTexture) Height() uint32                 { return t.h }
func (t *testTexture) Format() gputypes.TextureFormat { return t.format }
func (t *testTexture) IsDisposed() bool               { return t.disposed }

func TestBufferRegionRecord(t *testing.T) {
	region := &BufferRegion{
		Data:        make([]byte, 3*InstanceStride),
		BaseVertex:  10,
		VertexCount: 3,
	}
	rec := region.Record(2)
	if len(rec) != InstanceStride {
		t.Fatalf("len(Record(2)) = %d, want %d", len(rec), InstanceStride)
	}
	rec[0] = 0xAB
	if region.Data[2*InstanceStride] != 0xAB {
		t.Error("Record(2) does not alias the region data")
	}
}

func TestVertexRangeByteOffset(t *testing.T) {
	tests := []struct {
		name string
		r    VertexRange
		want uint64
	}{
		{"nil region", VertexRange{First: 2}, 2 * InstanceStride},
		{"base only", VertexRange{Region: &BufferRegion{BaseVertex: 4}}, 4 * InstanceStride},
		{"base and first", VertexRange{Region: &BufferRegion{BaseVertex: 4}, First: 3}, 7 * InstanceStride},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.ByteOffset(); got != tt.want {
				t.Errorf("ByteOffset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsNil(t *testing.T) {
	tests := []struct {
		name string
		tex  Texture
		want bool
	}{
		{"nil interface", nil, true},
		{"typed nil", (*testTexture)(nil), true},
		{"live", &testTexture{id: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNil(tt.tex); got != tt.want {
				t.Errorf("IsNil() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextureUsable(t *testing.T) {
	if TextureUsable(nil) {
		t.Error("nil texture should not be usable")
	}
	if TextureUsable((*testTexture)(nil)) {
		t.Error("typed nil texture should not be usable")
	}
	if !TextureUsable(&testTexture{id: 1}) {
		t.Error("live texture should be usable")
	}
	if TextureUsable(&testTexture{id: 1, disposed: true}) {
		t.Error("disposed texture should not be usable")
	}
}

func TestNewTextureInfo(t *testing.T) {
	info := NewTextureInfo(&testTexture{id: 1, w: 256, h: 64, format: gputypes.TextureFormatR8Unorm})

	if info.Width != 256 || info.Height != 64 {
		t.Errorf("size = %dx%d, want 256x64", info.Width, info.Height)
	}
	if info.HalfTexel[0] != 0.5/256 {
		t.Errorf("HalfTexel.x = %v, want %v", info.HalfTexel[0], 0.5/256)
	}
	if info.HalfTexel[1] != 0.5/64 {
		t.Errorf("HalfTexel.y = %v, want %v", info.HalfTexel[1], 0.5/64)
	}
	if !info.Traits.SingleChannel || info.Traits.BytesPerPixel != 1 {
		t.Errorf("Traits = %+v, want single channel with 1 byte per pixel", info.Traits)
	}

	if zero := NewTextureInfo(nil); zero != (TextureInfo{}) {
		t.Errorf("NewTextureInfo(nil) = %+v, want zero value", zero)
	}

	empty := NewTextureInfo(&testTexture{id: 2})
	if empty.HalfTexel != [2]float32{} {
		t.Errorf("zero-sized texture HalfTexel = %v, want zero", empty.HalfTexel)
	}
}

func TestTraitsOf(t *testing.T) {
	tests := []struct {
		format gputypes.TextureFormat
		want   FormatTraits
	}{
		{gputypes.TextureFormatRGBA8Unorm, FormatTraits{BytesPerPixel: 4, Channels: 4}},
		{gputypes.TextureFormatBGRA8Unorm, FormatTraits{BytesPerPixel: 4, Channels: 4}},
		{gputypes.TextureFormatRGBA8UnormSrgb, FormatTraits{BytesPerPixel: 4, Channels: 4, SRGB: true}},
		{gputypes.TextureFormatR8Unorm, FormatTraits{BytesPerPixel: 1, Channels: 1, SingleChannel: true}},
		{gputypes.TextureFormatDepth24PlusStencil8, FormatTraits{BytesPerPixel: 4, Channels: 1, Depth: true}},
	}
	for _, tt := range tests {
		if got := TraitsOf(tt.format); got != tt.want {
			t.Errorf("TraitsOf(%v) = %+v, want %+v", tt.format, got, tt.want)
		}
	}
}

func TestStateBundleTopology(t *testing.T) {
	var nilBundle *StateBundle
	if nilBundle.Topology() != gputypes.PrimitiveTopologyTriangleList {
		t.Error("nil bundle should default to triangle list")
	}

	strip := &StateBundle{Raster: &gputypes.PrimitiveState{Topology: gputypes.PrimitiveTopologyTriangleStrip}}
	if strip.Topology() != gputypes.PrimitiveTopologyTriangleStrip {
		t.Errorf("Topology() = %v, want TriangleStrip", strip.Topology())
	}
}

func TestStateBundleWritesDepth(t *testing.T) {
	if (&StateBundle{}).WritesDepth() {
		t.Error("bundle without depth state should not write depth")
	}
	b := &StateBundle{DepthStencil: &hal.DepthStencilState{
		Format:            gputypes.TextureFormatDepth24PlusStencil8,
		DepthWriteEnabled: true,
		DepthCompare:      gputypes.CompareFunctionLess,
	}}
	if !b.WritesDepth() {
		t.Error("bundle with depth writes should report WritesDepth")
	}
}

func TestInstanceLayout(t *testing.T) {
	layout := InstanceLayout()

	if layout.ArrayStride != InstanceStride {
		t.Errorf("ArrayStride = %d, want %d", layout.ArrayStride, InstanceStride)
	}
	if layout.StepMode != gputypes.VertexStepModeInstance {
		t.Errorf("StepMode = %v, want Instance", layout.StepMode)
	}
	if len(layout.Attributes) != 8 {
		t.Fatalf("len(Attributes) = %d, want 8", len(layout.Attributes))
	}
	for i, a := range layout.Attributes {
		if a.Offset != uint64(i*16) {
			t.Errorf("Attributes[%d].Offset = %d, want %d", i, a.Offset, i*16)
		}
		if a.ShaderLocation != uint32(i) {
			t.Errorf("Attributes[%d].ShaderLocation = %d, want %d", i, a.ShaderLocation, i)
		}
	}
}
