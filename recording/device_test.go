// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recording

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/batch/render"
)

type fakeTexture struct{ id uint64 }

func (t fakeTexture) ID() uint64                   { return t.id }
func (fakeTexture) Width() uint32                  { return 16 }
func (fakeTexture) Height() uint32                 { return 16 }
func (fakeTexture) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }
func (fakeTexture) IsDisposed() bool               { return false }

func TestCommandTypeString(t *testing.T) {
	tests := []struct {
		cmd  CommandType
		want string
	}{
		{CmdAllocateBuffer, "AllocateBuffer"},
		{CmdUploadBuffer, "UploadBuffer"},
		{CmdReleaseBuffer, "ReleaseBuffer"},
		{CmdBindState, "BindState"},
		{CmdBindTexture, "BindTexture"},
		{CmdDraw, "Draw"},
		{CommandType(200), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("CommandType(%d).String() = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}

func TestCommandTypes(t *testing.T) {
	tests := []struct {
		cmd  Command
		want CommandType
	}{
		{AllocateBufferCommand{}, CmdAllocateBuffer},
		{UploadBufferCommand{}, CmdUploadBuffer},
		{ReleaseBufferCommand{}, CmdReleaseBuffer},
		{BindStateCommand{}, CmdBindState},
		{BindTextureCommand{}, CmdBindTexture},
		{DrawCommand{}, CmdDraw},
	}
	for _, tt := range tests {
		if got := tt.cmd.Type(); got != tt.want {
			t.Errorf("%T.Type() = %v, want %v", tt.cmd, got, tt.want)
		}
	}
}

func TestAllocateBuffer(t *testing.T) {
	d := NewDevice()

	a, err := d.AllocateBuffer(3)
	if err != nil {
		t.Fatalf("AllocateBuffer: %v", err)
	}
	b, err := d.AllocateBuffer(5)
	if err != nil {
		t.Fatalf("AllocateBuffer: %v", err)
	}

	if len(a.Data) != 3*render.InstanceStride {
		t.Errorf("len(a.Data) = %d, want %d", len(a.Data), 3*render.InstanceStride)
	}
	if a.BaseVertex != 0 || b.BaseVertex != 3 {
		t.Errorf("BaseVertex = %d, %d, want 0, 3", a.BaseVertex, b.BaseVertex)
	}
	if got := d.LiveRegions(); got != 2 {
		t.Errorf("LiveRegions() = %d, want 2", got)
	}
	if got := d.Count(CmdAllocateBuffer); got != 2 {
		t.Errorf("Count(CmdAllocateBuffer) = %d, want 2", got)
	}

	d.ReleaseBuffer(a)
	d.ReleaseBuffer(a)
	if got := d.LiveRegions(); got != 1 {
		t.Errorf("LiveRegions() after release = %d, want 1", got)
	}
	if got := d.Count(CmdReleaseBuffer); got != 1 {
		t.Errorf("Count(CmdReleaseBuffer) = %d, want 1", got)
	}
}

func TestAllocateBufferErrors(t *testing.T) {
	if _, err := NewDevice().AllocateBuffer(0); err == nil {
		t.Error("AllocateBuffer(0) should fail")
	}

	errFull := errors.New("full")
	d := NewDevice(WithAllocError(errFull))
	if _, err := d.AllocateBuffer(1); !errors.Is(err, errFull) {
		t.Errorf("AllocateBuffer err = %v, want %v", err, errFull)
	}
	if len(d.Commands()) != 0 {
		t.Error("failed allocation should not be recorded")
	}
}

func TestUploadCopiesData(t *testing.T) {
	d := NewDevice()
	r, _ := d.AllocateBuffer(1)
	r.Data[0] = 7
	if err := d.UploadBuffer(r); err != nil {
		t.Fatalf("UploadBuffer: %v", err)
	}
	r.Data[0] = 9

	up, ok := d.Commands()[1].(UploadBufferCommand)
	if !ok {
		t.Fatalf("command 1 = %T, want UploadBufferCommand", d.Commands()[1])
	}
	if up.Data[0] != 7 {
		t.Errorf("uploaded Data[0] = %d, want 7", up.Data[0])
	}

	d.ReleaseBuffer(r)
	if err := d.UploadBuffer(r); !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("UploadBuffer after release err = %v, want ErrUnknownRegion", err)
	}
}

func TestBindTextureSlotRange(t *testing.T) {
	d := NewDevice()
	for _, slot := range []int{-1, 2} {
		if err := d.BindTextureSlot(slot, nil); err == nil {
			t.Errorf("BindTextureSlot(%d) should fail", slot)
		}
	}
	if err := d.BindTextureSlot(1, nil); err != nil {
		t.Errorf("BindTextureSlot(1, nil) = %v", err)
	}
}

func TestHasDepthBuffer(t *testing.T) {
	if NewDevice().HasDepthBuffer() {
		t.Error("default device should have no depth buffer")
	}
	if !NewDevice(WithDepthBuffer()).HasDepthBuffer() {
		t.Error("WithDepthBuffer device should have a depth buffer")
	}
}

func TestConcurrentAllocate(t *testing.T) {
	d := NewDevice()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := d.AllocateBuffer(2)
			if err != nil {
				t.Errorf("AllocateBuffer: %v", err)
				return
			}
			_ = d.UploadBuffer(r)
		}()
	}
	wg.Wait()

	if got := d.LiveRegions(); got != 16 {
		t.Errorf("LiveRegions() = %d, want 16", got)
	}
	if got := d.Count(CmdUploadBuffer); got != 16 {
		t.Errorf("Count(CmdUploadBuffer) = %d, want 16", got)
	}
}

func recordFrame(t *testing.T, d *Device) {
	t.Helper()
	bundle := &render.StateBundle{ID: 1, Label: "sprite"}
	r, err := d.AllocateBuffer(4)
	if err != nil {
		t.Fatalf("AllocateBuffer: %v", err)
	}
	r.Data[0] = 42
	if err := d.UploadBuffer(r); err != nil {
		t.Fatalf("UploadBuffer: %v", err)
	}
	_ = d.BindState(bundle, render.SamplerPair{})
	_ = d.BindTextureSlot(0, fakeTexture{id: 3})
	_ = d.SubmitInstancedDraw(gputypes.PrimitiveTopologyTriangleList, render.VertexRange{Region: r, First: 1, Count: 3}, 3)
	d.ReleaseBuffer(r)
}

func TestDraws(t *testing.T) {
	d := NewDevice()
	recordFrame(t, d)

	draws := d.Draws()
	if len(draws) != 1 {
		t.Fatalf("len(Draws()) = %d, want 1", len(draws))
	}
	if draws[0].InstanceCount != 3 {
		t.Errorf("InstanceCount = %d, want 3", draws[0].InstanceCount)
	}
	if draws[0].Range.First != 1 {
		t.Errorf("Range.First = %d, want 1", draws[0].Range.First)
	}
}

func TestFinishAndReset(t *testing.T) {
	d := NewDevice()
	recordFrame(t, d)

	rec := d.Finish()
	if got := len(rec.Commands()); got != 6 {
		t.Errorf("len(rec.Commands()) = %d, want 6", got)
	}
	if got := len(d.Commands()); got != 0 {
		t.Errorf("len(Commands()) after Finish = %d, want 0", got)
	}

	recordFrame(t, d)
	d.Reset()
	if got := len(d.Commands()); got != 0 {
		t.Errorf("len(Commands()) after Reset = %d, want 0", got)
	}
}

func TestPlayback(t *testing.T) {
	src := NewDevice()
	recordFrame(t, src)
	rec := src.Finish()

	dst := NewDevice()
	if err := rec.Playback(dst); err != nil {
		t.Fatalf("Playback: %v", err)
	}

	if got := dst.Count(CmdBindState); got != 1 {
		t.Errorf("Count(CmdBindState) = %d, want 1", got)
	}
	if got := dst.Count(CmdBindTexture); got != 1 {
		t.Errorf("Count(CmdBindTexture) = %d, want 1", got)
	}
	if got := dst.LiveRegions(); got != 0 {
		t.Errorf("LiveRegions() after playback = %d, want 0", got)
	}

	draws := dst.Draws()
	if len(draws) != 1 {
		t.Fatalf("len(Draws()) = %d, want 1", len(draws))
	}
	region := draws[0].Range.Region
	if region == nil || region.Data[0] != 42 {
		t.Error("replayed draw should reference a region holding the uploaded data")
	}
}

func TestPlaybackMissingUpload(t *testing.T) {
	rec := &Recording{commands: []Command{
		DrawCommand{Range: render.VertexRange{Region: &render.BufferRegion{}}, InstanceCount: 1},
	}}
	if err := rec.Playback(NewDevice()); err == nil {
		t.Error("Playback should fail for a draw from an unknown region")
	}
}
