// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recording

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/batch/render"
)

// ErrUnknownRegion is returned when uploading a region the device did not
// allocate or already released.
var ErrUnknownRegion = errors.New("recording: unknown buffer region")

// Device is a render.Device that keeps instance buffers in memory and
// records every call as a typed Command.
//
// It is used for diagnostics, tests and replaying a frame onto another
// device. Device is safe for concurrent use.
type Device struct {
	mu       sync.Mutex
	commands []Command

	nextVertex int
	live       map[*render.BufferRegion]struct{}

	hasDepth bool
	allocErr error
}

// Option configures a Device.
type Option func(*Device)

// WithDepthBuffer makes the device report a usable depth buffer.
func WithDepthBuffer() Option {
	return func(d *Device) { d.hasDepth = true }
}

// WithAllocError makes every AllocateBuffer call fail with err.
func WithAllocError(err error) Option {
	return func(d *Device) { d.allocErr = err }
}

// NewDevice creates a recording device.
func NewDevice(opts ...Option) *Device {
	d := &Device{live: make(map[*render.BufferRegion]struct{})}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Device) record(c Command) {
	d.commands = append(d.commands, c)
}

// AllocateBuffer implements render.Device.
func (d *Device) AllocateBuffer(vertexCount int) (*render.BufferRegion, error) {
	if vertexCount <= 0 {
		return nil, fmt.Errorf("recording: allocate %d vertices", vertexCount)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.allocErr != nil {
		return nil, d.allocErr
	}
	region := &render.BufferRegion{
		Data:        make([]byte, vertexCount*render.InstanceStride),
		BaseVertex:  d.nextVertex,
		VertexCount: vertexCount,
	}
	d.nextVertex += vertexCount
	d.live[region] = struct{}{}
	d.record(AllocateBufferCommand{Region: region, VertexCount: vertexCount})
	return region, nil
}

// UploadBuffer implements render.Device.
func (d *Device) UploadBuffer(region *render.BufferRegion) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.live[region]; !ok {
		return ErrUnknownRegion
	}
	d.record(UploadBufferCommand{Region: region, Data: slices.Clone(region.Data)})
	return nil
}

// ReleaseBuffer implements render.Device.
func (d *Device) ReleaseBuffer(region *render.BufferRegion) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.live[region]; !ok {
		return
	}
	delete(d.live, region)
	d.record(ReleaseBufferCommand{Region: region})
}

// BindState implements render.Device.
func (d *Device) BindState(bundle *render.StateBundle, samplers render.SamplerPair) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(BindStateCommand{Bundle: bundle, Samplers: samplers})
	return nil
}

// BindTextureSlot implements render.Device.
func (d *Device) BindTextureSlot(index int, tex render.Texture) error {
	if index < 0 || index > 1 {
		return fmt.Errorf("recording: texture slot %d out of range", index)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(BindTextureCommand{Slot: index, Texture: tex})
	return nil
}

// SubmitInstancedDraw implements render.Device.
func (d *Device) SubmitInstancedDraw(topology gputypes.PrimitiveTopology, r render.VertexRange, instanceCount int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(DrawCommand{Topology: topology, Range: r, InstanceCount: instanceCount})
	return nil
}

// HasDepthBuffer implements render.DepthTarget.
func (d *Device) HasDepthBuffer() bool { return d.hasDepth }

// LiveRegions returns the number of allocated regions not yet released.
func (d *Device) LiveRegions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// Commands returns a copy of the recorded commands.
func (d *Device) Commands() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.commands)
}

// Draws returns the recorded draw commands in submission order.
func (d *Device) Draws() []DrawCommand {
	d.mu.Lock()
	defer d.mu.Unlock()
	var draws []DrawCommand
	for _, c := range d.commands {
		if dc, ok := c.(DrawCommand); ok {
			draws = append(draws, dc)
		}
	}
	return draws
}

// Count returns the number of recorded commands of type t.
func (d *Device) Count(t CommandType) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.commands {
		if c.Type() == t {
			n++
		}
	}
	return n
}

// Finish returns the recorded commands as a Recording and starts a new,
// empty command list. Live regions are kept.
func (d *Device) Finish() *Recording {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := &Recording{commands: d.commands}
	d.commands = nil
	return r
}

// Reset drops all recorded commands.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = nil
}

var (
	_ render.Device      = (*Device)(nil)
	_ render.DepthTarget = (*Device)(nil)
)
