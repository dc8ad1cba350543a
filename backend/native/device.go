// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch/render"
)

// PassEncoder is the subset of hal.RenderPassEncoder the device records
// into. The host owns the pass: it begins it, hands it over with BeginPass
// and ends it after the frame was issued.
type PassEncoder interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32)
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

// TextureBinder creates the texture bind group (group 1) for a texture
// pair. Textures are opaque to the backend, so the host supplies their
// views. Slot 1 may be nil. The device does not destroy returned groups.
type TextureBinder interface {
	TextureBindGroup(layout hal.BindGroupLayout, textures [2]render.Texture, samplers [2]hal.Sampler) (hal.BindGroup, error)
}

// Option configures a Device.
type Option func(*Device)

// WithFormat sets the color target format of created pipelines.
// The default is BGRA8Unorm.
func WithFormat(format gputypes.TextureFormat) Option {
	return func(d *Device) { d.format = format }
}

// WithDepthBuffer declares that the host's render pass has a depth
// attachment, enabling depth pre-passes.
func WithDepthBuffer(ok bool) Option {
	return func(d *Device) { d.hasDepth = ok }
}

// WithTextureBinder sets the texture bind group factory.
func WithTextureBinder(b TextureBinder) Option {
	return func(d *Device) { d.binder = b }
}

// Device is a render.Device on top of a gogpu/wgpu HAL device.
//
// Instance buffers are pooled by size class and reused across frames.
// Pipelines are created once per state bundle. Bind calls are deferred and
// applied to the pass on the next draw.
type Device struct {
	device hal.Device
	queue  hal.Queue
	binder TextureBinder
	format gputypes.TextureFormat

	hasDepth bool

	buffers *bufferPool
	pipes   *pipelineCache

	viewportMu    sync.Mutex
	viewportBuf   hal.Buffer
	viewportGroup hal.BindGroup
	viewport      [viewportUniformSize]byte

	// Issue state. Single goroutine.
	pass          PassEncoder
	bundle        *render.StateBundle
	samplers      render.SamplerPair
	textures      [2]render.Texture
	pipelineDirty bool
	texturesDirty bool
	closed        bool
}

// New creates a device on a HAL device and queue.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	d := &Device{
		device: device,
		queue:  queue,
		format: gputypes.TextureFormatBGRA8Unorm,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.buffers = newBufferPool(device)
	d.pipes = newPipelineCache(device, d.format)
	d.SetViewport(identity, identity)
	return d, nil
}

// NewFromProvider creates a device from a host device provider. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewFromProvider(provider render.DeviceHandle, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	if dt, ok := provider.(render.DepthTarget); ok && dt.HasDepthBuffer() {
		opts = append([]Option{WithDepthBuffer(true)}, opts...)
	}
	return New(device, queue, opts...)
}

var identity = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// SetViewport sets the world-to-clip and screen-to-clip transforms, both
// column-major. The uniform is uploaded on the next draw.
func (d *Device) SetViewport(worldToClip, screenToClip [16]float32) {
	d.viewportMu.Lock()
	defer d.viewportMu.Unlock()
	for i, v := range worldToClip {
		binary.LittleEndian.PutUint32(d.viewport[i*4:], math.Float32bits(v))
	}
	for i, v := range screenToClip {
		binary.LittleEndian.PutUint32(d.viewport[64+i*4:], math.Float32bits(v))
	}
	if d.viewportBuf != nil {
		d.queue.WriteBuffer(d.viewportBuf, 0, d.viewport[:])
	}
}

// ensureViewport creates the uniform buffer and its bind group.
func (d *Device) ensureViewport() (hal.BindGroup, error) {
	d.viewportMu.Lock()
	defer d.viewportMu.Unlock()

	if d.viewportGroup != nil {
		return d.viewportGroup, nil
	}
	layout, _, err := d.pipes.layouts()
	if err != nil {
		return nil, err
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "batch_viewport",
		Size:  viewportUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create viewport buffer: %w", err)
	}
	d.queue.WriteBuffer(buf, 0, d.viewport[:])

	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "batch_viewport_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(), Offset: 0, Size: viewportUniformSize,
			}},
		},
	})
	if err != nil {
		d.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("native: create viewport bind group: %w", err)
	}
	d.viewportBuf = buf
	d.viewportGroup = group
	return group, nil
}

// BeginPass directs subsequent draws into pass. All bindings are reapplied
// on the next draw.
func (d *Device) BeginPass(pass PassEncoder) {
	d.pass = pass
	d.pipelineDirty = true
	d.texturesDirty = true
}

// EndPass detaches the current pass.
func (d *Device) EndPass() {
	d.pass = nil
}

// HasDepthBuffer implements render.DepthTarget.
func (d *Device) HasDepthBuffer() bool { return d.hasDepth }

// AllocateBuffer implements render.Device.
func (d *Device) AllocateBuffer(vertexCount int) (*render.BufferRegion, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if vertexCount <= 0 {
		return nil, fmt.Errorf("native: allocate %d records", vertexCount)
	}
	ib, err := d.buffers.acquire(vertexCount)
	if err != nil {
		return nil, err
	}
	data := ib.staging[:vertexCount*render.InstanceStride]
	clear(data)
	return &render.BufferRegion{
		Handle:      ib,
		Data:        data,
		VertexCount: vertexCount,
	}, nil
}

func (d *Device) instanceBuffer(region *render.BufferRegion) (*instanceBuffer, error) {
	if region == nil {
		return nil, ErrForeignRegion
	}
	ib, ok := region.Handle.(*instanceBuffer)
	if !ok || !d.buffers.owns(ib) {
		return nil, ErrForeignRegion
	}
	return ib, nil
}

// UploadBuffer implements render.Device.
func (d *Device) UploadBuffer(region *render.BufferRegion) error {
	ib, err := d.instanceBuffer(region)
	if err != nil {
		return err
	}
	d.queue.WriteBuffer(ib.buf, 0, region.Data)
	return nil
}

// ReleaseBuffer implements render.Device.
func (d *Device) ReleaseBuffer(region *render.BufferRegion) {
	if region == nil {
		return
	}
	if ib, ok := region.Handle.(*instanceBuffer); ok {
		d.buffers.release(ib)
	}
}

// BindState implements render.Device.
func (d *Device) BindState(bundle *render.StateBundle, samplers render.SamplerPair) error {
	if bundle == nil {
		return ErrNoState
	}
	if bundle != d.bundle {
		d.bundle = bundle
		d.pipelineDirty = true
	}
	if samplers != d.samplers {
		d.samplers = samplers
		d.texturesDirty = true
	}
	return nil
}

// BindTextureSlot implements render.Device.
func (d *Device) BindTextureSlot(index int, tex render.Texture) error {
	if index < 0 || index > 1 {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, index)
	}
	d.textures[index] = tex
	d.texturesDirty = true
	return nil
}

// SubmitInstancedDraw implements render.Device.
func (d *Device) SubmitInstancedDraw(topology gputypes.PrimitiveTopology, r render.VertexRange, instanceCount int) error {
	switch {
	case d.closed:
		return ErrClosed
	case d.pass == nil:
		return ErrNoPass
	case d.bundle == nil:
		return ErrNoState
	case d.textures[0] == nil:
		return ErrNoTexture
	}
	ib, err := d.instanceBuffer(r.Region)
	if err != nil {
		return err
	}
	if instanceCount <= 0 {
		return nil
	}

	if d.pipelineDirty {
		if err := d.applyPipeline(); err != nil {
			return err
		}
	}
	if d.texturesDirty {
		if err := d.applyTextures(); err != nil {
			return err
		}
	}

	d.pass.SetVertexBuffer(0, ib.buf, r.ByteOffset())
	d.pass.Draw(verticesPerInstance(topology), uint32(instanceCount), 0, 0) //nolint:gosec // bounded by the native batch limit
	return nil
}

func (d *Device) applyPipeline() error {
	p, err := d.pipes.pipeline(d.bundle)
	if err != nil {
		return err
	}
	group, err := d.ensureViewport()
	if err != nil {
		return err
	}
	d.pass.SetPipeline(p)
	d.pass.SetBindGroup(0, group, nil)
	d.pipelineDirty = false
	return nil
}

func (d *Device) applyTextures() error {
	if d.binder == nil {
		return ErrNoTextureBinder
	}
	var samplers [2]hal.Sampler
	for i, desc := range d.samplers {
		s, err := d.pipes.sampler(desc)
		if err != nil {
			return err
		}
		samplers[i] = s
	}
	_, layout, err := d.pipes.layouts()
	if err != nil {
		return err
	}
	group, err := d.binder.TextureBindGroup(layout, d.textures, samplers)
	if err != nil {
		return fmt.Errorf("native: texture bind group: %w", err)
	}
	d.pass.SetBindGroup(1, group, nil)
	d.texturesDirty = false
	return nil
}

// verticesPerInstance returns the quad vertex count for topology.
func verticesPerInstance(topology gputypes.PrimitiveTopology) uint32 {
	if topology == gputypes.PrimitiveTopologyTriangleStrip {
		return 4
	}
	return 6
}

// Stats reports device resource counters.
type Stats struct {
	Buffers   BufferStats
	Pipelines int
}

// Stats returns the device resource counters.
func (d *Device) Stats() Stats {
	return Stats{Buffers: d.buffers.stats(), Pipelines: d.pipes.len()}
}

// Destroy releases all GPU resources. The device must not be used after.
func (d *Device) Destroy() {
	if d.closed {
		return
	}
	d.closed = true
	d.pass = nil
	d.buffers.destroy()
	d.viewportMu.Lock()
	if d.viewportGroup != nil {
		d.device.DestroyBindGroup(d.viewportGroup)
		d.viewportGroup = nil
	}
	if d.viewportBuf != nil {
		d.device.DestroyBuffer(d.viewportBuf)
		d.viewportBuf = nil
	}
	d.viewportMu.Unlock()
	d.pipes.destroy()
	Logger().Info("native: device destroyed")
}

var (
	_ render.Device      = (*Device)(nil)
	_ render.DepthTarget = (*Device)(nil)
)
