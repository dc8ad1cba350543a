// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The batching core never creates a device. The host hands one over, and a
// backend (see backend/native) adapts it to the narrow Device interface the
// compiler and issue step use.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider so that any gogpu
// host can be passed through unchanged.
type DeviceHandle = gpucontext.DeviceProvider

// Device is the immediate-mode device abstraction consumed by the batching
// core. Buffer uploads are synchronous and there is a single logical frame
// boundary.
//
// Calls made during Prepare (AllocateBuffer, UploadBuffer) may come from
// several worker goroutines at once and must be safe for concurrent use.
// Calls made during Issue (BindState, BindTextureSlot, SubmitInstancedDraw)
// always come from a single goroutine in layer order.
type Device interface {
	// AllocateBuffer returns a writable region large enough for vertexCount
	// instance records of InstanceStride bytes each.
	AllocateBuffer(vertexCount int) (*BufferRegion, error)

	// UploadBuffer copies the CPU-side contents of the region to the GPU.
	UploadBuffer(region *BufferRegion) error

	// ReleaseBuffer returns the region to the device's allocator. The region
	// must not be used afterwards.
	ReleaseBuffer(region *BufferRegion)

	// BindState binds a shader and state bundle together with its samplers.
	BindState(bundle *StateBundle, samplers SamplerPair) error

	// BindTextureSlot binds tex to the given texture slot (0 or 1).
	// A nil texture unbinds the slot.
	BindTextureSlot(index int, tex Texture) error

	// SubmitInstancedDraw draws instanceCount instances of a unit quad using
	// the instance records in r.
	SubmitInstancedDraw(topology gputypes.PrimitiveTopology, r VertexRange, instanceCount int) error
}

// BufferRegion is a span of instance records owned by one batch between
// Prepare and frame release.
type BufferRegion struct {
	// Handle is the backend buffer. Opaque to the core.
	Handle any

	// Data is the CPU staging memory for the region. Its length is
	// VertexCount * InstanceStride.
	Data []byte

	// BaseVertex is the index of the first record of this region inside the
	// backend buffer.
	BaseVertex int

	// VertexCount is the capacity of the region in records.
	VertexCount int
}

// Record returns the byte slice holding record i of the region.
func (r *BufferRegion) Record(i int) []byte {
	off := i * InstanceStride
	return r.Data[off : off+InstanceStride]
}

// VertexRange addresses a contiguous run of instance records in a region.
type VertexRange struct {
	Region *BufferRegion
	First  int
	Count  int
}

// ByteOffset returns the offset of the first record in the backend buffer.
func (r VertexRange) ByteOffset() uint64 {
	base := 0
	if r.Region != nil {
		base = r.Region.BaseVertex
	}
	return uint64((base + r.First) * InstanceStride) //nolint:gosec // record counts are bounded by buffer sizes
}

// DepthTarget is implemented by devices that know whether a usable depth
// attachment is bound. Devices that do not implement it are assumed to
// have none.
type DepthTarget interface {
	HasDepthBuffer() bool
}
