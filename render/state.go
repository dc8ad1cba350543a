// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// StateBundle is a concrete, bindable shader and render state combination.
// Bundles are produced by the material resolver and compared by pointer.
type StateBundle struct {
	// ID identifies the bundle for diagnostics and backend pipeline caches.
	ID    uint64
	Label string

	// Shader is the compiled SPIR-V of the bundle's vertex and fragment stages.
	Shader []uint32

	// VertexEntry and FragmentEntry name the shader entry points.
	VertexEntry   string
	FragmentEntry string

	Blend        *gputypes.BlendState
	DepthStencil *hal.DepthStencilState
	Raster       *gputypes.PrimitiveState

	// DepthOnly is the variant used for the depth pre-pass, or nil when the
	// bundle has none.
	DepthOnly *StateBundle
}

// Topology returns the primitive topology of the bundle, defaulting to a
// triangle list.
func (s *StateBundle) Topology() gputypes.PrimitiveTopology {
	if s == nil || s.Raster == nil {
		return gputypes.PrimitiveTopologyTriangleList
	}
	return s.Raster.Topology
}

// WritesDepth reports whether the bundle has a depth attachment with writes
// enabled.
func (s *StateBundle) WritesDepth() bool {
	return s != nil && s.DepthStencil != nil && s.DepthStencil.DepthWriteEnabled
}

// SamplerPair holds the sampler descriptors for texture slots 0 and 1.
// Nil entries fall back to the backend default sampler.
type SamplerPair [2]*hal.SamplerDescriptor
