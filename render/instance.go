// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/gputypes"

// InstanceStride is the size in bytes of one packed instance record:
// eight vec4<f32> attributes.
const InstanceStride = 8 * 16

// Attribute locations of the instance record.
const (
	AttrPositionRotation = iota // x, y, z, rotation
	AttrScaleOrigin             // scale.x, scale.y, origin.x, origin.y
	AttrRegion1                 // left, top, right, bottom in texels
	AttrRegion2                 // same, or NoSecondRegion in every lane
	AttrMultiplyColor
	AttrAddColor
	AttrUserData
	AttrFlags // world-space flag, then padding
	attrCount
)

// NoSecondRegion marks every lane of region 2 when a draw call samples only
// its primary texture region.
const NoSecondRegion float32 = -1

// InstanceLayout returns the vertex buffer layout of the instance record.
func InstanceLayout() gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, attrCount)
	for i := range attrs {
		attrs[i] = gputypes.VertexAttribute{
			Format:         gputypes.VertexFormatFloat32x4,
			Offset:         uint64(i * 16), //nolint:gosec // bounded by attrCount
			ShaderLocation: uint32(i),      //nolint:gosec // bounded by attrCount
		}
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: InstanceStride,
		StepMode:    gputypes.VertexStepModeInstance,
		Attributes:  attrs,
	}
}
