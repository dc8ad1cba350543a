// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the device boundary of the batching core.
//
// # Key Principle
//
// The batching core RECEIVES a device from the host application, it does NOT
// create its own. The host wraps its GPU device in something that implements
// Device (see backend/native for a gogpu/wgpu HAL implementation, or
// recording for an in-memory one) and hands it to the batch Manager.
//
// # Core Types
//
//   - Device: immediate-mode buffer allocation, state binding and draw submission
//   - Texture: opaque host texture handle with a stable id
//   - StateBundle: bindable shader plus blend, depth and raster state
//   - BufferRegion, VertexRange: instance record storage and ranges within it
//   - TextureInfo: per-slot texture metadata resolved once per texture change
//
// # Instance Records
//
// Every draw call is packed into one InstanceStride-byte record made of eight
// vec4<f32> attributes. InstanceLayout describes the record to a pipeline.
// Region 2 is filled with NoSecondRegion when a draw call has no secondary
// texture region, so the shader can select without branching.
package render
