// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native implements render.Device on the gogpu/wgpu HAL.
//
// The device records into a render pass owned by the host:
//
//	dev, err := native.New(halDevice, halQueue,
//	    native.WithTextureBinder(binder),
//	    native.WithDepthBuffer(true))
//	...
//	frame.Prepare()          // allocates and uploads instance buffers
//	dev.BeginPass(pass)      // pass is a hal.RenderPassEncoder
//	frame.Issue()            // pipelines, bind groups, instanced draws
//	dev.EndPass()
//
// Instance buffers are pooled by power-of-two size class (at least 256
// records) and returned to the pool when the frame releases them. One
// render pipeline is created per state bundle, sharing two bind group
// layouts: the viewport uniform (group 0) and the two texture and sampler
// pairs (group 1).
package native
