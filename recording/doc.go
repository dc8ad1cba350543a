// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package recording provides an in-memory render.Device that records every
// call as a typed command.
//
// Commands are typed structs rather than an opaque byte stream, so a frame
// can be inspected command by command: which state bundles were bound,
// which textures, and how many instances each draw submitted.
//
// # Commands
//
//   - Buffer commands (AllocateBuffer, UploadBuffer, ReleaseBuffer)
//   - Issue commands (BindState, BindTexture, Draw)
//
// # Example
//
//	dev := recording.NewDevice()
//	m, _ := batch.NewManager(dev)
//	// ... build, prepare and issue a frame ...
//	rec := dev.Finish()
//
//	// Replay the frame onto a GPU device.
//	err := rec.Playback(gpuDevice)
package recording
