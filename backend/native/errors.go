// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNilDevice is returned when New is called without a HAL device or queue.
	ErrNilDevice = errors.New("native: nil HAL device or queue")

	// ErrNoHAL is returned when a device provider does not expose HAL types.
	ErrNoHAL = errors.New("native: provider does not expose HAL device and queue")

	// ErrNoPass is returned when a bind or draw happens without a render pass.
	ErrNoPass = errors.New("native: no render pass encoder set")

	// ErrNoState is returned when a draw happens before BindState.
	ErrNoState = errors.New("native: draw without bound state")

	// ErrNoTexture is returned when a draw happens without a texture in slot 0.
	ErrNoTexture = errors.New("native: draw without primary texture")

	// ErrNoShader is returned when a state bundle carries no SPIR-V.
	ErrNoShader = errors.New("native: state bundle has no shader")

	// ErrForeignRegion is returned for buffer regions not allocated by this device.
	ErrForeignRegion = errors.New("native: buffer region not owned by this device")

	// ErrSlotOutOfRange is returned for texture slots other than 0 and 1.
	ErrSlotOutOfRange = errors.New("native: texture slot out of range")

	// ErrNoTextureBinder is returned when textures are drawn without a TextureBinder.
	ErrNoTextureBinder = errors.New("native: no texture binder configured")

	// ErrClosed is returned after Destroy.
	ErrClosed = errors.New("native: device destroyed")
)
