// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleFrame is returned when a Renderer created for one frame is
	// used after that frame was released or recycled.
	ErrStaleFrame = errors.New("batch: renderer was created for a previous frame")

	// ErrLifecycle is wrapped by every *LifecycleError.
	ErrLifecycle = errors.New("batch: illegal lifecycle transition")

	// ErrInvalidDrawCall is returned when appending a draw call without a
	// primary texture.
	ErrInvalidDrawCall = errors.New("batch: draw call has no texture")

	// ErrBatchFinalized is returned when appending to or reserving in a batch
	// that was finalized, either explicitly or by cache eviction.
	ErrBatchFinalized = errors.New("batch: batch is finalized")

	// ErrNilContainer is returned when a Renderer or batch is created
	// without a frame.
	ErrNilContainer = errors.New("batch: nil frame")

	// ErrCapacity is returned for reservations with a negative size and for
	// shrinks that are out of range or not on the newest reservation.
	ErrCapacity = errors.New("batch: invalid reservation size")

	// ErrNilDevice is returned by NewManager when no device is given.
	ErrNilDevice = errors.New("batch: nil device")

	// ErrManagerClosed is returned by BeginFrame after Close.
	ErrManagerClosed = errors.New("batch: manager is closed")
)

// LifecycleError describes a failed state transition of a batch.
// It wraps ErrLifecycle.
type LifecycleError struct {
	Op     string
	From   PrepareState
	To     PrepareState
	Actual PrepareState
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("batch: %s: cannot move %s -> %s, batch is %s", e.Op, e.From, e.To, e.Actual)
}

// Unwrap returns ErrLifecycle.
func (e *LifecycleError) Unwrap() error {
	return ErrLifecycle
}
