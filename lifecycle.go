// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import "sync/atomic"

// PrepareState is the lifecycle state of a Batch.
//
//	Invalid -> NotPrepared -> Preparing -> Prepared -> Issuing -> Issued
//
// A batch leaves Invalid when it is handed out by a Frame and returns to it
// when it is released to the pool.
type PrepareState int32

const (
	StateInvalid PrepareState = iota
	StateNotPrepared
	StatePreparing
	StatePrepared
	StateIssuing
	StateIssued
)

var prepareStateNames = [...]string{
	StateInvalid:     "Invalid",
	StateNotPrepared: "NotPrepared",
	StatePreparing:   "Preparing",
	StatePrepared:    "Prepared",
	StateIssuing:     "Issuing",
	StateIssued:      "Issued",
}

// String returns the state name.
func (s PrepareState) String() string {
	if s < 0 || int(s) >= len(prepareStateNames) {
		return "Unknown"
	}
	return prepareStateNames[s]
}

// lifecycle is the atomic state cell of a batch.
type lifecycle struct {
	state atomic.Int32
}

func (l *lifecycle) load() PrepareState {
	return PrepareState(l.state.Load())
}

// transition moves from -> to atomically. If the cell does not hold from,
// nothing changes and a *LifecycleError reports what was observed.
func (l *lifecycle) transition(op string, from, to PrepareState) error {
	if l.state.CompareAndSwap(int32(from), int32(to)) {
		return nil
	}
	return &LifecycleError{Op: op, From: from, To: to, Actual: l.load()}
}

// force stores s unconditionally. Only used by the batch pool.
func (l *lifecycle) force(s PrepareState) {
	l.state.Store(int32(s))
}
