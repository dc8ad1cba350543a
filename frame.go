// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/batch/internal/parallel"
)

// Frame is the container of every batch built during one logical frame.
//
// Batches are registered when created. Prepare compiles all of them in
// parallel, Issue submits them in ascending layer order. Frames are
// obtained from Manager.BeginFrame and returned with Manager.EndFrame.
type Frame struct {
	manager *Manager

	// index identifies the current use of this frame. 0 while the frame
	// sits in the manager's free list.
	index atomic.Uint64

	mu       sync.Mutex
	batches  []*Batch
	stats    FrameStats
	combined int
}

// Index returns the monotonic index of the frame. Recycled frames get a new
// index, so a value captured earlier identifies a stale use.
func (f *Frame) Index() uint64 { return f.index.Load() }

// Manager returns the manager the frame belongs to.
func (f *Frame) Manager() *Manager { return f.manager }

// NewBatch creates a batch for key and registers it with the frame.
// key.Container is set to f.
func (f *Frame) NewBatch(key Key, opts BatchOptions) (*Batch, error) {
	if f == nil {
		return nil, ErrNilContainer
	}
	if f.Index() == 0 {
		return nil, ErrStaleFrame
	}
	key.Container = f

	b := f.manager.newBatch()
	if opts.Capacity == 0 {
		opts.Capacity = f.manager.cfg.batchCapacity
	}
	b.init(f, key, opts)

	f.mu.Lock()
	f.batches = append(f.batches, b)
	f.mu.Unlock()
	return b, nil
}

// Batches returns a snapshot of the registered batches in creation order.
func (f *Frame) Batches() []*Batch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.batches)
}

// Prepare finalizes every batch and compiles the ones not yet prepared on
// the manager's worker pool, one scratch context per worker.
// Errors of individual batches are joined.
//
// Unless disabled with WithBatchCombining, unprepared batches with equal
// keys, bundles, samplers, sorting and parameters are first merged into
// the earliest of them. Merged-away batches are released: later calls on
// them fail with ErrStaleFrame and their reservations become invalid.
func (f *Frame) Prepare() error {
	for _, b := range f.Batches() {
		b.Finalize()
	}
	if f.manager.cfg.combineBatches {
		f.combine()
	}
	batches := f.Batches()

	errs := make([]error, len(batches))
	tasks := make([]parallel.Task, 0, len(batches))
	for i, b := range batches {
		if b.State() != StateNotPrepared {
			continue
		}
		tasks = append(tasks, func(worker int) {
			errs[i] = b.Prepare(f.manager.scratch.Get(worker))
		})
	}
	f.manager.pool.ExecuteAll(tasks)

	stats := collectStats(batches)
	f.mu.Lock()
	stats.Combined = f.combined
	f.stats = stats
	f.mu.Unlock()

	Logger().Debug("batch: frame prepared",
		"frame", f.Index(),
		"batches", stats.Batches,
		"combined", stats.Combined,
		"nativeBatches", stats.NativeBatches,
		"instances", stats.Instances,
		"suppressed", stats.Suppressed)

	return errors.Join(errs...)
}

func (f *Frame) combine() {
	f.mu.Lock()
	kept, eliminated := combineBatches(f.batches)
	clear(f.batches[len(kept):])
	f.batches = append(f.batches[:0], kept...)
	f.combined += len(eliminated)
	f.mu.Unlock()

	for _, b := range eliminated {
		f.manager.releaseBatch(b)
	}
}

// Issue submits every batch to the device in ascending layer order.
// Batches on the same layer keep their creation order. Issue must be
// called from one goroutine and stops at the first error.
func (f *Frame) Issue() error {
	batches := f.Batches()
	slices.SortStableFunc(batches, func(a, b *Batch) int {
		return cmp.Compare(a.key.Layer, b.key.Layer)
	})

	st := &issueState{}
	for _, b := range batches {
		if err := b.issue(st); err != nil {
			return fmt.Errorf("batch: issue layer %d: %w", b.key.Layer, err)
		}
	}

	invalid := 0
	for _, b := range batches {
		invalid += b.invalidNatives
	}
	f.mu.Lock()
	f.stats.InvalidNativeBatches = invalid
	f.mu.Unlock()
	return nil
}

// Stats returns the counters of the last Prepare and Issue.
func (f *Frame) Stats() FrameStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

// reset releases every batch back to the pool. Called by EndFrame.
func (f *Frame) reset() {
	f.mu.Lock()
	batches := f.batches
	f.batches = nil
	f.stats = FrameStats{}
	f.combined = 0
	f.mu.Unlock()

	for _, b := range batches {
		f.manager.releaseBatch(b)
	}
	clear(batches)
	f.mu.Lock()
	f.batches = batches[:0]
	f.mu.Unlock()
}
