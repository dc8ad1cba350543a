// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"sync/atomic"

	"github.com/gogpu/batch/render"
)

// BatchOptions configures a batch created by Frame.NewBatch.
type BatchOptions struct {
	// Bundle is the state bundle draw calls are issued with. Multi-texture
	// sprite batches carry one bundle per draw call instead.
	Bundle   *render.StateBundle
	Samplers render.SamplerPair

	// Parameters are copied into the batch.
	Parameters *Parameters

	Sort   SortMode
	Sorter *Sorter

	// Capacity preallocates room for this many draw calls.
	Capacity int
}

// Batch accumulates draw calls sharing one Key until its frame is
// prepared.
//
// Append and Reserve must be called from a single goroutine. A batch is
// owned by its Frame. Once the frame is ended, or the batch was combined
// into another one by Frame.Prepare, every mutating call fails with
// ErrStaleFrame.
type Batch struct {
	key        Key
	frame      *Frame
	frameIndex uint64
	device     render.Device
	bundle     *render.StateBundle
	samplers   render.SamplerPair

	parameters Parameters
	sortMode   SortMode
	sorter     *Sorter

	// Draw call, bundle and native batch storage is pooled by the manager;
	// the Batch itself is never reused so stale handles stay detectable.
	*batchBuffers

	reservationGen uint64

	finalized atomic.Bool
	evicted   bool
	life      lifecycle

	region *render.BufferRegion

	instances      int
	suppressed     int
	processed      int
	invalidNatives int
}

// batchBuffers is the reusable storage of a batch.
type batchBuffers struct {
	draws []DrawCall
	// bundles parallels draws for KindMultiTextureSprite batches.
	bundles []*render.StateBundle
	natives []NativeBatch
}

// releasedBuffers backs batches after release. It is only ever read: every
// path that writes storage checks the frame or the lifecycle first.
var releasedBuffers = &batchBuffers{}

func newBatch() *Batch {
	return &Batch{batchBuffers: &batchBuffers{}}
}

// init prepares a pooled batch for key.
func (b *Batch) init(f *Frame, key Key, opts BatchOptions) {
	b.key = key
	b.frame = f
	b.frameIndex = f.Index()
	b.device = f.manager.device
	b.bundle = opts.Bundle
	b.samplers = opts.Samplers
	if opts.Parameters != nil {
		b.parameters.replaceWith(opts.Parameters)
	} else {
		b.parameters.Clear()
	}
	b.sortMode = opts.Sort
	b.sorter = opts.Sorter
	if opts.Capacity > cap(b.draws) {
		b.draws = make([]DrawCall, 0, opts.Capacity)
	}
	b.life.force(StateNotPrepared)
}

// Key returns the key the batch was opened with.
func (b *Batch) Key() Key { return b.key }

// Frame returns the frame owning the batch.
func (b *Batch) Frame() *Frame { return b.frame }

// Bundle returns the state bundle of the batch.
func (b *Batch) Bundle() *render.StateBundle { return b.bundle }

// Parameters returns the material parameter overrides of the batch.
func (b *Batch) Parameters() *Parameters { return &b.parameters }

// State returns the lifecycle state.
func (b *Batch) State() PrepareState { return b.life.load() }

// Len returns the number of queued draw calls, reserved slots included.
func (b *Batch) Len() int { return len(b.draws) }

// DrawCalls returns the queued draw calls in submission order. The slice
// aliases the batch storage and is valid until the next Append or Reserve.
func (b *Batch) DrawCalls() []DrawCall { return b.draws }

// IsFinalized reports whether the batch accepts no more draw calls.
func (b *Batch) IsFinalized() bool { return b.finalized.Load() }

// Evicted reports whether the batch was finalized by cache eviction.
func (b *Batch) Evicted() bool { return b.evicted }

// Append queues dc.
func (b *Batch) Append(dc DrawCall) error {
	return b.appendWithBundle(dc, nil)
}

// AppendAll queues every draw call of dcs. Nothing is queued if any of
// them is invalid.
func (b *Batch) AppendAll(dcs []DrawCall) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	for i := range dcs {
		if !dcs[i].IsValid() {
			return ErrInvalidDrawCall
		}
	}
	b.draws = append(b.draws, dcs...)
	if b.key.Kind == KindMultiTextureSprite {
		for range dcs {
			b.bundles = append(b.bundles, b.bundle)
		}
	}
	return nil
}

func (b *Batch) appendWithBundle(dc DrawCall, bundle *render.StateBundle) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if !dc.IsValid() {
		return ErrInvalidDrawCall
	}
	b.draws = append(b.draws, dc)
	if b.key.Kind == KindMultiTextureSprite {
		if bundle == nil {
			bundle = b.bundle
		}
		b.bundles = append(b.bundles, bundle)
	}
	return nil
}

// checkFrame reports ErrStaleFrame once the owning frame was ended or the
// batch was released.
func (b *Batch) checkFrame() error {
	if b.frame == nil || b.frame.Index() != b.frameIndex {
		return ErrStaleFrame
	}
	return nil
}

func (b *Batch) checkOpen() error {
	if err := b.checkFrame(); err != nil {
		return err
	}
	if b.finalized.Load() {
		return ErrBatchFinalized
	}
	if s := b.life.load(); s != StateNotPrepared {
		return &LifecycleError{Op: "append", From: StateNotPrepared, To: StateNotPrepared, Actual: s}
	}
	return nil
}

// Finalize closes the batch for further draw calls. The batch is prepared
// and issued with the rest of its frame. Finalize is idempotent.
func (b *Batch) Finalize() {
	b.finalized.Store(true)
}

// Prepare sorts and compiles the batch into native batches using s as
// scratch space. It is legal only once, from NotPrepared.
//
// A device allocation or upload failure leaves the batch Prepared with no
// native batches and is returned.
func (b *Batch) Prepare(s *Scratch) error {
	if err := b.checkFrame(); err != nil {
		return err
	}
	if err := b.life.transition("prepare", StateNotPrepared, StatePreparing); err != nil {
		return err
	}
	b.finalized.Store(true)

	err := compile(b, s)
	if err != nil {
		b.natives = b.natives[:0]
	}
	if terr := b.life.transition("prepare", StatePreparing, StatePrepared); terr != nil {
		return terr
	}
	return err
}

// Issue binds state and submits every valid native batch to the device.
// It is legal only once, from Prepared.
func (b *Batch) Issue() error {
	if err := b.checkFrame(); err != nil {
		return err
	}
	return b.issue(&issueState{})
}

func (b *Batch) issue(st *issueState) error {
	if err := b.life.transition("issue", StatePrepared, StateIssuing); err != nil {
		return err
	}
	err := issueNatives(b, st)
	if terr := b.life.transition("issue", StateIssuing, StateIssued); terr != nil {
		return terr
	}
	return err
}

// Reset drops all draw calls and compiled output and returns the batch to
// NotPrepared, keeping its key and options. Resetting a batch while it is
// being prepared or issued is a lifecycle error.
func (b *Batch) Reset() error {
	if err := b.checkFrame(); err != nil {
		return err
	}
	for {
		cur := b.life.load()
		if cur == StateInvalid || cur == StatePreparing || cur == StateIssuing {
			return &LifecycleError{Op: "reset", From: cur, To: StateNotPrepared, Actual: cur}
		}
		if b.life.state.CompareAndSwap(int32(cur), int32(StateNotPrepared)) {
			break
		}
	}
	b.clearContents()
	b.finalized.Store(false)
	b.evicted = false
	return nil
}

// clearContents releases the buffer region and empties every per-frame
// list, keeping capacity.
func (b *Batch) clearContents() {
	if b.region != nil {
		b.device.ReleaseBuffer(b.region)
		b.region = nil
	}
	clear(b.draws)
	b.draws = b.draws[:0]
	clear(b.bundles)
	b.bundles = b.bundles[:0]
	clear(b.natives)
	b.natives = b.natives[:0]
	b.instances, b.suppressed, b.processed, b.invalidNatives = 0, 0, 0, 0
	b.reservationGen++
}

// release detaches the batch from its frame and hands its storage back.
// The returned buffers are empty and ready for another batch; the batch
// itself stays dead.
func (b *Batch) release() *batchBuffers {
	b.clearContents()
	buf := b.batchBuffers
	b.batchBuffers = releasedBuffers
	b.life.force(StateInvalid)
	b.finalized.Store(true)
	b.frame = nil
	b.frameIndex = 0
	b.device = nil
	b.bundle = nil
	b.sorter = nil
	b.parameters = Parameters{}
	return buf
}

// NativeBatches returns the compiled native batches. Valid after Prepare
// until the frame is released.
func (b *Batch) NativeBatches() []NativeBatch { return b.natives }

// Instances returns the number of instance records written by Prepare.
func (b *Batch) Instances() int { return b.instances }

// Suppressed returns the number of draw calls skipped by Prepare because
// their texture was missing or disposed.
func (b *Batch) Suppressed() int { return b.suppressed }

// Processed returns the number of draw calls Prepare visited, suppressed
// ones included.
func (b *Batch) Processed() int { return b.processed }

// InvalidNativeBatches returns the number of native batches dropped at
// issue because a texture was disposed after Prepare.
func (b *Batch) InvalidNativeBatches() int { return b.invalidNatives }
