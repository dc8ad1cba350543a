// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import "fmt"

// Reservation is a run of contiguous draw call slots preallocated in a
// batch and filled in place.
//
// Reserved slots start zeroed and therefore invalid. Slots still invalid
// when the batch is prepared are skipped and counted as suppressed.
type Reservation struct {
	batch *Batch
	start int
	n     int
	gen   uint64
}

// Reserve appends n zeroed draw call slots and returns them as a
// Reservation.
func (b *Batch) Reserve(n int) (*Reservation, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: reserve %d", ErrCapacity, n)
	}
	start := len(b.draws)
	b.draws = append(b.draws, make([]DrawCall, n)...)
	if b.key.Kind == KindMultiTextureSprite {
		for range n {
			b.bundles = append(b.bundles, b.bundle)
		}
	}
	b.reservationGen++
	return &Reservation{batch: b, start: start, n: n, gen: b.reservationGen}, nil
}

// Len returns the number of reserved slots.
func (r *Reservation) Len() int { return r.n }

// At returns slot i for in-place editing. The pointer is valid until the
// next Append or Reserve on the batch. At panics if i is out of range or
// the batch is stale.
func (r *Reservation) At(i int) *DrawCall {
	if err := r.batch.checkFrame(); err != nil {
		panic(err)
	}
	if i < 0 || i >= r.n {
		panic(fmt.Sprintf("batch: reservation index %d out of range [0, %d)", i, r.n))
	}
	return &r.batch.draws[r.start+i]
}

// Set stores dc in slot i.
func (r *Reservation) Set(i int, dc DrawCall) {
	*r.At(i) = dc
}

// Shrink drops trailing slots so that n remain. Only the newest reservation
// of an open batch can shrink, and only while nothing was appended after
// it.
func (r *Reservation) Shrink(n int) error {
	b := r.batch
	if err := b.checkOpen(); err != nil {
		return err
	}
	if n < 0 || n > r.n {
		return fmt.Errorf("%w: shrink %d slots to %d", ErrCapacity, r.n, n)
	}
	if r.gen != b.reservationGen || r.start+r.n != len(b.draws) {
		return fmt.Errorf("%w: only the newest reservation can shrink", ErrCapacity)
	}
	end := r.start + n
	clear(b.draws[end:])
	b.draws = b.draws[:end]
	if b.key.Kind == KindMultiTextureSprite {
		b.bundles = b.bundles[:end]
	}
	r.n = n
	return nil
}
