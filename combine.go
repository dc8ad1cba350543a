// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

// canCombine reports whether the draw calls of b can be appended to a
// without changing how either is compiled or bound.
func canCombine(a, b *Batch) bool {
	return a.key.normalized() == b.key.normalized() &&
		a.bundle == b.bundle &&
		a.samplers == b.samplers &&
		a.sortMode == b.sortMode &&
		a.sorter == b.sorter &&
		a.parameters.Equal(&b.parameters)
}

// combineBatches merges finalized, unprepared batches that share a key into
// the earliest of them. This happens when a key is evicted from a
// renderer's cache and reopened, or when two renderers draw with the same
// state into one frame. It returns the surviving batches in creation order
// and the eliminated ones.
func combineBatches(batches []*Batch) (kept, eliminated []*Batch) {
	kept = make([]*Batch, 0, len(batches))
	for _, b := range batches {
		if b.State() == StateNotPrepared {
			if into := findCombinable(kept, b); into != nil {
				into.draws = append(into.draws, b.draws...)
				into.bundles = append(into.bundles, b.bundles...)
				eliminated = append(eliminated, b)
				continue
			}
		}
		kept = append(kept, b)
	}
	return kept, eliminated
}

func findCombinable(kept []*Batch, b *Batch) *Batch {
	for _, a := range kept {
		if a.State() == StateNotPrepared && canCombine(a, b) {
			return a
		}
	}
	return nil
}
