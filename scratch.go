// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

// Scratch holds the reusable working memory of one Prepare worker.
// A Scratch must not be used by two goroutines at once.
type Scratch struct {
	perm []int32
}

// NewScratch returns an empty scratch context.
func NewScratch() *Scratch {
	return &Scratch{}
}

// permutation returns the identity permutation of length n, reusing the
// scratch storage.
func (s *Scratch) permutation(n int) []int32 {
	if cap(s.perm) < n {
		s.perm = make([]int32, n)
	}
	s.perm = s.perm[:n]
	for i := range s.perm {
		s.perm[i] = int32(i) //nolint:gosec // batches never approach 2^31 draws
	}
	return s.perm
}
