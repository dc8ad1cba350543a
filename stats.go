// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

// FrameStats summarizes the batches of a frame.
type FrameStats struct {
	Batches int
	// Combined counts batches merged into an equal one by Prepare.
	Combined      int
	NativeBatches int
	// DrawCalls counts every queued draw call, suppressed ones included.
	DrawCalls int
	Instances int
	// Suppressed counts draw calls skipped because their texture was
	// missing or disposed at Prepare.
	Suppressed int
	// InvalidNativeBatches counts native batches skipped at Issue.
	InvalidNativeBatches int
}

func collectStats(batches []*Batch) FrameStats {
	var s FrameStats
	for _, b := range batches {
		s.Batches++
		s.NativeBatches += len(b.natives)
		s.DrawCalls += len(b.draws)
		s.Instances += b.instances
		s.Suppressed += b.suppressed
		s.InvalidNativeBatches += b.invalidNatives
	}
	return s
}
