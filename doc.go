// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package batch groups, sorts and compiles 2D draw calls into the minimum
// number of instanced GPU draws.
//
// # Overview
//
// Application code issues many small stateless draw calls per frame
// (sprites, glyphs). A Renderer collects them into batches keyed on the
// current render state; a Frame then prepares every batch in parallel and
// issues the result to a render.Device in layer order.
//
// # Quick Start
//
//	m, err := batch.NewManager(dev)
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	frame, _ := m.BeginFrame()
//	r, _ := batch.NewRenderer(frame)
//	r.Draw(batch.NewDrawCall(tex, f32.Vec2{10, 20}))
//
//	if err := frame.Prepare(); err != nil {
//	    return err
//	}
//	if err := frame.Issue(); err != nil {
//	    return err
//	}
//	m.EndFrame(frame)
//
// # Batch Cache
//
// Each Renderer owns a Cache of the 4 most recently used batches. A draw
// with the same Key and Parameters as a cached batch reuses it; the entry
// moves to the front. A fifth distinct key pushes the oldest batch out and
// finalizes it, so its draw calls are still issued but nothing more can be
// appended to it.
//
// # Compilation
//
// Prepare sorts a batch through an index permutation (see SortMode), skips
// draw calls whose texture is missing or disposed, and packs the rest into
// fixed-stride instance records. A new native batch starts whenever the
// texture set changes or MaxInstancesPerNativeBatch is reached.
//
// # Lifecycle
//
// Batches move through Invalid, NotPrepared, Preparing, Prepared, Issuing
// and Issued. Out-of-order Prepare or Issue calls fail with a
// *LifecycleError wrapping ErrLifecycle.
//
// # Logging
//
// The package is silent by default. Use SetLogger to route diagnostics to
// any slog.Handler.
package batch
