// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package material resolves base materials and render state overrides into
// bindable state bundles.
//
// A Material is a WGSL program compiled to SPIR-V with naga on first use.
// A Resolver combines a material with blend, depth-stencil and primitive
// state descriptors into a render.StateBundle and caches the result on the
// 4-tuple, so repeated batches with the same state share one bundle.
//
// The built-in Sprite material draws the instance records produced by the
// batch compiler and provides a depth-only entry point for depth pre-passes.
package material
