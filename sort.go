// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"cmp"
	"math"
	"slices"

	"github.com/gogpu/batch/render"
)

// SortMode selects how a batch orders its draw calls before compiling.
// Every mode except SortNone breaks ties by texture so equal keys still
// group into few native batches.
type SortMode uint8

const (
	// SortOrderThenTexture orders by SortKey.Order, then texture.
	SortOrderThenTexture SortMode = iota
	// SortDeclarative orders by the batch Sorter rules on SortKey.Tags,
	// then Order, then texture.
	SortDeclarative
	// SortTextureThenReverseOrder groups by texture first and draws each
	// group from the highest Order down.
	SortTextureThenReverseOrder
	// SortTextureOnly only groups by texture. Selected automatically for
	// batches whose depth buffer resolves visibility.
	SortTextureOnly
	// SortNone keeps submission order.
	SortNone
)

func (m SortMode) String() string {
	switch m {
	case SortOrderThenTexture:
		return "OrderThenTexture"
	case SortDeclarative:
		return "Declarative"
	case SortTextureThenReverseOrder:
		return "TextureThenReverseOrder"
	case SortTextureOnly:
		return "TextureOnly"
	case SortNone:
		return "None"
	default:
		return "SortMode(?)"
	}
}

// effectiveSortMode returns the mode Prepare uses.
func (b *Batch) effectiveSortMode() SortMode {
	if b.key.Flags.Has(FlagUseZBuffer|FlagZBufferOnlySorting) && b.sortMode != SortNone {
		return SortTextureOnly
	}
	return b.sortMode
}

// orderKey maps a float to an unsigned key with the same total order:
// negative values flip all bits, positive values flip the sign bit.
// -0 sorts before +0 and NaNs sort at the extremes by sign.
func orderKey(f float32) uint32 {
	bits := math.Float32bits(f)
	if bits&(1<<31) != 0 {
		return ^bits
	}
	return bits | 1<<31
}

func bundleID(s *render.StateBundle) uint64 {
	if s == nil {
		return 0
	}
	return s.ID
}

// sortDraws fills the scratch permutation with draw indices in issue order.
// The draw calls themselves never move.
func sortDraws(b *Batch, s *Scratch) []int32 {
	perm := s.permutation(len(b.draws))
	mode := b.effectiveSortMode()
	if mode == SortNone || len(perm) < 2 {
		return perm
	}

	draws := b.draws
	multi := b.key.Kind == KindMultiTextureSprite

	group := func(i, j int32) int {
		if multi {
			if c := cmp.Compare(bundleID(b.bundles[i]), bundleID(b.bundles[j])); c != 0 {
				return c
			}
		}
		return draws[i].Textures.Compare(draws[j].Textures)
	}

	var less func(i, j int32) int
	switch mode {
	case SortDeclarative:
		less = func(i, j int32) int {
			if c := b.sorter.Compare(draws[i].Sort.Tags, draws[j].Sort.Tags); c != 0 {
				return c
			}
			if c := cmp.Compare(orderKey(draws[i].Sort.Order), orderKey(draws[j].Sort.Order)); c != 0 {
				return c
			}
			return group(i, j)
		}
	case SortTextureThenReverseOrder:
		less = func(i, j int32) int {
			if c := group(i, j); c != 0 {
				return c
			}
			return cmp.Compare(orderKey(draws[j].Sort.Order), orderKey(draws[i].Sort.Order))
		}
	case SortTextureOnly:
		less = group
	default:
		less = func(i, j int32) int {
			if c := cmp.Compare(orderKey(draws[i].Sort.Order), orderKey(draws[j].Sort.Order)); c != 0 {
				return c
			}
			return group(i, j)
		}
	}

	slices.SortStableFunc(perm, less)
	return perm
}
