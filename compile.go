// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/batch/render"
)

// MaxInstancesPerNativeBatch caps the instance count of one native batch.
// Runs sharing a texture set are split when they reach it.
const MaxInstancesPerNativeBatch = 4096

// compile sorts b and packs its valid draw calls into native batches.
func compile(b *Batch, s *Scratch) error {
	perm := sortDraws(b, s)

	valid := 0
	for _, i := range perm {
		if render.TextureUsable(b.draws[i].Textures.Primary) {
			valid++
		}
	}
	b.processed = len(perm)
	b.suppressed = len(perm) - valid
	if valid == 0 {
		return nil
	}

	region, err := b.device.AllocateBuffer(valid)
	if err != nil {
		return fmt.Errorf("batch: allocate %d instances: %w", valid, err)
	}
	b.region = region

	var zScale float32
	if b.key.Flags.Has(FlagUseZBuffer) {
		zScale = 1
	}
	batchWorldSpace := b.key.Flags.Has(FlagWorldSpace)
	multi := b.key.Kind == KindMultiTextureSprite

	var (
		cur       = -1
		curBundle = b.bundle
		cursor    int
	)
	for _, i := range perm {
		dc := &b.draws[i]
		if !render.TextureUsable(dc.Textures.Primary) {
			continue
		}

		bundle := b.bundle
		if multi {
			bundle = b.bundles[i]
		}

		if cur < 0 || !dc.Textures.Equal(b.natives[cur].Textures) || bundle != curBundle ||
			b.natives[cur].Range.Count == MaxInstancesPerNativeBatch {
			b.natives = append(b.natives, NativeBatch{
				Bundle:   bundle,
				Samplers: b.samplers,
				Textures: dc.Textures,
				Info: [2]render.TextureInfo{
					render.NewTextureInfo(dc.Textures.Primary),
					render.NewTextureInfo(dc.Textures.Secondary),
				},
				Range: render.VertexRange{Region: region, First: cursor},
				Valid: true,
			})
			cur = len(b.natives) - 1
			curBundle = bundle
		}

		packInstance(region.Record(cursor), dc, dc.Sort.Order*zScale, worldSpaceOf(dc, batchWorldSpace))
		cursor++
		b.natives[cur].Range.Count++
	}
	b.instances = cursor

	if err := b.device.UploadBuffer(region); err != nil {
		return fmt.Errorf("batch: upload %d instances: %w", cursor, err)
	}
	return nil
}

func worldSpaceOf(dc *DrawCall, inherited bool) bool {
	switch dc.WorldSpace {
	case WorldSpaceOn:
		return true
	case WorldSpaceOff:
		return false
	default:
		return inherited
	}
}

// packInstance writes one instance record in the render.InstanceStride
// layout.
func packInstance(rec []byte, dc *DrawCall, z float32, worldSpace bool) {
	region2 := [4]float32{render.NoSecondRegion, render.NoSecondRegion, render.NoSecondRegion, render.NoSecondRegion}
	if dc.HasRegion2 {
		region2 = [4]float32{dc.Region2.Min[0], dc.Region2.Min[1], dc.Region2.Max[0], dc.Region2.Max[1]}
	}
	var ws float32
	if worldSpace {
		ws = 1
	}

	attrs := [8][4]float32{
		render.AttrPositionRotation: {dc.Position[0], dc.Position[1], z, dc.Rotation},
		render.AttrScaleOrigin:      {dc.Scale[0], dc.Scale[1], dc.Origin[0], dc.Origin[1]},
		render.AttrRegion1:          {dc.Region.Min[0], dc.Region.Min[1], dc.Region.Max[0], dc.Region.Max[1]},
		render.AttrRegion2:          region2,
		render.AttrMultiplyColor:    dc.MultiplyColor,
		render.AttrAddColor:         dc.AddColor,
		render.AttrUserData:         dc.UserData,
		render.AttrFlags:            {ws, 0, 0, 0},
	}

	off := 0
	for _, a := range attrs {
		for _, v := range a {
			binary.LittleEndian.PutUint32(rec[off:], math.Float32bits(v))
			off += 4
		}
	}
}
