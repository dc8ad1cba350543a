// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"testing"

	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/math/f32"
)

func layerKey(layer int) Key {
	return Key{Kind: KindSprite, Layer: layer}
}

func TestCacheIdentity(t *testing.T) {
	var c Cache
	var params Parameters
	batches := make([]*Batch, CacheCapacity)
	for i := range batches {
		batches[i] = newBatch()
		if ev := c.Insert(layerKey(i), batches[i]); ev != nil {
			t.Fatalf("Insert(%d) evicted %p, want nil", i, ev)
		}
	}

	// Repeated lookups of up to four keys always return the same batch.
	for round := range 3 {
		for i := range batches {
			got, ok := c.Lookup(layerKey(i), &params)
			if !ok || got != batches[i] {
				t.Errorf("round %d: Lookup(%d) = %p, %v, want %p, true", round, i, got, ok, batches[i])
			}
		}
	}
	if c.Len() != CacheCapacity {
		t.Errorf("Len() = %d, want %d", c.Len(), CacheCapacity)
	}
}

func TestCacheMoveToFront(t *testing.T) {
	var c Cache
	var params Parameters
	for i := range 4 {
		c.Insert(layerKey(i), newBatch())
	}
	// Most recent first: 3 2 1 0.
	if _, ok := c.Lookup(layerKey(1), &params); !ok {
		t.Fatal("Lookup(1) missed")
	}

	want := []int{1, 3, 2, 0}
	keys := c.Keys()
	for i, k := range keys {
		if k.Layer != want[i] {
			t.Errorf("slot %d holds layer %d, want %d", i, k.Layer, want[i])
		}
	}

	// Hitting slot 0 changes nothing.
	c.Lookup(layerKey(1), &params)
	if got := c.Keys()[0].Layer; got != 1 {
		t.Errorf("slot 0 = layer %d, want 1", got)
	}
}

func TestCacheEvictsLeastRecent(t *testing.T) {
	var c Cache
	var params Parameters
	first := newBatch()
	c.Insert(layerKey(0), first)
	for i := 1; i < CacheCapacity; i++ {
		c.Insert(layerKey(i), newBatch())
	}

	ev := c.Insert(layerKey(99), newBatch())
	if ev != first {
		t.Errorf("evicted %p, want the least recent batch %p", ev, first)
	}
	if _, ok := c.Lookup(layerKey(0), &params); ok {
		t.Error("evicted key is still cached")
	}
	if c.Len() != CacheCapacity {
		t.Errorf("Len() = %d, want %d", c.Len(), CacheCapacity)
	}
}

func TestCacheParametersMustMatch(t *testing.T) {
	var c Cache
	b := newBatch()
	b.parameters.Set("tint", f32.Vec4{1, 0, 0, 1})
	c.Insert(layerKey(0), b)

	var other Parameters
	if _, ok := c.Lookup(layerKey(0), &other); ok {
		t.Error("Lookup with different parameters hit")
	}
	other.Set("tint", f32.Vec4{1, 0, 0, 1})
	if got, ok := c.Lookup(layerKey(0), &other); !ok || got != b {
		t.Error("Lookup with equal parameters missed")
	}

	// Same key, new parameters: replaced in place.
	nb := newBatch()
	if ev := c.Insert(layerKey(0), nb); ev != b {
		t.Errorf("Insert same key evicted %p, want %p", ev, b)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheDistinctDescriptors(t *testing.T) {
	var c Cache
	var params Parameters
	d1 := testBlend()
	d2 := testBlend()

	k1 := Key{Kind: KindSprite, Blend: d1}
	k2 := Key{Kind: KindSprite, Blend: d2}
	c.Insert(k1, newBatch())
	if _, ok := c.Lookup(k2, &params); ok {
		t.Error("equal-content descriptors at different addresses must not share a batch")
	}
}

func TestCacheMultiTextureKeyIgnoresState(t *testing.T) {
	var c Cache
	var params Parameters
	b := newBatch()
	c.Insert(Key{Kind: KindMultiTextureSprite, Layer: 2, Blend: testBlend()}, b)

	got, ok := c.Lookup(Key{Kind: KindMultiTextureSprite, Layer: 2, Blend: testBlend(), Extra: MaterialKey(7)}, &params)
	if !ok || got != b {
		t.Error("multi-texture keys differing only in state should share a batch")
	}
	if _, ok := c.Lookup(Key{Kind: KindMultiTextureSprite, Layer: 2, Sampler1: &hal.SamplerDescriptor{}}, &params); ok {
		t.Error("multi-texture keys with different samplers must not share a batch")
	}
}

func TestCacheClear(t *testing.T) {
	var c Cache
	c.Insert(layerKey(0), newBatch())
	c.Clear()
	if c.Len() != 0 || len(c.Batches()) != 0 {
		t.Error("Clear left entries behind")
	}
}

func BenchmarkCacheLookup(b *testing.B) {
	var c Cache
	var params Parameters
	for i := range CacheCapacity {
		c.Insert(layerKey(i), newBatch())
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		c.Lookup(layerKey(i%CacheCapacity), &params)
	}
}
