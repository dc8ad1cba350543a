// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

// CacheCapacity is the number of open batches a Cache holds.
const CacheCapacity = 4

type cacheSlot struct {
	key   Key
	batch *Batch
}

// Cache is a fixed-capacity move-to-front cache of open batches.
//
// Slot 0 always holds the most recently used key and a key is held by at
// most one slot. Cache is not safe for concurrent use; every Renderer owns
// its own.
type Cache struct {
	slots [CacheCapacity]cacheSlot
	count int
}

// Lookup returns the cached batch for key if its parameters equal params.
// A hit moves the entry to slot 0, keeping the relative order of the others.
func (c *Cache) Lookup(key Key, params *Parameters) (*Batch, bool) {
	key = key.normalized()
	for i := 0; i < c.count; i++ {
		s := &c.slots[i]
		if s.key != key || !s.batch.parameters.Equal(params) {
			continue
		}
		c.moveToFront(i)
		return c.slots[0].batch, true
	}
	return nil, false
}

// Insert places batch for key in slot 0. If the cache was full, the entry
// that fell off the end is returned so the caller can finalize it.
func (c *Cache) Insert(key Key, b *Batch) (evicted *Batch) {
	key = key.normalized()

	// A stale entry for the same key (different parameters) is replaced in
	// place so keys stay unique.
	for i := 0; i < c.count; i++ {
		if c.slots[i].key == key {
			evicted = c.slots[i].batch
			c.slots[i] = cacheSlot{key: key, batch: b}
			c.moveToFront(i)
			return evicted
		}
	}

	if c.count == CacheCapacity {
		evicted = c.slots[CacheCapacity-1].batch
	} else {
		c.count++
	}
	copy(c.slots[1:c.count], c.slots[:c.count-1])
	c.slots[0] = cacheSlot{key: key, batch: b}
	return evicted
}

func (c *Cache) moveToFront(i int) {
	if i == 0 {
		return
	}
	s := c.slots[i]
	copy(c.slots[1:i+1], c.slots[:i])
	c.slots[0] = s
}

// Len returns the number of cached batches.
func (c *Cache) Len() int { return c.count }

// Keys returns the cached keys, most recent first.
func (c *Cache) Keys() []Key {
	keys := make([]Key, c.count)
	for i := range keys {
		keys[i] = c.slots[i].key
	}
	return keys
}

// Batches returns the cached batches, most recent first.
func (c *Cache) Batches() []*Batch {
	bs := make([]*Batch, c.count)
	for i := range bs {
		bs[i] = c.slots[i].batch
	}
	return bs
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.slots = [CacheCapacity]cacheSlot{}
	c.count = 0
}
