// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch/render"
)

// minBufferRecords is the smallest buffer size class, in instance records.
const minBufferRecords = 256

// instanceBuffer is a pooled GPU vertex buffer with its CPU staging memory.
type instanceBuffer struct {
	buf     hal.Buffer
	records int
	staging []byte
}

// bufferPool hands out instance buffers by power-of-two size class and
// keeps released buffers for reuse across frames.
//
// bufferPool is safe for concurrent use; Prepare allocates from several
// workers at once.
type bufferPool struct {
	mu     sync.Mutex
	device hal.Device
	free   map[int][]*instanceBuffer
	live   map[*instanceBuffer]struct{}

	created int
	reused  int
}

func newBufferPool(device hal.Device) *bufferPool {
	return &bufferPool{
		device: device,
		free:   make(map[int][]*instanceBuffer),
		live:   make(map[*instanceBuffer]struct{}),
	}
}

// sizeClass returns the record capacity of the class holding n records.
func sizeClass(n int) int {
	if n <= minBufferRecords {
		return minBufferRecords
	}
	return 1 << bits.Len(uint(n-1))
}

func (p *bufferPool) acquire(vertexCount int) (*instanceBuffer, error) {
	class := sizeClass(vertexCount)

	p.mu.Lock()
	defer p.mu.Unlock()

	if list := p.free[class]; len(list) > 0 {
		ib := list[len(list)-1]
		p.free[class] = list[:len(list)-1]
		p.live[ib] = struct{}{}
		p.reused++
		return ib, nil
	}

	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "batch_instances",
		Size:  uint64(class * render.InstanceStride), //nolint:gosec // class is bounded by allocation size
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create instance buffer (%d records): %w", class, err)
	}
	ib := &instanceBuffer{
		buf:     buf,
		records: class,
		staging: make([]byte, class*render.InstanceStride),
	}
	p.live[ib] = struct{}{}
	p.created++
	return ib, nil
}

func (p *bufferPool) release(ib *instanceBuffer) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.live[ib]; !ok {
		return false
	}
	delete(p.live, ib)
	p.free[ib.records] = append(p.free[ib.records], ib)
	return true
}

func (p *bufferPool) owns(ib *instanceBuffer) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.live[ib]
	return ok
}

// destroy releases every GPU buffer, live or free.
func (p *bufferPool) destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, list := range p.free {
		for _, ib := range list {
			p.device.DestroyBuffer(ib.buf)
		}
	}
	for ib := range p.live {
		p.device.DestroyBuffer(ib.buf)
	}
	p.free = make(map[int][]*instanceBuffer)
	p.live = make(map[*instanceBuffer]struct{})
}

// BufferStats reports instance buffer pool counters.
type BufferStats struct {
	Live    int
	Free    int
	Created int
	Reused  int
}

func (p *bufferPool) stats() BufferStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := BufferStats{Live: len(p.live), Created: p.created, Reused: p.reused}
	for _, list := range p.free {
		s.Free += len(list)
	}
	return s
}
