// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/batch/internal/parallel"
	"github.com/gogpu/batch/material"
	"github.com/gogpu/batch/render"
)

// Manager owns the device, the Prepare worker pool, the pool of batch
// storage and the frame free list.
//
// BeginFrame and EndFrame are safe for concurrent use. A Frame itself is
// driven by one goroutine at a time.
type Manager struct {
	device   render.Device
	resolver Resolver
	cfg      managerOptions

	pool    *parallel.WorkerPool
	scratch *parallel.PerWorker[*Scratch]
	buffers sync.Pool

	mu        sync.Mutex
	free      []*Frame
	nextIndex atomic.Uint64
	closed    atomic.Bool
}

// NewManager creates a manager issuing to dev.
//
// Example:
//
//	m, err := batch.NewManager(dev, batch.WithWorkers(4))
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
func NewManager(dev render.Device, opts ...ManagerOption) (*Manager, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	cfg := defaultManagerOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Manager{
		device:   dev,
		resolver: cfg.resolver,
		cfg:      cfg,
		pool:     parallel.NewWorkerPool(cfg.workers),
	}
	if m.resolver == nil {
		m.resolver = material.NewResolver()
	}
	m.scratch = parallel.NewPerWorker(m.pool, NewScratch)
	m.buffers.New = func() any { return &batchBuffers{} }

	Logger().Info("batch: manager created", "workers", m.pool.Workers())
	return m, nil
}

// Device returns the device batches are issued to.
func (m *Manager) Device() render.Device { return m.device }

// Resolver returns the material resolver used by renderers.
func (m *Manager) Resolver() Resolver { return m.resolver }

// BeginFrame returns an empty frame with a fresh index.
func (m *Manager) BeginFrame() (*Frame, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}

	m.mu.Lock()
	var f *Frame
	if n := len(m.free); n > 0 {
		f = m.free[n-1]
		m.free[n-1] = nil
		m.free = m.free[:n-1]
	}
	m.mu.Unlock()

	if f == nil {
		f = &Frame{manager: m}
	}
	f.index.Store(m.nextIndex.Add(1))
	return f, nil
}

// EndFrame releases every batch of f, returns its buffer regions to the
// device and recycles f. Renderers created for f fail with ErrStaleFrame
// afterwards.
func (m *Manager) EndFrame(f *Frame) {
	if f == nil || f.manager != m || f.index.Swap(0) == 0 {
		return
	}
	f.reset()

	m.mu.Lock()
	m.free = append(m.free, f)
	m.mu.Unlock()
}

// Close stops the worker pool. Frames already handed out can still be
// prepared (sequentially) and ended.
func (m *Manager) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.pool.Close()
	Logger().Info("batch: manager closed", "frames", m.nextIndex.Load())
}

// newBatch returns a fresh batch backed by pooled storage.
func (m *Manager) newBatch() *Batch {
	return &Batch{batchBuffers: m.buffers.Get().(*batchBuffers)}
}

// releaseBatch detaches b and recycles its storage.
func (m *Manager) releaseBatch(b *Batch) {
	m.buffers.Put(b.release())
}
