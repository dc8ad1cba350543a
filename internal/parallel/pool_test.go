package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// WorkerPool Creation Tests
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewWorkerPool(n)
		expected := runtime.GOMAXPROCS(0)
		if pool.Workers() != expected {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want %d (GOMAXPROCS)", n, pool.Workers(), expected)
		}
		pool.Close()
	}
}

// =============================================================================
// ExecuteAll Tests
// =============================================================================

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numTasks := 100

	tasks := make([]Task, numTasks)
	for i := range tasks {
		tasks[i] = func(int) {
			counter.Add(1)
		}
	}

	pool.ExecuteAll(tasks)

	if counter.Load() != int64(numTasks) {
		t.Errorf("counter = %d, want %d", counter.Load(), numTasks)
	}
}

func TestWorkerPool_ExecuteAll_Empty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	pool.ExecuteAll(nil)
	pool.ExecuteAll([]Task{})
}

func TestWorkerPool_ExecuteAll_WorkerIndexInRange(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	var bad atomic.Int64
	tasks := make([]Task, 200)
	for i := range tasks {
		tasks[i] = func(worker int) {
			if worker < 0 || worker >= pool.Workers() {
				bad.Add(1)
			}
		}
	}
	pool.ExecuteAll(tasks)

	if bad.Load() != 0 {
		t.Errorf("%d tasks saw an out-of-range worker index", bad.Load())
	}
}

// Per-worker values must never be used by two tasks at once.
func TestWorkerPool_PerWorkerExclusive(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	type slot struct{ busy atomic.Bool }
	locals := NewPerWorker(pool, func() *slot { return &slot{} })
	if locals.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", locals.Len())
	}

	var overlaps atomic.Int64
	tasks := make([]Task, 400)
	for i := range tasks {
		tasks[i] = func(worker int) {
			s := locals.Get(worker)
			if !s.busy.CompareAndSwap(false, true) {
				overlaps.Add(1)
				return
			}
			time.Sleep(10 * time.Microsecond)
			s.busy.Store(false)
		}
	}
	pool.ExecuteAll(tasks)

	if overlaps.Load() != 0 {
		t.Errorf("per-worker value used concurrently %d times", overlaps.Load())
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after Close")
	}
}

func TestWorkerPool_ExecuteAllAfterCloseRunsInline(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()

	var mu sync.Mutex
	var workers []int
	tasks := []Task{
		func(w int) { mu.Lock(); workers = append(workers, w); mu.Unlock() },
		func(w int) { mu.Lock(); workers = append(workers, w); mu.Unlock() },
	}
	pool.ExecuteAll(tasks)

	if len(workers) != 2 {
		t.Fatalf("ran %d tasks, want 2", len(workers))
	}
	for i, w := range workers {
		if w != 0 {
			t.Errorf("task %d ran as worker %d, want 0", i, w)
		}
	}
}

func TestWorkerPool_NoGoroutineLeak(t *testing.T) {
	before := runtime.NumGoroutine()

	for range 10 {
		pool := NewWorkerPool(4)
		pool.ExecuteAll([]Task{func(int) {}, func(int) {}})
		pool.Close()
	}

	// Allow goroutines to exit
	time.Sleep(50 * time.Millisecond)

	after := runtime.NumGoroutine()
	if after > before+2 {
		t.Errorf("goroutine leak: before=%d, after=%d", before, after)
	}
}

func TestWorkerPool_QueuedWorkIdle(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	pool.ExecuteAll([]Task{func(int) {}})
	if q := pool.QueuedWork(); q != 0 {
		t.Errorf("QueuedWork() = %d after ExecuteAll, want 0", q)
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkWorkerPool_ExecuteAll(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	tasks := make([]Task, 64)
	for i := range tasks {
		tasks[i] = func(int) {}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		pool.ExecuteAll(tasks)
	}
}
