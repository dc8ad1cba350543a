package parallel

// PerWorker holds one value per pool worker. Value i is only ever touched by
// the task running on worker i, so values need no locking.
type PerWorker[T any] struct {
	values []T
}

// NewPerWorker allocates one value per worker of p using newFn.
// Values are created once and reused for the lifetime of the pool.
func NewPerWorker[T any](p *WorkerPool, newFn func() T) *PerWorker[T] {
	w := &PerWorker[T]{values: make([]T, p.Workers())}
	for i := range w.values {
		w.values[i] = newFn()
	}
	return w
}

// Get returns the value owned by worker.
func (w *PerWorker[T]) Get(worker int) T {
	return w.values[worker]
}

// Len returns the number of values.
func (w *PerWorker[T]) Len() int {
	return len(w.values)
}
