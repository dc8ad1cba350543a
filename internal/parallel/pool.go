package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Task is a unit of work run by a WorkerPool. worker is the index of the
// goroutine executing the task, in [0, Workers()). Tasks use it to pick
// per-worker state such as scratch buffers.
type Task func(worker int)

// WorkerPool is a pool of goroutines for parallel batch preparation.
//
// The pool distributes tasks across multiple workers, each with their own
// queue. Workers can steal tasks from other workers when their own queue is
// empty. A stolen task receives the index of the worker that runs it, never
// the worker it was queued on, so per-worker state is never shared.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// queues holds per-worker task queues.
	queues []chan Task

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool

	// inline serializes tasks run on the caller after Close.
	inline sync.Mutex
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan Task, workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan Task, queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	mine := p.queues[id]

	for {
		select {
		case <-p.done:
			p.drain(id, mine)
			return

		case task := <-mine:
			if task != nil {
				task(id)
			}

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen(id)
				continue
			}
			select {
			case <-p.done:
				p.drain(id, mine)
				return
			case task := <-mine:
				if task != nil {
					task(id)
				}
			}
		}
	}
}

// drain executes all remaining tasks in a queue.
func (p *WorkerPool) drain(id int, queue chan Task) {
	for {
		select {
		case task := <-queue:
			if task != nil {
				task(id)
			}
		default:
			return
		}
	}
}

// steal attempts to take a task from another worker's queue.
// Returns nil if no task is available.
func (p *WorkerPool) steal(id int) Task {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case task := <-p.queues[i]:
			return task
		default:
		}
	}
	return nil
}

// ExecuteAll distributes tasks across workers and waits for all of them to
// complete.
//
// If the pool is closed, the tasks run sequentially on the calling goroutine
// as worker 0.
func (p *WorkerPool) ExecuteAll(tasks []Task) {
	if len(tasks) == 0 {
		return
	}
	if !p.running.Load() {
		p.runInline(tasks)
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(tasks))

	for i, task := range tasks {
		wrapped := func(worker int) {
			defer wg.Done()
			task(worker)
		}

		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			p.runInline([]Task{wrapped})
		}
	}

	wg.Wait()
}

func (p *WorkerPool) runInline(tasks []Task) {
	p.inline.Lock()
	defer p.inline.Unlock()
	for _, task := range tasks {
		if task != nil {
			task(0)
		}
	}
}

// Close gracefully shuts down the pool.
// It stops accepting new work, waits for all queued tasks to complete,
// and then stops all workers.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// QueuedWork returns the total number of tasks currently queued.
// This is an approximation as queues can change while iterating.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.queues {
		total += len(q)
	}
	return total
}
