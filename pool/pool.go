// ABOUTME: Simple worker pool for parallelizing batch tasks
// ABOUTME: Provides submit-and-wait groups so independent batches can share workers

// Package pool runs tasks on a fixed set of worker goroutines.
package pool

import (
	"runtime"
	"sync"
)

// WorkerPool manages a pool of worker goroutines for parallel task execution
type WorkerPool struct {
	workers   int
	taskChan  chan func()
	workerWg  sync.WaitGroup // tracks worker goroutines lifetime
	closeOnce sync.Once

	mu     sync.RWMutex // guards closed against in-flight sends
	closed bool
}

// NewWorkerPool creates a worker pool with the given number of workers.
// A non-positive count sizes the pool to available CPUs.
func NewWorkerPool(workers, bufferSize int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	pool := &WorkerPool{
		workers:  workers,
		taskChan: make(chan func(), bufferSize),
	}

	for range workers {
		pool.workerWg.Add(1)

		go func() {
			defer pool.workerWg.Done()

			for task := range pool.taskChan {
				task()
			}
		}()
	}

	return pool
}

// Workers returns the number of worker goroutines
func (p *WorkerPool) Workers() int {
	return p.workers
}

// Group returns a new task group bound to this pool
func (p *WorkerPool) Group() *Group {
	return &Group{pool: p}
}

// Close shuts down the worker pool and waits for all workers to exit.
// Tasks submitted after Close run on the caller's goroutine.
func (p *WorkerPool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.taskChan)
		p.mu.Unlock()
	})
	p.workerWg.Wait()
}

// Group tracks completion of the tasks submitted through it
type Group struct {
	pool *WorkerPool
	wg   sync.WaitGroup
}

// Submit adds a task to the pool
// Blocks if the task channel is full
func (g *Group) Submit(task func()) {
	g.wg.Add(1)

	wrapped := func() {
		defer g.wg.Done()
		task()
	}

	g.pool.mu.RLock()
	defer g.pool.mu.RUnlock()

	if g.pool.closed {
		wrapped()
		return
	}

	g.pool.taskChan <- wrapped
}

// Wait blocks until all tasks submitted through this group have completed
func (g *Group) Wait() {
	g.wg.Wait()
}
