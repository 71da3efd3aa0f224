package task

import (
	"runtime"
	"sync"
)

// Pool is the application-owned worker pool. The physics layer consumes it
// only through Submit and WaitIdle; everything else in the engine shares the
// same pool, so the physics step never spins up threads of its own.
type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	mu      sync.Mutex
	idle    *sync.Cond
	pending int
	workers int
	closed  bool
}

// NewPool starts workers goroutines. workers <= 0 means one per CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		tasks:   make(chan func(), 256),
		workers: workers,
	}
	p.idle = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for fn := range p.tasks {
		fn()
		p.mu.Lock()
		p.pending--
		if p.pending == 0 {
			p.idle.Broadcast()
		}
		p.mu.Unlock()
	}
}

// Submit enqueues fn for execution on a worker. Submitting to a closed pool
// is a no-op.
func (p *Pool) Submit(fn func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.pending++
	p.mu.Unlock()
	p.tasks <- fn
}

// WaitIdle blocks until every submitted task has finished. The pending count
// includes tasks submitted by running tasks, so the pool is fully drained
// when this returns.
func (p *Pool) WaitIdle() {
	p.mu.Lock()
	for p.pending > 0 {
		p.idle.Wait()
	}
	p.mu.Unlock()
}

// Workers reports the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Close drains outstanding tasks and stops the workers.
func (p *Pool) Close() {
	p.WaitIdle()
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	close(p.tasks)
	p.wg.Wait()
}
