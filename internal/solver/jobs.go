package solver

import (
	"sync"
	"sync/atomic"
)

// JobSystem is the contract the solver demands from its host. The solver
// never creates threads; every piece of parallel work inside Step is funneled
// through this interface onto whatever scheduler the host owns.
type JobSystem interface {
	// CreateJob allocates a job tracked by b. A job with zero dependencies
	// is queued immediately; otherwise it runs once RemoveDependency has
	// been called deps times.
	CreateJob(name string, b *Barrier, fn func(), deps int) (*Job, error)
	// FreeJob releases the job record after the caller is done with it.
	FreeJob(j *Job)
	NewBarrier() *Barrier
	// WaitBarrier blocks until every job tracked by b has executed.
	WaitBarrier(b *Barrier)
	MaxConcurrency() int
}

// Job is one unit of solver work. The host queues it on its scheduler and
// calls Execute from a worker.
type Job struct {
	Name string

	fn      func()
	deps    atomic.Int32
	barrier *Barrier
	queue   func(*Job)
}

// NewJob builds a job record. queue is invoked exactly once, either here
// (deps == 0) or by the final RemoveDependency call.
func NewJob(name string, b *Barrier, fn func(), deps int, queue func(*Job)) *Job {
	j := &Job{Name: name, fn: fn, barrier: b, queue: queue}
	j.deps.Store(int32(deps))
	if b != nil {
		b.add()
	}
	if deps == 0 {
		queue(j)
	}
	return j
}

// RemoveDependency marks one prerequisite complete, queueing the job when
// the count reaches zero.
func (j *Job) RemoveDependency() {
	if j.deps.Add(-1) == 0 {
		j.queue(j)
	}
}

// Execute runs the job body and signals the barrier. Called by the host's
// worker, exactly once.
func (j *Job) Execute() {
	j.fn()
	if j.barrier != nil {
		j.barrier.done()
	}
}

// Barrier tracks a batch of jobs so the solver can wait for all of them.
type Barrier struct {
	wg sync.WaitGroup
}

func (b *Barrier) add()  { b.wg.Add(1) }
func (b *Barrier) done() { b.wg.Done() }

// Wait blocks until every job attached to the barrier has executed. Hosts
// typically wrap this with their own drain (see the adapter's two-level
// wait).
func (b *Barrier) Wait() { b.wg.Wait() }
