package phys

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/impel-engine/impel/internal/solver"
	"github.com/impel-engine/impel/internal/task"
)

// DefaultMaxJobs bounds the number of in-flight solver jobs.
const DefaultMaxJobs = 256

// JobSystemAdapter bridges the application's task pool into the solver's
// job-system contract. Job-slot backpressure is a weighted semaphore, so an
// over-subscribed caller parks instead of spinning.
type JobSystemAdapter struct {
	pool    *task.Pool
	slots   *semaphore.Weighted
	maxJobs int
}

func NewJobSystemAdapter(pool *task.Pool, maxJobs int) *JobSystemAdapter {
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}
	return &JobSystemAdapter{
		pool:    pool,
		slots:   semaphore.NewWeighted(int64(maxJobs)),
		maxJobs: maxJobs,
	}
}

// CreateJob blocks until a job slot is free, then allocates the job record.
// A job with zero dependencies is queued immediately.
func (a *JobSystemAdapter) CreateJob(name string, b *solver.Barrier, fn func(), deps int) (*solver.Job, error) {
	if err := a.slots.Acquire(context.Background(), 1); err != nil {
		return nil, fmt.Errorf("jobs: acquire slot: %w", err)
	}
	return solver.NewJob(name, b, fn, deps, a.queue), nil
}

// queue wraps the job in a pool task. The slot is released as soon as the
// job has executed: the semaphore bounds jobs that are in flight, not jobs
// created over the lifetime of a step, so a step that fans out more chunks
// than there are slots recycles them as the pool drains.
func (a *JobSystemAdapter) queue(j *solver.Job) {
	a.pool.Submit(func() {
		j.Execute()
		a.slots.Release(1)
	})
}

// FreeJob retires the job record. The slot was already returned when the
// job executed.
func (a *JobSystemAdapter) FreeJob(*solver.Job) {}

func (a *JobSystemAdapter) NewBarrier() *solver.Barrier {
	return &solver.Barrier{}
}

// WaitBarrier is a two-level wait: first the barrier itself, then a full
// pool drain. The solver's jobs ran as pool tasks, so the barrier signal can
// race the pool's own bookkeeping; draining closes that window.
func (a *JobSystemAdapter) WaitBarrier(b *solver.Barrier) {
	b.Wait()
	a.pool.WaitIdle()
}

// MaxConcurrency reports the hardware thread count, falling back to 4 when
// detection fails and never reporting less than 1.
func (a *JobSystemAdapter) MaxConcurrency() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 4
	}
	return n
}

// MaxJobs reports the configured slot count.
func (a *JobSystemAdapter) MaxJobs() int { return a.maxJobs }
