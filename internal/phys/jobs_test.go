package phys

import (
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/solver"
	"github.com/impel-engine/impel/internal/task"
)

func TestMaxConcurrencyAtLeastOne(t *testing.T) {
	pool := task.NewPool(2)
	defer pool.Close()
	a := NewJobSystemAdapter(pool, 16)
	if a.MaxConcurrency() < 1 {
		t.Errorf("max concurrency must be >= 1, got %d", a.MaxConcurrency())
	}
}

func TestWaitBarrierSeesAllSideEffects(t *testing.T) {
	pool := task.NewPool(4)
	defer pool.Close()
	a := NewJobSystemAdapter(pool, 64)

	rng := rand.New(rand.NewSource(42))
	const n = 32
	var done atomic.Int32
	delays := make([]time.Duration, n)
	for i := range delays {
		delays[i] = time.Duration(rng.Intn(3)) * time.Millisecond
	}

	b := a.NewBarrier()
	for i := 0; i < n; i++ {
		d := delays[i]
		j, err := a.CreateJob("sleepy", b, func() {
			time.Sleep(d)
			done.Add(1)
		}, 0)
		if err != nil {
			t.Fatal(err)
		}
		defer a.FreeJob(j)
	}

	a.WaitBarrier(b)
	if got := done.Load(); got != n {
		t.Errorf("all %d jobs must have finished before WaitBarrier returns, saw %d", n, got)
	}
}

func TestDependenciesGateQueueing(t *testing.T) {
	pool := task.NewPool(2)
	defer pool.Close()
	a := NewJobSystemAdapter(pool, 16)

	var ran atomic.Bool
	b := a.NewBarrier()
	j, err := a.CreateJob("gated", b, func() { ran.Store(true) }, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer a.FreeJob(j)

	pool.WaitIdle()
	if ran.Load() {
		t.Fatal("job with outstanding dependencies must not run")
	}

	j.RemoveDependency()
	pool.WaitIdle()
	if ran.Load() {
		t.Fatal("job must not run until the last dependency clears")
	}

	j.RemoveDependency()
	a.WaitBarrier(b)
	if !ran.Load() {
		t.Error("job should run once all dependencies are removed")
	}
}

func TestJobSlotBackpressure(t *testing.T) {
	pool := task.NewPool(2)
	defer pool.Close()
	a := NewJobSystemAdapter(pool, 2)

	// Gated jobs hold their slot until they execute.
	b := a.NewBarrier()
	j1, err := a.CreateJob("one", b, func() {}, 1)
	if err != nil {
		t.Fatal(err)
	}
	j2, err := a.CreateJob("two", b, func() {}, 1)
	if err != nil {
		t.Fatal(err)
	}

	// both slots held: the next create must park until a job runs
	acquired := make(chan *solver.Job, 1)
	go func() {
		b2 := a.NewBarrier()
		j3, err := a.CreateJob("three", b2, func() {}, 0)
		if err != nil {
			acquired <- nil
			return
		}
		a.WaitBarrier(b2)
		acquired <- j3
	}()

	select {
	case <-acquired:
		t.Fatal("third job should be blocked while slots are full")
	case <-time.After(20 * time.Millisecond):
	}

	j1.RemoveDependency()
	select {
	case got := <-acquired:
		if got == nil {
			t.Fatal("create failed after slot recycled")
		}
		a.FreeJob(got)
	case <-time.After(time.Second):
		t.Fatal("an executed job's slot should unblock the waiter")
	}
	j2.RemoveDependency()
	a.WaitBarrier(b)
	a.FreeJob(j1)
	a.FreeJob(j2)
}

func TestSlotsRecycleWithinOneStep(t *testing.T) {
	pool := task.NewPool(2)
	defer pool.Close()
	a := NewJobSystemAdapter(pool, 2)

	sw := solver.NewWorld()
	for i := 0; i < 100; i++ {
		id := sw.CreateBody(solver.BodyCreationSettings{
			Shape:    &solver.Shape{Kind: solver.ShapeBox, Dim: mathf.V3(0.5, 0.5, 0.5)},
			Motion:   solver.MotionDynamic,
			Position: mathf.V3(float32(i)*3, 10, 0),
			Mass:     1,
		})
		sw.AddBody(id, true)
	}

	done := make(chan error, 1)
	go func() { done <- sw.Step(1.0/60.0, a) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("step must complete when integration chunks outnumber job slots")
	}
}
