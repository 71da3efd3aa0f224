package phys

import (
	"errors"
	"testing"

	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/solver"
)

func newRegistry() *BodyRegistry {
	return NewBodyRegistry(solver.NewWorld())
}

func TestShapeCacheDeduplicates(t *testing.T) {
	r := newRegistry()

	mk := func(radius float32) {
		t.Helper()
		if _, err := r.CreateSphereBody(radius, mathf.Vec3{}, mathf.QuatIdentity(), solver.MotionDynamic, BodyCreation{}); err != nil {
			t.Fatal(err)
		}
	}

	mk(1.0)
	mk(1.0)
	mk(1.0004) // within epsilon, same shape
	if r.ShapeCount() != 1 {
		t.Errorf("expected one cached shape, got %d", r.ShapeCount())
	}

	mk(1.5)
	if r.ShapeCount() != 2 {
		t.Errorf("expected a second shape, got %d", r.ShapeCount())
	}
}

func TestDegenerateShapeIsFatal(t *testing.T) {
	r := newRegistry()
	_, err := r.CreateBoxBody(mathf.V3(1, 0, 1), mathf.Vec3{}, mathf.QuatIdentity(), solver.MotionStatic, BodyCreation{})
	if !errors.Is(err, solver.ErrShapeCreation) {
		t.Errorf("expected ErrShapeCreation, got %v", err)
	}
}

func TestHandlesAreMintedMonotonically(t *testing.T) {
	r := newRegistry()
	a, _ := r.CreateSphereBody(1, mathf.Vec3{}, mathf.QuatIdentity(), solver.MotionDynamic, BodyCreation{})
	b, _ := r.CreateSphereBody(1, mathf.Vec3{}, mathf.QuatIdentity(), solver.MotionDynamic, BodyCreation{})
	if b.ID <= a.ID {
		t.Errorf("handles should increase: %d then %d", a.ID, b.ID)
	}

	// trigger ids live in their own space
	tr, err := r.CreateSphereTrigger(1, mathf.Vec3{}, mathf.QuatIdentity())
	if err != nil {
		t.Fatal(err)
	}
	if tr.ID != 1 {
		t.Errorf("first trigger handle should be 1, got %d", tr.ID)
	}
}

func TestDestroyedHandleReturnsDefaults(t *testing.T) {
	r := newRegistry()
	h, err := r.CreateBoxBody(mathf.V3(1, 1, 1), mathf.V3(3, 4, 5), mathf.QuatIdentity(), solver.MotionDynamic, BodyCreation{})
	if err != nil {
		t.Fatal(err)
	}
	r.AddBody(h, true)

	if got := r.Position(h); !got.ApproxEqual(mathf.V3(3, 4, 5)) {
		t.Fatalf("live handle position wrong: %+v", got)
	}

	r.DestroyBody(h)

	// silent defaults on the unchecked accessors
	if got := r.Position(h); !got.IsZero() {
		t.Errorf("destroyed handle should read zero position, got %+v", got)
	}
	if got := r.Rotation(h); !got.ApproxEqual(mathf.QuatIdentity()) {
		t.Errorf("destroyed handle should read identity rotation, got %+v", got)
	}
	if got := r.Mass(h); got != 0 {
		t.Errorf("destroyed handle should read zero mass, got %f", got)
	}

	// the checked variant makes staleness observable
	if _, ok := r.PositionChecked(h); ok {
		t.Error("checked accessor should report a stale handle")
	}

	// setters and lifecycle calls are no-ops, not panics
	r.SetVelocity(h, mathf.V3(1, 0, 0))
	r.AddBody(h, true)
	r.DestroyBody(h)
}

func TestTriggerIsSensorOnDedicatedLayer(t *testing.T) {
	w := solver.NewWorld()
	r := NewBodyRegistry(w)
	h, err := r.CreateBoxTrigger(mathf.V3(1, 1, 1), mathf.Vec3{}, mathf.QuatIdentity())
	if err != nil {
		t.Fatal(err)
	}
	id, ok := r.triggers[h]
	if !ok {
		t.Fatal("trigger not registered")
	}
	w.WithBody(id, func(b *solver.Body) {
		if !b.Sensor {
			t.Error("trigger body should be a sensor")
		}
		if b.Layer != solver.LayerSensor {
			t.Error("trigger body should live on the sensor layer")
		}
	})
}
