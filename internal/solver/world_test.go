package solver

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/impel-engine/impel/internal/mathf"
)

// serialJobs runs every job inline on the calling goroutine.
type serialJobs struct{}

func (serialJobs) CreateJob(name string, b *Barrier, fn func(), deps int) (*Job, error) {
	return NewJob(name, b, fn, deps, func(j *Job) { j.Execute() }), nil
}
func (serialJobs) FreeJob(*Job)           {}
func (serialJobs) NewBarrier() *Barrier   { return &Barrier{} }
func (serialJobs) WaitBarrier(b *Barrier) { b.Wait() }
func (serialJobs) MaxConcurrency() int    { return 1 }

func mustShape(t *testing.T, kind ShapeKind, dim mathf.Vec3) *Shape {
	t.Helper()
	s, err := NewShape(kind, dim)
	if err != nil {
		t.Fatalf("shape: %v", err)
	}
	return s
}

func addBox(t *testing.T, w *World, pos mathf.Vec3, half mathf.Vec3, motion MotionType) BodyID {
	t.Helper()
	id := w.CreateBody(BodyCreationSettings{
		Shape:    mustShape(t, ShapeBox, half),
		Position: pos,
		Motion:   motion,
		Friction: 0.5,
	})
	w.AddBody(id, true)
	return id
}

func TestShapeValidation(t *testing.T) {
	if _, err := NewShape(ShapeSphere, mathf.V3(0, 0, 0)); err == nil {
		t.Error("degenerate sphere should fail")
	}
	if _, err := NewShape(ShapeBox, mathf.V3(1, -1, 1)); err == nil {
		t.Error("negative box extent should fail")
	}
	if _, err := NewShape(ShapeCapsule, mathf.V3(0.4, 0.9, 0)); err != nil {
		t.Errorf("valid capsule rejected: %v", err)
	}
}

func TestDroppedBoxComesToRest(t *testing.T) {
	w := NewWorld()
	addBox(t, w, mathf.V3(0, 0, 0), mathf.V3(5, 0.5, 5), MotionStatic)
	dyn := addBox(t, w, mathf.V3(0, 5, 0), mathf.V3(0.5, 0.5, 0.5), MotionDynamic)

	for i := 0; i < 300; i++ {
		if err := w.Step(1.0/60, serialJobs{}); err != nil {
			t.Fatalf("step: %v", err)
		}
	}

	var pos, vel mathf.Vec3
	w.WithBody(dyn, func(b *Body) { pos = b.Position; vel = b.Velocity })

	// resting on top: static top face at 0.5, half extent 0.5 -> center ~1.0
	if math32.Abs(pos.Y-1.0) > 0.05 {
		t.Errorf("expected rest at y~1.0, got %f", pos.Y)
	}
	if math32.Abs(vel.Y) > 0.1 {
		t.Errorf("expected settled velocity, got %f", vel.Y)
	}
}

type recordingListener struct {
	added   []PairKey
	removed []PairKey
}

func (r *recordingListener) OnContactValidate(a, b ContactBody) bool { return true }
func (r *recordingListener) OnContactAdded(key PairKey, a, b ContactBody) {
	r.added = append(r.added, key)
}
func (r *recordingListener) OnContactRemoved(key PairKey) {
	r.removed = append(r.removed, key)
}

func TestSensorOverlapFiresOncePerPair(t *testing.T) {
	w := NewWorld()
	lis := &recordingListener{}
	w.SetContactListener(lis)

	sensor := w.CreateBody(BodyCreationSettings{
		Shape:    mustShape(t, ShapeSphere, mathf.V3(2, 0, 0)),
		Position: mathf.V3(0, 0, 0),
		Motion:   MotionStatic,
		Layer:    LayerSensor,
		Sensor:   true,
	})
	w.AddBody(sensor, true)

	mover := w.CreateBody(BodyCreationSettings{
		Shape:    mustShape(t, ShapeBox, mathf.V3(0.5, 0.5, 0.5)),
		Position: mathf.V3(-6, 0, 0),
		Motion:   MotionDynamic,
	})
	w.AddBody(mover, true)
	w.SetGravity(mathf.Vec3{})
	w.WithBody(mover, func(b *Body) { b.Velocity = mathf.V3(4, 0, 0) })

	for i := 0; i < 240; i++ {
		if err := w.Step(1.0/60, serialJobs{}); err != nil {
			t.Fatalf("step: %v", err)
		}
	}

	if len(lis.added) != 1 {
		t.Fatalf("expected exactly one contact-added, got %d", len(lis.added))
	}
	if len(lis.removed) != 1 {
		t.Fatalf("expected exactly one contact-removed, got %d", len(lis.removed))
	}
	if lis.added[0] != lis.removed[0] {
		t.Error("removal should carry the same pair key as the add")
	}
	if lis.added[0] != MakePairKey(mover, sensor) {
		t.Error("pair key should be order independent")
	}
}

func TestDestroyMidContactReportsRemoval(t *testing.T) {
	w := NewWorld()
	lis := &recordingListener{}
	w.SetContactListener(lis)
	w.SetGravity(mathf.Vec3{})

	trigger := w.CreateBody(BodyCreationSettings{
		Shape:    mustShape(t, ShapeBox, mathf.V3(1, 1, 1)),
		Position: mathf.V3(0, 0, 0),
		Motion:   MotionStatic,
		Layer:    LayerSensor,
		Sensor:   true,
	})
	w.AddBody(trigger, true)
	b := addBox(t, w, mathf.V3(0.5, 0, 0), mathf.V3(1, 1, 1), MotionDynamic)

	// the pair persists across steps and must be reported added only once
	for i := 0; i < 3; i++ {
		if err := w.Step(1.0/60, serialJobs{}); err != nil {
			t.Fatal(err)
		}
	}
	if len(lis.added) != 1 {
		t.Fatalf("expected one contact added for a persisting pair, got %d", len(lis.added))
	}

	w.DestroyBody(b)
	if err := w.Step(1.0/60, serialJobs{}); err != nil {
		t.Fatal(err)
	}
	if len(lis.removed) != 1 || lis.removed[0] != MakePairKey(trigger, b) {
		t.Errorf("expected removal for destroyed pair, got %v", lis.removed)
	}
}

func TestCastRayHitsClosest(t *testing.T) {
	w := NewWorld()
	near := addBox(t, w, mathf.V3(0, 0, 5), mathf.V3(1, 1, 1), MotionStatic)
	addBox(t, w, mathf.V3(0, 0, 10), mathf.V3(1, 1, 1), MotionStatic)

	hit, ok := w.CastRay(mathf.V3(0, 0, 0), mathf.V3(0, 0, 20))
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Body != near {
		t.Errorf("expected nearest body %d, got %d", near, hit.Body)
	}
	if math32.Abs(hit.Fraction-0.2) > 1e-3 {
		t.Errorf("expected fraction 0.2, got %f", hit.Fraction)
	}
	if !hit.Normal.ApproxEqual(mathf.V3(0, 0, -1)) {
		t.Errorf("expected entry normal -z, got %+v", hit.Normal)
	}

	if _, ok := w.CastRay(mathf.V3(0, 5, 0), mathf.V3(0, 6, 0)); ok {
		t.Error("ray away from all bodies should miss")
	}
}

func TestCharacterMoveBlockedByWall(t *testing.T) {
	w := NewWorld()
	addBox(t, w, mathf.V3(0, 0, 0), mathf.V3(10, 0.5, 10), MotionStatic) // floor
	settings := CharacterMoveSettings{
		Shape:        CharacterShape{Radius: 0.3, HalfHeight: 0.6},
		Padding:      0.02,
		SnapDistance: 0.3,
	}
	start := mathf.V3(0, 1.45, 0)

	free := w.MoveCharacter(start, mathf.V3(5, 0, 0), 1.0/60, settings)
	wantDX := float32(5.0 / 60.0)
	if math32.Abs((free.Position.X-start.X)-wantDX) > 1e-3 {
		t.Errorf("unobstructed move: expected dx %f, got %f", wantDX, free.Position.X-start.X)
	}
	if !free.Ground.Found {
		t.Error("character on floor should be grounded")
	}

	// wall immediately ahead
	addBox(t, w, mathf.V3(0.4, 1.5, 0), mathf.V3(0.1, 1, 1), MotionStatic)
	blocked := w.MoveCharacter(start, mathf.V3(5, 0, 0), 1.0/60, settings)
	if blocked.Position.X-start.X >= wantDX {
		t.Errorf("wall should shorten the move, got dx %f", blocked.Position.X-start.X)
	}
	if blocked.Velocity.X != 0 {
		t.Errorf("blocked axis velocity should be zeroed, got %f", blocked.Velocity.X)
	}
}
