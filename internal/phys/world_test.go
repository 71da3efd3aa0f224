package phys

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/scene"
	"github.com/impel-engine/impel/internal/solver"
)

func TestProcessDropsBoxToRest(t *testing.T) {
	w := NewWorld(DefaultOptions())
	defer w.Close()
	g := scene.NewGraph()

	ground, err := w.Bodies().CreateBoxBody(mathf.V3(5, 0.5, 5), mathf.V3(0, 0, 0), mathf.QuatIdentity(), solver.MotionStatic, BodyCreation{Friction: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	w.Bodies().AddBody(ground, false)

	box, err := w.Bodies().CreateBoxBody(mathf.V3(0.5, 0.5, 0.5), mathf.V3(0, 3, 0), mathf.QuatIdentity(), solver.MotionDynamic, BodyCreation{Mass: 1, Friction: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	w.Bodies().AddBody(box, true)

	ref := g.Spawn("crate", mathf.V3(0, 3, 0), mathf.QuatIdentity())
	w.BindBody(box, ref)

	for i := 0; i < 300; i++ {
		if err := w.Process(g, FixedStep); err != nil {
			t.Fatal(err)
		}
	}

	n, ok := g.Resolve(ref)
	if !ok {
		t.Fatal("node ref went stale")
	}
	// static top face at 0.5 plus the dynamic half extent
	if math32.Abs(n.Position.Y-1.0) > 0.05 {
		t.Errorf("box should rest at y=1.0, node at y=%v", n.Position.Y)
	}
	vel := w.Bodies().Velocity(box)
	if vel.Length() > 0.1 {
		t.Errorf("resting box should be nearly still, |v|=%v", vel.Length())
	}
}

func TestTriggerFiresEnterAndExitOnce(t *testing.T) {
	opts := DefaultOptions()
	opts.Gravity = mathf.Vec3{}
	w := NewWorld(opts)
	defer w.Close()
	g := scene.NewGraph()

	zone := g.Spawn("zone", mathf.V3(0, 0, 0), mathf.QuatIdentity())
	trig, err := w.Bodies().CreateSphereTrigger(1, mathf.V3(0, 0, 0), mathf.QuatIdentity())
	if err != nil {
		t.Fatal(err)
	}
	w.Bodies().AddTrigger(trig, false)
	w.BindTrigger(trig, zone)

	probe := g.Spawn("probe", mathf.V3(-3, 0, 0), mathf.QuatIdentity())
	body, err := w.Bodies().CreateBoxBody(mathf.V3(0.25, 0.25, 0.25), mathf.V3(-3, 0, 0), mathf.QuatIdentity(), solver.MotionDynamic, BodyCreation{Mass: 1})
	if err != nil {
		t.Fatal(err)
	}
	w.Bodies().AddBody(body, true)
	w.Bodies().SetVelocity(body, mathf.V3(2, 0, 0))
	w.BindBody(body, probe)

	var enters, exits int
	var enterOther, exitOther scene.NodeRef
	w.Observe(zone, ContactFuncs{
		TriggerEnter: func(other scene.NodeRef) { enters++; enterOther = other },
		TriggerExit:  func(other scene.NodeRef) { exits++; exitOther = other },
	})

	// crosses from x=-3 to x=+3 in 3 seconds at 2 m/s
	for i := 0; i < 180; i++ {
		if err := w.Process(g, FixedStep); err != nil {
			t.Fatal(err)
		}
	}

	if enters != 1 {
		t.Errorf("want exactly 1 trigger enter, got %d", enters)
	}
	if exits != 1 {
		t.Errorf("want exactly 1 trigger exit, got %d", exits)
	}
	if enterOther != probe || exitOther != probe {
		t.Errorf("trigger events should carry the probe's node ref")
	}
}

func TestKinematicBodyCrossesTrigger(t *testing.T) {
	w := NewWorld(DefaultOptions())
	defer w.Close()
	g := scene.NewGraph()

	zone := g.Spawn("zone", mathf.V3(0, 1, 0), mathf.QuatIdentity())
	trig, err := w.Bodies().CreateSphereTrigger(2, mathf.V3(0, 1, 0), mathf.QuatIdentity())
	if err != nil {
		t.Fatal(err)
	}
	w.Bodies().AddTrigger(trig, false)
	w.BindTrigger(trig, zone)

	door := g.Spawn("door", mathf.V3(-5, 1, 0), mathf.QuatIdentity())
	body, err := w.Bodies().CreateBoxBody(mathf.V3(0.5, 0.5, 0.5), mathf.V3(-5, 1, 0), mathf.QuatIdentity(), solver.MotionKinematic, BodyCreation{})
	if err != nil {
		t.Fatal(err)
	}
	w.Bodies().AddBody(body, true)
	w.BindBody(body, door)

	var enters, exits int
	w.Observe(zone, ContactFuncs{
		TriggerEnter: func(other scene.NodeRef) { enters++ },
		TriggerExit:  func(other scene.NodeRef) { exits++ },
	})

	// drive the node from x=-5 to x=+5 through the sensor
	n, _ := g.Resolve(door)
	for i := 0; i < 180; i++ {
		n.Position.X += 10.0 / 180
		if err := w.Process(g, FixedStep); err != nil {
			t.Fatal(err)
		}
	}

	if enters != 1 {
		t.Errorf("kinematic body crossing the sensor should fire 1 enter, got %d", enters)
	}
	if exits != 1 {
		t.Errorf("kinematic body leaving the sensor should fire 1 exit, got %d", exits)
	}
}

func TestKinematicNodeDrivesBody(t *testing.T) {
	opts := DefaultOptions()
	opts.Gravity = mathf.Vec3{}
	w := NewWorld(opts)
	defer w.Close()
	g := scene.NewGraph()

	ref := g.Spawn("platform", mathf.V3(0, 2, 0), mathf.QuatIdentity())
	h, err := w.Bodies().CreateBoxBody(mathf.V3(1, 0.2, 1), mathf.V3(0, 2, 0), mathf.QuatIdentity(), solver.MotionKinematic, BodyCreation{})
	if err != nil {
		t.Fatal(err)
	}
	w.Bodies().AddBody(h, true)
	w.BindBody(h, ref)

	n, _ := g.Resolve(ref)
	n.Position = mathf.V3(4, 2, 0)
	if err := w.Process(g, FixedStep); err != nil {
		t.Fatal(err)
	}

	got := w.Bodies().Position(h)
	if !got.ApproxEqual(mathf.V3(4, 2, 0)) {
		t.Errorf("kinematic body should follow its node, body at %v", got)
	}
}

func TestProcessAdvancesAlpha(t *testing.T) {
	w := NewWorld(DefaultOptions())
	defer w.Close()
	g := scene.NewGraph()

	if err := w.Process(g, FixedStep*1.5); err != nil {
		t.Fatal(err)
	}
	if a := w.Alpha(); a < 0.49 || a > 0.51 {
		t.Errorf("half a step should remain accumulated, alpha=%v", a)
	}
}
