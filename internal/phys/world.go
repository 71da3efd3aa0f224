package phys

import (
	"fmt"

	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/scene"
	"github.com/impel-engine/impel/internal/solver"
	"github.com/impel-engine/impel/internal/task"
)

// Options configure a World.
type Options struct {
	Gravity mathf.Vec3
	MaxJobs int
	Workers int // pool size, <= 0 means one per CPU
}

func DefaultOptions() Options {
	return Options{
		Gravity: mathf.V3(0, -9.81, 0),
		MaxJobs: DefaultMaxJobs,
	}
}

// World is the explicit physics context. Everything that used to hang off a
// global instance pointer lives here, so independent worlds can coexist
// (and be tested) side by side. All methods must be called from one
// simulation goroutine.
type World struct {
	solver   *solver.World
	registry *BodyRegistry
	stepper  *FixedStepScheduler
	events   *ContactEventPipeline
	jobs     *JobSystemAdapter
	pool     *task.Pool

	characters []*CharacterController
	vehicles   []*VehicleController
	fluids     []*FluidVolume

	bodyNodes    map[BodyHandle]scene.NodeRef
	triggerNodes map[TriggerHandle]scene.NodeRef
	charNodes    map[*CharacterController]scene.NodeRef
	vehicleNodes map[*VehicleController]scene.NodeRef
}

func NewWorld(opts Options) *World {
	sw := solver.NewWorld()
	sw.SetGravity(opts.Gravity)

	events := NewContactEventPipeline()
	sw.SetContactListener(events)

	pool := task.NewPool(opts.Workers)
	w := &World{
		solver:       sw,
		registry:     NewBodyRegistry(sw),
		stepper:      &FixedStepScheduler{},
		events:       events,
		jobs:         NewJobSystemAdapter(pool, opts.MaxJobs),
		pool:         pool,
		bodyNodes:    make(map[BodyHandle]scene.NodeRef),
		triggerNodes: make(map[TriggerHandle]scene.NodeRef),
		charNodes:    make(map[*CharacterController]scene.NodeRef),
		vehicleNodes: make(map[*VehicleController]scene.NodeRef),
	}
	return w
}

// Close drains and stops the worker pool.
func (w *World) Close() {
	w.pool.Close()
}

func (w *World) Bodies() *BodyRegistry         { return w.registry }
func (w *World) Events() *ContactEventPipeline { return w.events }
func (w *World) Jobs() *JobSystemAdapter       { return w.jobs }
func (w *World) Gravity() mathf.Vec3           { return w.solver.Gravity() }
func (w *World) SetGravity(g mathf.Vec3)       { w.solver.SetGravity(g) }

// Alpha is the interpolation alpha after the last Process call.
func (w *World) Alpha() float64 { return w.stepper.Alpha() }

// BindBody ties a body to a scene node: the node's transform syncs with the
// body every frame and contact events resolve to this ref. The node holds
// the handle weakly; despawning it never destroys the body.
func (w *World) BindBody(h BodyHandle, ref scene.NodeRef) {
	w.registry.SetUserData(h, ref.Pack())
	w.bodyNodes[h] = ref
}

// UnbindBody removes the node association without touching the body.
func (w *World) UnbindBody(h BodyHandle) {
	w.registry.SetUserData(h, 0)
	delete(w.bodyNodes, h)
}

func (w *World) BindTrigger(h TriggerHandle, ref scene.NodeRef) {
	w.registry.SetTriggerUserData(h, ref.Pack())
	w.triggerNodes[h] = ref
}

// Observe registers a contact observer for a node.
func (w *World) Observe(ref scene.NodeRef, obs ContactObserver) {
	w.events.Observe(ref, obs)
}

// AttachCharacterController creates a character at the node's position and
// steps it inside every fixed sub-step.
func (w *World) AttachCharacterController(g *scene.Graph, ref scene.NodeRef, s CharacterControllerSettings) (*CharacterController, error) {
	n, ok := g.Resolve(ref)
	if !ok {
		return nil, fmt.Errorf("phys: attach character: stale node ref")
	}
	c := NewCharacterController(w.solver, s, n.Position)
	c.Warp(n.Position)
	w.characters = append(w.characters, c)
	w.charNodes[c] = ref
	return c, nil
}

// AttachVehicleController creates a vehicle at an explicit transform and
// binds the node to follow the chassis.
func (w *World) AttachVehicleController(ref scene.NodeRef, s VehicleSettings, pos mathf.Vec3, rot mathf.Quat) (*VehicleController, error) {
	v, err := NewVehicleController(w.solver, s, pos, rot)
	if err != nil {
		return nil, err
	}
	w.vehicles = append(w.vehicles, v)
	w.vehicleNodes[v] = ref
	return v, nil
}

// DetachCharacterController removes the character from the per-substep
// update list and drops its node binding.
func (w *World) DetachCharacterController(c *CharacterController) {
	for i, have := range w.characters {
		if have == c {
			w.characters = append(w.characters[:i], w.characters[i+1:]...)
			break
		}
	}
	delete(w.charNodes, c)
}

// DetachVehicleController removes the vehicle from the per-substep update
// list, drops its node binding and destroys the chassis body.
func (w *World) DetachVehicleController(v *VehicleController) {
	for i, have := range w.vehicles {
		if have == v {
			w.vehicles = append(w.vehicles[:i], w.vehicles[i+1:]...)
			break
		}
	}
	delete(w.vehicleNodes, v)
	v.Destroy()
}

// AddFluidVolume registers a fluid region applied before every frame's
// solver steps.
func (w *World) AddFluidVolume(s FluidVolumeSettings) *FluidVolume {
	f := NewFluidVolume(w.solver, s)
	w.fluids = append(w.fluids, f)
	return f
}

// Process is the single per-frame entry point. Ordering within a frame:
// kinematic/static transforms sync into the solver, fluid volumes inject
// forces, the fixed-step loop drives the solver (controllers update inside
// each sub-step, characters before vehicles), dynamic transforms sync back
// out, then queued contact events dispatch.
func (w *World) Process(g *scene.Graph, dt float64) error {
	w.syncToSolver(g)

	for _, f := range w.fluids {
		f.ApplyForces(w.solver.Gravity())
	}

	gravity := w.solver.Gravity()
	_, err := w.stepper.Advance(dt, func(step float32) error {
		if err := w.solver.Step(step, w.jobs); err != nil {
			return fmt.Errorf("phys: solver step: %w", err)
		}
		for _, c := range w.characters {
			c.StorePreviousPosition()
			c.Update(step, gravity)
		}
		for _, v := range w.vehicles {
			v.Update(step)
		}
		return nil
	})

	w.syncFromSolver(g)
	w.events.Dispatch()
	return err
}

// syncToSolver pushes application-driven transforms in. Sync direction is
// decided solely by motion type: static and kinematic flow in, dynamic
// flows out.
func (w *World) syncToSolver(g *scene.Graph) {
	for h, ref := range w.bodyNodes {
		switch w.registry.MotionType(h) {
		case solver.MotionStatic, solver.MotionKinematic:
			if n, ok := g.Resolve(ref); ok {
				w.registry.SetPosition(h, n.Position)
				w.registry.SetRotation(h, n.Rotation)
			}
		}
	}
	for h, ref := range w.triggerNodes {
		if n, ok := g.Resolve(ref); ok {
			w.registry.SetTriggerPosition(h, n.Position)
		}
	}
}

func (w *World) syncFromSolver(g *scene.Graph) {
	for h, ref := range w.bodyNodes {
		if w.registry.MotionType(h) != solver.MotionDynamic {
			continue
		}
		if n, ok := g.Resolve(ref); ok {
			n.Position = w.registry.Position(h)
			n.Rotation = w.registry.Rotation(h)
		}
	}
	for c, ref := range w.charNodes {
		if n, ok := g.Resolve(ref); ok {
			n.Position = c.Position()
		}
	}
	for v, ref := range w.vehicleNodes {
		if n, ok := g.Resolve(ref); ok {
			n.Position = v.Position()
			n.Rotation = v.Rotation()
		}
	}
}
