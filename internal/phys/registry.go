package phys

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/solver"
)

// BodyHandle is the opaque identifier callers hold instead of a solver body
// id. Valid only between create and destroy.
type BodyHandle struct {
	ID uint32
}

// TriggerHandle identifies a sensor body. Its id space is disjoint from
// BodyHandle's.
type TriggerHandle struct {
	ID uint32
}

// ShapeDescriptor is the deduplication key for solver shapes. Dimensions
// compare approximately (epsilon 1e-3) so repeated requests for "the same
// shape" share one solver resource.
type ShapeDescriptor struct {
	Kind solver.ShapeKind
	Dim  mathf.Vec3
}

// shapeKey quantizes the descriptor onto the epsilon grid so the map lookup
// matches the approximate-equality contract.
type shapeKey struct {
	kind    solver.ShapeKind
	x, y, z int32
}

func (d ShapeDescriptor) key() shapeKey {
	q := func(v float32) int32 { return int32(math32.Round(v / mathf.Epsilon)) }
	return shapeKey{kind: d.Kind, x: q(d.Dim.X), y: q(d.Dim.Y), z: q(d.Dim.Z)}
}

// BodyCreation carries the optional knobs for body construction.
type BodyCreation struct {
	Mass        float32
	Friction    float32
	Restitution float32
}

// BodyRegistry owns the handle tables and the shape cache. It is the only
// code that sees solver body ids. Not safe for concurrent use; all calls
// must come from the simulation thread.
type BodyRegistry struct {
	world       *solver.World
	bodies      map[BodyHandle]solver.BodyID
	triggers    map[TriggerHandle]solver.BodyID
	byBodyID    map[solver.BodyID]BodyHandle
	byTriggerID map[solver.BodyID]TriggerHandle
	shapes      map[shapeKey]*solver.Shape
	nextBody    uint32
	nextTrigger uint32
}

func NewBodyRegistry(w *solver.World) *BodyRegistry {
	return &BodyRegistry{
		world:       w,
		bodies:      make(map[BodyHandle]solver.BodyID),
		triggers:    make(map[TriggerHandle]solver.BodyID),
		byBodyID:    make(map[solver.BodyID]BodyHandle),
		byTriggerID: make(map[solver.BodyID]TriggerHandle),
		shapes:      make(map[shapeKey]*solver.Shape),
	}
}

// shape returns the cached solver shape for a descriptor, creating it on
// first use. Creation failure is fatal to the caller and never retried.
func (r *BodyRegistry) shape(d ShapeDescriptor) (*solver.Shape, error) {
	if s, ok := r.shapes[d.key()]; ok {
		return s, nil
	}
	s, err := solver.NewShape(d.Kind, d.Dim)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	r.shapes[d.key()] = s
	return s, nil
}

func (r *BodyRegistry) createBody(d ShapeDescriptor, pos mathf.Vec3, rot mathf.Quat, motion solver.MotionType, c BodyCreation) (BodyHandle, error) {
	s, err := r.shape(d)
	if err != nil {
		return BodyHandle{}, err
	}
	layer := solver.LayerMoving
	if motion == solver.MotionStatic {
		layer = solver.LayerStatic
	}
	id := r.world.CreateBody(solver.BodyCreationSettings{
		Shape:       s,
		Position:    pos,
		Rotation:    rot,
		Motion:      motion,
		Layer:       layer,
		Mass:        c.Mass,
		Friction:    c.Friction,
		Restitution: c.Restitution,
	})
	r.nextBody++
	h := BodyHandle{ID: r.nextBody}
	r.bodies[h] = id
	r.byBodyID[id] = h
	return h, nil
}

func (r *BodyRegistry) CreateSphereBody(radius float32, pos mathf.Vec3, rot mathf.Quat, motion solver.MotionType, c BodyCreation) (BodyHandle, error) {
	return r.createBody(ShapeDescriptor{Kind: solver.ShapeSphere, Dim: mathf.V3(radius, 0, 0)}, pos, rot, motion, c)
}

func (r *BodyRegistry) CreateBoxBody(halfExtents mathf.Vec3, pos mathf.Vec3, rot mathf.Quat, motion solver.MotionType, c BodyCreation) (BodyHandle, error) {
	return r.createBody(ShapeDescriptor{Kind: solver.ShapeBox, Dim: halfExtents}, pos, rot, motion, c)
}

func (r *BodyRegistry) CreateCapsuleBody(radius, halfHeight float32, pos mathf.Vec3, rot mathf.Quat, motion solver.MotionType, c BodyCreation) (BodyHandle, error) {
	return r.createBody(ShapeDescriptor{Kind: solver.ShapeCapsule, Dim: mathf.V3(radius, halfHeight, 0)}, pos, rot, motion, c)
}

func (r *BodyRegistry) CreateCylinderBody(radius, halfHeight float32, pos mathf.Vec3, rot mathf.Quat, motion solver.MotionType, c BodyCreation) (BodyHandle, error) {
	return r.createBody(ShapeDescriptor{Kind: solver.ShapeCylinder, Dim: mathf.V3(radius, halfHeight, 0)}, pos, rot, motion, c)
}

func (r *BodyRegistry) createTrigger(d ShapeDescriptor, pos mathf.Vec3, rot mathf.Quat) (TriggerHandle, error) {
	s, err := r.shape(d)
	if err != nil {
		return TriggerHandle{}, err
	}
	// sensors never produce collision response, only overlap events
	id := r.world.CreateBody(solver.BodyCreationSettings{
		Shape:    s,
		Position: pos,
		Rotation: rot,
		Motion:   solver.MotionStatic,
		Layer:    solver.LayerSensor,
		Sensor:   true,
	})
	r.nextTrigger++
	h := TriggerHandle{ID: r.nextTrigger}
	r.triggers[h] = id
	r.byTriggerID[id] = h
	return h, nil
}

func (r *BodyRegistry) CreateSphereTrigger(radius float32, pos mathf.Vec3, rot mathf.Quat) (TriggerHandle, error) {
	return r.createTrigger(ShapeDescriptor{Kind: solver.ShapeSphere, Dim: mathf.V3(radius, 0, 0)}, pos, rot)
}

func (r *BodyRegistry) CreateBoxTrigger(halfExtents mathf.Vec3, pos mathf.Vec3, rot mathf.Quat) (TriggerHandle, error) {
	return r.createTrigger(ShapeDescriptor{Kind: solver.ShapeBox, Dim: halfExtents}, pos, rot)
}

func (r *BodyRegistry) CreateCapsuleTrigger(radius, halfHeight float32, pos mathf.Vec3, rot mathf.Quat) (TriggerHandle, error) {
	return r.createTrigger(ShapeDescriptor{Kind: solver.ShapeCapsule, Dim: mathf.V3(radius, halfHeight, 0)}, pos, rot)
}

// AddBody inserts the body into the solver world.
func (r *BodyRegistry) AddBody(h BodyHandle, activate bool) {
	if id, ok := r.bodies[h]; ok {
		r.world.AddBody(id, activate)
	}
}

// RemoveBody takes the body out of the world without releasing it.
func (r *BodyRegistry) RemoveBody(h BodyHandle) {
	if id, ok := r.bodies[h]; ok {
		r.world.RemoveBody(id)
	}
}

// DestroyBody releases the solver resource and invalidates the handle.
// Subsequent accessor calls on the handle return defaults.
func (r *BodyRegistry) DestroyBody(h BodyHandle) {
	if id, ok := r.bodies[h]; ok {
		r.world.DestroyBody(id)
		delete(r.bodies, h)
		delete(r.byBodyID, id)
	}
}

func (r *BodyRegistry) AddTrigger(h TriggerHandle, activate bool) {
	if id, ok := r.triggers[h]; ok {
		r.world.AddBody(id, activate)
	}
}

func (r *BodyRegistry) RemoveTrigger(h TriggerHandle) {
	if id, ok := r.triggers[h]; ok {
		r.world.RemoveBody(id)
	}
}

func (r *BodyRegistry) DestroyTrigger(h TriggerHandle) {
	if id, ok := r.triggers[h]; ok {
		r.world.DestroyBody(id)
		delete(r.triggers, h)
		delete(r.byTriggerID, id)
	}
}

// Handle resolves a solver body id back to its handle, used by queries.
func (r *BodyRegistry) Handle(id solver.BodyID) (BodyHandle, bool) {
	h, ok := r.byBodyID[id]
	return h, ok
}

// TriggerOf resolves a solver body id back to its trigger handle.
func (r *BodyRegistry) TriggerOf(id solver.BodyID) (TriggerHandle, bool) {
	h, ok := r.byTriggerID[id]
	return h, ok
}

// ShapeCount reports how many distinct solver shapes are cached.
func (r *BodyRegistry) ShapeCount() int { return len(r.shapes) }
