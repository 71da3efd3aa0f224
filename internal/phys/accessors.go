package phys

import (
	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/solver"
)

// Property accessors are pass-through to the solver body, keyed by handle.
// The unchecked getters resolve a stale handle to a default value (zero
// vector, identity rotation, false) so gameplay code never crashes on a
// destroyed body; the Checked variants make staleness observable.

func (r *BodyRegistry) with(h BodyHandle, fn func(*solver.Body)) bool {
	id, ok := r.bodies[h]
	if !ok {
		return false
	}
	return r.world.WithBody(id, fn)
}

func (r *BodyRegistry) PositionChecked(h BodyHandle) (mathf.Vec3, bool) {
	var v mathf.Vec3
	ok := r.with(h, func(b *solver.Body) { v = b.Position })
	return v, ok
}

func (r *BodyRegistry) Position(h BodyHandle) mathf.Vec3 {
	v, _ := r.PositionChecked(h)
	return v
}

func (r *BodyRegistry) RotationChecked(h BodyHandle) (mathf.Quat, bool) {
	q := mathf.QuatIdentity()
	ok := r.with(h, func(b *solver.Body) { q = b.Rotation })
	return q, ok
}

func (r *BodyRegistry) Rotation(h BodyHandle) mathf.Quat {
	q, _ := r.RotationChecked(h)
	return q
}

func (r *BodyRegistry) VelocityChecked(h BodyHandle) (mathf.Vec3, bool) {
	var v mathf.Vec3
	ok := r.with(h, func(b *solver.Body) { v = b.Velocity })
	return v, ok
}

func (r *BodyRegistry) Velocity(h BodyHandle) mathf.Vec3 {
	v, _ := r.VelocityChecked(h)
	return v
}

func (r *BodyRegistry) AngularVelocity(h BodyHandle) mathf.Vec3 {
	var v mathf.Vec3
	r.with(h, func(b *solver.Body) { v = b.AngularVelocity })
	return v
}

func (r *BodyRegistry) Mass(h BodyHandle) float32 {
	var m float32
	r.with(h, func(b *solver.Body) { m = b.Mass })
	return m
}

func (r *BodyRegistry) Friction(h BodyHandle) float32 {
	var f float32
	r.with(h, func(b *solver.Body) { f = b.Friction })
	return f
}

func (r *BodyRegistry) Restitution(h BodyHandle) float32 {
	var e float32
	r.with(h, func(b *solver.Body) { e = b.Restitution })
	return e
}

func (r *BodyRegistry) GravityFactor(h BodyHandle) float32 {
	var g float32
	r.with(h, func(b *solver.Body) { g = b.GravityFactor })
	return g
}

func (r *BodyRegistry) MotionType(h BodyHandle) solver.MotionType {
	m := solver.MotionStatic
	r.with(h, func(b *solver.Body) { m = b.Motion })
	return m
}

func (r *BodyRegistry) UserData(h BodyHandle) uint64 {
	var u uint64
	r.with(h, func(b *solver.Body) { u = b.UserData })
	return u
}

func (r *BodyRegistry) SetPosition(h BodyHandle, p mathf.Vec3) {
	r.with(h, func(b *solver.Body) { b.Position = p })
}

func (r *BodyRegistry) SetRotation(h BodyHandle, q mathf.Quat) {
	r.with(h, func(b *solver.Body) { b.Rotation = q })
}

func (r *BodyRegistry) SetVelocity(h BodyHandle, v mathf.Vec3) {
	r.with(h, func(b *solver.Body) { b.Velocity = v })
}

func (r *BodyRegistry) SetAngularVelocity(h BodyHandle, v mathf.Vec3) {
	r.with(h, func(b *solver.Body) { b.AngularVelocity = v })
}

func (r *BodyRegistry) SetMass(h BodyHandle, m float32) {
	if m <= 0 {
		return
	}
	r.with(h, func(b *solver.Body) { b.Mass = m })
}

func (r *BodyRegistry) SetFriction(h BodyHandle, f float32) {
	r.with(h, func(b *solver.Body) { b.Friction = f })
}

func (r *BodyRegistry) SetRestitution(h BodyHandle, e float32) {
	r.with(h, func(b *solver.Body) { b.Restitution = e })
}

func (r *BodyRegistry) SetDamping(h BodyHandle, linear, angular float32) {
	r.with(h, func(b *solver.Body) {
		b.LinearDamping = linear
		b.AngularDamping = angular
	})
}

func (r *BodyRegistry) SetGravityFactor(h BodyHandle, g float32) {
	r.with(h, func(b *solver.Body) { b.GravityFactor = g })
}

func (r *BodyRegistry) SetUserData(h BodyHandle, u uint64) {
	r.with(h, func(b *solver.Body) { b.UserData = u })
}

func (r *BodyRegistry) AddForce(h BodyHandle, f mathf.Vec3) {
	r.with(h, func(b *solver.Body) { b.AddForce(f) })
}

func (r *BodyRegistry) AddTorque(h BodyHandle, t mathf.Vec3) {
	r.with(h, func(b *solver.Body) { b.AddTorque(t) })
}

func (r *BodyRegistry) AddImpulse(h BodyHandle, imp mathf.Vec3) {
	r.with(h, func(b *solver.Body) { b.AddImpulse(imp) })
}

func (r *BodyRegistry) withTrigger(h TriggerHandle, fn func(*solver.Body)) bool {
	id, ok := r.triggers[h]
	if !ok {
		return false
	}
	return r.world.WithBody(id, fn)
}

func (r *BodyRegistry) TriggerPosition(h TriggerHandle) mathf.Vec3 {
	var v mathf.Vec3
	r.withTrigger(h, func(b *solver.Body) { v = b.Position })
	return v
}

func (r *BodyRegistry) SetTriggerPosition(h TriggerHandle, p mathf.Vec3) {
	r.withTrigger(h, func(b *solver.Body) { b.Position = p })
}

func (r *BodyRegistry) SetTriggerUserData(h TriggerHandle, u uint64) {
	r.withTrigger(h, func(b *solver.Body) { b.UserData = u })
}
