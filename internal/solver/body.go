package solver

import "github.com/impel-engine/impel/internal/mathf"

// BodyID identifies a body inside the solver. Zero is never allocated.
type BodyID uint32

const InvalidBodyID BodyID = 0

type MotionType uint8

const (
	MotionStatic MotionType = iota
	MotionDynamic
	MotionKinematic
)

func (m MotionType) String() string {
	switch m {
	case MotionStatic:
		return "static"
	case MotionDynamic:
		return "dynamic"
	case MotionKinematic:
		return "kinematic"
	}
	return "unknown"
}

// Layer selects the broadphase group a body collides in. Sensors live on
// their own layer so they never produce collision response.
type Layer uint8

const (
	LayerStatic Layer = iota
	LayerMoving
	LayerSensor
)

// Body is solver-internal state. Callers outside the package reach it only
// through World's lock-guarded accessors.
type Body struct {
	ID       BodyID
	Shape    *Shape
	Motion   MotionType
	Layer    Layer
	Sensor   bool
	UserData uint64

	Position        mathf.Vec3
	Rotation        mathf.Quat
	Velocity        mathf.Vec3
	AngularVelocity mathf.Vec3

	Mass           float32
	Friction       float32
	Restitution    float32
	LinearDamping  float32
	AngularDamping float32
	GravityFactor  float32

	force  mathf.Vec3
	torque mathf.Vec3

	inWorld bool
}

// AABB is the body's world-space bounding box. Rotation is folded in
// conservatively by keeping the shape's local half extents.
func (b *Body) AABB() mathf.AABB {
	return mathf.AABBFromCenter(b.Position, b.Shape.HalfExtents())
}

// AddForce accumulates a force consumed by the next Step.
func (b *Body) AddForce(f mathf.Vec3) {
	b.force = b.force.Add(f)
}

// AddTorque accumulates a torque consumed by the next Step.
func (b *Body) AddTorque(t mathf.Vec3) {
	b.torque = b.torque.Add(t)
}

// AddImpulse changes velocity immediately (impulse / mass).
func (b *Body) AddImpulse(imp mathf.Vec3) {
	if b.Motion != MotionDynamic || b.Mass <= 0 {
		return
	}
	b.Velocity = b.Velocity.Add(imp.Scale(1 / b.Mass))
}

func (b *Body) invMass() float32 {
	if b.Motion != MotionDynamic || b.Mass <= 0 {
		return 0
	}
	return 1 / b.Mass
}

// BodyCreationSettings mirrors what a caller needs to hand the solver to
// materialize a body.
type BodyCreationSettings struct {
	Shape          *Shape
	Position       mathf.Vec3
	Rotation       mathf.Quat
	Motion         MotionType
	Layer          Layer
	Sensor         bool
	Mass           float32
	Friction       float32
	Restitution    float32
	LinearDamping  float32
	AngularDamping float32
	GravityFactor  float32
	UserData       uint64
}
