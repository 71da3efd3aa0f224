package phys

import (
	"errors"

	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/solver"
)

// ErrNoWheels rejects vehicle construction with an empty wheel list. A
// wheelless vehicle would build fine and simply never drive, so it is
// caught here, at construction time.
var ErrNoWheels = errors.New("phys: vehicle requires at least one wheel")

// VehicleSettings are immutable after construction. The wheel count is
// fixed for the controller's lifetime.
type VehicleSettings struct {
	Mass             float32
	HalfExtents      mathf.Vec3
	MaxSteeringAngle float32 // radians
	MaxEngineTorque  float32
	MaxBrakeTorque   float32
	Wheels           []solver.WheelSettings
}

// DefaultVehicleSettings is the four-wheel template: wheels 0 and 1 steer,
// engine torque splits across the rear differential on wheels 2 and 3.
func DefaultVehicleSettings() VehicleSettings {
	wheel := func(x, z float32, traction bool) solver.WheelSettings {
		return solver.WheelSettings{
			Position:            mathf.V3(x, -0.3, z),
			SuspensionMin:       0.1,
			SuspensionMax:       0.5,
			SuspensionFrequency: 1.5,
			SuspensionDamping:   0.5,
			Radius:              0.3,
			Width:               0.2,
			Traction:            traction,
		}
	}
	return VehicleSettings{
		Mass:             1500,
		HalfExtents:      mathf.V3(0.9, 0.4, 2.0),
		MaxSteeringAngle: 30 * 3.14159265 / 180,
		MaxEngineTorque:  500,
		MaxBrakeTorque:   1500,
		Wheels: []solver.WheelSettings{
			wheel(-0.8, 1.4, false), // front left
			wheel(0.8, 1.4, false),  // front right
			wheel(-0.8, -1.4, true), // rear left
			wheel(0.8, -1.4, true),  // rear right
		},
	}
}

// VehicleController owns one dynamic chassis body and one wheel constraint,
// both released on Destroy. Inputs are stored by the setters and forwarded
// to the solver in a single driver-input call per Update.
type VehicleController struct {
	world      *solver.World
	body       solver.BodyID
	constraint *solver.WheelConstraint

	throttle  float32
	steering  float32
	brake     float32
	handbrake float32
}

func NewVehicleController(w *solver.World, s VehicleSettings, pos mathf.Vec3, rot mathf.Quat) (*VehicleController, error) {
	if len(s.Wheels) == 0 {
		return nil, ErrNoWheels
	}
	shape, err := solver.NewShape(solver.ShapeBox, s.HalfExtents)
	if err != nil {
		return nil, err
	}
	body := w.CreateBody(solver.BodyCreationSettings{
		Shape:    shape,
		Position: pos,
		Rotation: rot,
		Motion:   solver.MotionDynamic,
		Layer:    solver.LayerMoving,
		Mass:     s.Mass,
		Friction: 0.2,
	})
	w.AddBody(body, true)

	wheelBase := float32(0)
	if len(s.Wheels) >= 2 {
		wheelBase = s.Wheels[0].Position.Z - s.Wheels[len(s.Wheels)-1].Position.Z
		if wheelBase < 0 {
			wheelBase = -wheelBase
		}
	}
	template := solver.VehicleTemplate{
		MaxSteeringAngle: s.MaxSteeringAngle,
		MaxEngineTorque:  s.MaxEngineTorque,
		MaxBrakeTorque:   s.MaxBrakeTorque,
		WheelBase:        wheelBase,
	}
	return &VehicleController{
		world:      w,
		body:       body,
		constraint: solver.NewWheelConstraint(body, template, s.Wheels),
	}, nil
}

func (v *VehicleController) SetThrottle(t float32)  { v.throttle = mathf.Clamp(t, -1, 1) }
func (v *VehicleController) SetSteering(s float32)  { v.steering = mathf.Clamp(s, -1, 1) }
func (v *VehicleController) SetBrake(b float32)     { v.brake = mathf.Clamp(b, 0, 1) }
func (v *VehicleController) SetHandbrake(h float32) { v.handbrake = mathf.Clamp(h, 0, 1) }

// Update forwards the stored inputs to the solver's wheeled-vehicle
// constraint. Suspension, traction and the differential torque split all
// resolve inside that one call.
func (v *VehicleController) Update(dt float32) {
	v.constraint.Apply(v.world, solver.DriverInput{
		Throttle:  v.throttle,
		Steering:  v.steering,
		Brake:     v.brake,
		Handbrake: v.handbrake,
	}, dt)
}

func (v *VehicleController) WheelCount() int { return v.constraint.WheelCount() }

// Wheel exposes the per-wheel contact and suspension state.
func (v *VehicleController) Wheel(i int) solver.WheelState { return v.constraint.Wheel(i) }

func (v *VehicleController) Position() mathf.Vec3 {
	var p mathf.Vec3
	v.world.WithBody(v.body, func(b *solver.Body) { p = b.Position })
	return p
}

func (v *VehicleController) Rotation() mathf.Quat {
	q := mathf.QuatIdentity()
	v.world.WithBody(v.body, func(b *solver.Body) { q = b.Rotation })
	return q
}

func (v *VehicleController) LinearVelocity() mathf.Vec3 {
	var vel mathf.Vec3
	v.world.WithBody(v.body, func(b *solver.Body) { vel = b.Velocity })
	return vel
}

func (v *VehicleController) AngularVelocity() mathf.Vec3 {
	var w mathf.Vec3
	v.world.WithBody(v.body, func(b *solver.Body) { w = b.AngularVelocity })
	return w
}

// Speed is the signed speed along the chassis forward axis, in m/s.
func (v *VehicleController) Speed() float32 {
	var speed float32
	v.world.WithBody(v.body, func(b *solver.Body) {
		forward := b.Rotation.Rotate(mathf.V3(0, 0, 1))
		speed = b.Velocity.Dot(forward)
	})
	return speed
}

func (v *VehicleController) SpeedKMH() float32 {
	return v.Speed() * 3.6
}

// Destroy releases the chassis body. The controller must not be used after.
func (v *VehicleController) Destroy() {
	v.world.DestroyBody(v.body)
}
