package solver

import (
	"github.com/chewxy/math32"

	"github.com/impel-engine/impel/internal/mathf"
)

// WheelSettings is the per-wheel suspension and geometry description.
// Immutable once the constraint is built.
type WheelSettings struct {
	Position            mathf.Vec3 // attach point in chassis space
	SuspensionMin       float32
	SuspensionMax       float32
	SuspensionFrequency float32 // Hz
	SuspensionDamping   float32 // ratio, 1 = critical
	Radius              float32
	Width               float32
	Traction            bool
}

// WheelState is the queryable runtime state of one wheel.
type WheelState struct {
	HasContact       bool
	ContactPoint     mathf.Vec3
	ContactNormal    mathf.Vec3
	SuspensionLength float32
}

// DriverInput is the whole-vehicle control set, forwarded in one call per
// step.
type DriverInput struct {
	Throttle  float32 // [-1, 1]
	Steering  float32 // [-1, 1]
	Brake     float32 // [0, 1]
	Handbrake float32 // [0, 1]
}

// VehicleTemplate fixes the drivetrain wiring: wheels 0 and 1 steer, the
// rear differential splits engine torque across wheels 2 and 3.
type VehicleTemplate struct {
	MaxSteeringAngle float32 // radians
	MaxEngineTorque  float32
	MaxBrakeTorque   float32
	WheelBase        float32
}

// Grip constants follow the arcade car model: lateral velocity is bled off
// per step rather than resolved through tire curves.
const (
	lateralGrip     float32 = 0.85
	handbrakeGrip   float32 = 0.96
	rollingFriction float32 = 0.998
)

// WheelConstraint couples one chassis body to N wheels through suspension
// raycasts. The wheel count is fixed for the constraint's lifetime.
type WheelConstraint struct {
	body     BodyID
	template VehicleTemplate
	wheels   []WheelSettings
	state    []WheelState
}

// NewWheelConstraint builds the constraint. The solver does not validate the
// wheel count; hosts that care must check before calling.
func NewWheelConstraint(body BodyID, template VehicleTemplate, wheels []WheelSettings) *WheelConstraint {
	return &WheelConstraint{
		body:     body,
		template: template,
		wheels:   append([]WheelSettings(nil), wheels...),
		state:    make([]WheelState, len(wheels)),
	}
}

func (c *WheelConstraint) Body() BodyID { return c.body }

func (c *WheelConstraint) WheelCount() int { return len(c.wheels) }

// Wheel returns the runtime state for a wheel index, zero value when out of
// range.
func (c *WheelConstraint) Wheel(i int) WheelState {
	if i < 0 || i >= len(c.state) {
		return WheelState{}
	}
	return c.state[i]
}

// Apply resolves suspension, traction and drive torque for one step. in is
// assumed pre-clamped by the caller.
func (c *WheelConstraint) Apply(w *World, in DriverInput, dt float32) {
	w.WithBody(c.body, func(b *Body) {
		c.applyLocked(w, b, in, dt)
	})
}

func (c *WheelConstraint) applyLocked(w *World, b *Body, in DriverInput, dt float32) {
	up := b.Rotation.Rotate(mathf.V3(0, 1, 0))
	forward := b.Rotation.Rotate(mathf.V3(0, 0, 1))

	grounded := 0
	for i := range c.wheels {
		ws := &c.wheels[i]
		attach := b.Position.Add(b.Rotation.Rotate(ws.Position))
		rayLen := ws.SuspensionMax + ws.Radius
		hit, ok := w.castDownLocked(attach, up.Neg().Scale(rayLen), c.body)
		if !ok {
			c.state[i] = WheelState{SuspensionLength: ws.SuspensionMax}
			continue
		}
		susLen := mathf.Clamp(hit.Fraction*rayLen-ws.Radius, ws.SuspensionMin, ws.SuspensionMax)
		c.state[i] = WheelState{
			HasContact:       true,
			ContactPoint:     hit.Point,
			ContactNormal:    hit.Normal,
			SuspensionLength: susLen,
		}
		grounded++

		// spring from frequency: k = m_eff (2 pi f)^2, damped along up
		mEff := b.Mass / float32(len(c.wheels))
		omega := 2 * math32.Pi * ws.SuspensionFrequency
		k := mEff * omega * omega
		cDamp := 2 * mEff * omega * ws.SuspensionDamping
		compression := ws.SuspensionMax - susLen
		velAlongUp := b.Velocity.Dot(up)
		f := k*compression - cDamp*velAlongUp
		if f > 0 {
			b.Velocity = b.Velocity.Add(up.Scale(f / b.Mass * dt))
		}
	}

	if grounded == 0 {
		return
	}

	steer := in.Steering * c.template.MaxSteeringAngle

	// rear differential: engine torque splits across the traction wheels
	drive := in.Throttle * c.template.MaxEngineTorque
	tractionWheels := 0
	for _, ws := range c.wheels {
		if ws.Traction {
			tractionWheels++
		}
	}
	if tractionWheels > 0 && drive != 0 {
		var accel float32
		for _, ws := range c.wheels {
			if ws.Traction && ws.Radius > 0 {
				accel += (drive / float32(tractionWheels)) / ws.Radius / b.Mass
			}
		}
		b.Velocity = b.Velocity.Add(forward.Scale(accel * dt))
	}

	// bicycle-model yaw from front steering
	speed := b.Velocity.Dot(forward)
	if c.template.WheelBase > 0 && steer != 0 {
		yawRate := speed * math32.Tan(steer) / c.template.WheelBase
		b.AngularVelocity.Y = yawRate
		b.Rotation = b.Rotation.Integrate(mathf.V3(0, yawRate, 0), dt)
	}

	// brakes oppose motion along forward
	if in.Brake > 0 {
		decel := in.Brake * c.template.MaxBrakeTorque / b.Mass
		if speed > 0 {
			reduce := math32.Min(speed, decel*dt)
			b.Velocity = b.Velocity.Sub(forward.Scale(reduce))
		} else if speed < 0 {
			reduce := math32.Min(-speed, decel*dt)
			b.Velocity = b.Velocity.Add(forward.Scale(reduce))
		}
	}

	// tire grip: bleed lateral velocity, less under handbrake
	grip := lateralGrip
	if in.Handbrake > 0 {
		grip = handbrakeGrip
	}
	right := b.Rotation.Rotate(mathf.V3(1, 0, 0))
	lateral := b.Velocity.Dot(right)
	b.Velocity = b.Velocity.Sub(right.Scale(lateral * (1 - grip)))
	b.Velocity = b.Velocity.Scale(rollingFriction)
}

// castDownLocked mirrors CastRayIgnore without re-taking the world lock.
func (w *World) castDownLocked(from, dir mathf.Vec3, ignore BodyID) (RayHit, bool) {
	best := RayHit{Fraction: math32.Inf(1)}
	found := false
	for _, b := range w.bodies {
		if !b.inWorld || b.ID == ignore || b.Sensor {
			continue
		}
		frac, normal, ok := rayAABB(from, dir, b.AABB())
		if ok && frac < best.Fraction {
			best = RayHit{Body: b.ID, UserData: b.UserData, Point: from.Add(dir.Scale(frac)), Normal: normal, Fraction: frac}
			found = true
		}
	}
	return best, found
}
