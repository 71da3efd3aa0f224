package phys

import (
	"github.com/chewxy/math32"

	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/solver"
)

type CharacterState uint8

const (
	CharacterGrounded CharacterState = iota
	CharacterSliding
	CharacterAirborne
)

func (s CharacterState) String() string {
	switch s {
	case CharacterGrounded:
		return "grounded"
	case CharacterSliding:
		return "sliding"
	case CharacterAirborne:
		return "airborne"
	}
	return "unknown"
}

// CharacterControllerSettings are immutable after construction.
type CharacterControllerSettings struct {
	Height                   float32 // full capsule height including caps
	Radius                   float32
	Mass                     float32
	MaxSlopeAngle            float32 // radians
	MaxPushStrength          float32
	Padding                  float32
	PenetrationRecoverySpeed float32
	MaxSpeed                 float32
}

func DefaultCharacterSettings() CharacterControllerSettings {
	return CharacterControllerSettings{
		Height:                   1.8,
		Radius:                   0.3,
		Mass:                     80,
		MaxSlopeAngle:            50 * math32.Pi / 180,
		MaxPushStrength:          100,
		Padding:                  0.02,
		PenetrationRecoverySpeed: 1,
		MaxSpeed:                 8,
	}
}

const jumpCooldownTime float32 = 0.25

// CharacterController is a capsule moved through the solver's extended
// update rather than integrated as a dynamic body. It keeps the previous
// step's position so callers can blend with the interpolation alpha.
type CharacterController struct {
	world    *solver.World
	settings CharacterControllerSettings
	shape    solver.CharacterShape

	position     mathf.Vec3
	prevPosition mathf.Vec3
	velocity     mathf.Vec3
	state        CharacterState
	ground       solver.GroundInfo
	jumpCooldown float32
}

func NewCharacterController(w *solver.World, s CharacterControllerSettings, pos mathf.Vec3) *CharacterController {
	halfHeight := s.Height/2 - s.Radius
	if halfHeight < 0 {
		halfHeight = 0
	}
	return &CharacterController{
		world:        w,
		settings:     s,
		shape:        solver.CharacterShape{Radius: s.Radius, HalfHeight: halfHeight},
		position:     pos,
		prevPosition: pos,
		state:        CharacterAirborne,
	}
}

// Move replaces the horizontal velocity while preserving the vertical
// component, so gravity and jumps stay in effect. Horizontal speed is
// clamped to MaxSpeed. Time only passes in Update.
func (c *CharacterController) Move(direction mathf.Vec3) {
	horizontal := mathf.V3(direction.X, 0, direction.Z)
	speed := horizontal.Length()
	if c.settings.MaxSpeed > 0 && speed > c.settings.MaxSpeed {
		horizontal = horizontal.Scale(c.settings.MaxSpeed / speed)
	}
	c.velocity.X = horizontal.X
	c.velocity.Z = horizontal.Z
}

// Jump sets the vertical velocity if the character is grounded and the
// cooldown has elapsed. Requests while airborne are dropped, not queued.
func (c *CharacterController) Jump(jumpSpeed float32) bool {
	if c.state != CharacterGrounded || c.jumpCooldown > 0 {
		return false
	}
	c.velocity.Y = jumpSpeed
	c.jumpCooldown = jumpCooldownTime
	return true
}

// StorePreviousPosition must be called once per fixed sub-step, before
// Update.
func (c *CharacterController) StorePreviousPosition() {
	c.prevPosition = c.position
}

// Update runs the solver's extended update for one fixed sub-step: apply
// gravity, sweep, depenetrate, snap to ground, then reclassify the state.
func (c *CharacterController) Update(dt float32, gravity mathf.Vec3) {
	if c.jumpCooldown > 0 {
		c.jumpCooldown -= dt
	}
	c.velocity = c.velocity.Add(gravity.Scale(dt))

	res := c.world.MoveCharacter(c.position, c.velocity, dt, solver.CharacterMoveSettings{
		Shape:           c.shape,
		Padding:         c.settings.Padding,
		SnapDistance:    c.settings.PenetrationRecoverySpeed * dt * 10,
		MaxPushStrength: c.settings.MaxPushStrength,
	})
	c.position = res.Position
	c.velocity = res.Velocity
	c.ground = res.Ground
	c.state = c.classify(res.Ground)
}

// classify maps the solver's ground query onto the three character states.
// There is no transition table; the state is recomputed every update.
func (c *CharacterController) classify(g solver.GroundInfo) CharacterState {
	if !g.Found {
		return CharacterAirborne
	}
	minUp := math32.Cos(c.settings.MaxSlopeAngle)
	if g.Normal.Y < minUp {
		return CharacterSliding
	}
	return CharacterGrounded
}

// Warp teleports the character, bypassing collision resolution. Both stored
// positions move so interpolation does not smear across the jump.
func (c *CharacterController) Warp(pos mathf.Vec3) {
	c.position = pos
	c.prevPosition = pos
}

func (c *CharacterController) Position() mathf.Vec3 { return c.position }
func (c *CharacterController) Velocity() mathf.Vec3 { return c.velocity }
func (c *CharacterController) State() CharacterState {
	return c.state
}

// GroundNormal is the support normal from the last update, up when airborne.
func (c *CharacterController) GroundNormal() mathf.Vec3 {
	if !c.ground.Found {
		return mathf.V3(0, 1, 0)
	}
	return c.ground.Normal
}

// InterpolatedPosition blends the previous and current step positions with
// the scheduler's alpha for smooth rendering between physics steps.
func (c *CharacterController) InterpolatedPosition(alpha float64) mathf.Vec3 {
	return c.prevPosition.Lerp(c.position, float32(alpha))
}
