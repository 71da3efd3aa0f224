package phys

import (
	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/solver"
)

// FluidVolumeSettings describe a box region, axis aligned in its own local
// space. All fields may change at runtime through the volume's setters.
type FluidVolumeSettings struct {
	Position     mathf.Vec3
	HalfExtents  mathf.Vec3
	Rotation     mathf.Quat
	Density      float32 // kg/m^3
	LinearDrag   float32
	AngularDrag  float32
	FlowVelocity mathf.Vec3
}

func WaterVolumeSettings(pos, halfExtents mathf.Vec3) FluidVolumeSettings {
	return FluidVolumeSettings{
		Position:    pos,
		HalfExtents: halfExtents,
		Rotation:    mathf.QuatIdentity(),
		Density:     1000,
		LinearDrag:  0.5,
		AngularDrag: 0.2,
	}
}

// FluidVolume injects buoyancy and drag into active dynamic bodies each
// frame, before the solver step. The submersion estimate intersects body
// AABBs with the volume's world AABB rather than exact shapes.
type FluidVolume struct {
	world *solver.World
	s     FluidVolumeSettings
}

func NewFluidVolume(w *solver.World, s FluidVolumeSettings) *FluidVolume {
	if (s.Rotation == mathf.Quat{}) {
		s.Rotation = mathf.QuatIdentity()
	}
	return &FluidVolume{world: w, s: s}
}

func (f *FluidVolume) Settings() FluidVolumeSettings { return f.s }

func (f *FluidVolume) SetPosition(p mathf.Vec3)     { f.s.Position = p }
func (f *FluidVolume) SetRotation(q mathf.Quat)     { f.s.Rotation = q }
func (f *FluidVolume) SetHalfExtents(h mathf.Vec3)  { f.s.HalfExtents = h }
func (f *FluidVolume) SetDensity(d float32)         { f.s.Density = d }
func (f *FluidVolume) SetLinearDrag(d float32)      { f.s.LinearDrag = d }
func (f *FluidVolume) SetAngularDrag(d float32)     { f.s.AngularDrag = d }
func (f *FluidVolume) SetFlowVelocity(v mathf.Vec3) { f.s.FlowVelocity = v }

// Contains tests a point in the volume's rotated local frame.
func (f *FluidVolume) Contains(p mathf.Vec3) bool {
	local := f.s.Rotation.InverseRotate(p.Sub(f.s.Position)).Abs()
	return local.X <= f.s.HalfExtents.X &&
		local.Y <= f.s.HalfExtents.Y &&
		local.Z <= f.s.HalfExtents.Z
}

// worldAABB bounds the rotated box conservatively.
func (f *FluidVolume) worldAABB() mathf.AABB {
	ex := f.s.Rotation.Rotate(mathf.V3(f.s.HalfExtents.X, 0, 0)).Abs()
	ey := f.s.Rotation.Rotate(mathf.V3(0, f.s.HalfExtents.Y, 0)).Abs()
	ez := f.s.Rotation.Rotate(mathf.V3(0, 0, f.s.HalfExtents.Z)).Abs()
	half := ex.Add(ey).Add(ez)
	return mathf.AABBFromCenter(f.s.Position, half)
}

// SubmergedRatio estimates how much of a body AABB sits inside the volume,
// clamped to [0, 1].
func (f *FluidVolume) SubmergedRatio(body mathf.AABB) float32 {
	vol := body.Volume()
	if vol <= 0 {
		return 0
	}
	return mathf.Clamp(f.worldAABB().IntersectionVolume(body)/vol, 0, 1)
}

// ApplyForces scans the solver's active-body list and accumulates buoyancy
// and drag on every partially submerged dynamic body. Static and kinematic
// bodies are skipped entirely. O(active bodies) per call, once per frame.
func (f *FluidVolume) ApplyForces(gravity mathf.Vec3) {
	gMag := gravity.Length()
	if gMag <= 0 {
		return
	}
	up := gravity.Scale(-1 / gMag)

	for _, id := range f.world.ActiveBodies() {
		f.world.WithBody(id, func(b *solver.Body) {
			if b.Motion != solver.MotionDynamic {
				return
			}
			box := b.AABB()
			ratio := f.SubmergedRatio(box)
			if ratio <= 0 {
				return
			}

			// Archimedes: displaced fluid weight, opposite gravity
			submergedVol := ratio * box.Volume()
			b.AddForce(up.Scale(f.s.Density * submergedVol * gMag))

			// quadratic drag on velocity relative to the flow
			rel := b.Velocity.Sub(f.s.FlowVelocity)
			b.AddForce(rel.Scale(-f.s.LinearDrag * rel.Length() * ratio))

			// angular drag is linear in spin
			b.AddTorque(b.AngularVelocity.Scale(-f.s.AngularDrag * ratio * b.Mass))
		})
	}
}
