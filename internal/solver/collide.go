package solver

import (
	"github.com/chewxy/math32"

	"github.com/impel-engine/impel/internal/mathf"
)

// Velocity along the contact axis below this threshold settles instead of
// bouncing, so stacked bodies come to rest.
const bounceThreshold float32 = 0.5

// penetrationAxis returns the smallest overlap between two AABBs and which
// axis it is on (0=X, 1=Y, 2=Z). axis is -1 when the boxes are disjoint.
func penetrationAxis(a, b mathf.AABB) (depth float32, axis int) {
	overlapX := math32.Min(a.Max.X, b.Max.X) - math32.Max(a.Min.X, b.Min.X)
	overlapY := math32.Min(a.Max.Y, b.Max.Y) - math32.Max(a.Min.Y, b.Min.Y)
	overlapZ := math32.Min(a.Max.Z, b.Max.Z) - math32.Max(a.Min.Z, b.Min.Z)
	if overlapX <= 0 || overlapY <= 0 || overlapZ <= 0 {
		return 0, -1
	}
	depth = overlapX
	axis = 0
	if overlapY < depth {
		depth = overlapY
		axis = 1
	}
	if overlapZ < depth {
		depth = overlapZ
		axis = 2
	}
	return depth, axis
}

func axisComponent(v mathf.Vec3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func setAxisComponent(v *mathf.Vec3, axis int, val float32) {
	switch axis {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
}

// collide runs the narrowphase over every overlapping pair, applying
// push-apart response for solid pairs and overlap bookkeeping for sensors.
func (w *World) collide(bodies []*Body) {
	for i := 0; i < len(bodies); i++ {
		bi := bodies[i]
		for j := i + 1; j < len(bodies); j++ {
			bj := bodies[j]
			// Two static bodies can never start or stop overlapping.
			// Kinematic bodies are application-driven, so their pairs
			// still need overlap bookkeeping even without response.
			if bi.Motion == MotionStatic && bj.Motion == MotionStatic {
				continue
			}
			depth, axis := penetrationAxis(bi.AABB(), bj.AABB())
			if axis < 0 {
				continue
			}
			w.touchPair(bi, bj)
			if bi.Sensor || bj.Sensor {
				continue
			}
			resolvePair(bi, bj, depth, axis)
		}
	}
}

// resolvePair pushes the two bodies apart along the minimum penetration axis,
// split by inverse mass, and settles or reflects the approach velocity.
func resolvePair(bi, bj *Body, depth float32, axis int) {
	invI := bi.invMass()
	invJ := bj.invMass()
	total := invI + invJ
	if total <= 0 {
		return
	}

	// bj sits on the positive side of bi along the axis when its center is
	// greater; push each body away from the other.
	dir := float32(1)
	if axisComponent(bj.Position, axis) < axisComponent(bi.Position, axis) {
		dir = -1
	}
	moveI := -dir * depth * (invI / total)
	moveJ := dir * depth * (invJ / total)

	offI := mathf.Vec3{}
	setAxisComponent(&offI, axis, moveI)
	bi.Position = bi.Position.Add(offI)
	offJ := mathf.Vec3{}
	setAxisComponent(&offJ, axis, moveJ)
	bj.Position = bj.Position.Add(offJ)

	// Relative approach velocity along the axis.
	rel := axisComponent(bj.Velocity, axis) - axisComponent(bi.Velocity, axis)
	if rel*dir >= 0 {
		return // already separating
	}
	e := math32.Max(bi.Restitution, bj.Restitution)
	if math32.Abs(rel) < bounceThreshold {
		e = 0
	}
	impulse := -(1 + e) * rel / total
	if invI > 0 {
		vi := axisComponent(bi.Velocity, axis) - impulse*invI
		setAxisComponent(&bi.Velocity, axis, vi)
	}
	if invJ > 0 {
		vj := axisComponent(bj.Velocity, axis) + impulse*invJ
		setAxisComponent(&bj.Velocity, axis, vj)
	}

	// Friction damps the tangential components of whichever body is dynamic.
	mu := math32.Sqrt(bi.Friction * bj.Friction)
	if mu > 0 {
		damp := mathf.Clamp(1-mu*0.2, 0, 1)
		for a := 0; a < 3; a++ {
			if a == axis {
				continue
			}
			if invI > 0 {
				setAxisComponent(&bi.Velocity, a, axisComponent(bi.Velocity, a)*damp)
			}
			if invJ > 0 {
				setAxisComponent(&bj.Velocity, a, axisComponent(bj.Velocity, a)*damp)
			}
		}
	}
}
