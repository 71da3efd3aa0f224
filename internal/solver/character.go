package solver

import (
	"github.com/chewxy/math32"

	"github.com/impel-engine/impel/internal/mathf"
)

// CharacterShape is the capsule a character sweeps through the world.
// HalfHeight is the cylinder half height, excluding the caps.
type CharacterShape struct {
	Radius     float32
	HalfHeight float32
}

func (c CharacterShape) halfExtents() mathf.Vec3 {
	return mathf.V3(c.Radius, c.HalfHeight+c.Radius, c.Radius)
}

// CharacterMoveSettings tune the extended update.
type CharacterMoveSettings struct {
	Shape           CharacterShape
	Padding         float32
	SnapDistance    float32
	MaxPushStrength float32
}

// GroundInfo describes the support found beneath a character.
type GroundInfo struct {
	Found  bool
	Normal mathf.Vec3
	Body   BodyID
	Height float32 // top face of the supporting body
}

// CharacterUpdate is the result of one extended update: swept position,
// velocity with blocked components removed, and ground classification input.
type CharacterUpdate struct {
	Position mathf.Vec3
	Velocity mathf.Vec3
	Ground   GroundInfo
}

// MoveCharacter performs the solver's extended character update: sweep the
// capsule by vel*dt one axis at a time, depenetrate against solid bodies,
// then snap to ground within SnapDistance. Dynamic obstacles receive a push
// impulse bounded by MaxPushStrength instead of blocking outright.
func (w *World) MoveCharacter(pos, vel mathf.Vec3, dt float32, s CharacterMoveSettings) CharacterUpdate {
	w.mu.Lock()
	solids := make([]*Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		if b.inWorld && !b.Sensor {
			solids = append(solids, b)
		}
	}
	w.mu.Unlock()

	half := s.Shape.halfExtents()
	delta := vel.Scale(dt)

	// X, Z first so horizontal motion slides along walls, then Y.
	for _, axis := range [3]int{0, 2, 1} {
		step := axisComponent(delta, axis)
		if step == 0 {
			continue
		}
		setAxisComponent(&pos, axis, axisComponent(pos, axis)+step)
		for _, b := range solids {
			depth, penAxis := penetrationAxis(mathf.AABBFromCenter(pos, half), b.AABB())
			if penAxis != axis || depth <= s.Padding {
				continue
			}
			push := depth - s.Padding
			dir := float32(1)
			if step > 0 {
				dir = -1
			}
			if b.Motion == MotionDynamic && s.MaxPushStrength > 0 {
				imp := math32.Min(push*b.Mass/math32.Max(dt, 1e-4), s.MaxPushStrength)
				var f mathf.Vec3
				setAxisComponent(&f, axis, -dir*imp*dt)
				b.AddImpulse(f)
			}
			setAxisComponent(&pos, axis, axisComponent(pos, axis)+dir*push)
			setAxisComponent(&vel, axis, 0)
		}
	}

	update := CharacterUpdate{Position: pos, Velocity: vel}
	update.Ground = w.probeGround(pos, half, vel, s, solids)
	if update.Ground.Found {
		// snap onto the support and kill downward velocity
		update.Position.Y = update.Ground.Height + half.Y + s.Padding
		if update.Velocity.Y < 0 {
			update.Velocity.Y = 0
		}
	}
	return update
}

// probeGround looks for support directly beneath the capsule and snaps onto
// it when within SnapDistance.
func (w *World) probeGround(pos mathf.Vec3, half, vel mathf.Vec3, s CharacterMoveSettings, solids []*Body) GroundInfo {
	bottom := pos.Y - half.Y
	bestTop := math32.Inf(-1)
	var bestBody BodyID
	found := false
	for _, b := range solids {
		box := b.AABB()
		// must overlap the capsule footprint horizontally
		if pos.X-half.X > box.Max.X || pos.X+half.X < box.Min.X ||
			pos.Z-half.Z > box.Max.Z || pos.Z+half.Z < box.Min.Z {
			continue
		}
		gap := bottom - box.Max.Y
		if gap < -half.Y || gap > s.SnapDistance {
			continue
		}
		if box.Max.Y > bestTop {
			bestTop = box.Max.Y
			bestBody = b.ID
			found = true
		}
	}
	if !found || vel.Y > mathf.Epsilon {
		return GroundInfo{}
	}
	return GroundInfo{Found: true, Normal: mathf.V3(0, 1, 0), Body: bestBody, Height: bestTop}
}
