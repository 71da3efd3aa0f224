package solver

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/impel-engine/impel/internal/mathf"
)

// RayHit is the closest intersection along a cast ray.
type RayHit struct {
	Body     BodyID
	UserData uint64
	Point    mathf.Vec3
	Normal   mathf.Vec3
	Fraction float32
}

// CastRay finds the closest body intersected by the segment from..to.
// Sphere shapes are tested exactly; everything else against its AABB.
func (w *World) CastRay(from, to mathf.Vec3) (RayHit, bool) {
	return w.CastRayIgnore(from, to, InvalidBodyID)
}

// CastRayIgnore is CastRay skipping one body, used by constraints casting
// rays from their own chassis.
func (w *World) CastRayIgnore(from, to mathf.Vec3, ignore BodyID) (RayHit, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := to.Sub(from)
	best := RayHit{Fraction: math32.Inf(1)}
	found := false
	for _, b := range w.bodies {
		if !b.inWorld || b.ID == ignore {
			continue
		}
		var frac float32
		var normal mathf.Vec3
		var ok bool
		if b.Shape.Kind == ShapeSphere {
			frac, normal, ok = raySphere(from, dir, b.Position, b.Shape.Dim.X)
		} else {
			frac, normal, ok = rayAABB(from, dir, b.AABB())
		}
		if ok && frac < best.Fraction {
			best = RayHit{
				Body:     b.ID,
				UserData: b.UserData,
				Point:    from.Add(dir.Scale(frac)),
				Normal:   normal,
				Fraction: frac,
			}
			found = true
		}
	}
	return best, found
}

// rayAABB is the slab test over the parametric segment origin + t*dir,
// t in [0,1].
func rayAABB(origin, dir mathf.Vec3, box mathf.AABB) (float32, mathf.Vec3, bool) {
	tMin, tMax := float32(0), float32(1)
	axis := -1
	o := [3]float32{origin.X, origin.Y, origin.Z}
	d := [3]float32{dir.X, dir.Y, dir.Z}
	lo := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}

	for i := 0; i < 3; i++ {
		if math32.Abs(d[i]) < 1e-8 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, mathf.Vec3{}, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
			axis = i
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, mathf.Vec3{}, false
		}
	}
	if axis < 0 {
		// started inside
		return 0, mathf.Vec3{}, true
	}
	var n mathf.Vec3
	sign := float32(1)
	if d[axis] > 0 {
		sign = -1
	}
	setAxisComponent(&n, axis, sign)
	return tMin, n, true
}

func raySphere(origin, dir, center mathf.Vec3, radius float32) (float32, mathf.Vec3, bool) {
	m := origin.Sub(center)
	a := dir.Dot(dir)
	if a < 1e-12 {
		return 0, mathf.Vec3{}, false
	}
	bq := m.Dot(dir)
	c := m.Dot(m) - radius*radius
	disc := bq*bq - a*c
	if disc < 0 {
		return 0, mathf.Vec3{}, false
	}
	t := (-bq - math32.Sqrt(disc)) / a
	if t < 0 || t > 1 {
		return 0, mathf.Vec3{}, false
	}
	point := origin.Add(dir.Scale(t))
	return t, point.Sub(center).Normalized(), true
}

// CollideSphere returns ids of in-world bodies whose bounds touch the sphere.
func (w *World) CollideSphere(center mathf.Vec3, radius float32) []BodyID {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []BodyID
	for _, b := range w.bodies {
		if !b.inWorld {
			continue
		}
		closest := b.AABB().ClosestPoint(center)
		if closest.Sub(center).LengthSq() <= radius*radius {
			out = append(out, b.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CollideBox returns ids of in-world bodies whose bounds overlap the box.
func (w *World) CollideBox(box mathf.AABB) []BodyID {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []BodyID
	for _, b := range w.bodies {
		if b.inWorld && b.AABB().Overlaps(box) {
			out = append(out, b.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CollideCapsule approximates the capsule by its bounding box.
func (w *World) CollideCapsule(center mathf.Vec3, halfHeight, radius float32) []BodyID {
	half := mathf.V3(radius, halfHeight+radius, radius)
	return w.CollideBox(mathf.AABBFromCenter(center, half))
}
