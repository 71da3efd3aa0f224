package mathf

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestVecNormalized(t *testing.T) {
	v := V3(3, 0, 4).Normalized()
	if math32.Abs(v.Length()-1) > 1e-5 {
		t.Errorf("expected unit length, got %f", v.Length())
	}

	zero := Vec3{}.Normalized()
	if !zero.IsZero() {
		t.Error("normalizing zero should stay zero")
	}
}

func TestVecCross(t *testing.T) {
	c := V3(1, 0, 0).Cross(V3(0, 1, 0))
	if !c.ApproxEqual(V3(0, 0, 1)) {
		t.Errorf("x cross y should be z, got %+v", c)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatAxisAngle(V3(0, 1, 0), math32.Pi/2)
	r := q.Rotate(V3(1, 0, 0))
	if !r.ApproxEqual(V3(0, 0, -1)) {
		t.Errorf("90deg yaw of +x should be -z, got %+v", r)
	}

	back := q.InverseRotate(r)
	if !back.ApproxEqual(V3(1, 0, 0)) {
		t.Errorf("inverse rotate should undo rotate, got %+v", back)
	}
}

func TestQuatIntegrate(t *testing.T) {
	q := QuatIdentity()
	// A full second at pi rad/s around Y is a half turn.
	for i := 0; i < 600; i++ {
		q = q.Integrate(V3(0, math32.Pi, 0), 1.0/600)
	}
	r := q.Rotate(V3(1, 0, 0))
	if math32.Abs(r.X+1) > 0.05 {
		t.Errorf("half turn should flip +x, got %+v", r)
	}
}

func TestAABBIntersectionVolume(t *testing.T) {
	a := AABBFromCenter(V3(0, 0, 0), V3(1, 1, 1))
	b := AABBFromCenter(V3(1, 0, 0), V3(1, 1, 1))

	got := a.IntersectionVolume(b)
	if math32.Abs(got-4) > 1e-4 {
		t.Errorf("expected overlap volume 4, got %f", got)
	}

	far := AABBFromCenter(V3(10, 0, 0), V3(1, 1, 1))
	if a.IntersectionVolume(far) != 0 {
		t.Error("disjoint boxes should have zero overlap")
	}
}

func TestAABBContains(t *testing.T) {
	b := AABBFromCenter(V3(0, 0, 0), V3(2, 1, 1))
	if !b.Contains(V3(1.5, 0.5, 0)) {
		t.Error("point inside reported outside")
	}
	if b.Contains(V3(0, 2, 0)) {
		t.Error("point outside reported inside")
	}
}
