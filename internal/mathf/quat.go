package mathf

import "github.com/chewxy/math32"

// Quat is a rotation quaternion (x, y, z, w).
type Quat struct {
	X, Y, Z, W float32
}

func QuatIdentity() Quat { return Quat{W: 1} }

func QuatAxisAngle(axis Vec3, angle float32) Quat {
	a := axis.Normalized()
	s := math32.Sin(angle / 2)
	return Quat{
		X: a.X * s,
		Y: a.Y * s,
		Z: a.Z * s,
		W: math32.Cos(angle / 2),
	}
}

func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Inverse assumes a unit quaternion.
func (q Quat) Inverse() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// InverseRotate maps a world-space vector into the rotation's local frame.
func (q Quat) InverseRotate(v Vec3) Vec3 {
	return q.Inverse().Rotate(v)
}

func (q Quat) Normalized() Quat {
	l := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l < Epsilon {
		return QuatIdentity()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Integrate advances the rotation by an angular velocity over dt.
func (q Quat) Integrate(omega Vec3, dt float32) Quat {
	half := omega.Scale(dt / 2)
	dq := Quat{X: half.X, Y: half.Y, Z: half.Z, W: 0}.Mul(q)
	return Quat{q.X + dq.X, q.Y + dq.Y, q.Z + dq.Z, q.W + dq.W}.Normalized()
}

func (q Quat) ApproxEqual(o Quat) bool {
	return math32.Abs(q.X-o.X) < Epsilon &&
		math32.Abs(q.Y-o.Y) < Epsilon &&
		math32.Abs(q.Z-o.Z) < Epsilon &&
		math32.Abs(q.W-o.W) < Epsilon
}
