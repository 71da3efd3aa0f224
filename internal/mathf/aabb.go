package mathf

// AABB is an axis-aligned box given by its min and max corners.
type AABB struct {
	Min, Max Vec3
}

func AABBFromCenter(center, halfExtents Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

func (b AABB) HalfExtents() Vec3 {
	return b.Max.Sub(b.Min).Scale(0.5)
}

func (b AABB) Volume() float32 {
	d := b.Max.Sub(b.Min)
	if d.X <= 0 || d.Y <= 0 || d.Z <= 0 {
		return 0
	}
	return d.X * d.Y * d.Z
}

func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// IntersectionVolume is the volume of the overlap region, zero when disjoint.
func (b AABB) IntersectionVolume(o AABB) float32 {
	inter := AABB{Min: Max3(b.Min, o.Min), Max: Min3(b.Max, o.Max)}
	return inter.Volume()
}

func (b AABB) Union(o AABB) AABB {
	return AABB{Min: Min3(b.Min, o.Min), Max: Max3(b.Max, o.Max)}
}

// ClosestPoint clamps p onto the box surface or interior.
func (b AABB) ClosestPoint(p Vec3) Vec3 {
	return Vec3{
		X: Clamp(p.X, b.Min.X, b.Max.X),
		Y: Clamp(p.Y, b.Min.Y, b.Max.Y),
		Z: Clamp(p.Z, b.Min.Z, b.Max.Z),
	}
}
