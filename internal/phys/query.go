package phys

import (
	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/scene"
	"github.com/impel-engine/impel/internal/solver"
)

// RaycastHit is a transient query result, not owned by any registry.
type RaycastHit struct {
	Point    mathf.Vec3
	Normal   mathf.Vec3
	Node     scene.NodeRef
	Distance float32
	Fraction float32
}

// OverlapResult lists what a volume query touched. Bodies contains only
// registry-known body handles; trigger overlaps still contribute their
// node refs.
type OverlapResult struct {
	Nodes  []scene.NodeRef
	Bodies []BodyHandle
}

// Raycast finds the closest body along the segment and translates the hit
// back into scene terms.
func (w *World) Raycast(from, to mathf.Vec3) (RaycastHit, bool) {
	hit, ok := w.solver.CastRay(from, to)
	if !ok {
		return RaycastHit{}, false
	}
	return RaycastHit{
		Point:    hit.Point,
		Normal:   hit.Normal,
		Node:     scene.UnpackRef(hit.UserData),
		Distance: to.Sub(from).Length() * hit.Fraction,
		Fraction: hit.Fraction,
	}, true
}

func (w *World) overlapResult(ids []solver.BodyID) OverlapResult {
	var res OverlapResult
	for _, id := range ids {
		if h, ok := w.registry.Handle(id); ok {
			res.Bodies = append(res.Bodies, h)
		}
		var user uint64
		w.solver.WithBody(id, func(b *solver.Body) { user = b.UserData })
		if ref := scene.UnpackRef(user); ref.Valid() {
			res.Nodes = append(res.Nodes, ref)
		}
	}
	return res
}

// OverlapSphere returns every body and node whose bounds touch the sphere.
func (w *World) OverlapSphere(center mathf.Vec3, radius float32) OverlapResult {
	return w.overlapResult(w.solver.CollideSphere(center, radius))
}

// OverlapBox queries an axis-aligned box given by center and half extents.
func (w *World) OverlapBox(center, halfExtents mathf.Vec3) OverlapResult {
	return w.overlapResult(w.solver.CollideBox(mathf.AABBFromCenter(center, halfExtents)))
}

// OverlapCapsule queries a vertical capsule.
func (w *World) OverlapCapsule(center mathf.Vec3, halfHeight, radius float32) OverlapResult {
	return w.overlapResult(w.solver.CollideCapsule(center, halfHeight, radius))
}
