package phys

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/scene"
	"github.com/impel-engine/impel/internal/solver"
)

func TestRaycastResolvesNode(t *testing.T) {
	w := NewWorld(DefaultOptions())
	defer w.Close()
	g := scene.NewGraph()

	ref := g.Spawn("target", mathf.V3(0, 0, 5), mathf.QuatIdentity())
	h, err := w.Bodies().CreateBoxBody(mathf.V3(1, 1, 1), mathf.V3(0, 0, 5), mathf.QuatIdentity(), solver.MotionStatic, BodyCreation{})
	if err != nil {
		t.Fatal(err)
	}
	w.Bodies().AddBody(h, false)
	w.BindBody(h, ref)

	hit, ok := w.Raycast(mathf.V3(0, 0, 0), mathf.V3(0, 0, 10))
	if !ok {
		t.Fatal("ray straight at the box should hit")
	}
	if hit.Node != ref {
		t.Errorf("hit should resolve to the bound node, got %+v", hit.Node)
	}
	// near face at z=4, ray length 10
	if math32.Abs(hit.Distance-4) > 0.01 {
		t.Errorf("want distance 4, got %v", hit.Distance)
	}
	if math32.Abs(hit.Fraction-0.4) > 0.001 {
		t.Errorf("want fraction 0.4, got %v", hit.Fraction)
	}
}

func TestRaycastMiss(t *testing.T) {
	w := NewWorld(DefaultOptions())
	defer w.Close()
	if _, ok := w.Raycast(mathf.V3(0, 0, 0), mathf.V3(0, 0, 1)); ok {
		t.Error("empty world should not report hits")
	}
}

func TestOverlapSphereFindsBoundAndUnbound(t *testing.T) {
	w := NewWorld(DefaultOptions())
	defer w.Close()
	g := scene.NewGraph()

	ref := g.Spawn("near", mathf.V3(1, 0, 0), mathf.QuatIdentity())
	near, err := w.Bodies().CreateBoxBody(mathf.V3(0.5, 0.5, 0.5), mathf.V3(1, 0, 0), mathf.QuatIdentity(), solver.MotionStatic, BodyCreation{})
	if err != nil {
		t.Fatal(err)
	}
	w.Bodies().AddBody(near, false)
	w.BindBody(near, ref)

	// in range but never bound to a node
	loose, err := w.Bodies().CreateSphereBody(0.5, mathf.V3(-1, 0, 0), mathf.QuatIdentity(), solver.MotionStatic, BodyCreation{})
	if err != nil {
		t.Fatal(err)
	}
	w.Bodies().AddBody(loose, false)

	far, err := w.Bodies().CreateBoxBody(mathf.V3(0.5, 0.5, 0.5), mathf.V3(50, 0, 0), mathf.QuatIdentity(), solver.MotionStatic, BodyCreation{})
	if err != nil {
		t.Fatal(err)
	}
	w.Bodies().AddBody(far, false)

	res := w.OverlapSphere(mathf.Vec3{}, 2)
	if len(res.Bodies) != 2 {
		t.Fatalf("want the two nearby bodies, got %d", len(res.Bodies))
	}
	if len(res.Nodes) != 1 || res.Nodes[0] != ref {
		t.Errorf("only the bound body should contribute a node, got %v", res.Nodes)
	}
}
