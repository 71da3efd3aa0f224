package phys

import (
	"testing"

	"github.com/chewxy/math32"
	. "github.com/onsi/gomega"

	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/scene"
	"github.com/impel-engine/impel/internal/solver"
)

// poolWorld builds a world with a deep water volume whose surface is y=0.
func poolWorld(t *testing.T) (*World, *scene.Graph, *FluidVolume) {
	t.Helper()
	w := NewWorld(DefaultOptions())
	t.Cleanup(w.Close)
	f := w.AddFluidVolume(WaterVolumeSettings(mathf.V3(0, -10, 0), mathf.V3(50, 10, 50)))
	return w, scene.NewGraph(), f
}

func submergeBox(t *testing.T, w *World, mass float32) BodyHandle {
	t.Helper()
	h, err := w.Bodies().CreateBoxBody(mathf.V3(0.5, 0.5, 0.5), mathf.V3(0, -2, 0), mathf.QuatIdentity(), solver.MotionDynamic, BodyCreation{Mass: mass})
	if err != nil {
		t.Fatal(err)
	}
	w.Bodies().AddBody(h, true)
	return h
}

func TestLightBodyFloats(t *testing.T) {
	gm := NewWithT(t)
	w, g, _ := poolWorld(t)

	// 1 m^3 at 100 kg displaces far more water weight than its own
	h := submergeBox(t, w, 100)
	for i := 0; i < 10; i++ {
		gm.Expect(w.Process(g, FixedStep)).To(Succeed())
	}
	gm.Expect(w.Bodies().Velocity(h).Y).To(BeNumerically(">", 0),
		"buoyancy should overcome gravity on a light body")
	gm.Expect(w.Bodies().Position(h).Y).To(BeNumerically(">", -2),
		"a light body should rise toward the surface")
}

func TestDenseBodySinks(t *testing.T) {
	gm := NewWithT(t)
	w, g, _ := poolWorld(t)

	// 2000 kg outweighs the 1000 kg of displaced water
	h := submergeBox(t, w, 2000)
	for i := 0; i < 120; i++ {
		gm.Expect(w.Process(g, FixedStep)).To(Succeed())
	}
	gm.Expect(w.Bodies().Position(h).Y).To(BeNumerically("<", -2.5),
		"a dense body should keep sinking")
}

func TestDragSlowsSubmergedBody(t *testing.T) {
	gm := NewWithT(t)
	w, g, f := poolWorld(t)
	f.SetLinearDrag(200)

	// near-neutral buoyancy keeps the body submerged for the whole second
	h := submergeBox(t, w, 950)
	w.Bodies().SetVelocity(h, mathf.V3(6, 0, 0))
	for i := 0; i < 60; i++ {
		gm.Expect(w.Process(g, FixedStep)).To(Succeed())
	}
	gm.Expect(w.Bodies().Velocity(h).X).To(BeNumerically("<", 3),
		"quadratic drag should shed most horizontal speed within a second")
	gm.Expect(w.Bodies().Velocity(h).X).To(BeNumerically(">=", 0),
		"drag must never reverse the motion")
}

func TestFlowCarriesBody(t *testing.T) {
	gm := NewWithT(t)
	w, g, f := poolWorld(t)
	f.SetFlowVelocity(mathf.V3(2, 0, 0))
	f.SetLinearDrag(200)

	h := submergeBox(t, w, 950)
	for i := 0; i < 120; i++ {
		gm.Expect(w.Process(g, FixedStep)).To(Succeed())
	}
	gm.Expect(w.Bodies().Velocity(h).X).To(BeNumerically(">", 0.2),
		"flow should push the body downstream")
}

func TestSubmergedRatio(t *testing.T) {
	gm := NewWithT(t)
	f := NewFluidVolume(solver.NewWorld(), WaterVolumeSettings(mathf.Vec3{}, mathf.V3(1, 1, 1)))

	full := mathf.AABBFromCenter(mathf.Vec3{}, mathf.V3(0.5, 0.5, 0.5))
	gm.Expect(f.SubmergedRatio(full)).To(BeNumerically("~", 1.0, 1e-4))

	half := mathf.AABBFromCenter(mathf.V3(0, 1, 0), mathf.V3(0.5, 0.5, 0.5))
	gm.Expect(f.SubmergedRatio(half)).To(BeNumerically("~", 0.5, 1e-4))

	outside := mathf.AABBFromCenter(mathf.V3(5, 5, 5), mathf.V3(0.5, 0.5, 0.5))
	gm.Expect(f.SubmergedRatio(outside)).To(BeZero())
}

func TestContainsRespectsRotation(t *testing.T) {
	gm := NewWithT(t)
	s := WaterVolumeSettings(mathf.Vec3{}, mathf.V3(2, 1, 0.5))
	s.Rotation = mathf.QuatAxisAngle(mathf.V3(0, 1, 0), math32.Pi/2)
	f := NewFluidVolume(solver.NewWorld(), s)

	// the long axis now points along world z
	gm.Expect(f.Contains(mathf.V3(0, 0, 1.8))).To(BeTrue())
	gm.Expect(f.Contains(mathf.V3(1.8, 0, 0))).To(BeFalse())
}
