package scene

import (
	"math"
	"testing"

	"github.com/kellandavis/lumenmlt/pkg/core"
)

func TestCameraRebasisStaysOrthonormal(t *testing.T) {
	cam := NewCamera(640, 480, 60, core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))
	cam.Rotate(0.3, 0.2)

	checkUnit(t, "forward", cam.Forward)
	checkUnit(t, "up", cam.Up)
	checkUnit(t, "right", cam.Right)

	const eps = 1e-5
	if d := math.Abs(float64(cam.Forward.Dot(cam.Up))); d > eps {
		t.Errorf("forward.up = %e, want ~0", d)
	}
	if d := math.Abs(float64(cam.Forward.Dot(cam.Right))); d > eps {
		t.Errorf("forward.right = %e, want ~0", d)
	}
	if d := math.Abs(float64(cam.Up.Dot(cam.Right))); d > eps {
		t.Errorf("up.right = %e, want ~0", d)
	}
}

func checkUnit(t *testing.T, name string, v core.Vec3) {
	if l := math.Abs(float64(v.Length()) - 1); l > 1e-5 {
		t.Errorf("%s length = %f, want 1", name, v.Length())
	}
}

func TestCornellBoxCameraRayHitsBox(t *testing.T) {
	sc, err := NewCornellBox(64, 64, 5)
	if err != nil {
		t.Fatalf("NewCornellBox: %v", err)
	}
	r := sc.Camera.EyeRay(core.NewVec2(32, 55))
	hit, ok := sc.Intersect(r, 0, math.MaxFloat32)
	if !ok {
		t.Fatal("expected camera ray to hit the box")
	}
	if hit.Distance <= 0 {
		t.Fatalf("unexpected hit distance %f", hit.Distance)
	}
}

func TestVisibilitySymmetry(t *testing.T) {
	sc, err := NewCornellBox(32, 32, 5)
	if err != nil {
		t.Fatalf("NewCornellBox: %v", err)
	}
	a := core.NewVec3(0, -1.9, 0)
	an := core.NewVec3(0, 1, 0)
	b := core.NewVec3(0.5, 1.9, 0.5)
	bn := core.NewVec3(0, -1, 0)

	if sc.HasVisibility(a, an, b, bn) != sc.HasVisibility(b, bn, a, an) {
		t.Fatal("visibility test is not symmetric")
	}
}
