package path

import (
	"testing"

	"github.com/kellandavis/lumenmlt/pkg/core"
	"github.com/kellandavis/lumenmlt/pkg/scene"
)

func TestCreateRandomEyePathRespectsMaxLength(t *testing.T) {
	sc, err := scene.NewCornellBox(32, 32, 5)
	if err != nil {
		t.Fatalf("NewCornellBox: %v", err)
	}
	rng := core.NewRNG(1, 1)
	ray := sc.Camera.EyeRay(core.NewVec2(16, 16))

	p := CreateRandomEyePath(sc, ray, rng)
	if p.Len < 1 {
		t.Fatal("expected at least the origin vertex")
	}
	if p.Len > MaxLength {
		t.Fatalf("path length %d exceeds MaxLength %d", p.Len, MaxLength)
	}
	if p.Vertices[0].ConnectionType != Origin {
		t.Fatalf("vertex 0 should be Origin, got %v", p.Vertices[0].ConnectionType)
	}
}

func TestEvaluateEmptyPathIsZero(t *testing.T) {
	var p Path
	p.Append(Vertex{ConnectionType: Origin, MaterialIdx: -1})
	sc, _ := scene.NewCornellBox(8, 8, 5)
	res := Evaluate(sc, &p)
	if res.Radiance != (core.Vec3{}) {
		t.Fatalf("expected zero radiance for a single-vertex path, got %v", res.Radiance)
	}
}

func TestCreateRandomLightPathReturnsExplicitVertex(t *testing.T) {
	sc, err := scene.NewCornellBox(16, 16, 5)
	if err != nil {
		t.Fatalf("NewCornellBox: %v", err)
	}
	rng := core.NewRNG(2, 2)
	v, ok := CreateRandomLightPath(sc, rng)
	if !ok {
		t.Fatal("expected a light path vertex")
	}
	if v.ConnectionType != Explicit {
		t.Fatalf("expected Explicit connection type, got %v", v.ConnectionType)
	}
}
