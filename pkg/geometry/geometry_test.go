package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/kellandavis/lumenmlt/pkg/core"
)

func TestSingleTriangleHit(t *testing.T) {
	tri := Triangle{
		P0: core.NewVec3(0, 0, 0),
		P1: core.NewVec3(1, 0, 0),
		P2: core.NewVec3(0, 1, 0),
	}
	r := core.NewRay(core.NewVec3(0.25, 0.25, -1), core.NewVec3(0, 0, 1))

	hit, ok := Intersect(tri, 0, r, 0, math.MaxFloat32)
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(float64(hit.T)-1) > 1e-5 {
		t.Fatalf("expected t=1, got %f", hit.T)
	}
	if math.Abs(float64(hit.Alpha)-0.5) > 1e-5 || math.Abs(float64(hit.Beta)-0.25) > 1e-5 || math.Abs(float64(hit.Gamma)-0.25) > 1e-5 {
		t.Fatalf("unexpected barycentrics: %+v", hit)
	}
}

func TestBVHMissesOutsideBounds(t *testing.T) {
	tris := cubeTriangles()
	bvh := Build(tris)

	r := core.NewRay(core.NewVec3(5, 5, 5), core.NewVec3(1, 1, 1).Normalize())
	if _, ok := bvh.Intersect(r, 0, math.MaxFloat32); ok {
		t.Fatal("expected a miss")
	}
}

func TestBVHCompletenessAgainstBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	tris := randomTriangles(rnd, 200)
	bvh := Build(tris)

	for i := 0; i < 100; i++ {
		r := core.NewRay(
			core.NewVec3(float32(rnd.NormFloat64()*3), float32(rnd.NormFloat64()*3), -5),
			core.NewVec3(0, 0, 1),
		)
		bestT := float32(math.MaxFloat32)
		bruteHit := false
		for idx, tri := range tris {
			if h, ok := Intersect(tri, idx, r, 0, math.MaxFloat32); ok && h.T < bestT {
				bestT = h.T
				bruteHit = true
			}
		}

		hit, ok := bvh.Intersect(r, 0, math.MaxFloat32)
		if bruteHit && !ok {
			t.Fatalf("bvh missed a hit brute force found at t=%f", bestT)
		}
		if bruteHit && hit.T > bestT+1e-4 {
			t.Fatalf("bvh hit distance %f exceeds brute force %f", hit.T, bestT)
		}
	}
}

func cubeTriangles() []Triangle {
	return []Triangle{
		{P0: core.NewVec3(-1, -1, -1), P1: core.NewVec3(1, -1, -1), P2: core.NewVec3(1, 1, -1)},
		{P0: core.NewVec3(-1, -1, -1), P1: core.NewVec3(1, 1, -1), P2: core.NewVec3(-1, 1, -1)},
	}
}

func randomTriangles(rnd *rand.Rand, n int) []Triangle {
	tris := make([]Triangle, n)
	for i := range tris {
		base := core.NewVec3(float32(rnd.NormFloat64()), float32(rnd.NormFloat64()), float32(rnd.NormFloat64()))
		tris[i] = Triangle{
			P0: base,
			P1: base.Add(core.NewVec3(float32(rnd.NormFloat64()*0.1), float32(rnd.NormFloat64()*0.1), float32(rnd.NormFloat64()*0.1))),
			P2: base.Add(core.NewVec3(float32(rnd.NormFloat64()*0.1), float32(rnd.NormFloat64()*0.1), float32(rnd.NormFloat64()*0.1))),
		}
	}
	return tris
}
