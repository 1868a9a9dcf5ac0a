package core

import (
	"math"
	"testing"
)

func TestAABBFitMonotonicity(t *testing.T) {
	pts := []Vec3{
		NewVec3(1, -2, 3),
		NewVec3(-5, 4, 0),
		NewVec3(2, 2, -9),
	}
	box := EmptyAABB()
	for _, p := range pts {
		box = box.Fit(p)
	}
	for _, p := range pts {
		for axis := 0; axis < 3; axis++ {
			if p[axis] < box.Min[axis] || p[axis] > box.Max[axis] {
				t.Fatalf("point %v not contained in fitted box %v", p, box)
			}
		}
	}
}

func TestAABBLargestAxisTieBreak(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	if axis := box.LargestAxis(); axis != 0 {
		t.Fatalf("expected X to win the tie, got axis %d", axis)
	}
}

func TestAABB4MatchesScalar(t *testing.T) {
	boxes := [4]AABB{
		NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1)),
		NewAABB(NewVec3(5, 5, 5), NewVec3(6, 6, 6)),
		NewAABB(NewVec3(-3, 0, 0), NewVec3(-2, 1, 1)),
		NewAABB(NewVec3(0, 0, 0), NewVec3(0.1, 0.1, 0.1)),
	}
	b4 := NewAABB4(boxes)

	rays := []Ray{
		NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)),
		NewRay(NewVec3(5.5, 5.5, -5), NewVec3(0, 0, 1)),
		NewRay(NewVec3(10, 10, 10), NewVec3(1, 1, 1).Normalize()),
	}

	for _, r := range rays {
		gotHit, gotT := b4.Intersect(r, 0, math.MaxFloat32)
		for i, box := range boxes {
			wantT, wantHit := box.Intersect(r, 0, math.MaxFloat32)
			if gotHit[i] != wantHit {
				t.Fatalf("lane %d hit mismatch: aabb4=%v scalar=%v", i, gotHit[i], wantHit)
			}
			if wantHit && absf(gotT[i]-wantT) > 1e-4 {
				t.Fatalf("lane %d distance mismatch: aabb4=%f scalar=%f", i, gotT[i], wantT)
			}
		}
	}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestClippedGeometricNormalizes(t *testing.T) {
	g := ClippedGeometric{Base: 0.5, N: 9}
	sum := 0.0
	for i := 0; i <= g.N; i++ {
		sum += g.PDF(i)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Fatalf("pdf sum = %f, want ~1", sum)
	}
}

func TestTwoSidedClippedGeometricNormalizes(t *testing.T) {
	g := TwoSidedClippedGeometric{Base: 0.5, Left: 0, Center: 4, Right: 8}
	sum := 0.0
	for i := g.Left; i <= g.Right; i++ {
		sum += g.PDF(i)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Fatalf("pdf sum = %f, want ~1", sum)
	}
}

func TestRNGProducesDistinctStreams(t *testing.T) {
	a := NewRNG(42, 1)
	b := NewRNG(42, 2)
	same := true
	for i := 0; i < 8; i++ {
		if a.Uint32() != b.Uint32() {
			same = false
		}
	}
	if same {
		t.Fatal("two different sequence IDs produced identical streams")
	}
}
