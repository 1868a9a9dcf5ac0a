// Package geometry holds the scene-level triangle representation and the
// 4-ary SAH bounding-volume hierarchy built over it.
package geometry

import "github.com/kellandavis/lumenmlt/pkg/core"

// triangleEpsilon is the determinant threshold below which a ray is
// treated as parallel to the triangle's plane.
const triangleEpsilon = 5e-7

// Triangle is a scene-level triangle: three positions, three shading
// normals and three texture coordinates.
type Triangle struct {
	P0, P1, P2 core.Vec3
	N0, N1, N2 core.Vec3
	UV0, UV1, UV2 core.Vec2
}

// Center returns the triangle's centroid, (p0+p1+p2)/3.
func (t Triangle) Center() core.Vec3 {
	return t.P0.Add(t.P1).Add(t.P2).Mul(1.0 / 3.0)
}

// Bounds returns the triangle's axis-aligned bounding box.
func (t Triangle) Bounds() core.AABB {
	return core.EmptyAABB().Fit(t.P0).Fit(t.P1).Fit(t.P2)
}

// Area returns ||(p1-p0) x (p2-p0)|| / 2.
func (t Triangle) Area() float32 {
	return t.P1.Sub(t.P0).Cross(t.P2.Sub(t.P0)).Length() * 0.5
}

// Hit is the result of a successful ray-triangle intersection.
type Hit struct {
	TriangleIdx        int
	T                  float32
	Point              core.Vec3
	Alpha, Beta, Gamma float32
}

// Intersect runs the Möller-Trumbore test with the edge convention
// ab = p0-p1, ac = p0-p2, ao = p0-rayOrigin. Barycentric weights are
// alpha-first: alpha = 1 - beta - gamma.
func Intersect(t Triangle, idx int, r core.Ray, minDistance, maxDistance float32) (Hit, bool) {
	ab := t.P0.Sub(t.P1)
	ac := t.P0.Sub(t.P2)
	ao := t.P0.Sub(r.Origin)

	n := ab.Cross(ac)
	d := n.Dot(r.Direction)
	if d > -triangleEpsilon && d < triangleEpsilon {
		return Hit{}, false
	}

	beta := ao.Cross(ac).Dot(r.Direction) / d
	gamma := ab.Cross(ao).Dot(r.Direction) / d
	if beta < 0 || beta > 1 || gamma < 0 || gamma > 1 || beta+gamma > 1 {
		return Hit{}, false
	}

	dist := n.Dot(ao) / d
	if dist < minDistance || dist > maxDistance {
		return Hit{}, false
	}

	return Hit{
		TriangleIdx: idx,
		T:           dist,
		Point:       r.At(dist),
		Alpha:       1 - beta - gamma,
		Beta:        beta,
		Gamma:       gamma,
	}, true
}
