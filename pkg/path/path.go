// Package path holds the vertex-chain representation of a light-transport
// path and its radiance evaluator.
package path

import (
	"math"

	"github.com/kellandavis/lumenmlt/pkg/core"
	"github.com/kellandavis/lumenmlt/pkg/material"
	"github.com/kellandavis/lumenmlt/pkg/scene"
)

// MaxLength is the hard vertex-count cap on any path.
const MaxLength = 10

// TerminationProbability is the fixed Russian-roulette probability of
// ending the path, applied after every bounce.
const TerminationProbability = 0.35826

// ConnectionType tags how a vertex was reached.
type ConnectionType int

const (
	Origin ConnectionType = iota
	Implicit
	Explicit
)

// Vertex is one point along a path.
type Vertex struct {
	ConnectionType  ConnectionType
	BounceType      material.BounceType
	Position        core.Vec3
	ShadingNormal   core.Vec3
	GeometricNormal core.Vec3
	UV              core.Vec2
	MaterialIdx     int // -1 when not applicable (e.g. the origin vertex)
	LightIdx        int // -1 when the vertex is not a light
}

// Path is a fixed-capacity vertex chain; index 0 is the eye origin.
type Path struct {
	Vertices [MaxLength]Vertex
	Len      int
}

// Append adds v to the path. It returns false (and leaves the path
// unchanged) if the path is already at MaxLength.
func (p *Path) Append(v Vertex) bool {
	if p.Len >= MaxLength {
		return false
	}
	p.Vertices[p.Len] = v
	p.Len++
	return true
}

// AppendPath concatenates other's vertices onto the tail. It returns
// false if doing so would exceed MaxLength; the path may be partially
// modified in that case, matching the hard-cap "reject on overflow"
// contract used throughout the MLT mutations.
func (p *Path) AppendPath(other []Vertex) bool {
	for _, v := range other {
		if !p.Append(v) {
			return false
		}
	}
	return true
}

// Slice returns the path's vertices as a slice view.
func (p *Path) Slice() []Vertex {
	return p.Vertices[:p.Len]
}

func matOf(sc *scene.Scene, idx int) material.Material {
	if idx < 0 || idx >= len(sc.Materials) {
		return material.Material{}
	}
	return sc.Materials[idx]
}

// CreateRandomEyePath installs ray's origin as vertex 0 and extends the
// path by repeated bounces up to MaxLength.
func CreateRandomEyePath(sc *scene.Scene, ray core.Ray, rng *core.RNG) Path {
	var p Path
	p.Append(Vertex{ConnectionType: Origin, MaterialIdx: -1, LightIdx: -1, Position: ray.Origin})

	current := ray
	for p.Len < MaxLength {
		next, ok := addBounce(sc, &p, current, rng)
		if !ok {
			break
		}
		current = next
	}
	return p
}

// addBounce intersects the scene, appends the resulting Implicit vertex,
// applies Russian roulette, and — on survival — samples and returns the
// continuation ray.
func addBounce(sc *scene.Scene, p *Path, ray core.Ray, rng *core.RNG) (core.Ray, bool) {
	hit, ok := sc.Intersect(ray, material.Epsilon, float32(math.MaxFloat32))
	if !ok {
		return core.Ray{}, false
	}

	mat := matOf(sc, hit.MaterialIdx)
	shadingN, geomN := hit.ShadingNormal, hit.GeometricNormal
	if mat.BounceType() != material.BounceRefractive && ray.Direction.Dot(geomN) > 0 {
		shadingN = shadingN.Negate()
		geomN = geomN.Negate()
	}

	if !p.Append(Vertex{
		ConnectionType:  Implicit,
		Position:        hit.Position,
		ShadingNormal:   shadingN,
		GeometricNormal: geomN,
		UV:              hit.UV,
		MaterialIdx:     hit.MaterialIdx,
		LightIdx:        hit.LightIdx,
	}) {
		return core.Ray{}, false
	}

	if rng.Float32() < TerminationProbability {
		return core.Ray{}, false
	}

	nextRay, bounceType := mat.SampleDirection(ray.Direction, hit.Position, shadingN, geomN, rng)
	p.Vertices[p.Len-1].BounceType = bounceType
	return nextRay, true
}

// CreateRandomLightPath picks a light uniformly and, for a mesh light, an
// area-weighted point on one of its triangles (the standard sqrt(u1)
// barycentric scheme). Used only for next-event estimation by the path
// tracer.
func CreateRandomLightPath(sc *scene.Scene, rng *core.RNG) (Vertex, bool) {
	if len(sc.Lights) == 0 {
		return Vertex{}, false
	}
	idx := int(rng.Bounded(uint32(len(sc.Lights))))
	light := sc.Lights[idx]

	if light.Kind == scene.LightPoint {
		return Vertex{ConnectionType: Explicit, MaterialIdx: -1, LightIdx: idx, Position: light.Position}, true
	}

	prim := sc.Primitive(light.MeshIdx, light.PrimitiveIdx)
	triIdx, _ := prim.AreaDist.Sample(rng.Float32())
	tri := prim.BVH.Triangles[triIdx]

	su1 := float32(math.Sqrt(float64(rng.Float32())))
	u2 := rng.Float32()
	b0 := 1 - su1
	b1 := u2 * su1
	b2 := 1 - b0 - b1

	pos := tri.P0.Mul(b0).Add(tri.P1.Mul(b1)).Add(tri.P2.Mul(b2))
	n := tri.N0.Mul(b0).Add(tri.N1.Mul(b1)).Add(tri.N2.Mul(b2)).Normalize()

	return Vertex{
		ConnectionType:  Explicit,
		Position:        pos,
		ShadingNormal:   n,
		GeometricNormal: n,
		MaterialIdx:     prim.MaterialIdx,
		LightIdx:        idx,
	}, true
}
