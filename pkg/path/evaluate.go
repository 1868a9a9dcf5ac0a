package path

import (
	"math"

	"github.com/kellandavis/lumenmlt/pkg/core"
	"github.com/kellandavis/lumenmlt/pkg/scene"
)

// EvaluationResult is a path's expected radiance and the Russian-roulette
// compensated variant used as the importance function for new-path MLT
// mutations.
type EvaluationResult struct {
	Radiance                core.Vec3
	RussianRouletteRadiance core.Vec3
}

const rrSurvival = 1 - TerminationProbability

// Evaluate walks the interior of a path accumulating radiance. It
// evaluates both the vertex-i+1 contribution and, unconditionally
// afterward, vertex i's own emission (handles emissive surfaces
// encountered mid-path).
func Evaluate(sc *scene.Scene, p *Path) EvaluationResult {
	if p.Len < 2 {
		return EvaluationResult{}
	}

	throughput := core.NewVec3(1, 1, 1)
	rrThroughput := core.NewVec3(1, 1, 1)
	result := core.NewVec3(0, 0, 0)
	rrResult := core.NewVec3(0, 0, 0)

	numLights := float32(len(sc.Lights))
	vertices := p.Vertices[:p.Len]

	for i := 1; i <= p.Len-2; i++ {
		cur := vertices[i]
		next := vertices[i+1]
		last := i+1 == p.Len-1

		switch next.ConnectionType {
		case Implicit:
			mat := matOf(sc, next.MaterialIdx)
			inDir := next.Position.Sub(cur.Position).Normalize()
			contrib := mat.ExpectedContribution(next.UV, inDir)
			throughput = throughput.MulVec(contrib)
			rrThroughput = rrThroughput.MulVec(contrib).Mul(1 / rrSurvival)

			if last {
				result = result.Add(throughput.MulVec(mat.Emission(next.UV)))
				rrResult = rrResult.Add(rrThroughput.MulVec(mat.Emission(next.UV)))
			}

		case Explicit:
			if !last {
				transport := explicitTransport(sc, cur, next)
				throughput = throughput.MulVec(transport)
				rrThroughput = rrThroughput.MulVec(transport)
			} else if next.LightIdx >= 0 {
				contrib := evaluateExplicitLight(sc, cur, next, numLights)
				result = result.Add(throughput.MulVec(contrib))
				rrResult = rrResult.Add(rrThroughput.MulVec(contrib))
			} else {
				mat := matOf(sc, next.MaterialIdx)
				result = result.Add(throughput.MulVec(mat.Emission(next.UV)))
				rrResult = rrResult.Add(rrThroughput.MulVec(mat.Emission(next.UV)))
			}
		}

		curMat := matOf(sc, cur.MaterialIdx)
		result = result.Add(throughput.MulVec(curMat.Emission(cur.UV)))
		rrResult = rrResult.Add(rrThroughput.MulVec(curMat.Emission(cur.UV)))
	}

	return EvaluationResult{Radiance: result, RussianRouletteRadiance: rrResult}
}

// explicitTransport is the two-vertex Lambertian transport term used
// when an Explicit connection is spliced mid-path (not the final
// vertex): bsdf(x)*bsdf(y)*max(0,cosX)*max(0,cosY) / dist^2.
func explicitTransport(sc *scene.Scene, x, y Vertex) core.Vec3 {
	xmat := matOf(sc, x.MaterialIdx)
	ymat := matOf(sc, y.MaterialIdx)

	d := y.Position.Sub(x.Position)
	dist2 := d.LengthSquared()
	if dist2 <= 0 {
		return core.Vec3{}
	}
	dir := d.Mul(1 / float32(math.Sqrt(float64(dist2))))

	cosX := maxf(0, x.ShadingNormal.Dot(dir))
	cosY := maxf(0, y.ShadingNormal.Dot(dir.Negate()))

	return xmat.BSDF(x.UV).MulVec(ymat.BSDF(y.UV)).Mul(cosX * cosY / dist2)
}

// evaluateExplicitLight is the final-vertex next-event-estimation term:
// a point light contributes bsdf(x)*max(0,cosX)/d^2 * wattage/(4*pi) *
// numLights; a mesh light contributes the two-sided transport term
// scaled by the primitive's total area and its emission, both gated by
// a visibility query.
func evaluateExplicitLight(sc *scene.Scene, x, y Vertex, numLights float32) core.Vec3 {
	light := sc.Lights[y.LightIdx]
	xmat := matOf(sc, x.MaterialIdx)

	if light.Kind == scene.LightPoint {
		d := light.Position.Sub(x.Position)
		dist2 := d.LengthSquared()
		if dist2 <= 0 {
			return core.Vec3{}
		}
		dir := d.Mul(1 / float32(math.Sqrt(float64(dist2))))
		if !sc.HasVisibility(x.Position, x.GeometricNormal, light.Position, dir.Negate()) {
			return core.Vec3{}
		}
		cosX := maxf(0, x.ShadingNormal.Dot(dir))
		return xmat.BSDF(x.UV).Mul(cosX / dist2 * light.Wattage / (4 * float32(math.Pi)) * numLights)
	}

	prim := sc.Primitive(light.MeshIdx, light.PrimitiveIdx)
	ymat := matOf(sc, prim.MaterialIdx)

	if !sc.HasVisibility(x.Position, x.GeometricNormal, y.Position, y.GeometricNormal) {
		return core.Vec3{}
	}
	d := y.Position.Sub(x.Position)
	dist2 := d.LengthSquared()
	if dist2 <= 0 {
		return core.Vec3{}
	}
	dir := d.Mul(1 / float32(math.Sqrt(float64(dist2))))
	cosX := maxf(0, x.ShadingNormal.Dot(dir))
	cosY := maxf(0, y.ShadingNormal.Dot(dir.Negate()))

	return xmat.BSDF(x.UV).Mul(cosX * cosY / dist2 * prim.TotalArea * numLights).MulVec(ymat.Emission(y.UV))
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
