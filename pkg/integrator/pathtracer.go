// Package integrator holds the two concrete renderer variants — the
// tile-parallel path tracer and the Metropolis Light Transport chain
// driver — both implementing renderer.Integrator.
package integrator

import (
	"math"
	"sync/atomic"

	"github.com/kellandavis/lumenmlt/pkg/core"
	"github.com/kellandavis/lumenmlt/pkg/material"
	"github.com/kellandavis/lumenmlt/pkg/path"
	"github.com/kellandavis/lumenmlt/pkg/renderer"
	"github.com/kellandavis/lumenmlt/pkg/scene"
)

// TileSize is the square tile the path tracer's accumulate splits the
// frame into; one thread-pool task per tile.
const TileSize = 32

// explicitWeight is a fixed implicit/explicit split standing in for true
// multiple importance sampling: every vertex's implicit emission and
// next-event-estimation term are each weighted by exactly one half,
// regardless of either strategy's actual sampling density.
const explicitWeight = 0.5

// PathTracer accumulates unidirectional path-traced samples into a
// per-pixel buffer, tiled across the thread pool.
type PathTracer struct {
	accum           *renderer.ImageBuffer
	samplesPerPixel int
	stop            renderer.StopFlag
	seed            uint64
}

// NewPathTracer allocates an accumulation buffer sized to the scene's
// camera resolution.
func NewPathTracer(width, height int, seed uint64) *PathTracer {
	return &PathTracer{
		accum: renderer.NewImageBuffer(width, height),
		seed:  seed,
	}
}

// Accumulate runs numSamples additional samples per pixel, tiling the
// frame into TileSize x TileSize blocks and submitting one task per tile
// to pool. Blocks until every tile has completed.
func (pt *PathTracer) Accumulate(sc *scene.Scene, numSamples int, pool *renderer.ThreadPool) {
	pt.stop.Clear()
	width, height := pt.accum.Width, pt.accum.Height

	var taskID uint64
	for ty := 0; ty < height; ty += TileSize {
		for tx := 0; tx < width; tx += TileSize {
			x0, y0 := tx, ty
			x1, y1 := min(tx+TileSize, width), min(ty+TileSize, height)
			id := atomic.AddUint64(&taskID, 1)

			pool.AssignWork(func() {
				if pt.stop.IsSet() {
					return
				}
				rng := core.NewRNG(pt.seed, id)
				pt.renderTile(sc, x0, y0, x1, y1, numSamples, rng)
			})
		}
	}
	pool.Wait()
	pt.samplesPerPixel += numSamples
}

func (pt *PathTracer) renderTile(sc *scene.Scene, x0, y0, x1, y1, numSamples int, rng *core.RNG) {
	for y := y0; y < y1; y++ {
		if pt.stop.IsSet() {
			return
		}
		for x := x0; x < x1; x++ {
			var sum core.Vec3
			for s := 0; s < numSamples; s++ {
				u := rng.Vec2()
				pixelXY := core.NewVec2(float32(x)+u.X(), float32(y)+u.Y())
				sum = sum.Add(pt.sample(sc, pixelXY, rng))
			}
			pt.accum.Add(x, y, sum.X(), sum.Y(), sum.Z())
		}
	}
}

// sample evaluates one path-traced camera sample at the given
// continuous pixel coordinate.
func (pt *PathTracer) sample(sc *scene.Scene, pixelXY core.Vec2, rng *core.RNG) core.Vec3 {
	ray := sc.Camera.EyeRay(pixelXY)
	eyePath := path.CreateRandomEyePath(sc, ray, rng)
	lightVertex, hasLight := path.CreateRandomLightPath(sc, rng)

	vertices := eyePath.Slice()
	if len(vertices) < 2 {
		return core.Vec3{}
	}

	throughput := core.NewVec3(1, 1, 1)
	result := core.NewVec3(0, 0, 0)
	numLights := float32(len(sc.Lights))

	for i := 1; i < len(vertices); i++ {
		v := vertices[i]
		last := i == len(vertices)-1

		if !last {
			mat := sc.Materials[v.MaterialIdx]
			inDir := v.Position.Sub(vertices[i-1].Position).Normalize()
			contrib := mat.ExpectedContribution(v.UV, inDir)
			throughput = throughput.MulVec(contrib).Mul(1 / rrSurvival)
		}

		mat := materialAt(sc, v.MaterialIdx)
		if v.BounceType == material.BounceDiffuse && hasLight {
			contrib := explicitLightContribution(sc, v, lightVertex, numLights)
			result = result.Add(throughput.MulVec(contrib).Mul(explicitWeight))
		}
		result = result.Add(throughput.MulVec(mat.Emission(v.UV)).Mul(explicitWeight))
	}

	return result
}

func materialAt(sc *scene.Scene, idx int) material.Material {
	if idx < 0 || idx >= len(sc.Materials) {
		return material.Material{}
	}
	return sc.Materials[idx]
}

const rrSurvival = 1 - path.TerminationProbability

// explicitLightContribution is the next-event-estimation term evaluated
// at eye-path vertex v against the sampled light vertex: a visibility-
// gated point-light or mesh-light contribution, matching
// path.evaluateExplicitLight's two branches.
func explicitLightContribution(sc *scene.Scene, v path.Vertex, light path.Vertex, numLights float32) core.Vec3 {
	mat := materialAt(sc, v.MaterialIdx)

	if sc.Lights[light.LightIdx].Kind == scene.LightPoint {
		l := sc.Lights[light.LightIdx]
		d := l.Position.Sub(v.Position)
		dist2 := d.LengthSquared()
		if dist2 <= 0 {
			return core.Vec3{}
		}
		dist := sqrtf(dist2)
		dir := d.Mul(1 / dist)
		if !sc.HasVisibility(v.Position, v.GeometricNormal, l.Position, dir.Negate()) {
			return core.Vec3{}
		}
		cos := maxf(0, v.ShadingNormal.Dot(dir))
		return mat.BSDF(v.UV).Mul(cos / dist2 * l.Wattage / (4 * piF) * numLights)
	}

	l := sc.Lights[light.LightIdx]
	prim := sc.Primitive(l.MeshIdx, l.PrimitiveIdx)
	lightMat := materialAt(sc, prim.MaterialIdx)

	if !sc.HasVisibility(v.Position, v.GeometricNormal, light.Position, light.GeometricNormal) {
		return core.Vec3{}
	}
	d := light.Position.Sub(v.Position)
	dist2 := d.LengthSquared()
	if dist2 <= 0 {
		return core.Vec3{}
	}
	dist := sqrtf(dist2)
	dir := d.Mul(1 / dist)
	cosV := maxf(0, v.ShadingNormal.Dot(dir))
	cosL := maxf(0, light.ShadingNormal.Dot(dir.Negate()))
	return mat.BSDF(v.UV).Mul(cosV * cosL / dist2 * prim.TotalArea * numLights).MulVec(lightMat.Emission(light.UV))
}

// UpdateFrameBuffer writes applyCorrection(accum/samplesPerPixel) into dst.
func (pt *PathTracer) UpdateFrameBuffer(dst *renderer.ImageBuffer) {
	renderer.CorrectInto(dst, pt.accum, float32(pt.samplesPerPixel))
}

// NumSamplesPerPixel reports samples accumulated so far.
func (pt *PathTracer) NumSamplesPerPixel() float64 { return float64(pt.samplesPerPixel) }

// Reset clears the accumulation buffer and sample counter.
func (pt *PathTracer) Reset() {
	pt.accum.Clear()
	pt.samplesPerPixel = 0
}

// Stop raises the cooperative cancellation flag.
func (pt *PathTracer) Stop() { pt.stop.Set() }

// IsStopping reports the flag's current value.
func (pt *PathTracer) IsStopping() bool { return pt.stop.IsSet() }

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

const piF = float32(math.Pi)
