package integrator

import (
	"github.com/kellandavis/lumenmlt/pkg/core"
	"github.com/kellandavis/lumenmlt/pkg/path"
	"github.com/kellandavis/lumenmlt/pkg/renderer"
	"github.com/kellandavis/lumenmlt/pkg/scene"
)

// chainEpsilon is the minimum luminance a freshly seeded state must have
// to be accepted as a chain's starting point.
const chainEpsilon = 1e-6

// chain is one Metropolis chain: its own accumulation buffer and a
// thread-private RNG, current path and running normalization stats.
// Nothing about a chain is shared with any sibling chain while the
// driver's accumulate call is in flight.
type chain struct {
	accum   *renderer.ImageBuffer
	rng     *core.RNG
	current chainState
	started bool

	accumulatedLuminance   float64
	numNewPathMutations    int64
	averageSamplesPerPixel float64

	enabled EnabledMutations
	width   int
	height  int
}

func newChain(width, height int, seed uint64, seq uint64, enabled EnabledMutations) *chain {
	return &chain{
		accum:   renderer.NewImageBuffer(width, height),
		rng:     core.NewRNG(seed, seq),
		enabled: enabled,
		width:   width,
		height:  height,
	}
}

// ensureStarted repeatedly draws an independent path until it finds one
// with nonzero luminance, installing it as the chain's initial state.
func (c *chain) ensureStarted(sc *scene.Scene) {
	if c.started {
		return
	}
	for {
		px := c.rng.Float32() * float32(c.width)
		py := c.rng.Float32() * float32(c.height)
		ray := sc.Camera.EyeRay(core.NewVec2(px, py))
		p := path.CreateRandomEyePath(sc, ray, c.rng)
		eval := path.Evaluate(sc, &p)
		if eval.Radiance.Luminance() > chainEpsilon {
			c.current = chainState{path: p, px: core.NewVec2(px, py), eval: eval}
			c.started = true
			return
		}
	}
}

// accumulate runs numMutations Metropolis steps, splatting every step's
// contribution into the chain's own accumulation buffer.
func (c *chain) accumulate(sc *scene.Scene, numMutations int) {
	c.ensureStarted(sc)

	kinds := c.enabled.kinds()
	if len(kinds) == 0 {
		return
	}

	for m := 0; m < numMutations; m++ {
		curLum := c.current.eval.Radiance.Luminance()
		currentColor := core.Vec3{}
		if curLum > 0 {
			currentColor = c.current.eval.Radiance.Mul(1 / curLum)
		}
		curPx, curPy := pixelCoords(c.current.px, c.width, c.height)

		kind := kinds[c.rng.Bounded(uint32(len(kinds)))]
		info := c.propose(sc, kind)

		if kind == MutationNewPath {
			lum := float64(info.proposal.eval.RussianRouletteRadiance.Luminance())
			c.accumulatedLuminance += lum
			c.numNewPathMutations++
		}

		if !info.valid || info.proposal.eval.Radiance.Luminance() <= 0 {
			c.accum.Add(curPx, curPy, currentColor.X(), currentColor.Y(), currentColor.Z())
			c.averageSamplesPerPixel += 1 / float64(c.width*c.height)
			continue
		}

		newLum := info.proposal.eval.Radiance.Luminance()
		newColor := info.proposal.eval.Radiance.Mul(1 / newLum)
		newPx, newPy := pixelCoords(info.proposal.px, c.width, c.height)

		a := info.acceptance
		if a > 1 {
			a = 1
		}
		if a < 0 {
			a = 0
		}

		curContrib := currentColor.Mul(float32(1 - a))
		newContrib := newColor.Mul(float32(a))
		c.accum.Add(curPx, curPy, curContrib.X(), curContrib.Y(), curContrib.Z())
		c.accum.Add(newPx, newPy, newContrib.X(), newContrib.Y(), newContrib.Z())

		if c.rng.Float32() < float32(a) {
			c.current = info.proposal
		}
		c.averageSamplesPerPixel += 1 / float64(c.width*c.height)
	}
}

func (c *chain) propose(sc *scene.Scene, kind MutationType) mutationInfo {
	switch kind {
	case MutationNewPath:
		return newPathMutation(sc, c.rng, c.width, c.height, c.current)
	case MutationLens:
		return lensMutation(sc, c.rng, c.width, c.height, c.current)
	case MutationMultiChain:
		return multiChainMutation(sc, c.rng, c.width, c.height, c.current)
	default:
		return bidirectionalMutation(sc, c.rng, c.current)
	}
}

func pixelCoords(px core.Vec2, width, height int) (int, int) {
	x := int(px.X())
	y := int(px.Y())
	if x < 0 {
		x = 0
	}
	if x >= width {
		x = width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= height {
		y = height - 1
	}
	return x, y
}
