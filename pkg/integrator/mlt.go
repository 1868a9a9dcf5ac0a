package integrator

import (
	"github.com/kellandavis/lumenmlt/pkg/renderer"
	"github.com/kellandavis/lumenmlt/pkg/scene"
)

// MLT owns a fixed set of independent Metropolis chains, each with its
// own accumulation buffer, and combines them at updateFrameBuffer time
// via the Veach-style brightness normalization estimator.
type MLT struct {
	chains []*chain
	width  int
	height int
	stop   renderer.StopFlag
}

// NewMLT builds numChains chains over a width x height image. Every
// chain's RNG shares seed but uses its own sequence (chain index + 1),
// so siblings never correlate.
func NewMLT(width, height, numChains int, seed uint64, enabled EnabledMutations) *MLT {
	chains := make([]*chain, numChains)
	for i := range chains {
		chains[i] = newChain(width, height, seed, uint64(i)+1, enabled)
	}
	return &MLT{chains: chains, width: width, height: height}
}

// Accumulate splits numSamples*W*H mutations evenly across the chains
// and runs each chain's share on the thread pool concurrently. Each
// chain's state and buffer are thread-private, so no locking is needed
// beyond the pool's own fork/join fence.
func (m *MLT) Accumulate(sc *scene.Scene, numSamples int, pool *renderer.ThreadPool) {
	m.stop.Clear()
	total := numSamples * m.width * m.height
	perChain := total / len(m.chains)
	if perChain == 0 {
		perChain = 1
	}

	for _, c := range m.chains {
		c := c
		pool.AssignWork(func() {
			if m.stop.IsSet() {
				return
			}
			c.accumulate(sc, perChain)
		})
	}
	pool.Wait()
}

// UpdateFrameBuffer clears dst, computes the global normalization scale
// factor, sums every chain's scaled accumulation into dst, then applies
// the tonemap/gamma correction in place.
func (m *MLT) UpdateFrameBuffer(dst *renderer.ImageBuffer) {
	dst.Clear()

	var sumLuminance float64
	var sumNewPathMutations float64
	var sumAverageSamples float64
	for _, c := range m.chains {
		sumLuminance += c.accumulatedLuminance
		sumNewPathMutations += float64(c.numNewPathMutations)
		sumAverageSamples += c.averageSamplesPerPixel
	}

	scale := float32(0)
	if sumNewPathMutations > 0 && sumAverageSamples > 0 {
		scale = float32(sumLuminance / sumNewPathMutations / sumAverageSamples)
	}

	merged := renderer.NewImageBuffer(m.width, m.height)
	for _, c := range m.chains {
		for i, v := range c.accum.Pixels {
			merged.Pixels[i] += v * scale
		}
	}

	renderer.CorrectInto(dst, merged, 1)
}

// NumSamplesPerPixel sums every chain's running per-pixel sample density.
func (m *MLT) NumSamplesPerPixel() float64 {
	var total float64
	for _, c := range m.chains {
		total += c.averageSamplesPerPixel
	}
	return total
}

// Reset clears every chain's accumulation buffer, normalization stats
// and current state, as required after a camera move.
func (m *MLT) Reset() {
	for _, c := range m.chains {
		c.accum.Clear()
		c.accumulatedLuminance = 0
		c.numNewPathMutations = 0
		c.averageSamplesPerPixel = 0
		c.started = false
	}
}

// Stop raises the cooperative cancellation flag observed between chains.
func (m *MLT) Stop() { m.stop.Set() }

// IsStopping reports the flag's current value.
func (m *MLT) IsStopping() bool { return m.stop.IsSet() }
