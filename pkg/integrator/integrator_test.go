package integrator

import (
	"testing"

	"github.com/kellandavis/lumenmlt/pkg/renderer"
	"github.com/kellandavis/lumenmlt/pkg/scene"
)

func buildTestScene(t *testing.T) *scene.Scene {
	t.Helper()
	sc, err := scene.NewCornellBox(24, 24, 5)
	if err != nil {
		t.Fatalf("NewCornellBox: %v", err)
	}
	return sc
}

func TestPathTracerAccumulateProducesNonzeroBottomRowLuminance(t *testing.T) {
	sc := buildTestScene(t)
	pt := NewPathTracer(sc.Camera.ResolutionX, sc.Camera.ResolutionY, 1)
	pool := renderer.NewThreadPool(2)
	defer pool.Stop()

	pt.Accumulate(sc, 8, pool)

	dst := renderer.NewImageBuffer(sc.Camera.ResolutionX, sc.Camera.ResolutionY)
	pt.UpdateFrameBuffer(dst)

	found := false
	for y := sc.Camera.ResolutionY - 3; y < sc.Camera.ResolutionY; y++ {
		for x := 0; x < sc.Camera.ResolutionX; x++ {
			r, g, b := dst.At(x, y)
			if r+g+b > 0 {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("expected at least one lit pixel in the bottom rows")
	}
}

func TestPathTracerResetClearsAccumulation(t *testing.T) {
	sc := buildTestScene(t)
	pt := NewPathTracer(sc.Camera.ResolutionX, sc.Camera.ResolutionY, 2)
	pool := renderer.NewThreadPool(2)
	defer pool.Stop()

	pt.Accumulate(sc, 4, pool)
	pt.Reset()

	if pt.NumSamplesPerPixel() != 0 {
		t.Fatalf("expected sample count reset to 0, got %v", pt.NumSamplesPerPixel())
	}
	for _, v := range pt.accum.Pixels {
		if v != 0 {
			t.Fatal("expected accumulation buffer cleared after reset")
		}
	}
}

func TestMLTAccumulateRunsWithoutPanicking(t *testing.T) {
	sc := buildTestScene(t)
	mlt := NewMLT(sc.Camera.ResolutionX, sc.Camera.ResolutionY, 4, 7, DefaultEnabledMutations)
	pool := renderer.NewThreadPool(4)
	defer pool.Stop()

	mlt.Accumulate(sc, 2, pool)

	dst := renderer.NewImageBuffer(sc.Camera.ResolutionX, sc.Camera.ResolutionY)
	mlt.UpdateFrameBuffer(dst)

	if mlt.NumSamplesPerPixel() <= 0 {
		t.Fatal("expected nonzero sample density after accumulate")
	}
}

func TestMLTResetClearsChains(t *testing.T) {
	sc := buildTestScene(t)
	mlt := NewMLT(sc.Camera.ResolutionX, sc.Camera.ResolutionY, 2, 11, DefaultEnabledMutations)
	pool := renderer.NewThreadPool(2)
	defer pool.Stop()

	mlt.Accumulate(sc, 2, pool)
	mlt.Reset()

	if mlt.NumSamplesPerPixel() != 0 {
		t.Fatalf("expected reset sample density 0, got %v", mlt.NumSamplesPerPixel())
	}
	for _, c := range mlt.chains {
		if c.started {
			t.Fatal("expected reset to clear chain start state")
		}
	}
}

// TestMLTNewPathOnlyTracksPathTracedMeanLuminance is a scaled-down analog
// of the new-path-mutation-only convergence check: at full scale this
// compares mean luminance against path-traced ground truth at 16384
// samples per pixel within 3%, which is too slow to run as a unit test.
// Here both integrators run at a small, equal sample budget and are
// expected to land within the same rough order of magnitude on a
// diffuse-only scene, since a new-path-only MLT chain is mathematically
// just a differently-weighted path tracer over the same path space.
func TestMLTNewPathOnlyTracksPathTracedMeanLuminance(t *testing.T) {
	sc := buildTestScene(t)
	pool := renderer.NewThreadPool(4)
	defer pool.Stop()

	pt := NewPathTracer(sc.Camera.ResolutionX, sc.Camera.ResolutionY, 3)
	pt.Accumulate(sc, 32, pool)
	ptImage := renderer.NewImageBuffer(sc.Camera.ResolutionX, sc.Camera.ResolutionY)
	pt.UpdateFrameBuffer(ptImage)

	mlt := NewMLT(sc.Camera.ResolutionX, sc.Camera.ResolutionY, 16, 5, EnableNewPath)
	mlt.Accumulate(sc, 32, pool)
	mltImage := renderer.NewImageBuffer(sc.Camera.ResolutionX, sc.Camera.ResolutionY)
	mlt.UpdateFrameBuffer(mltImage)

	ptMean := meanLuminance(ptImage)
	mltMean := meanLuminance(mltImage)

	if ptMean <= 0 || mltMean <= 0 {
		t.Fatalf("expected both integrators to produce nonzero mean luminance, got pt=%v mlt=%v", ptMean, mltMean)
	}

	ratio := mltMean / ptMean
	if ratio < 0.2 || ratio > 5 {
		t.Fatalf("new-path-only MLT mean luminance %v diverges too far from path-traced %v (ratio %v)", mltMean, ptMean, ratio)
	}
}

func meanLuminance(buf *renderer.ImageBuffer) float64 {
	var sum float64
	n := buf.Width * buf.Height
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			r, g, b := buf.At(x, y)
			sum += float64(r+g+b) / 3
		}
	}
	return sum / float64(n)
}

func TestEnabledMutationsKindsRespectsBitset(t *testing.T) {
	e := EnableNewPath | EnableBidirectional
	kinds := e.kinds()
	if len(kinds) != 2 {
		t.Fatalf("expected 2 enabled kinds, got %d", len(kinds))
	}
}
