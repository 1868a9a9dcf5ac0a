// Package config resolves the CLI flags of the render command into the
// typed options the driver needs: frame size, sample budget, chain
// count, integrator choice and enabled MLT mutations.
package config

import (
	"fmt"
	"strings"

	"github.com/kellandavis/lumenmlt/pkg/integrator"
)

// Integrator selects which renderer.Integrator the driver builds.
type Integrator string

const (
	PathTracer Integrator = "pathtracer"
	MLT        Integrator = "mlt"
)

// MaxSamplesPerPixel is the sample-per-pixel cap; the progressive driver
// doubles its step size each pass up to 128 but never accumulates past
// this total.
const MaxSamplesPerPixel = 16384

// MaxSampleStep is the ceiling the progressive driver's per-pass sample
// count doubles up to.
const MaxSampleStep = 128

// Render holds every option the render command needs to build a driver.
type Render struct {
	Width, Height   int
	SamplesPerPixel int
	Chains          int
	Workers         int
	Integrator      Integrator
	Mutations       integrator.EnabledMutations
	ScenePath       string
	OutPath         string
}

// ParseIntegrator validates the --integrator flag value.
func ParseIntegrator(s string) (Integrator, error) {
	switch Integrator(s) {
	case PathTracer, MLT:
		return Integrator(s), nil
	default:
		return "", fmt.Errorf("config: unknown integrator %q (want pathtracer or mlt)", s)
	}
}

// ParseMutations parses a comma-separated list of mutation names
// (new-path, lens, multi-chain, bidirectional) into a bitset. An empty
// string enables every mutation kind.
func ParseMutations(s string) (integrator.EnabledMutations, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return integrator.DefaultEnabledMutations, nil
	}

	var enabled integrator.EnabledMutations
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(name) {
		case "new-path":
			enabled |= integrator.EnableNewPath
		case "lens":
			enabled |= integrator.EnableLens
		case "multi-chain":
			enabled |= integrator.EnableMultiChain
		case "bidirectional":
			enabled |= integrator.EnableBidirectional
		default:
			return 0, fmt.Errorf("config: unknown mutation kind %q", name)
		}
	}
	return enabled, nil
}
