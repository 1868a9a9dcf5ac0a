package integrator

import (
	"math"

	"github.com/kellandavis/lumenmlt/pkg/core"
	"github.com/kellandavis/lumenmlt/pkg/material"
	"github.com/kellandavis/lumenmlt/pkg/path"
	"github.com/kellandavis/lumenmlt/pkg/scene"
)

// MutationType tags which of the four mutation kinds produced a
// mutationInfo, so the chain can route new-path statistics and
// acceptance bookkeeping correctly.
type MutationType int

const (
	MutationNewPath MutationType = iota
	MutationLens
	MutationMultiChain
	MutationBidirectional
)

// EnabledMutations is a bitset over the four mutation kinds, set once at
// MLT construction.
type EnabledMutations uint8

const (
	EnableNewPath EnabledMutations = 1 << iota
	EnableLens
	EnableMultiChain
	EnableBidirectional
)

// DefaultEnabledMutations turns on all four kinds.
const DefaultEnabledMutations = EnableNewPath | EnableLens | EnableMultiChain | EnableBidirectional

func (e EnabledMutations) has(m EnabledMutations) bool { return e&m != 0 }

// kinds lists the mutation kinds active for e, used to pick a uniformly
// weighted categorical over the enabled set.
func (e EnabledMutations) kinds() []MutationType {
	var ks []MutationType
	if e.has(EnableNewPath) {
		ks = append(ks, MutationNewPath)
	}
	if e.has(EnableLens) {
		ks = append(ks, MutationLens)
	}
	if e.has(EnableMultiChain) {
		ks = append(ks, MutationMultiChain)
	}
	if e.has(EnableBidirectional) {
		ks = append(ks, MutationBidirectional)
	}
	return ks
}

// chainState is a Metropolis chain's current position: a path, the
// pixel it was sampled through, and its cached evaluation.
type chainState struct {
	path path.Path
	px   core.Vec2
	eval path.EvaluationResult
}

// mutationInfo is the result of proposing one mutation: the candidate
// state, its acceptance probability, and which kind produced it. valid is
// false when the mutation had no valid proposal at all (as opposed to a
// proposal with zero luminance, which is still valid but gets acceptance 0).
type mutationInfo struct {
	proposal   chainState
	acceptance float64
	kind       MutationType
	valid      bool
}

const (
	lensR1    = 0.1
	angleT1   = 1e-4
	angleT2   = 0.1
)

// newPathMutation draws an entirely independent path through a uniformly
// chosen pixel. Acceptance uses the Russian-roulette-scaled luminance in
// both numerator and denominator.
func newPathMutation(sc *scene.Scene, rng *core.RNG, width, height int, current chainState) mutationInfo {
	px := rng.Float32() * float32(width)
	py := rng.Float32() * float32(height)
	ray := sc.Camera.EyeRay(core.NewVec2(px, py))
	p := path.CreateRandomEyePath(sc, ray, rng)
	eval := path.Evaluate(sc, &p)

	proposal := chainState{path: p, px: core.NewVec2(px, py), eval: eval}

	lx := float64(current.eval.RussianRouletteRadiance.Luminance())
	ly := float64(eval.RussianRouletteRadiance.Luminance())
	if ly <= 0 {
		return mutationInfo{proposal: proposal, kind: MutationNewPath, valid: true, acceptance: 0}
	}
	a := 1.0
	if lx > 0 {
		a = math.Min(1, ly/lx)
	}
	return mutationInfo{proposal: proposal, kind: MutationNewPath, valid: true, acceptance: a}
}

// lensMutation and multiChainMutation share a perturb-the-pixel /
// retrace-the-bounce-sequence core; they differ only in what happens at
// a diffuse vertex whose current-path successor is not itself diffuse.
func lensMutation(sc *scene.Scene, rng *core.RNG, width, height int, current chainState) mutationInfo {
	return retraceMutation(sc, rng, width, height, current, MutationLens, false)
}

func multiChainMutation(sc *scene.Scene, rng *core.RNG, width, height int, current chainState) mutationInfo {
	return retraceMutation(sc, rng, width, height, current, MutationMultiChain, true)
}

func retraceMutation(sc *scene.Scene, rng *core.RNG, width, height int, current chainState, kind MutationType, allowAnglePerturb bool) mutationInfo {
	phi := 2 * piF * rng.Float32()
	r2 := float32(lensR1) * float32(width)
	u := rng.Float32()
	r := r2 * float32(math.Exp(-math.Log(float64(r2/lensR1))*float64(u)))

	dx := r * float32(math.Cos(float64(phi)))
	dy := r * float32(math.Sin(float64(phi)))
	newPx := current.px.X() + dx
	newPy := current.px.Y() + dy
	if newPx < 0 || newPx >= float32(width) || newPy < 0 || newPy >= float32(height) {
		return mutationInfo{kind: kind, valid: false}
	}

	curVerts := current.path.Slice()
	if len(curVerts) < 2 {
		return mutationInfo{kind: kind, valid: false}
	}

	ray := sc.Camera.EyeRay(core.NewVec2(newPx, newPy))
	var newP path.Path
	newP.Append(path.Vertex{ConnectionType: path.Origin, MaterialIdx: -1, LightIdx: -1, Position: ray.Origin})

	transitionRatio := 1.0

	for i := 1; i < len(curVerts); i++ {
		curV := curVerts[i]

		hit, ok := sc.Intersect(ray, material.Epsilon, float32(math.MaxFloat32))
		if !ok {
			return mutationInfo{kind: kind, valid: false}
		}
		mat := materialAt(sc, hit.MaterialIdx)
		shadingN, geomN := hit.ShadingNormal, hit.GeometricNormal
		if mat.BounceType() != material.BounceRefractive && ray.Direction.Dot(geomN) > 0 {
			shadingN, geomN = shadingN.Negate(), geomN.Negate()
		}

		newV := path.Vertex{
			ConnectionType:  path.Implicit,
			Position:        hit.Position,
			ShadingNormal:   shadingN,
			GeometricNormal: geomN,
			UV:              hit.UV,
			MaterialIdx:     hit.MaterialIdx,
			LightIdx:        hit.LightIdx,
		}

		last := i == len(curVerts)-1
		nextCurDiffuse := i+1 < len(curVerts) && curVerts[i+1].BounceType == material.BounceDiffuse

		if curV.BounceType == material.BounceDiffuse && !last && nextCurDiffuse {
			if mat.BounceType() != material.BounceDiffuse {
				return mutationInfo{kind: kind, valid: false}
			}
			newV.BounceType = material.BounceDiffuse
			if !newP.Append(newV) {
				return mutationInfo{kind: kind, valid: false}
			}

			suffix := curVerts[i+1]
			if !sc.HasVisibility(newV.Position, newV.GeometricNormal, suffix.Position, suffix.GeometricNormal) {
				return mutationInfo{kind: kind, valid: false}
			}
			invGeomOld := path.InvGeom(curV.Position, curV.GeometricNormal, suffix.Position, suffix.GeometricNormal)
			invGeomNew := path.InvGeom(newV.Position, newV.GeometricNormal, suffix.Position, suffix.GeometricNormal)
			if invGeomNew > 0 && !math.IsInf(float64(invGeomNew), 1) {
				transitionRatio *= float64(invGeomOld) / float64(invGeomNew)
			}

			if !newP.AppendPath(curVerts[i+1:]) {
				return mutationInfo{kind: kind, valid: false}
			}
			return finishRetrace(sc, newP, core.NewVec2(newPx, newPy), transitionRatio, kind, current)
		}

		if curV.BounceType == material.BounceDiffuse && !last && !nextCurDiffuse {
			if !allowAnglePerturb {
				return mutationInfo{kind: kind, valid: false}
			}

			origDir := curVerts[i+1].Position.Sub(curV.Position).Normalize()
			theta2 := float32(angleT2)
			ua := rng.Float32()
			ang := theta2 * float32(math.Exp(-math.Log(float64(theta2/angleT1))*float64(ua)))
			aphi := 2 * piF * rng.Float32()

			t1, t2 := tangentBasis(origDir)
			newDir := origDir.Mul(float32(math.Cos(float64(ang)))).
				Add(t1.Mul(float32(math.Cos(float64(aphi))) * float32(math.Sin(float64(ang)))).
					Add(t2.Mul(float32(math.Sin(float64(aphi))) * float32(math.Sin(float64(ang))))))
			newDir = newDir.Normalize()

			cosOrig := maxf(0, origDir.Dot(newV.GeometricNormal))
			cosNew := maxf(0, newDir.Dot(newV.GeometricNormal))
			if cosNew <= 0 {
				return mutationInfo{kind: kind, valid: false}
			}
			transitionRatio *= float64(cosOrig) / float64(cosNew)

			newV.BounceType = material.BounceDiffuse
			if !newP.Append(newV) {
				return mutationInfo{kind: kind, valid: false}
			}

			origin := newV.Position.Add(newV.GeometricNormal.Mul(material.Epsilon))
			ray = core.NewRay(origin, newDir)
			continue
		}

		sampledDir, bt := mat.SampleDirection(ray.Direction, hit.Position, shadingN, geomN, rng)
		newV.BounceType = bt
		if bt != curV.BounceType {
			return mutationInfo{kind: kind, valid: false}
		}
		if !newP.Append(newV) {
			return mutationInfo{kind: kind, valid: false}
		}
		ray = sampledDir
	}

	return finishRetrace(sc, newP, core.NewVec2(newPx, newPy), transitionRatio, kind, current)
}

// finishRetrace evaluates the retraced proposal and folds its luminance
// against the current state's into the transition-density ratio already
// accumulated by the caller, giving the full Metropolis acceptance
// min(1, (L(y)*Txy)/(L(x)*Tyx)).
func finishRetrace(sc *scene.Scene, newP path.Path, px core.Vec2, transitionRatio float64, kind MutationType, current chainState) mutationInfo {
	eval := path.Evaluate(sc, &newP)
	proposal := chainState{path: newP, px: px, eval: eval}

	currentLum := float64(current.eval.Radiance.Luminance())
	proposalLum := float64(eval.Radiance.Luminance())
	acceptance := 0.0
	if currentLum > 0 {
		acceptance = math.Min(1, (proposalLum*transitionRatio)/currentLum)
	} else if proposalLum > 0 {
		acceptance = 1
	}
	return mutationInfo{proposal: proposal, kind: kind, valid: true, acceptance: acceptance}
}

// tangentBasis returns two unit vectors orthogonal to n and each other,
// used to perturb a direction within n's tangent plane.
func tangentBasis(n core.Vec3) (core.Vec3, core.Vec3) {
	var up core.Vec3
	if maxf(absf(n.X()), maxf(absf(n.Y()), absf(n.Z()))) == absf(n.Z()) {
		up = core.NewVec3(1, 0, 0)
	} else {
		up = core.NewVec3(0, 0, 1)
	}
	t1 := up.Cross(n).Normalize()
	t2 := n.Cross(t1).Normalize()
	return t1, t2
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// bidirectionalMutation deletes a subrange of the current path and
// regrows it with a freshly sampled subpath of independently chosen
// length, reconnecting to the surviving suffix when one remains.
func bidirectionalMutation(sc *scene.Scene, rng *core.RNG, current chainState) mutationInfo {
	curVerts := current.path.Slice()
	currentLen := len(curVerts)
	if currentLen < 2 {
		return mutationInfo{kind: MutationBidirectional, valid: false}
	}

	delDist := core.ClippedGeometric{Base: 0.5, N: currentLen - 1}
	deletedLength := delDist.Sample(rng.Float64())
	if currentLen-deletedLength-1 < 0 {
		return mutationInfo{kind: MutationBidirectional, valid: false}
	}
	s := 0
	if currentLen-deletedLength-1 > 0 {
		s = int(rng.Bounded(uint32(currentLen - deletedLength - 1)))
	}
	t := s + deletedLength + 1

	if t < currentLen && curVerts[t].BounceType != material.BounceDiffuse {
		return mutationInfo{kind: MutationBidirectional, valid: false}
	}

	addDist := core.TwoSidedClippedGeometric{
		Base:   0.5,
		Left:   0,
		Center: deletedLength,
		Right:  path.MaxLength - currentLen + deletedLength,
	}
	addedLength := addDist.Sample(rng.Float64(), rng.Float64())

	var newP path.Path
	var newPx core.Vec2
	var ray core.Ray

	if s == 0 {
		px := rng.Float32() * float32(sc.Camera.ResolutionX)
		py := rng.Float32() * float32(sc.Camera.ResolutionY)
		newPx = core.NewVec2(px, py)
		ray = sc.Camera.EyeRay(newPx)
		newP.Append(path.Vertex{ConnectionType: path.Origin, MaterialIdx: -1, LightIdx: -1, Position: ray.Origin})
	} else {
		newPx = current.px
		for i := 0; i <= s; i++ {
			newP.Append(curVerts[i])
		}
		startV := curVerts[s]
		inDir := startV.Position.Sub(curVerts[s-1].Position).Normalize()
		mat := materialAt(sc, startV.MaterialIdx)
		nextRay, _ := mat.SampleDirection(inDir, startV.Position, startV.ShadingNormal, startV.GeometricNormal, rng)
		ray = nextRay
	}

	for b := 0; b < addedLength; b++ {
		hit, ok := sc.Intersect(ray, material.Epsilon, float32(math.MaxFloat32))
		if !ok {
			return mutationInfo{kind: MutationBidirectional, valid: false}
		}
		mat := materialAt(sc, hit.MaterialIdx)
		shadingN, geomN := hit.ShadingNormal, hit.GeometricNormal
		if mat.BounceType() != material.BounceRefractive && ray.Direction.Dot(geomN) > 0 {
			shadingN, geomN = shadingN.Negate(), geomN.Negate()
		}
		if !newP.Append(path.Vertex{
			ConnectionType:  path.Implicit,
			Position:        hit.Position,
			ShadingNormal:   shadingN,
			GeometricNormal: geomN,
			UV:              hit.UV,
			MaterialIdx:     hit.MaterialIdx,
			LightIdx:        hit.LightIdx,
		}) {
			return mutationInfo{kind: MutationBidirectional, valid: false}
		}
		if rng.Float32() < path.TerminationProbability {
			return mutationInfo{kind: MutationBidirectional, valid: false}
		}
		nextRay, bt := mat.SampleDirection(ray.Direction, hit.Position, shadingN, geomN, rng)
		newP.Vertices[newP.Len-1].BounceType = bt
		ray = nextRay
	}

	txy, tyx := 1.0, 1.0
	if t < currentLen {
		last := newP.Vertices[newP.Len-1]
		if last.BounceType != material.BounceDiffuse {
			return mutationInfo{kind: MutationBidirectional, valid: false}
		}
		suffix := curVerts[t]
		if !sc.HasVisibility(last.Position, last.GeometricNormal, suffix.Position, suffix.GeometricNormal) {
			return mutationInfo{kind: MutationBidirectional, valid: false}
		}
		invGeomNew := path.InvGeom(last.Position, last.GeometricNormal, suffix.Position, suffix.GeometricNormal)
		if invGeomNew > 0 && !math.IsInf(float64(invGeomNew), 1) {
			tyx *= piF64 * float64(invGeomNew)
		}
		if t > 0 {
			invGeomOld := path.InvGeom(curVerts[t-1].Position, curVerts[t-1].GeometricNormal, suffix.Position, suffix.GeometricNormal)
			if invGeomOld > 0 && !math.IsInf(float64(invGeomOld), 1) {
				txy *= piF64 * float64(invGeomOld)
			}
		}
		if !newP.AppendPath(curVerts[t:]) {
			return mutationInfo{kind: MutationBidirectional, valid: false}
		}
	}

	// Forward density: probability of deleting deletedLength vertices from
	// the current path and regrowing addedLength in their place.
	pd := delDist.PDF(deletedLength) / float64(currentLen-deletedLength)
	pa := addDist.PDF(addedLength)
	tyx *= pd * pa

	// Reverse density: probability of the inverse move, deleting
	// addedLength vertices from the proposal and regrowing deletedLength,
	// computed by reparameterizing both distributions on the proposal's
	// length.
	newLen := currentLen + addedLength - deletedLength
	revDelDist := core.ClippedGeometric{Base: 0.5, N: newLen - 1}
	revAddDist := core.TwoSidedClippedGeometric{
		Base:   0.5,
		Left:   0,
		Center: addedLength,
		Right:  path.MaxLength - newLen + addedLength,
	}
	pdRev := revDelDist.PDF(addedLength) / float64(newLen-addedLength)
	paRev := revAddDist.PDF(deletedLength)
	txy *= pdRev * paRev

	eval := path.Evaluate(sc, &newP)
	proposal := chainState{path: newP, px: newPx, eval: eval}

	currentLum := float64(current.eval.Radiance.Luminance())
	proposalLum := float64(eval.Radiance.Luminance())
	acceptance := 0.0
	if currentLum > 0 && tyx > 0 {
		acceptance = math.Min(1, (proposalLum*txy)/(currentLum*tyx))
	} else if proposalLum > 0 && txy > 0 {
		acceptance = 1
	}
	return mutationInfo{proposal: proposal, kind: MutationBidirectional, valid: true, acceptance: acceptance}
}

const piF64 = math.Pi
