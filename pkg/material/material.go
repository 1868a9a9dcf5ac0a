package material

import (
	"math"

	"github.com/kellandavis/lumenmlt/pkg/core"
)

// Epsilon is the universal surface-offset / near-singular threshold.
const Epsilon = 5e-5

// BounceType tags how a path continues from a surface vertex. Materials
// are a single tagged struct, not a polymorphic interface hierarchy:
// BounceType is derived data, branched on directly by the path and
// evaluator code.
type BounceType int

const (
	BounceNone BounceType = iota
	BounceDiffuse
	BounceReflective
	BounceRefractive
)

// Material holds every factor the renderer needs; BounceType is derived
// from Metallic/Roughness/Transmission rather than stored directly.
type Material struct {
	BaseColorFactor core.Vec3
	BaseColorTexture *Texture

	Metallic  float32
	Roughness float32

	EmissiveFactor   core.Vec3
	EmissiveStrength float32
	EmissiveTexture  *Texture

	Transmission        float32
	TransmissionTexture *Texture

	IOR float32
}

// BounceType derives the surface's bounce behavior.
func (m Material) BounceType() BounceType {
	if m.Transmission > 0.5 && m.Metallic <= 0.5 {
		return BounceRefractive
	}
	if m.Metallic > 0.5 && m.Roughness < 0.5 {
		return BounceReflective
	}
	return BounceDiffuse
}

func (m Material) baseColor(uv core.Vec2) core.Vec3 {
	return m.BaseColorFactor.MulVec(m.BaseColorTexture.Sample(uv))
}

// BSDF is the diffuse-only BRDF value baseColor*texture/pi, used only by
// explicit-connection Lambertian contributions.
func (m Material) BSDF(uv core.Vec2) core.Vec3 {
	return m.baseColor(uv).Mul(1 / float32(math.Pi))
}

// ExpectedContribution is the per-bounce throughput factor used by
// implicit path evaluation: (1,1,1) for refractive surfaces, otherwise
// baseColor*texture. inDir is accepted for signature symmetry with the
// vertex-local evaluators that do consult it but is not otherwise used
// here.
func (m Material) ExpectedContribution(uv core.Vec2, inDir core.Vec3) core.Vec3 {
	if m.BounceType() == BounceRefractive {
		return core.NewVec3(1, 1, 1)
	}
	return m.baseColor(uv)
}

// Emission returns emissiveFactor*strength, optionally modulated by the
// emissive texture when that texture carries nonzero signal.
func (m Material) Emission(uv core.Vec2) core.Vec3 {
	e := m.EmissiveFactor.Mul(m.EmissiveStrength)
	if m.EmissiveTexture != nil {
		t := m.EmissiveTexture.Sample(uv)
		if t.LengthSquared() > 0 {
			e = e.MulVec(t)
		}
	}
	return e
}

// Fresnel computes the dielectric reflectance from incidence/transmission
// cosines and the two sides' indices of refraction.
func Fresnel(cosI, cosT, eta1, eta2 float32) float32 {
	rs := (eta1*cosI - eta2*cosT) / (eta1*cosI + eta2*cosT)
	rp := (eta1*cosT - eta2*cosI) / (eta1*cosT + eta2*cosI)
	return 0.5 * (rs*rs + rp*rp)
}

// SampleDirection draws the next ray from a surface hit, per material
// BounceType. position/shadingNormal/geometricNormal describe the hit;
// inDir is the incoming ray direction (normalized, pointing toward the
// surface). The returned BounceType reflects the branch actually taken
// (e.g. a refractive material under total internal reflection yields
// BounceReflective).
func (m Material) SampleDirection(inDir, position, shadingNormal, geometricNormal core.Vec3, rng *core.RNG) (core.Ray, BounceType) {
	switch m.BounceType() {
	case BounceDiffuse:
		dir := core.SampleCosineHemisphere(shadingNormal, rng.Vec2())
		origin := position.Add(geometricNormal.Mul(Epsilon))
		return core.NewRay(origin, dir), BounceDiffuse

	case BounceReflective:
		dir := reflect(inDir, shadingNormal)
		if dir.Dot(geometricNormal) < 0 {
			dir = reflect(inDir, geometricNormal)
		}
		origin := position.Add(geometricNormal.Mul(Epsilon))
		return core.NewRay(origin, dir), BounceReflective

	default: // BounceRefractive
		return m.sampleRefraction(inDir, position, shadingNormal, geometricNormal, rng)
	}
}

func reflect(inDir, normal core.Vec3) core.Vec3 {
	return inDir.Sub(normal.Mul(2 * inDir.Dot(normal)))
}

func (m Material) sampleRefraction(inDir, position, shadingNormal, geometricNormal core.Vec3, rng *core.RNG) (core.Ray, BounceType) {
	entering := inDir.Dot(shadingNormal) < 0

	n := shadingNormal
	eta1, eta2 := float32(1), m.IOR
	if !entering {
		n = shadingNormal.Negate()
		eta1, eta2 = m.IOR, 1
	}

	cosI := -inDir.Dot(n)
	etaRatio := eta1 / eta2
	sin2T := etaRatio * etaRatio * (1 - cosI*cosI)

	reflectRay := func() (core.Ray, BounceType) {
		dir := reflect(inDir, n)
		origin := position.Add(geometricNormal.Mul(Epsilon))
		return core.NewRay(origin, dir), BounceReflective
	}

	if sin2T > 1 {
		return reflectRay()
	}

	cosT := float32(math.Sqrt(float64(1 - sin2T)))
	transmitDir := inDir.Mul(etaRatio).Add(n.Mul(etaRatio*cosI - cosT))

	if rng.Float32() < Fresnel(cosI, cosT, eta1, eta2) {
		return reflectRay()
	}

	sign := float32(1)
	if transmitDir.Dot(geometricNormal) < 0 {
		sign = -1
	}
	origin := position.Add(geometricNormal.Mul(Epsilon * sign))
	return core.NewRay(origin, transmitDir), BounceRefractive
}
