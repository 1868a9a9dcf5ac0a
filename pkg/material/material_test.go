package material

import (
	"math"
	"testing"

	"github.com/kellandavis/lumenmlt/pkg/core"
)

func TestBounceTypeDerivation(t *testing.T) {
	cases := []struct {
		name string
		m    Material
		want BounceType
	}{
		{"refractive", Material{Transmission: 0.9, Metallic: 0.1}, BounceRefractive},
		{"reflective", Material{Metallic: 0.9, Roughness: 0.1}, BounceReflective},
		{"diffuse default", Material{}, BounceDiffuse},
		{"metallic but rough stays diffuse", Material{Metallic: 0.9, Roughness: 0.9}, BounceDiffuse},
	}
	for _, c := range cases {
		if got := c.m.BounceType(); got != c.want {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestRefractionTotalInternalReflection(t *testing.T) {
	m := Material{Transmission: 1, IOR: 1.5}
	rng := core.NewRNG(1, 1)

	// Ray inside the medium at 60 degrees to the surface normal: shading
	// normal points "out" of the medium toward the ray's origin side, so
	// inDir . normal > 0 means traveling from inside to outside.
	normal := core.NewVec3(0, 1, 0)
	angle := 60.0 * math.Pi / 180
	inDir := core.NewVec3(float32(math.Sin(angle)), float32(math.Cos(angle)), 0).Normalize()

	ray, bt := m.SampleDirection(inDir, core.NewVec3(0, 0, 0), normal, normal, rng)
	if bt != BounceReflective {
		t.Fatalf("expected TIR to force a reflective bounce, got %v", bt)
	}

	// Reflected ray must be on the same side of the normal as -inDir.
	if ray.Direction.Dot(normal) >= 0 {
		t.Fatalf("reflected ray direction %v should point away from the surface", ray.Direction)
	}
}

func TestRefractionObeysSnellsLaw(t *testing.T) {
	m := Material{Transmission: 1, IOR: 1.5}
	normal := core.NewVec3(0, 1, 0)
	angle := 30.0 * math.Pi / 180
	inDir := core.NewVec3(float32(math.Sin(angle)), float32(-math.Cos(angle)), 0).Normalize()

	var ray core.Ray
	found := false
	for stream := uint64(0); stream < 64; stream++ {
		rng := core.NewRNG(1, stream)
		r, bt := m.SampleDirection(inDir, core.NewVec3(0, 0, 0), normal, normal, rng)
		if bt == BounceRefractive {
			ray, found = r, true
			break
		}
	}
	if !found {
		t.Fatal("expected at least one of 64 streams to transmit rather than reflect at 30 degrees")
	}

	cosI := float32(math.Cos(angle))
	sinI := float32(math.Sin(angle))

	cosT := ray.Direction.Negate().Dot(normal)
	sinT := float32(math.Sqrt(float64(1 - cosT*cosT)))

	// Snell's law: eta1*sin(theta_i) == eta2*sin(theta_t), air-to-glass.
	lhs, rhs := 1.0*sinI, m.IOR*sinT
	if diff := lhs - rhs; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("Snell's law violated: sinI=%v want eta*sinT=%v (sinT=%v)", lhs, rhs, sinT)
	}

	// The transmitted ray bends toward the normal entering a denser medium.
	if cosT <= cosI {
		t.Fatalf("expected transmitted ray to bend toward normal: cosT=%v cosI=%v", cosT, cosI)
	}
}

func TestTextureSampleWrapsAndDefaultsToWhite(t *testing.T) {
	var tex *Texture
	if c := tex.Sample(core.NewVec2(0.5, 0.5)); c != core.NewVec3(1, 1, 1) {
		t.Fatalf("nil texture should sample as white, got %v", c)
	}

	tex = &Texture{Width: 2, Height: 1, Pixels: []core.Vec3{core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)}}
	if c := tex.Sample(core.NewVec2(1.5, 0)); c != core.NewVec3(0, 1, 0) {
		t.Fatalf("expected wrap to texel 1, got %v", c)
	}
}
