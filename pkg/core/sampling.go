package core

import "math"

// SampleCosineHemisphere returns a cosine-weighted random direction in the
// hemisphere around normal, given two uniform [0,1) samples.
func SampleCosineHemisphere(normal Vec3, u Vec2) Vec3 {
	a := 2 * math.Pi * float64(u[0])
	z := float64(u[1])
	r := math.Sqrt(z)

	x := float32(r * math.Cos(a))
	y := float32(r * math.Sin(a))
	zCoord := float32(math.Sqrt(1 - z))

	var nt Vec3
	if abs32(normal[0]) > 0.1 {
		nt = NewVec3(0, 1, 0)
	} else {
		nt = NewVec3(1, 0, 0)
	}
	tangent := nt.Cross(normal).Normalize()
	bitangent := normal.Cross(tangent)

	return tangent.Mul(x).Add(bitangent.Mul(y)).Add(normal.Mul(zCoord))
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
