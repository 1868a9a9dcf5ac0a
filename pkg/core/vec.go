// Package core holds the vector, ray, bounding-volume and RNG primitives
// shared by every other package: geometry, material, scene, path and the
// integrators all build on these types.
package core

import (
	"math"

	"golang.org/x/image/math/f32"
)

// Vec2 is a 2-component float32 tuple, used for texture coordinates and
// 2D sample pairs.
type Vec2 f32.Vec2

// Vec3 is a 3-component float32 tuple: positions, directions, colors.
type Vec3 f32.Vec3

// Vec4 is a 4-component float32 tuple. Beyond general use it backs the
// four lanes of an AABB4 bound (see aabb4.go), one float per child box.
type Vec4 f32.Vec4

// NewVec2 builds a Vec2 from components.
func NewVec2(x, y float32) Vec2 { return Vec2{x, y} }

// NewVec3 builds a Vec3 from components.
func NewVec3(x, y, z float32) Vec3 { return Vec3{x, y, z} }

// NewVec4 builds a Vec4 from components.
func NewVec4(x, y, z, w float32) Vec4 { return Vec4{x, y, z, w} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v[0] + o[0], v[1] + o[1]} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v[0] - o[0], v[1] - o[1]} }
func (v Vec2) Mul(s float32) Vec2 { return Vec2{v[0] * s, v[1] * s} }
func (v Vec2) X() float32 { return v[0] }
func (v Vec2) Y() float32 { return v[1] }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }
func (v Vec3) Mul(s float32) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }
func (v Vec3) MulVec(o Vec3) Vec3 { return Vec3{v[0] * o[0], v[1] * o[1], v[2] * o[2]} }
func (v Vec3) Negate() Vec3 { return Vec3{-v[0], -v[1], -v[2]} }

func (v Vec3) X() float32 { return v[0] }
func (v Vec3) Y() float32 { return v[1] }
func (v Vec3) Z() float32 { return v[2] }

func (v Vec3) Dot(o Vec3) float32 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

func (v Vec3) LengthSquared() float32 { return v.Dot(v) }

func (v Vec3) Length() float32 { return float32(math.Sqrt(float64(v.LengthSquared()))) }

func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// Clamp clamps every component to [lo, hi].
func (v Vec3) Clamp(lo, hi float32) Vec3 {
	c := func(x float32) float32 {
		if x < lo {
			return lo
		}
		if x > hi {
			return hi
		}
		return x
	}
	return Vec3{c(v[0]), c(v[1]), c(v[2])}
}

// Pow raises every component to exponent p (used by gamma correction).
func (v Vec3) Pow(p float32) Vec3 {
	return Vec3{
		float32(math.Pow(float64(v[0]), float64(p))),
		float32(math.Pow(float64(v[1]), float64(p))),
		float32(math.Pow(float64(v[2]), float64(p))),
	}
}

// Luminance is the perceptual brightness used by the MLT chain's
// acceptance ratios: 0.299 R + 0.587 G + 0.114 B.
func (v Vec3) Luminance() float32 {
	return 0.299*v[0] + 0.587*v[1] + 0.114*v[2]
}

// MinVec3 returns the componentwise minimum of a and b.
func MinVec3(a, b Vec3) Vec3 {
	m := func(x, y float32) float32 {
		if x < y {
			return x
		}
		return y
	}
	return Vec3{m(a[0], b[0]), m(a[1], b[1]), m(a[2], b[2])}
}

// MaxVec3 returns the componentwise maximum of a and b.
func MaxVec3(a, b Vec3) Vec3 {
	m := func(x, y float32) float32 {
		if x > y {
			return x
		}
		return y
	}
	return Vec3{m(a[0], b[0]), m(a[1], b[1]), m(a[2], b[2])}
}

func (v Vec4) Add(o Vec4) Vec4 {
	return Vec4{v[0] + o[0], v[1] + o[1], v[2] + o[2], v[3] + o[3]}
}

func (v Vec4) Mul(s float32) Vec4 {
	return Vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}

// Min4 returns the componentwise (lane-wise) minimum.
func Min4(a, b Vec4) Vec4 {
	m := func(x, y float32) float32 {
		if x < y {
			return x
		}
		return y
	}
	return Vec4{m(a[0], b[0]), m(a[1], b[1]), m(a[2], b[2]), m(a[3], b[3])}
}

// Max4 returns the componentwise (lane-wise) maximum.
func Max4(a, b Vec4) Vec4 {
	m := func(x, y float32) float32 {
		if x > y {
			return x
		}
		return y
	}
	return Vec4{m(a[0], b[0]), m(a[1], b[1]), m(a[2], b[2]), m(a[3], b[3])}
}
