package core

import "math"

// ClippedGeometric is a geometric law truncated to i in [0, n]:
// pdf_i = (1-b)*b^i / Z, Z = 1 - b^(n+1). Used by the bidirectional MLT
// mutation to pick how many path vertices to delete.
type ClippedGeometric struct {
	Base float64
	N    int
}

func (g ClippedGeometric) z() float64 {
	return 1 - math.Pow(g.Base, float64(g.N+1))
}

// PDF returns the probability mass at i. Out-of-range i has zero mass.
func (g ClippedGeometric) PDF(i int) float64 {
	if i < 0 || i > g.N {
		return 0
	}
	return (1 - g.Base) * math.Pow(g.Base, float64(i)) / g.z()
}

// Sample draws an index via inverse-CDF given a uniform u in [0,1).
func (g ClippedGeometric) Sample(u float64) int {
	scaled := u * g.z()
	i := int(math.Ceil(logBase(g.Base, 1-scaled))) - 1
	if i < 0 {
		i = 0
	}
	if i > g.N {
		i = g.N
	}
	return i
}

func logBase(b, x float64) float64 {
	return math.Log(x) / math.Log(b)
}

// TwoSidedClippedGeometric is a triangular-exponential law over
// [left, right] peaked at center, with mirrored decaying halves. Both
// halves include the center, so the mass at i==center (offset zero) is
// doubled relative to the symmetric formula, matching the normalizer Z.
type TwoSidedClippedGeometric struct {
	Base                 float64
	Left, Center, Right int
}

func (g TwoSidedClippedGeometric) z() float64 {
	return 2 - math.Pow(g.Base, float64(g.Center-g.Left+1)) - math.Pow(g.Base, float64(g.Right-g.Center+1))
}

// PDF returns the probability mass at i.
func (g TwoSidedClippedGeometric) PDF(i int) float64 {
	if i < g.Left || i > g.Right {
		return 0
	}
	d := i - g.Center
	if d < 0 {
		d = -d
	}
	p := (1 - g.Base) * math.Pow(g.Base, float64(d)) / g.z()
	if d == 0 {
		p *= 2
	}
	return p
}

// Sample draws an index via inverse-CDF given a uniform u in [0,1) and a
// second uniform coin to select which half of the distribution to invert.
func (g TwoSidedClippedGeometric) Sample(u, halfCoin float64) int {
	leftLen := g.Center - g.Left
	rightLen := g.Right - g.Center
	leftMass := (1 - math.Pow(g.Base, float64(leftLen+1))) / g.z()

	if halfCoin*g.z() < leftMass*g.z() && leftLen > 0 {
		cg := ClippedGeometric{Base: g.Base, N: leftLen}
		return g.Center - cg.Sample(u)
	}
	if rightLen == 0 {
		return g.Center
	}
	cg := ClippedGeometric{Base: g.Base, N: rightLen}
	return g.Center + cg.Sample(u)
}
