package path

import (
	"math"

	"github.com/kellandavis/lumenmlt/pkg/core"
)

// InvGeom is the inverse geometry term used by the bidirectional and
// perturbation MLT mutations' transition densities: d^2 / (cosA * cosB),
// with both cosines clamped to >= 0.
func InvGeom(aPos, aNormal, bPos, bNormal core.Vec3) float32 {
	d := bPos.Sub(aPos)
	dist2 := d.LengthSquared()
	if dist2 <= 0 {
		return float32(math.Inf(1))
	}
	dir := d.Mul(1 / float32(math.Sqrt(float64(dist2))))

	cosA := maxf(0, aNormal.Dot(dir))
	cosB := maxf(0, bNormal.Dot(dir.Negate()))
	if cosA <= 0 || cosB <= 0 {
		return float32(math.Inf(1))
	}
	return dist2 / (cosA * cosB)
}
