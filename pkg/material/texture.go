package material

import "github.com/kellandavis/lumenmlt/pkg/core"

// Texture is a decoded RGB image sampled nearest-neighbour with integer
// wrap. Decoding itself (pkg/loaders) is an external collaborator; this
// type is the core-facing representation.
type Texture struct {
	Width, Height int
	Pixels        []core.Vec3
}

// Sample returns the nearest texel for uv, wrapping by integer modulo.
// An empty (zero-size) texture returns (1,1,1), matching an "absent"
// texture acting as a neutral multiplier.
func (t *Texture) Sample(uv core.Vec2) core.Vec3 {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return core.NewVec3(1, 1, 1)
	}
	u := wrapIndex(int(uv.X()*float32(t.Width)), t.Width)
	v := wrapIndex(int(uv.Y()*float32(t.Height)), t.Height)
	return t.Pixels[v*t.Width+u]
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
