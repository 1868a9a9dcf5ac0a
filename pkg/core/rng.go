package core

// RNG is a PCG32 generator: a single 64-bit state advanced by a linear
// congruential step, output-permuted by an xorshift + random rotation.
// Each path-tracer tile task and each MLT chain owns one stream; streams
// are never shared across goroutines.
type RNG struct {
	state uint64
	inc   uint64
}

const pcg32Multiplier uint64 = 6364136223846793005

// NewRNG seeds a stream. seed is the generator's starting state, seq
// selects one of 2^63 independent output sequences (callers pass a tile
// task id or chain index so sibling streams never correlate).
func NewRNG(seed, seq uint64) *RNG {
	r := &RNG{}
	r.inc = (seq << 1) | 1
	r.step()
	r.state += seed
	r.step()
	return r
}

func (r *RNG) step() {
	r.state = r.state*pcg32Multiplier + r.inc
}

// Uint32 returns the next 32-bit output in the stream.
func (r *RNG) Uint32() uint32 {
	old := r.state
	r.step()
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((32 - rot) & 31))
}

// Float32 returns a uniform value in [0, 1).
func (r *RNG) Float32() float32 {
	return float32(r.Uint32()) / float32(1<<32)
}

// Float64 returns a uniform value in [0, 1), combining two draws for
// extra precision where a caller needs it (e.g. inverse-CDF sampling).
func (r *RNG) Float64() float64 {
	return float64(r.Uint32())/float64(1<<32) + float64(r.Uint32())/float64(1<<64)
}

// Bounded returns a uniform integer in [0, bound) without modulo bias.
func (r *RNG) Bounded(bound uint32) uint32 {
	if bound == 0 {
		return 0
	}
	threshold := -bound % bound
	for {
		v := r.Uint32()
		if v >= threshold {
			return v % bound
		}
	}
}

// Vec2 returns two independent uniform [0,1) samples.
func (r *RNG) Vec2() Vec2 {
	return NewVec2(r.Float32(), r.Float32())
}
