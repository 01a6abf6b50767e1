package common

import (
	"math"
	"math/bits"
)

const (
	pcgMultiplier = 0x5851F42D4C957F2D
	pcgIncrement  = 0x14057B7EF767814F
	pcgDefault    = 0x853c49e6748fea9b
)

// SeedToState mixes the low 32 bits of seed into a 64 bit PCG state.
func SeedToState(seed uint64) uint64 {
	s := seed & 0xFFFFFFFF
	state := (s ^ 0x9E3779B97F4A7C15) * 0xBF58476D1CE4E5B9
	state = (state ^ (state >> 30)) * 0x94D049BB133111EB
	state = (state ^ (state >> 27)) * 0x9E3779B97F4A7C15
	return state ^ (state >> 31)
}

func pcgOutput(state uint64) uint32 {
	rot := int(state >> 59)
	x := state ^ (state >> 18)
	return bits.RotateLeft32(uint32(x>>27), -rot)
}

func toUnit(out uint32) float32 {
	r := float32(float64(out) / 4294967296.0)
	if r >= 1 {
		r = math.Nextafter32(1, 0)
	}
	return r
}

// SeedToRandom draws a float in [0,1) from *seed and replaces *seed with the
// next seed value. The caller owns the seed; nothing global is touched.
func SeedToRandom(seed *uint64) float32 {
	state := SeedToState(*seed)
	out := pcgOutput(state)
	*seed = (state*pcgMultiplier + pcgIncrement) >> 32
	return toUnit(out)
}

// AdvanceSeed returns the seed that follows seed.
func AdvanceSeed(seed uint64) uint64 {
	return (SeedToState(seed)*pcgMultiplier + pcgIncrement) >> 32
}

// Pcg32 is a small stateful generator used where an explicit seed stream is
// not threaded through, e.g. spawning.
type Pcg32 struct {
	state uint64
}

func NewPcg32(seed uint64) *Pcg32 {
	if seed == 0 {
		return &Pcg32{state: pcgDefault}
	}
	return &Pcg32{state: SeedToState(seed)}
}

func (p *Pcg32) Uint32() uint32 {
	out := pcgOutput(p.state)
	p.state = p.state*pcgMultiplier + pcgIncrement
	return out
}

func (p *Pcg32) Float32() float32 {
	return toUnit(p.Uint32())
}

// Intn returns a value in [0, n).
func (p *Pcg32) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return int(p.Uint32() % uint32(n))
}

func (p *Pcg32) Range(lo, hi float32) float32 {
	return lo + (hi-lo)*p.Float32()
}
