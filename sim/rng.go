package sim

import (
	"math/rand/v2"
	"time"
)

// The engine draws one 64-bit seed S from the world-scope PCG at the start of
// every tick. The ant phase derives a PCG32 substream per colony from
// (S, colony id), so the tick's result does not depend on which worker
// goroutine ends up processing which colony. The decay phase never touches
// RNG at all: it indexes the preloaded random buffer by a cell-derived
// stride.

// ResolveSeed returns the configured seed, or a nanosecond wall clock reading
// when the configured value is zero.
func ResolveSeed(configured int64) uint64 {
	if configured == 0 {
		return uint64(time.Now().UnixNano())
	}
	return uint64(configured)
}

// NewWorldRNG constructs the world-scope PCG stream.
func NewWorldRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

const pcgMultiplier = 6364136223846793005

// PCG32 is a 64-bit-state, 32-bit-output PCG-XSH-RR generator with explicit
// stream selection. One instance per colony per tick keeps the ant phase
// deterministic under any parallelism level.
type PCG32 struct {
	state uint64
	inc   uint64
}

// NewPCG32 seeds a generator on the given stream.
func NewPCG32(seed, stream uint64) *PCG32 {
	p := &PCG32{inc: (stream << 1) | 1}
	p.Uint32()
	p.state += seed
	p.Uint32()
	return p
}

func (p *PCG32) Uint32() uint32 {
	old := p.state
	p.state = old*pcgMultiplier + p.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Float64 returns a uniform double in [0, 1).
func (p *PCG32) Float64() float64 {
	return float64(p.Uint32()) / (1 << 32)
}

// IntN returns a uniform integer in [0, n).
func (p *PCG32) IntN(n int) int {
	return int(p.Uint32() % uint32(n))
}
