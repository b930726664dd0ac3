package rng

import "math/bits"

// pcgMultiplier is the standard 64-bit LCG multiplier used by both
// PCG variants below.
const pcgMultiplier = 6364136223846793005

// PCG32 is a PCG-XSH-RR generator with 64 bits of state producing
// 32-bit outputs; Uint64 packs two consecutive outputs into one value.
type PCG32 struct {
	state, inc uint64
}

// NewPCG32 seeds a PCG32 generator.
func NewPCG32(seed uint64) *PCG32 {
	g := &PCG32{}
	g.Seed(seed)
	return g
}

// Seed re-initializes the generator's state and stream increment.
func (g *PCG32) Seed(seed uint64) {
	g.inc = (seed << 1) | 1
	g.state = 0
	g.step()
	g.state += seed
	g.step()
}

func (g *PCG32) step() {
	g.state = g.state*pcgMultiplier + g.inc
}

func (g *PCG32) next32() uint32 {
	old := g.state
	g.step()
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return bits.RotateLeft32(xorshifted, -int(rot))
}

// Uint64 packs two successive 32-bit outputs into a 64-bit value.
func (g *PCG32) Uint64() uint64 {
	hi := uint64(g.next32())
	lo := uint64(g.next32())
	return hi<<32 | lo
}

// PCG64 is a PCG generator with 128 bits of state (two interleaved
// 64-bit PCGs) producing 64-bit output via XSL-RR.
type PCG64 struct {
	stateHi, stateLo uint64
	incHi, incLo     uint64
}

// NewPCG64 seeds a PCG64 generator.
func NewPCG64(seed uint64) *PCG64 {
	g := &PCG64{}
	g.Seed(seed)
	return g
}

// Seed re-initializes both halves of the generator's state from seed,
// using splitmix64 to derive independent-looking increments.
func (g *PCG64) Seed(seed uint64) {
	sm := splitmix64{state: seed}
	g.incHi = (sm.next() << 1) | 1
	g.incLo = (sm.next() << 1) | 1
	g.stateHi, g.stateLo = 0, 0
	g.step()
	g.stateHi += sm.next()
	g.stateLo += sm.next()
	g.step()
}

func (g *PCG64) step() {
	// Two independent 64-bit LCGs advanced in lockstep.
	g.stateHi = g.stateHi*pcgMultiplier + g.incHi
	g.stateLo = g.stateLo*pcgMultiplier + g.incLo
}

// Uint64 returns the next pseudo-random value via xorshift-low,
// random-rotation output mixing of the two LCG halves.
func (g *PCG64) Uint64() uint64 {
	oldHi, oldLo := g.stateHi, g.stateLo
	g.step()
	mixed := oldHi ^ oldLo
	rot := int(oldHi >> 58)
	return bits.RotateLeft64(mixed, -rot)
}
