package rng

// Deterministic is the DeterministicInteger mutator's engine: rather
// than sampling, it enumerates a fixed cycle of boundary-interesting
// 64-bit values (0, 1, max uint64, values near the signed/unsigned
// width boundaries) to bias fuzzing toward edge cases. It supplies
// only the raw candidate stream; a type's Generate reduces each value
// into its own range.
type Deterministic struct {
	values []uint64
	pos    int
}

// boundaryValues is the cycle Deterministic enumerates: 0, 1, and the
// max/min-adjacent values for every integer width the type catalog
// supports, covering 8/16/32/64-bit signed and unsigned boundaries.
var boundaryValues = []uint64{
	0, 1,
	0x7F, 0x80, 0xFE, 0xFF,
	0x7FFF, 0x8000, 0xFFFE, 0xFFFF,
	0x7FFFFFFF, 0x80000000, 0xFFFFFFFE, 0xFFFFFFFF,
	0x7FFFFFFFFFFFFFFF, 0x8000000000000000, 0xFFFFFFFFFFFFFFFE, 0xFFFFFFFFFFFFFFFF,
}

// NewDeterministic returns a Deterministic generator cycling through
// the bundled boundary-value table.
func NewDeterministic() *Deterministic {
	return &Deterministic{values: boundaryValues}
}

// Seed selects the starting offset into the boundary-value cycle, so
// that field-level fuzzing can be de-correlated without losing
// determinism (the same seed always starts at the same offset).
func (g *Deterministic) Seed(seed uint64) {
	g.pos = int(seed % uint64(len(g.values)))
}

// Uint64 returns the next boundary value, wrapping around the cycle.
func (g *Deterministic) Uint64() uint64 {
	v := g.values[g.pos]
	g.pos = (g.pos + 1) % len(g.values)
	return v
}
