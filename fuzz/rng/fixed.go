package rng

// FixedSequence replays a caller-supplied list of values exactly,
// then repeats the last value forever, for reproducible regression
// fixtures that must emit a known, literal byte pattern rather than
// anything sampled. (FIXED mode does not use it: it encodes the
// mutator's FixedValue.)
type FixedSequence struct {
	values []uint64
	pos    int
}

// NewFixedSequence returns a generator that replays values in order.
// An empty sequence always returns 0.
func NewFixedSequence(values []uint64) *FixedSequence {
	return &FixedSequence{values: values}
}

// Seed selects the starting offset into the sequence.
func (g *FixedSequence) Seed(seed uint64) {
	if len(g.values) == 0 {
		g.pos = 0
		return
	}
	g.pos = int(seed % uint64(len(g.values)))
}

// Uint64 returns the next value in the sequence, holding at the last
// entry once the sequence is exhausted rather than wrapping.
func (g *FixedSequence) Uint64() uint64 {
	if len(g.values) == 0 {
		return 0
	}
	if g.pos >= len(g.values) {
		g.pos = len(g.values) - 1
	}
	v := g.values[g.pos]
	if g.pos < len(g.values)-1 {
		g.pos++
	}
	return v
}
