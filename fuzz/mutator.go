package fuzz

import (
	"errors"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/fuzz/rng"
	"github.com/fieldgraph/varspec/types"
)

// MutatorKind names the mutation strategy a MutatorInstance runs.
type MutatorKind uint8

const (
	// MutatorGenerate is PseudoRandomInteger for Integer-shaped
	// leaves: a seeded PRNG over a bounded interval.
	MutatorGenerate MutatorKind = iota
	// MutatorDeterministicInteger names the boundary-value strategy.
	// NextBits handles it like MutatorGenerate; boundary values come
	// from the generator chosen with WithGenerator (rng.Deterministic).
	MutatorDeterministicInteger
	// MutatorString picks from the bundled naughty-string table plus
	// any WithNaughtyStrings additions; it does no length fuzzing.
	MutatorString
	// MutatorComposite drives Alt/Agg/Repeat decisions.
	MutatorComposite
)

// ErrMaxFuzzing is returned once a mutator's local counter or the
// run's global counter is exhausted. The specializer treats this as
// end-of-stream, not a fatal error.
var ErrMaxFuzzing = errors.New("fuzz: counter exhausted")

// MutatorInstance is a configured mutator bound to one Key. It is
// immutable configuration; the moving parts (counters) live on
// Context, since spec.md explicitly calls for the mutation counter to
// be threaded state, never a mutator-owned or process-wide global.
type MutatorInstance struct {
	Kind MutatorKind
	Mode Mode

	generator rng.Source

	// Integer/String/Raw/HexaString/BitArray options
	Interval      *types.Interval
	LengthBitSize int // 0 means "use the type's own bounds"
	FixedValue    any

	// String-specific
	EndChar        string
	NaughtyStrings []string

	// Alt/Agg/Repeat/Opt options
	MutateChild bool
	MaxDepth    int
	RepeatRange *types.Interval

	// MappingTypesMutators overrides which mutator Fuzz.Propagate
	// installs for a given descendant, keyed by its type name
	// (Type.String() for a Data leaf, Kind.String() for a composite
	// descendant). Descendants with no entry here fall back to a
	// plain GENERATE default. Only consulted when MutateChild is set.
	MappingTypesMutators map[string]*MutatorInstance

	localCounterMax int64 // 0 or less means unbounded
}

// MutatorOption configures a MutatorInstance at Fuzz.Set time.
type MutatorOption func(*MutatorInstance)

// WithGenerator selects the named PRNG algorithm and seed.
func WithGenerator(name rng.Name, seed uint64) MutatorOption {
	return func(mi *MutatorInstance) {
		src, err := rng.New(name, seed)
		if err != nil {
			src = rng.NewXorshift128Plus(seed)
		}
		mi.generator = src
	}
}

// WithInterval records an Integer/Repeat sampling range in
// mi.Interval. NextBits and NextRepeatCount do not read it: values are
// drawn from the type's own bounds and the repeat's [lo, hi].
func WithInterval(min, max int64) MutatorOption {
	return func(mi *MutatorInstance) { mi.Interval = &types.Interval{Min: min, Max: max} }
}

// WithLengthBitSize records a length-bit-size (1,4,8,16,24,32,64) in
// mi.LengthBitSize. NextBits does not read it; lengths come from the
// type's own bounds.
func WithLengthBitSize(bits int) MutatorOption {
	return func(mi *MutatorInstance) { mi.LengthBitSize = bits }
}

// WithFixed pins a FIXED-mode mutator to a constant natural value.
func WithFixed(v any) MutatorOption {
	return func(mi *MutatorInstance) { mi.FixedValue = v }
}

// WithEndChar records a String terminator candidate in mi.EndChar.
// NextBits does not read it; the type's own EOS applies.
func WithEndChar(s string) MutatorOption {
	return func(mi *MutatorInstance) { mi.EndChar = s }
}

// WithNaughtyStrings adds caller-supplied strings to the String
// mutator's corpus, deduplicated against the bundled table by
// fuzzysearch's Levenshtein-based near-match test.
func WithNaughtyStrings(extra ...string) MutatorOption {
	return func(mi *MutatorInstance) {
		mi.NaughtyStrings = append(mi.NaughtyStrings, dedupeAgainstBundled(extra)...)
	}
}

// WithMutateChild marks a composite mutator to recursively install
// default mutators on every descendant not already overridden. The
// specializer triggers the actual propagation (Fuzz.Propagate) each
// time it resolves this mutator against its owning node.
func WithMutateChild(v bool) MutatorOption {
	return func(mi *MutatorInstance) { mi.MutateChild = v }
}

// WithMappingTypesMutators sets the per-type override table Propagate
// consults instead of installing its plain GENERATE default.
func WithMappingTypesMutators(m map[string]*MutatorInstance) MutatorOption {
	return func(mi *MutatorInstance) { mi.MappingTypesMutators = m }
}

// WithMaxDepth bounds recursive Alt mutation (default 20 per spec.md §4.8).
func WithMaxDepth(depth int) MutatorOption {
	return func(mi *MutatorInstance) { mi.MaxDepth = depth }
}

// WithCounterMaxLocal bounds this single mutator's own production
// count, independent of the run's global ceiling. A max of 0 or less
// leaves it unbounded.
func WithCounterMaxLocal(max int64) MutatorOption {
	return func(mi *MutatorInstance) { mi.localCounterMax = max }
}

// NextBits produces the next mutated bit-slice for a Data leaf of
// type t, consulting ctx's counters. ModeNone returns fallback's (the
// type's own Generate) value unchanged; ModeMutate returns it with one
// randomly chosen bit flipped.
func (mi *MutatorInstance) NextBits(ctx *Context, t types.Type, fallback func(types.RandSource) bitstream.Slice) (bitstream.Slice, error) {
	if err := ctx.consumeLocal(mi); err != nil {
		return bitstream.Slice{}, err
	}
	switch mi.Mode {
	case ModeFixed:
		bits, err := t.Encode(mi.FixedValue)
		if err != nil {
			return bitstream.Slice{}, err
		}
		return bits, nil
	case ModeNone:
		return fallback(mi.generator), nil
	case ModeMutate:
		bits := fallback(mi.generator)
		if bits.Len() == 0 {
			return bits, nil
		}
		i := int(mi.generator.Uint64() % uint64(bits.Len()))
		flipped := bitstream.FromBits([]byte{1 - bits.Bit(i)}, bits.Endian())
		return bitstream.Concat(bits.Slice(0, i), flipped, bits.Slice(i+1, bits.Len())), nil
	default: // ModeGenerate
		if mi.Kind == MutatorString {
			corpus := append(types.NaughtyStrings(), mi.NaughtyStrings...)
			pick := corpus[mi.generator.Uint64()%uint64(len(corpus))]
			bits, err := t.Encode(pick)
			if err == nil {
				return bits, nil
			}
		}
		return fallback(mi.generator), nil
	}
}

// NextAltIndex picks a child index for an Alt node among n children.
func (mi *MutatorInstance) NextAltIndex(ctx *Context, n int) (int, error) {
	if err := ctx.consumeLocal(mi); err != nil {
		return 0, err
	}
	return int(mi.generator.Uint64() % uint64(n)), nil
}

// NextRepeatCount picks a repeat count in [lo, hi].
func (mi *MutatorInstance) NextRepeatCount(ctx *Context, lo, hi int) (int, error) {
	if err := ctx.consumeLocal(mi); err != nil {
		return 0, err
	}
	if hi <= lo {
		return lo, nil
	}
	span := uint64(hi - lo + 1)
	return lo + int(mi.generator.Uint64()%span), nil
}
