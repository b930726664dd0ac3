// Package types is the primitive data-type catalog: Integer, String,
// Raw, HexaString, BitArray, IPv4 and Timestamp. Every type implements
// the same small capability set (size bounds, can-parse, generate,
// encode, decode) so that the variable tree and parser/specializer
// never need to know which concrete type they are holding.
package types

import (
	"errors"
	"fmt"

	"github.com/fieldgraph/varspec/bitstream"
)

// ErrEncoding is the sentinel a [Type] wraps when Encode refuses a
// value (overflow, malformed input, wrong length).
var ErrEncoding = errors.New("types: encoding error")

// EncodingError reports why Encode or Decode refused a value.
type EncodingError struct {
	Type   string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("types: %s: %s", e.Type, e.Reason)
}

func (e *EncodingError) Unwrap() error { return ErrEncoding }

// Bounds describes a type's bit-length domain: at least Min bits, at
// most Max bits, unless Unbounded is true, in which case there is no
// upper bound (only String and some Raw/HexaString configurations are
// unbounded).
type Bounds struct {
	Min, Max  int
	Unbounded bool
}

// Fixed reports whether the bounds describe exactly one length.
func (b Bounds) Fixed() bool { return !b.Unbounded && b.Min == b.Max }

// RandSource is the minimal random-number capability [Type.Generate]
// needs. Every generator in fuzz/rng satisfies this structurally.
type RandSource interface {
	Uint64() uint64
}

// Type is the capability set every catalog primitive implements.
type Type interface {
	// Size returns this type's static bit-length bounds.
	Size() Bounds

	// CanParse is a total function: it reports whether bits could be a
	// valid encoding of this type, checking length bounds and, if a
	// fixed value is configured, equality against it.
	CanParse(bits bitstream.Slice) bool

	// Generate produces a value: the fixed value if one is configured,
	// otherwise a uniformly sampled one using rnd.
	Generate(rnd RandSource) bitstream.Slice

	// Encode converts a raw value (the type's natural Go representation,
	// documented per concrete type) into bits, or returns an
	// *EncodingError.
	Encode(raw any) (bitstream.Slice, error)

	// Decode converts bits into the type's natural Go representation, or
	// returns an *EncodingError.
	Decode(bits bitstream.Slice) (any, error)

	// String names the type for debug output and schema round-tripping.
	String() string
}

// Interval is an inclusive [Min, Max] bound used by Integer and by the
// fuzz package's interval-based mutators.
type Interval struct {
	Min, Max int64
}

// Contains reports whether v falls within the interval.
func (iv Interval) Contains(v int64) bool { return v >= iv.Min && v <= iv.Max }

// randUintn returns a uniformly distributed value in [0, n) using rnd,
// by rejection sampling against the largest multiple of n that fits in
// 64 bits. n must be > 0.
func randUintn(rnd RandSource, n uint64) uint64 {
	if n == 0 {
		return 0
	}
	if n&(n-1) == 0 {
		// Power of two: no bias to reject.
		return rnd.Uint64() & (n - 1)
	}
	limit := (1<<64 - 1) - (1<<64-1)%n
	for {
		v := rnd.Uint64()
		if v < limit || limit == 0 {
			return v % n
		}
	}
}
