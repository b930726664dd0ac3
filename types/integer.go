package types

import (
	"fmt"
	"math"

	"github.com/fieldgraph/varspec/bitstream"
)

// Integer is a fixed-width signed or unsigned integer, encoded under a
// configurable endianness. Width is one of 8, 16, 32, 64 bits.
type Integer struct {
	Width    int
	Signed   bool
	Endian   bitstream.Endian
	Interval *Interval // nil means the full range of Width/Signed (unsigned 64-bit: [0, MaxInt64])
	Fixed    *int64    // when set, CanParse/Generate are pinned to this value
}

// Uint8 returns an unsigned 8-bit big-endian Integer.
func Uint8() Integer { return Integer{Width: 8, Endian: bitstream.BigEndian} }

// Uint16BE returns an unsigned 16-bit big-endian Integer.
func Uint16BE() Integer { return Integer{Width: 16, Endian: bitstream.BigEndian} }

// Uint16LE returns an unsigned 16-bit little-endian Integer.
func Uint16LE() Integer { return Integer{Width: 16, Endian: bitstream.LittleEndian} }

// Uint32BE returns an unsigned 32-bit big-endian Integer.
func Uint32BE() Integer { return Integer{Width: 32, Endian: bitstream.BigEndian} }

// Uint64BE returns an unsigned 64-bit big-endian Integer.
func Uint64BE() Integer { return Integer{Width: 64, Endian: bitstream.BigEndian} }

// WithFixed returns a copy of t pinned to value v.
func (t Integer) WithFixed(v int64) Integer {
	t.Fixed = &v
	return t
}

// WithInterval returns a copy of t restricted to [min, max].
func (t Integer) WithInterval(min, max int64) Integer {
	t.Interval = &Interval{Min: min, Max: max}
	return t
}

func (t Integer) String() string {
	sign := "u"
	if t.Signed {
		sign = "i"
	}
	return fmt.Sprintf("%sint%d/%s", sign, t.Width, t.Endian)
}

// Size implements [Type].
func (t Integer) Size() Bounds { return Bounds{Min: t.Width, Max: t.Width} }

func (t Integer) bounds() (min, max int64) {
	if t.Interval != nil {
		return t.Interval.Min, t.Interval.Max
	}
	if !t.Signed {
		if t.Width >= 64 {
			return 0, math.MaxInt64
		}
		return 0, int64(uint64(1)<<uint(t.Width) - 1)
	}
	half := int64(1) << uint(t.Width-1)
	return -half, half - 1
}

// CanParse implements [Type].
func (t Integer) CanParse(bits bitstream.Slice) bool {
	if bits.Len() != t.Width {
		return false
	}
	if t.Fixed != nil {
		v, err := t.decodeInt(bits)
		return err == nil && v == *t.Fixed
	}
	v, err := t.decodeInt(bits)
	if err != nil {
		return false
	}
	lo, hi := t.bounds()
	return v >= lo && v <= hi
}

// Generate implements [Type].
func (t Integer) Generate(rnd RandSource) bitstream.Slice {
	if t.Fixed != nil {
		s, _ := t.Encode(*t.Fixed)
		return s
	}
	lo, hi := t.bounds()
	span := uint64(hi - lo)
	v := lo
	if span > 0 {
		v = lo + int64(randUintn(rnd, span+1))
	}
	s, _ := t.Encode(v)
	return s
}

// Encode implements [Type]. raw must be an int64 or a type convertible
// to int64 (int, int32, uint, uint32, uint64).
func (t Integer) Encode(raw any) (bitstream.Slice, error) {
	v, err := toInt64(raw)
	if err != nil {
		return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: err.Error()}
	}
	lo, hi := t.bounds()
	if v < lo || v > hi {
		return bitstream.Slice{}, &EncodingError{
			Type:   t.String(),
			Reason: fmt.Sprintf("value %d out of range [%d, %d]", v, lo, hi),
		}
	}
	return bitstream.FromUint64(uint64(v)&widthMask(t.Width), t.Width, t.Endian), nil
}

// Decode implements [Type].
func (t Integer) Decode(bits bitstream.Slice) (any, error) {
	return t.decodeInt(bits)
}

func (t Integer) decodeInt(bits bitstream.Slice) (int64, error) {
	if bits.Len() != t.Width {
		return 0, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("expected %d bits, got %d", t.Width, bits.Len())}
	}
	u := bits.WithEndian(t.Endian).Uint64()
	if !t.Signed {
		return int64(u), nil
	}
	signBit := uint64(1) << uint(t.Width-1)
	if u&signBit != 0 {
		return int64(u) - int64(uint64(1)<<uint(t.Width)), nil
	}
	return int64(u), nil
}

func widthMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(width) - 1
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("cannot encode %T as Integer", raw)
	}
}
