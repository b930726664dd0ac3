package types

import (
	"fmt"
	"time"

	"github.com/fieldgraph/varspec/bitstream"
)

// Timestamp is a 32- or 64-bit unix-time integer, encoded under a
// configurable endianness. Its natural Go representation is time.Time,
// truncated to second precision.
type Timestamp struct {
	Width  int // 32 or 64
	Endian bitstream.Endian
	Fixed  *time.Time
}

// NewTimestamp32 returns a 32-bit big-endian unix-time Timestamp.
func NewTimestamp32() Timestamp {
	return Timestamp{Width: 32, Endian: bitstream.BigEndian}
}

// NewTimestamp64 returns a 64-bit big-endian unix-time Timestamp.
func NewTimestamp64() Timestamp {
	return Timestamp{Width: 64, Endian: bitstream.BigEndian}
}

// WithEndian returns a copy of t under the given endianness.
func (t Timestamp) WithEndian(e bitstream.Endian) Timestamp {
	t.Endian = e
	return t
}

// WithFixed returns a copy of t pinned to value v.
func (t Timestamp) WithFixed(v time.Time) Timestamp {
	t.Fixed = &v
	return t
}

func (t Timestamp) String() string { return fmt.Sprintf("timestamp%d/%s", t.Width, t.Endian) }

// Size implements [Type].
func (t Timestamp) Size() Bounds { return Bounds{Min: t.Width, Max: t.Width} }

func (t Timestamp) integer() Integer {
	i := Integer{Width: t.Width, Endian: t.Endian}
	if t.Fixed != nil {
		v := t.Fixed.Unix()
		i.Fixed = &v
	}
	return i
}

// CanParse implements [Type].
func (t Timestamp) CanParse(bits bitstream.Slice) bool {
	return t.integer().CanParse(bits)
}

// Generate implements [Type].
func (t Timestamp) Generate(rnd RandSource) bitstream.Slice {
	return t.integer().Generate(rnd)
}

// Encode implements [Type]. raw must be a time.Time.
func (t Timestamp) Encode(raw any) (bitstream.Slice, error) {
	ts, ok := raw.(time.Time)
	if !ok {
		return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("cannot encode %T as Timestamp", raw)}
	}
	return t.integer().Encode(ts.Unix())
}

// Decode implements [Type].
func (t Timestamp) Decode(bits bitstream.Slice) (any, error) {
	v, err := t.integer().Decode(bits)
	if err != nil {
		return nil, err
	}
	return time.Unix(v.(int64), 0).UTC(), nil
}
