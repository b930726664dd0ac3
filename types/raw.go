package types

import (
	"fmt"

	"github.com/fieldgraph/varspec/bitstream"
)

// Raw is an opaque byte sequence, parameterized by a byte-count bound.
type Raw struct {
	MinBytes, MaxBytes int
	Unbounded          bool
	Fixed              []byte
}

// NewRaw returns a Raw bounded to [minBytes, maxBytes] bytes.
func NewRaw(minBytes, maxBytes int) Raw {
	return Raw{MinBytes: minBytes, MaxBytes: maxBytes}
}

// WithFixed returns a copy of t pinned to value v.
func (t Raw) WithFixed(v []byte) Raw {
	t.Fixed = append([]byte(nil), v...)
	return t
}

func (t Raw) String() string {
	if t.Unbounded {
		return "raw(unbounded)"
	}
	return fmt.Sprintf("raw(%d,%d)", t.MinBytes, t.MaxBytes)
}

// Size implements [Type].
func (t Raw) Size() Bounds {
	if t.Fixed != nil {
		n := len(t.Fixed) * 8
		return Bounds{Min: n, Max: n}
	}
	if t.Unbounded || t.MaxBytes == 0 {
		return Bounds{Min: t.MinBytes * 8, Unbounded: true}
	}
	return Bounds{Min: t.MinBytes * 8, Max: t.MaxBytes * 8}
}

// CanParse implements [Type].
func (t Raw) CanParse(bits bitstream.Slice) bool {
	if bits.Len()%8 != 0 {
		return false
	}
	if t.Fixed != nil {
		return bits.Equal(bitstream.FromBytes(t.Fixed, bitstream.BigEndian))
	}
	nbytes := bits.Len() / 8
	if nbytes < t.MinBytes {
		return false
	}
	if !t.Unbounded && t.MaxBytes != 0 && nbytes > t.MaxBytes {
		return false
	}
	return true
}

// Generate implements [Type].
func (t Raw) Generate(rnd RandSource) bitstream.Slice {
	if t.Fixed != nil {
		s, _ := t.Encode(t.Fixed)
		return s
	}
	maxBytes := t.MaxBytes
	if t.Unbounded || maxBytes == 0 {
		maxBytes = t.MinBytes + 32
	}
	span := maxBytes - t.MinBytes
	n := t.MinBytes
	if span > 0 {
		n += int(randUintn(rnd, uint64(span+1)))
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(randUintn(rnd, 256))
	}
	s, _ := t.Encode(buf)
	return s
}

// Encode implements [Type]. raw must be a []byte.
func (t Raw) Encode(raw any) (bitstream.Slice, error) {
	b, ok := raw.([]byte)
	if !ok {
		return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("cannot encode %T as Raw", raw)}
	}
	if t.Fixed == nil {
		if len(b) < t.MinBytes || (!t.Unbounded && t.MaxBytes != 0 && len(b) > t.MaxBytes) {
			return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("%d bytes out of bounds", len(b))}
		}
	}
	return bitstream.FromBytes(b, bitstream.BigEndian), nil
}

// Decode implements [Type].
func (t Raw) Decode(bits bitstream.Slice) (any, error) {
	if bits.Len()%8 != 0 {
		return nil, &EncodingError{Type: t.String(), Reason: "not byte-aligned"}
	}
	return bits.Bytes(), nil
}
