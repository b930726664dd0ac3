package types

import (
	"fmt"

	"github.com/fieldgraph/varspec/bitstream"
)

// BitArray is a fixed-width sequence of individual bits, optionally
// annotated with a name per bit (flag registers, option masks). Its
// natural Go representation is the [bitstream.Slice] itself: callers
// that need named-flag access go through Labels and [BitArray.Bit].
type BitArray struct {
	Width  int
	Labels []string // optional, parallel to bit index; len(Labels) == Width or nil
	Fixed  *bitstream.Slice
}

// NewBitArray returns an unlabeled BitArray of the given bit width.
func NewBitArray(width int) BitArray {
	return BitArray{Width: width}
}

// WithLabels returns a copy of t with per-bit names attached. len(labels)
// must equal t.Width.
func (t BitArray) WithLabels(labels []string) BitArray {
	t.Labels = append([]string(nil), labels...)
	return t
}

// WithFixed returns a copy of t pinned to value v.
func (t BitArray) WithFixed(v bitstream.Slice) BitArray {
	t.Fixed = &v
	return t
}

func (t BitArray) String() string { return fmt.Sprintf("bitarray(%d)", t.Width) }

// Bit returns the label for bit i, or its index as a string if unlabeled.
func (t BitArray) Bit(i int) string {
	if i >= 0 && i < len(t.Labels) {
		return t.Labels[i]
	}
	return fmt.Sprintf("bit%d", i)
}

// Size implements [Type].
func (t BitArray) Size() Bounds { return Bounds{Min: t.Width, Max: t.Width} }

// CanParse implements [Type].
func (t BitArray) CanParse(bits bitstream.Slice) bool {
	if bits.Len() != t.Width {
		return false
	}
	if t.Fixed != nil {
		return bits.Equal(*t.Fixed)
	}
	return true
}

// Generate implements [Type].
func (t BitArray) Generate(rnd RandSource) bitstream.Slice {
	if t.Fixed != nil {
		return *t.Fixed
	}
	buf := make([]byte, t.Width)
	for i := range buf {
		buf[i] = byte(randUintn(rnd, 2))
	}
	return bitstream.FromBits(buf, bitstream.BigEndian)
}

// Encode implements [Type]. raw must be a [bitstream.Slice] of length Width.
func (t BitArray) Encode(raw any) (bitstream.Slice, error) {
	s, ok := raw.(bitstream.Slice)
	if !ok {
		return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("cannot encode %T as BitArray", raw)}
	}
	if s.Len() != t.Width {
		return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("expected %d bits, got %d", t.Width, s.Len())}
	}
	return s, nil
}

// Decode implements [Type].
func (t BitArray) Decode(bits bitstream.Slice) (any, error) {
	if bits.Len() != t.Width {
		return nil, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("expected %d bits, got %d", t.Width, bits.Len())}
	}
	return bits, nil
}
