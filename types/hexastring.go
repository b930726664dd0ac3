package types

import (
	"encoding/hex"
	"fmt"

	"github.com/fieldgraph/varspec/bitstream"
)

// HexaString is a byte sequence whose natural Go representation is a
// lowercase hex string rather than raw bytes, for protocols that carry
// identifiers (session keys, MACs) that are more legible as hex.
type HexaString struct {
	MinBytes, MaxBytes int
	Unbounded          bool
	Fixed              *string // hex-encoded
}

// NewHexaString returns a HexaString bounded to [minBytes, maxBytes] bytes.
func NewHexaString(minBytes, maxBytes int) HexaString {
	return HexaString{MinBytes: minBytes, MaxBytes: maxBytes}
}

// WithFixed returns a copy of t pinned to the hex string v.
func (t HexaString) WithFixed(v string) HexaString {
	t.Fixed = &v
	return t
}

func (t HexaString) String() string {
	if t.Unbounded {
		return "hexastring(unbounded)"
	}
	return fmt.Sprintf("hexastring(%d,%d)", t.MinBytes, t.MaxBytes)
}

// Size implements [Type].
func (t HexaString) Size() Bounds {
	if t.Fixed != nil {
		n := len(*t.Fixed) / 2 * 8
		return Bounds{Min: n, Max: n}
	}
	if t.Unbounded || t.MaxBytes == 0 {
		return Bounds{Min: t.MinBytes * 8, Unbounded: true}
	}
	return Bounds{Min: t.MinBytes * 8, Max: t.MaxBytes * 8}
}

// CanParse implements [Type].
func (t HexaString) CanParse(bits bitstream.Slice) bool {
	if bits.Len()%8 != 0 {
		return false
	}
	b := bits.Bytes()
	if t.Fixed != nil {
		want, err := hex.DecodeString(*t.Fixed)
		return err == nil && bits.Equal(bitstream.FromBytes(want, bitstream.BigEndian))
	}
	n := len(b)
	if n < t.MinBytes {
		return false
	}
	if !t.Unbounded && t.MaxBytes != 0 && n > t.MaxBytes {
		return false
	}
	return true
}

// Generate implements [Type].
func (t HexaString) Generate(rnd RandSource) bitstream.Slice {
	if t.Fixed != nil {
		s, _ := t.Encode(*t.Fixed)
		return s
	}
	maxBytes := t.MaxBytes
	if t.Unbounded || maxBytes == 0 {
		maxBytes = t.MinBytes + 16
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
	s, _ := t.Encode(hex.EncodeToString(buf))
	return s
}

// Encode implements [Type]. raw must be a hex-encoded string.
func (t HexaString) Encode(raw any) (bitstream.Slice, error) {
	str, ok := raw.(string)
	if !ok {
		return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("cannot encode %T as HexaString", raw)}
	}
	b, err := hex.DecodeString(str)
	if err != nil {
		return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: "not valid hex: " + err.Error()}
	}
	if t.Fixed == nil {
		if len(b) < t.MinBytes || (!t.Unbounded && t.MaxBytes != 0 && len(b) > t.MaxBytes) {
			return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("%d bytes out of bounds", len(b))}
		}
	}
	return bitstream.FromBytes(b, bitstream.BigEndian), nil
}

// Decode implements [Type].
func (t HexaString) Decode(bits bitstream.Slice) (any, error) {
	if bits.Len()%8 != 0 {
		return nil, &EncodingError{Type: t.String(), Reason: "not byte-aligned"}
	}
	return hex.EncodeToString(bits.Bytes()), nil
}
