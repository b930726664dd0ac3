package types

import (
	"fmt"
	"net"

	"github.com/fieldgraph/varspec/bitstream"
)

// IPv4 is a fixed 32-bit address. Its natural Go representation is
// net.IP in its 4-byte form.
type IPv4 struct {
	Fixed *[4]byte
}

// NewIPv4 returns an unconstrained 32-bit IPv4 address type.
func NewIPv4() IPv4 { return IPv4{} }

// WithFixed returns a copy of t pinned to the given address.
func (t IPv4) WithFixed(v net.IP) IPv4 {
	v4 := v.To4()
	var a [4]byte
	copy(a[:], v4)
	t.Fixed = &a
	return t
}

func (t IPv4) String() string { return "ipv4" }

// Size implements [Type].
func (t IPv4) Size() Bounds { return Bounds{Min: 32, Max: 32} }

// CanParse implements [Type].
func (t IPv4) CanParse(bits bitstream.Slice) bool {
	if bits.Len() != 32 {
		return false
	}
	if t.Fixed == nil {
		return true
	}
	return bits.Equal(bitstream.FromBytes(t.Fixed[:], bitstream.BigEndian))
}

// Generate implements [Type].
func (t IPv4) Generate(rnd RandSource) bitstream.Slice {
	if t.Fixed != nil {
		s, _ := t.Encode(net.IPv4(t.Fixed[0], t.Fixed[1], t.Fixed[2], t.Fixed[3]))
		return s
	}
	buf := make([]byte, 4)
	for i := range buf {
		buf[i] = byte(randUintn(rnd, 256))
	}
	s, _ := t.Encode(net.IPv4(buf[0], buf[1], buf[2], buf[3]))
	return s
}

// Encode implements [Type]. raw must be a net.IP with a 4-byte form.
func (t IPv4) Encode(raw any) (bitstream.Slice, error) {
	ip, ok := raw.(net.IP)
	if !ok {
		return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("cannot encode %T as IPv4", raw)}
	}
	v4 := ip.To4()
	if v4 == nil {
		return bitstream.Slice{}, &EncodingError{Type: t.String(), Reason: "not a valid IPv4 address"}
	}
	return bitstream.FromBytes(v4, bitstream.BigEndian), nil
}

// Decode implements [Type].
func (t IPv4) Decode(bits bitstream.Slice) (any, error) {
	if bits.Len() != 32 {
		return nil, &EncodingError{Type: t.String(), Reason: fmt.Sprintf("expected 32 bits, got %d", bits.Len())}
	}
	b := bits.Bytes()
	return net.IPv4(b[0], b[1], b[2], b[3]), nil
}
