package bitstream_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/varspec/bitstream"
)

func TestFromBytesRoundTrip(t *testing.T) {
	in := []byte{0xAB, 0xCD}
	s := bitstream.FromBytes(in, bitstream.BigEndian)
	require.Equal(t, 16, s.Len())
	assert.Equal(t, in, s.Bytes())
}

func TestSliceAndConcat(t *testing.T) {
	s := bitstream.FromBytes([]byte{0xFF, 0x00}, bitstream.BigEndian)
	first := s.Slice(0, 8)
	second := s.Slice(8, 16)
	joined := bitstream.Concat(first, second)

	if diff := cmp.Diff(s.String(), joined.String()); diff != "" {
		t.Fatalf("concat of slices did not reconstruct original (-want +got):\n%s", diff)
	}
}

func TestUint64RoundTripBigEndian(t *testing.T) {
	s := bitstream.FromUint64(0x0102, 16, bitstream.BigEndian)
	assert.Equal(t, []byte{0x01, 0x02}, s.Bytes())
	assert.Equal(t, uint64(0x0102), s.Uint64())
}

func TestUint64RoundTripLittleEndian(t *testing.T) {
	s := bitstream.FromUint64(0x0102, 16, bitstream.LittleEndian)
	assert.Equal(t, []byte{0x02, 0x01}, s.Bytes())
	assert.Equal(t, uint64(0x0102), s.Uint64())
}

func TestEqualIgnoresEndianTag(t *testing.T) {
	a := bitstream.FromBytes([]byte{0x01}, bitstream.BigEndian)
	b := bitstream.FromBytes([]byte{0x01}, bitstream.LittleEndian)
	assert.True(t, a.Equal(b))
}
