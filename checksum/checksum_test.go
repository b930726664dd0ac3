package checksum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/varspec/checksum"
)

func TestComputeCRC32(t *testing.T) {
	out, err := checksum.Compute(checksum.CRC32, []byte("123456789"))
	require.NoError(t, err)
	assert.Len(t, out, 4)
}

func TestComputeBLAKE2b256(t *testing.T) {
	out, err := checksum.Compute(checksum.BLAKE2b256, []byte("hello"))
	require.NoError(t, err)
	assert.Len(t, out, 32)
}

func TestComputeSHA3256(t *testing.T) {
	out, err := checksum.Compute(checksum.SHA3_256, []byte("hello"))
	require.NoError(t, err)
	assert.Len(t, out, 32)
}

func TestComputeIsDeterministic(t *testing.T) {
	a, _ := checksum.Compute(checksum.BLAKE2b256, []byte("repeatable"))
	b, _ := checksum.Compute(checksum.BLAKE2b256, []byte("repeatable"))
	assert.Equal(t, a, b)
}
