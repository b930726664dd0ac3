package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/varspec/fuzz"
	"github.com/fieldgraph/varspec/fuzz/profile"
)

const doc = `
global_counter_max: 100
type_mutators:
  uint8:
    mode: generate
    generator: pcg32
    seed: 10
    min: 0
    max: 255
field_mutators:
  checksum:
    mode: fixed
    generator: xorshift128
    seed: 1
`

func TestLoadProfile(t *testing.T) {
	fz, err := profile.Load([]byte(doc))
	require.NoError(t, err)

	mi, ok := fz.Get(fuzz.TypeKey("uint8"))
	require.True(t, ok)
	assert.Equal(t, fuzz.ModeGenerate, mi.Mode)
	require.NotNil(t, mi.Interval)
	assert.Equal(t, int64(255), mi.Interval.Max)

	fm, ok := fz.Get(fuzz.FieldKey("checksum"))
	require.True(t, ok)
	assert.Equal(t, fuzz.ModeFixed, fm.Mode)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := profile.Load([]byte("not: valid: yaml: at: all:"))
	assert.Error(t, err)
}
