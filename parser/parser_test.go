package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/parser"
	"github.com/fieldgraph/varspec/types"
	"github.com/fieldgraph/varspec/vartree"
)

func collect(t *testing.T, mp *parser.MessageParser, bits bitstream.Slice, mem *memory.Message, opts ...parser.ParseOption) []*parser.ParsingPath {
	t.Helper()
	var out []*parser.ParsingPath
	for p, err := range mp.ParseBits(bits, mem, opts...) {
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func TestParseAggOfTwoIntegers(t *testing.T) {
	f1 := vartree.Data(types.Uint16BE())
	f2 := vartree.Data(types.Uint16BE())
	tree := vartree.Agg(f1, f2)
	mp := parser.New(tree)

	raw := []byte{0x12, 0x34, 0x56, 0x78}
	bits := bitstream.FromBytes(raw, bitstream.BigEndian)
	mem := memory.NewSession().Begin()

	paths := collect(t, mp, bits, mem)
	require.Len(t, paths, 1)

	v1, ok := paths[0].Assignments.Get(uint64(f1.ID))
	require.True(t, ok)
	assert.Equal(t, uint64(0x1234), v1.Uint64())

	v2, ok := paths[0].Assignments.Get(uint64(f2.ID))
	require.True(t, ok)
	assert.Equal(t, uint64(0x5678), v2.Uint64())
}

func TestParseSizeRelationDeferredUntilTargetBound(t *testing.T) {
	data := vartree.Data(types.NewRaw(0, 5))
	size := vartree.Size([]*vartree.Variable{data}, types.Uint8(), 1.0/8.0, 0)
	tree := vartree.Agg(size, data)
	mp := parser.New(tree)

	raw := []byte{0x03, 0xAA, 0xBB, 0xCC}
	bits := bitstream.FromBytes(raw, bitstream.BigEndian)
	mem := memory.NewSession().Begin()

	paths := collect(t, mp, bits, mem)
	require.Len(t, paths, 1)

	d, ok := paths[0].Assignments.Get(uint64(data.ID))
	require.True(t, ok)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, d.Bytes())
}

func TestParseSizeRelationMismatchPrunesBranch(t *testing.T) {
	data := vartree.Data(types.NewRaw(0, 5))
	size := vartree.Size([]*vartree.Variable{data}, types.Uint8(), 1.0/8.0, 0)
	tree := vartree.Agg(size, data)
	mp := parser.New(tree)

	// Declares a size of 4 bytes but only 3 follow: no valid path.
	raw := []byte{0x04, 0xAA, 0xBB, 0xCC}
	bits := bitstream.FromBytes(raw, bitstream.BigEndian)
	mem := memory.NewSession().Begin()

	paths := collect(t, mp, bits, mem)
	assert.Empty(t, paths)
}

func TestParseAltCallbackPicksFixedChild(t *testing.T) {
	a := vartree.Data(types.Uint8().WithFixed(1))
	b := vartree.Data(types.Uint8().WithFixed(2))
	alt := vartree.Alt([]*vartree.Variable{a, b}, func() int { return 1 })
	mp := parser.New(alt)

	bits := bitstream.FromBytes([]byte{0x02}, bitstream.BigEndian)
	mem := memory.NewSession().Begin()

	paths := collect(t, mp, bits, mem)
	require.Len(t, paths, 1)

	got, ok := paths[0].Assignments.Get(uint64(alt.ID))
	require.True(t, ok)
	assert.Equal(t, uint64(2), got.Uint64())
}

func TestParseRepeatPicksBoundedCount(t *testing.T) {
	child := vartree.Data(types.Uint8())
	rep := vartree.Repeat(child, 2, 3)
	mp := parser.New(rep)

	bits := bitstream.FromBytes([]byte{0x01, 0x02}, bitstream.BigEndian)
	mem := memory.NewSession().Begin()

	paths := collect(t, mp, bits, mem)
	require.Len(t, paths, 1)

	rv, ok := paths[0].Assignments.Get(uint64(rep.ID))
	require.True(t, ok)
	assert.Equal(t, 16, rv.Len())
}

func TestParseCarnivorousLastLeafConsumesRemainder(t *testing.T) {
	data := vartree.Data(types.NewRaw(0, 2))
	mp := parser.New(data)

	raw := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	bits := bitstream.FromBytes(raw, bitstream.BigEndian)
	mem := memory.NewSession().Begin()

	paths := collect(t, mp, bits, mem, parser.WithCarnivorous(true))
	require.Len(t, paths, 1)
	assert.Equal(t, 0, paths[0].Cursor.Len())

	got, ok := paths[0].Assignments.Get(uint64(data.ID))
	require.True(t, ok)
	assert.Equal(t, raw, got.Bytes())
}

func TestParseCarnivorousDoesNotApplyToNonLastLeaf(t *testing.T) {
	head := vartree.Data(types.NewRaw(0, 2))
	tail := vartree.Data(types.Uint8())
	tree := vartree.Agg(head, tail)
	mp := parser.New(tree)

	// 4 bytes total; consuming everything needs head to take 3 bytes,
	// past its 2-byte max. Carnivorous mode must not rescue head here
	// since it is not the last leaf, so no path should consume it all.
	bits := bitstream.FromBytes([]byte{0xAA, 0xBB, 0xCC, 0xDD}, bitstream.BigEndian)
	mem := memory.NewSession().Begin()

	paths := collect(t, mp, bits, mem, parser.WithCarnivorous(true))
	assert.Empty(t, paths)
}

func TestParseMustConsumeEverythingCanBeDisabled(t *testing.T) {
	child := vartree.Data(types.Uint8())
	mp := parser.New(child)

	bits := bitstream.FromBytes([]byte{0x01, 0x02}, bitstream.BigEndian)
	mem := memory.NewSession().Begin()

	none := collect(t, mp, bits, mem)
	assert.Empty(t, none)

	partial := collect(t, mp, bits, mem, parser.WithMustConsumeEverything(false))
	require.Len(t, partial, 1)
	assert.Equal(t, 8, partial[0].Cursor.Len())
}
