package specializer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/fuzz"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/specializer"
	"github.com/fieldgraph/varspec/types"
	"github.com/fieldgraph/varspec/vartree"
)

func bitsOf(t *testing.T, v int64) bitstream.Slice {
	t.Helper()
	s, err := types.Uint8().Encode(v)
	require.NoError(t, err)
	return s
}

func TestSpecializeSizeRelationPatchedAfterTarget(t *testing.T) {
	dataVar := vartree.Data(types.NewRaw(2, 2))
	sizeVar := vartree.Size([]*vartree.Variable{dataVar}, types.Uint8(), 1.0/8.0, 0)
	sym := vartree.NewSymbol("msg", []*vartree.Field{
		vartree.NewField(sizeVar, "size"),
		vartree.NewField(dataVar, "data"),
	})

	sp := specializer.New(sym)
	fz := fuzz.New(fuzz.WithCounterMax(1))
	session := memory.NewSession()

	var out []byte
	for b, err := range sp.Specialize(session, fz) {
		require.NoError(t, err)
		out = b
		break
	}
	require.Len(t, out, 3)
	assert.Equal(t, byte(2), out[0])
}

func TestSpecializeAltCallbackPicksFixedChild(t *testing.T) {
	a := vartree.WithValue(vartree.Data(types.Uint8()), bitsOf(t, 1))
	b := vartree.WithValue(vartree.Data(types.Uint8()), bitsOf(t, 2))
	alt := vartree.Alt([]*vartree.Variable{a, b}, func() int { return 1 })
	sym := vartree.NewSymbol("alt", []*vartree.Field{vartree.NewField(alt, "choice")})

	sp := specializer.New(sym)
	fz := fuzz.New(fuzz.WithCounterMax(1))
	session := memory.NewSession()

	var out []byte
	for out2, err := range sp.Specialize(session, fz) {
		require.NoError(t, err)
		out = out2
		break
	}
	require.Len(t, out, 1)
	assert.Equal(t, byte(2), out[0])
}

func TestSpecializeStopsCleanlyOnceCounterExhausted(t *testing.T) {
	field := vartree.Data(types.Uint8())
	sym := vartree.NewSymbol("counted", []*vartree.Field{vartree.NewField(field, "f")})

	sp := specializer.New(sym)
	fz := fuzz.New(fuzz.WithCounterMax(3))
	session := memory.NewSession()

	var n int
	for _, err := range sp.Specialize(session, fz) {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 3, n)
}

func TestSpecializeSelfReferentialAltStopsAtDefaultMaxDepth(t *testing.T) {
	leaf := vartree.Data(types.Uint8())
	alt := &vartree.Variable{ID: vartree.NewVarId(), Kind: vartree.KindAlt}
	recurBranch := vartree.Agg(leaf, alt)
	alt.AltChildren = []*vartree.Variable{recurBranch}
	alt.AltCallback = func() int { return 0 } // always recurse

	field := &vartree.Field{Name: "r", Domain: alt}
	sym := vartree.NewSymbol("recur", []*vartree.Field{field})

	sp := specializer.New(sym)
	fz := fuzz.New(fuzz.WithCounterMax(1))
	session := memory.NewSession()

	var gotErr error
	for _, err := range sp.Specialize(session, fz) {
		gotErr = err
		break
	}
	require.Error(t, gotErr)
	var se *specializer.Error
	require.ErrorAs(t, gotErr, &se)
	assert.Equal(t, specializer.ErrRecursionLimit, se.Code)
}

func TestSpecializeCounterMaxOneYieldsExactlyOneMessage(t *testing.T) {
	a := vartree.Data(types.Uint8())
	b := vartree.Data(types.Uint8())
	alt := vartree.Alt([]*vartree.Variable{a, b})
	sym := vartree.NewSymbol("choice", []*vartree.Field{vartree.NewField(alt, "f")})

	sp := specializer.New(sym)
	fz := fuzz.New(fuzz.WithCounterMax(1))
	session := memory.NewSession()

	var outs [][]byte
	for out, err := range sp.Specialize(session, fz) {
		require.NoError(t, err)
		outs = append(outs, out)
	}
	require.Len(t, outs, 1)
	assert.Len(t, outs[0], 1)
}

func TestSpecializeMutateChildPropagatesIntoAggChildren(t *testing.T) {
	a := vartree.Data(types.Uint8())
	b := vartree.Data(types.Uint16BE())
	agg := vartree.Agg(a, b)
	sym := vartree.NewSymbol("agg", []*vartree.Field{vartree.NewField(agg, "f")})

	fz := fuzz.New(fuzz.WithCounterMax(1))
	fz.Set(fuzz.VariableKey(agg.ID), fuzz.ModeGenerate,
		fuzz.WithMutateChild(true),
		fuzz.WithMappingTypesMutators(map[string]*fuzz.MutatorInstance{
			a.Type.String(): {Mode: fuzz.ModeFixed, FixedValue: int64(5)},
		}),
	)

	sp := specializer.New(sym)
	session := memory.NewSession()

	var out []byte
	for msg, err := range sp.Specialize(session, fz) {
		require.NoError(t, err)
		out = msg
		break
	}
	require.Len(t, out, 3)
	// Both a and b inherit a mutator from Agg's MutateChild
	// propagation, since neither has its own override: a matches the
	// mapping table and gets the FIXED value, b falls back to GENERATE.
	assert.Equal(t, byte(5), out[0])
}

func TestSpecializeConstantScopeEmitsFixedValue(t *testing.T) {
	field := vartree.WithValue(vartree.Data(types.Uint8(), vartree.ScopeConstant), bitsOf(t, 7))
	sym := vartree.NewSymbol("const", []*vartree.Field{vartree.NewField(field, "f")})

	sp := specializer.New(sym)
	fz := fuzz.New(fuzz.WithCounterMax(1))
	session := memory.NewSession()

	var out []byte
	for b, err := range sp.Specialize(session, fz) {
		require.NoError(t, err)
		out = b
		break
	}
	require.Len(t, out, 1)
	assert.Equal(t, byte(7), out[0])
}
