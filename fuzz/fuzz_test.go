package fuzz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/varspec/fuzz"
	"github.com/fieldgraph/varspec/fuzz/rng"
	"github.com/fieldgraph/varspec/types"
	"github.com/fieldgraph/varspec/vartree"
)

func TestSetGetUnset(t *testing.T) {
	fz := fuzz.New()
	key := fuzz.TypeKey("uint8")
	fz.Set(key, fuzz.ModeGenerate, fuzz.WithGenerator(rng.Xorshift128Plus, 10))

	mi, ok := fz.Get(key)
	require.True(t, ok)
	assert.Equal(t, fuzz.ModeGenerate, mi.Mode)

	fz.Unset(key)
	_, ok = fz.Get(key)
	assert.False(t, ok)
}

func TestContextExhaustsGlobalCounter(t *testing.T) {
	fz := fuzz.New(fuzz.WithCounterMax(2))
	ctx := fuzz.NewContext(fz, 0)

	err1 := ctx.ConsumeMessage()
	err2 := ctx.ConsumeMessage()
	err3 := ctx.ConsumeMessage()

	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.ErrorIs(t, err3, fuzz.ErrMaxFuzzing)
}

func TestContextRatioCounterMax(t *testing.T) {
	fz := fuzz.New(fuzz.WithCounterMax(0.5))
	ctx := fuzz.NewContext(fz, 10)
	assert.Equal(t, uint64(5), ctx.GlobalMax())
}

func TestPropagateInstallsDefaultMutatorsOnUnoverriddenDescendants(t *testing.T) {
	a := vartree.Data(types.Uint8())
	b := vartree.Data(types.Uint8())
	agg := vartree.Agg(a, b)

	fz := fuzz.New()
	fz.Set(fuzz.VariableKey(b.ID), fuzz.ModeFixed, fuzz.WithFixed(int64(9)))

	mi := &fuzz.MutatorInstance{Kind: fuzz.MutatorComposite, Mode: fuzz.ModeGenerate, MutateChild: true}
	fz.Propagate(agg, mi)

	gotA, ok := fz.Get(fuzz.VariableKey(a.ID))
	require.True(t, ok)
	assert.Equal(t, fuzz.ModeGenerate, gotA.Mode)

	// b already had an explicit override before Propagate ran: left untouched.
	gotB, ok := fz.Get(fuzz.VariableKey(b.ID))
	require.True(t, ok)
	assert.Equal(t, fuzz.ModeFixed, gotB.Mode)
}

func TestPropagateHonorsMappingTypesMutators(t *testing.T) {
	a := vartree.Data(types.Uint8())
	agg := vartree.Agg(a)

	fz := fuzz.New()
	override := &fuzz.MutatorInstance{Mode: fuzz.ModeFixed, FixedValue: int64(42)}
	mi := &fuzz.MutatorInstance{
		Kind:                 fuzz.MutatorComposite,
		Mode:                 fuzz.ModeGenerate,
		MutateChild:          true,
		MappingTypesMutators: map[string]*fuzz.MutatorInstance{a.Type.String(): override},
	}
	fz.Propagate(agg, mi)

	got, ok := fz.Get(fuzz.VariableKey(a.ID))
	require.True(t, ok)
	assert.Same(t, override, got)
}

func TestPropagateIsNoOpWithoutMutateChild(t *testing.T) {
	a := vartree.Data(types.Uint8())
	agg := vartree.Agg(a)

	fz := fuzz.New()
	mi := &fuzz.MutatorInstance{Kind: fuzz.MutatorComposite, Mode: fuzz.ModeGenerate}
	fz.Propagate(agg, mi)

	_, ok := fz.Get(fuzz.VariableKey(a.ID))
	assert.False(t, ok)
}

func TestNaughtyStringDedup(t *testing.T) {
	fz := fuzz.New()
	fz.Set(fuzz.TypeKey("string"), fuzz.ModeGenerate, fuzz.WithNaughtyStrings("", "brand-new-string"))
	mi, ok := fz.Get(fuzz.TypeKey("string"))
	require.True(t, ok)
	assert.Contains(t, mi.NaughtyStrings, "brand-new-string")
	assert.NotContains(t, mi.NaughtyStrings, "")
}
