package vartree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldgraph/varspec/types"
	"github.com/fieldgraph/varspec/vartree"
)

func TestDataDefaultsToScopeNone(t *testing.T) {
	v := vartree.Data(types.Uint8())
	assert.Equal(t, vartree.ScopeNone, v.Scope)
	assert.Equal(t, vartree.KindData, v.Kind)
}

func TestAggChildren(t *testing.T) {
	a := vartree.Data(types.Uint8())
	b := vartree.Data(types.Uint16BE())
	agg := vartree.Agg(a, b)
	assert.Equal(t, []*vartree.Variable{a, b}, agg.Children())
}

func TestRepeatRejectsInvertedBounds(t *testing.T) {
	child := vartree.Data(types.Uint8())
	assert.Panics(t, func() { vartree.Repeat(child, 5, 1) })
}

func TestSharedChildIsNotCyclic(t *testing.T) {
	shared := vartree.Data(types.Uint8())
	agg := vartree.Agg(shared, shared)
	assert.NoError(t, vartree.CheckAcyclic(agg))
}

func TestCyclicGraphDetected(t *testing.T) {
	alt := vartree.Alt([]*vartree.Variable{vartree.Data(types.Uint8())})
	alt.AltChildren = append(alt.AltChildren, alt)
	assert.Error(t, vartree.CheckAcyclic(alt))
}

func TestSymbolLeavesFlattensTree(t *testing.T) {
	f1 := vartree.Data(types.Uint8())
	f2 := vartree.Data(types.Uint16BE())
	agg := vartree.Agg(f1, f2)
	sym := vartree.NewSymbol("demo", []*vartree.Field{vartree.NewField(agg, "body")})
	assert.Equal(t, []*vartree.Variable{f1, f2}, sym.Leaves())
}

func TestNewSymbolRejectsInvalidVersion(t *testing.T) {
	f := vartree.NewField(vartree.Data(types.Uint8()), "f")
	assert.Panics(t, func() {
		vartree.NewSymbol("demo", []*vartree.Field{f}, vartree.Descriptor{Version: "not-a-version"})
	})
}

func TestNewSymbolAcceptsValidVersion(t *testing.T) {
	f := vartree.NewField(vartree.Data(types.Uint8()), "f")
	assert.NotPanics(t, func() {
		vartree.NewSymbol("demo", []*vartree.Field{f}, vartree.Descriptor{Version: "1.2.3"})
	})
}

func TestCountEstimateClampsUnbounded(t *testing.T) {
	v := vartree.Data(types.NewString(0, 0).WithEOS("\n"))
	v.Type = types.String{Unbounded: true}
	assert.Equal(t, uint64(1)<<32, v.CountEstimate())
}
