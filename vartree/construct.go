package vartree

import (
	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/checksum"
	"github.com/fieldgraph/varspec/types"
)

// Data returns a leaf wrapping t. scope defaults to ScopeNone.
func Data(t types.Type, scope ...Scope) *Variable {
	sc := ScopeNone
	if len(scope) > 0 {
		sc = scope[0]
	}
	return &Variable{ID: NewVarId(), Kind: KindData, Type: t, Scope: sc}
}

// WithValue returns a copy of v pinned to a pre-set bit-slice. Panics
// with a *ValueError if the slice's length falls outside v.Type's
// bounds, per spec.md §3's Data invariant.
func WithValue(v *Variable, value bitstream.Slice) *Variable {
	if v.Kind != KindData {
		panic(&TypeError{Op: "WithValue", Reason: "target is not a Data leaf"})
	}
	b := v.Type.Size()
	if !b.Unbounded && (value.Len() < b.Min || value.Len() > b.Max) {
		panic(&ValueError{Op: "WithValue", Reason: "value length outside type bounds"})
	}
	cp := *v
	cp.Value = &value
	return &cp
}

// WithName returns a copy of v carrying a human-readable name.
func WithName(v *Variable, name string) *Variable {
	cp := *v
	cp.Name = name
	return &cp
}

// Alt chooses exactly one child per parse/specialize branch. callback,
// if non-nil, picks a deterministic child index; -1 picks the last
// child.
func Alt(children []*Variable, callback ...AltCallback) *Variable {
	if len(children) == 0 {
		panic(&ValueError{Op: "Alt", Reason: "must have at least one child"})
	}
	v := &Variable{ID: NewVarId(), Kind: KindAlt, AltChildren: children}
	if len(callback) > 0 {
		v.AltCallback = callback[0]
	}
	return v
}

// Agg concatenates all children in order.
func Agg(children ...*Variable) *Variable {
	if len(children) == 0 {
		panic(&ValueError{Op: "Agg", Reason: "must have at least one child"})
	}
	return &Variable{ID: NewVarId(), Kind: KindAgg, AggChildren: children}
}

// Repeat yields lo..=hi copies of child, optionally separated by delimiter.
func Repeat(child *Variable, lo, hi int, delimiter ...*Variable) *Variable {
	if lo < 0 || hi < lo {
		panic(&ValueError{Op: "Repeat", Reason: "require 0 <= lo <= hi"})
	}
	v := &Variable{ID: NewVarId(), Kind: KindRepeat, RepeatChild: child, RepeatLo: lo, RepeatHi: hi}
	if len(delimiter) > 0 {
		v.RepeatDelimiter = delimiter[0]
	}
	return v
}

// emptyVariable returns a zero-width Raw leaf. Opt does not use it: an
// Opt node stores only its child.
func emptyVariable() *Variable {
	return Data(types.NewRaw(0, 0))
}

// Opt is Alt{child, Empty}.
func Opt(child *Variable) *Variable {
	v := &Variable{ID: NewVarId(), Kind: KindOpt, OptChild: child}
	return v
}

// Size returns a Relation leaf computing
// encode_as(t, len_bits(concat(targets)) * factor + offset).
func Size(targets []*Variable, t types.Type, factor, offset float64) *Variable {
	if len(targets) == 0 {
		panic(&ValueError{Op: "Size", Reason: "must have at least one target"})
	}
	if factor == 0 {
		factor = 1
	}
	return &Variable{
		ID: NewVarId(), Kind: KindRelation, RelKind: RelationSize,
		RelTargets: targets, RelType: t, RelFactor: factor, RelOffset: offset,
	}
}

// Value returns a Relation leaf that is the identity over target bits.
func Value(targets []*Variable) *Variable {
	if len(targets) == 0 {
		panic(&ValueError{Op: "Value", Reason: "must have at least one target"})
	}
	return &Variable{ID: NewVarId(), Kind: KindRelation, RelKind: RelationValue, RelTargets: targets}
}

// Checksum returns a Relation leaf computing algo over the byte view
// of the concatenated target bits.
func Checksum(targets []*Variable, algo checksum.Algo) *Variable {
	if len(targets) == 0 {
		panic(&ValueError{Op: "Checksum", Reason: "must have at least one target"})
	}
	return &Variable{
		ID: NewVarId(), Kind: KindRelation, RelKind: RelationChecksum,
		RelTargets: targets, ChecksumAlgoID: uint8(algo),
	}
}

// Padding returns a Relation leaf that fills bits such that
// len(prefix)+len(padding) is congruent to 0 mod modulo. once is
// stored in RelOnce; the parser and specializer do not read it.
func Padding(targets []*Variable, modulo int, once bool) *Variable {
	if len(targets) == 0 {
		panic(&ValueError{Op: "Padding", Reason: "must have at least one target"})
	}
	if modulo <= 0 {
		panic(&ValueError{Op: "Padding", Reason: "modulo must be positive"})
	}
	return &Variable{
		ID: NewVarId(), Kind: KindRelation, RelKind: RelationPadding,
		RelTargets: targets, RelModulo: modulo, RelOnce: once,
	}
}
