// Package fuzz is the mutation overlay that specialize consults in
// place of a type's plain generate(): a per-variable mutator registry
// with modes {GENERATE, MUTATE, FIXED, NONE}, backed by the fuzz/rng
// PRNG pool, and a global mutation counter threaded explicitly via
// Context rather than kept as process-wide state.
package fuzz

import (
	"fmt"

	"github.com/fieldgraph/varspec/fuzz/rng"
	"github.com/fieldgraph/varspec/vartree"
)

// KeyKind selects which of Fuzz's four override layers a Key names.
type KeyKind uint8

const (
	KeyType KeyKind = iota
	KeyVariable
	KeyField
	KeySymbol
)

// Key identifies what a mutator override applies to: a primitive type
// name (default for every Data leaf of that type), a specific
// Variable by id, a Field by name, or a whole Symbol by name.
type Key struct {
	Kind       KeyKind
	TypeName   string
	VariableID vartree.VarId
	FieldName  string
	SymbolName string
}

// TypeKey returns a Key selecting the default mutator for typeName
// (e.g. "uint8/big-endian", "string(1,8)" — matches Type.String()).
func TypeKey(typeName string) Key { return Key{Kind: KeyType, TypeName: typeName} }

// VariableKey returns a Key selecting a specific variable override.
func VariableKey(id vartree.VarId) Key { return Key{Kind: KeyVariable, VariableID: id} }

// FieldKey returns a Key selecting a field override.
func FieldKey(name string) Key { return Key{Kind: KeyField, FieldName: name} }

// SymbolKey returns a Key selecting a whole-symbol override.
func SymbolKey(name string) Key { return Key{Kind: KeySymbol, SymbolName: name} }

func (k Key) cacheKey() string {
	switch k.Kind {
	case KeyType:
		return "type:" + k.TypeName
	case KeyVariable:
		return fmt.Sprintf("var:%d", k.VariableID)
	case KeyField:
		return "field:" + k.FieldName
	case KeySymbol:
		return "symbol:" + k.SymbolName
	default:
		return ""
	}
}

// Mode selects how a mutator treats the type's normal generate().
type Mode uint8

const (
	// ModeGenerate produces a fresh mutated value in place of generate().
	ModeGenerate Mode = iota
	// ModeMutate calls generate() then perturbs the result.
	ModeMutate
	// ModeFixed returns a constant value every time.
	ModeFixed
	// ModeNone passes through to the type's plain generate().
	ModeNone
)

// Option configures a Fuzz at construction.
type Option func(*Fuzz)

// WithCounterMax sets the global mutation ceiling. A value in (0, 1)
// is interpreted as a ratio of the target domain's CountEstimate by
// the specializer; a value of 1 or more is a literal cap.
func WithCounterMax(max float64) Option {
	return func(f *Fuzz) { f.counterMax = max }
}

// Fuzz is a reusable mutation configuration: which mutator applies to
// which type/variable/field/symbol, and the global counter ceiling.
// It carries no run-state; run-state (how many mutations have fired)
// lives in a [Context] created per specialization run.
type Fuzz struct {
	mutators   map[string]*MutatorInstance
	counterMax float64 // default spec.md §6 Fuzz(counter_max=2^32)
}

// New returns a Fuzz with no overrides and the default counter ceiling.
func New(opts ...Option) *Fuzz {
	f := &Fuzz{mutators: map[string]*MutatorInstance{}, counterMax: float64(uint64(1) << 32)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Set installs a mutator for key under mode, configured by opts.
func (f *Fuzz) Set(key Key, mode Mode, opts ...MutatorOption) {
	mi := &MutatorInstance{Mode: mode, Kind: MutatorGenerate, localCounterMax: -1}
	for _, opt := range opts {
		opt(mi)
	}
	if mi.generator == nil {
		src, _ := rng.New(rng.Xorshift128Plus, 10)
		mi.generator = src
	}
	f.mutators[key.cacheKey()] = mi
}

// Unset removes any mutator installed for key.
func (f *Fuzz) Unset(key Key) {
	delete(f.mutators, key.cacheKey())
}

// Get returns the mutator installed for key, if any.
func (f *Fuzz) Get(key Key) (*MutatorInstance, bool) {
	mi, ok := f.mutators[key.cacheKey()]
	return mi, ok
}

// Resolve looks up the most specific mutator for a variable: variable
// override, then field override, then symbol override, then type
// default, in that priority order. The specializer calls this for
// every Data leaf and every Alt/Agg/Repeat/Opt node it visits to
// decide whether to consult a MutatorInstance or fall back to the
// type's own Generate (or, for a composite, its default choice).
func (f *Fuzz) Resolve(varID vartree.VarId, fieldName, symbolName, typeName string) (*MutatorInstance, bool) {
	return f.resolve(varID, fieldName, symbolName, typeName)
}

// Propagate installs default mutators on every descendant of v not
// already overridden, per spec.md §4.7's "Propagation" rule. It is a
// no-op unless mi.MutateChild is set, and idempotent per descendant:
// a variable already carrying a VariableKey override (from an earlier
// Propagate or an explicit Set) is left untouched. The specializer
// calls this each time it resolves a mutator for a composite node,
// before recursing into children; calls after the first find every
// descendant already overridden.
func (f *Fuzz) Propagate(v *vartree.Variable, mi *MutatorInstance) {
	if !mi.MutateChild {
		return
	}
	seen := map[*vartree.Variable]bool{v: true}
	for _, c := range v.Children() {
		f.propagateInto(c, mi, seen)
	}
}

func (f *Fuzz) propagateInto(v *vartree.Variable, mi *MutatorInstance, seen map[*vartree.Variable]bool) {
	if v == nil || seen[v] {
		return
	}
	seen[v] = true

	key := VariableKey(v.ID)
	if _, ok := f.Get(key); !ok {
		typeName := v.Kind.String()
		if v.Kind == vartree.KindData {
			typeName = v.Type.String()
		}
		if override, ok := mi.MappingTypesMutators[typeName]; ok {
			f.mutators[key.cacheKey()] = override
		} else {
			f.Set(key, ModeGenerate)
		}
	}
	for _, c := range v.Children() {
		f.propagateInto(c, mi, seen)
	}
}

// resolve is Resolve's unexported implementation.
func (f *Fuzz) resolve(varID vartree.VarId, fieldName, symbolName, typeName string) (*MutatorInstance, bool) {
	if mi, ok := f.Get(VariableKey(varID)); ok {
		return mi, true
	}
	if fieldName != "" {
		if mi, ok := f.Get(FieldKey(fieldName)); ok {
			return mi, true
		}
	}
	if symbolName != "" {
		if mi, ok := f.Get(SymbolKey(symbolName)); ok {
			return mi, true
		}
	}
	if typeName != "" {
		if mi, ok := f.Get(TypeKey(typeName)); ok {
			return mi, true
		}
	}
	return nil, false
}
