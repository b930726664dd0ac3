// Package specializer implements the dual of package parser: given a
// variable tree (grouped into a vartree.Symbol's fields), it encodes a
// concrete bit stream, consulting a fuzz.Fuzz mutator registry in
// place of each type's plain Generate wherever an override is
// installed. Relations that reference a not-yet-specialized target are
// emitted as a placeholder of known width and patched once every
// target in the symbol has been specialized (spec.md §4.3/§4.4).
package specializer

import (
	"errors"
	"iter"

	"github.com/fieldgraph/varspec/fuzz"
	"github.com/fieldgraph/varspec/fuzz/rng"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/vartree"
)

// SymbolSpecializer produces specialized messages for one Symbol.
type SymbolSpecializer struct {
	symbol     *vartree.Symbol
	cfg        config
	defaultRNG rng.Source
}

// New returns a SymbolSpecializer for sym. Leaves with no matching
// fuzz.Fuzz override fall back to a process-local default PRNG
// (xorshift128+, seeded constant for reproducibility across runs that
// never configure their own generator).
func New(sym *vartree.Symbol, opts ...Option) *SymbolSpecializer {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	return &SymbolSpecializer{symbol: sym, cfg: cfg, defaultRNG: rng.NewXorshift128Plus(1)}
}

// Specialize returns an iterator of specialized messages. Each
// iteration begins a fresh memory.Message against session, walks every
// field of the symbol once, patches deferred relation placeholders,
// and commits session-scoped writes before yielding the encoded bytes.
// The shared fuzz.Context's global mutation counter is threaded across
// every message produced by one Specialize call: once it is exhausted
// (fuzz.ErrMaxFuzzing), the iterator ends without yielding an error,
// per spec.md's "end of stream, not a fatal error" contract. Any other
// failure (a malformed tree, an unresolved relation) yields once as an
// *Error and then ends.
func (sp *SymbolSpecializer) Specialize(session *memory.Session, fz *fuzz.Fuzz) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		ctx := fuzz.NewContext(fz, sp.estimateDomain())
		for {
			if err := ctx.ConsumeMessage(); err != nil {
				return
			}

			mem := session.Begin()
			p := SpecializingPath{Memory: mem}

			var err error
			for _, f := range sp.symbol.Fields {
				rc := &runCtx{ctx: ctx, fz: fz, fieldName: f.Name, symbolName: sp.symbol.Name, defaultRNG: sp.defaultRNG}
				p, err = specializeVariable(f.Domain, p, rc)
				if err != nil {
					break
				}
			}
			if err != nil {
				if errors.Is(err, fuzz.ErrMaxFuzzing) {
					return
				}
				yield(nil, err)
				return
			}

			p, err = patchHoles(p)
			if err != nil {
				yield(nil, err)
				return
			}

			p.Memory.Commit()
			if !yield(p.output().Bytes(), nil) {
				return
			}
		}
	}
}

// estimateDomain sums each field's CountEstimate to approximate the
// symbol's overall domain size, for resolving a ratio-valued
// counter_max (spec.md §9 open question (b)).
func (sp *SymbolSpecializer) estimateDomain() uint64 {
	var total uint64
	for _, f := range sp.symbol.Fields {
		n := f.Domain.CountEstimate()
		if total+n < total {
			return uint64(1) << 32
		}
		total += n
	}
	return total
}
