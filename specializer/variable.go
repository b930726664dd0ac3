package specializer

import (
	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/fuzz"
	"github.com/fieldgraph/varspec/fuzz/rng"
	"github.com/fieldgraph/varspec/vartree"
)

// runCtx groups the state threaded through every specializeVariable
// call for one top-level Specialize walk: the run's mutation-counter
// context, the mutator registry, which field/symbol name the current
// subtree belongs to (for fuzz.Key resolution), and the fallback PRNG
// used for any leaf with no mutator override at all.
type runCtx struct {
	ctx        *fuzz.Context
	fz         *fuzz.Fuzz
	fieldName  string
	symbolName string
	defaultRNG rng.Source
}

// specializeVariable dispatches to the handler for v.Kind. Unlike the
// parser's non-deterministic walk, specialization is single-path: each
// handler picks exactly one concrete encoding and returns it, or an
// error (either a fuzz.ErrMaxFuzzing sentinel, propagated unwrapped so
// Specialize can end its iterator cleanly, or a fatal *Error).
func specializeVariable(v *vartree.Variable, p SpecializingPath, rc *runCtx) (SpecializingPath, error) {
	switch v.Kind {
	case vartree.KindData:
		return specializeData(v, p, rc)
	case vartree.KindRelation:
		return specializeRelation(v, p)
	case vartree.KindAlt:
		return specializeAlt(v, p, rc)
	case vartree.KindAgg:
		return specializeAgg(v, p, rc)
	case vartree.KindRepeat:
		return specializeRepeat(v, p, rc)
	case vartree.KindOpt:
		return specializeOpt(v, p, rc)
	default:
		return p, &Error{Code: ErrInvalidTree, Message: "unknown variable kind"}
	}
}

func bitsFor(p SpecializingPath, v *vartree.Variable) bitstream.Slice {
	b, _ := p.Assignments.Get(uint64(v.ID))
	return b
}

func specializeData(v *vartree.Variable, p SpecializingPath, rc *runCtx) (SpecializingPath, error) {
	if v.Value != nil {
		return p.emit(*v.Value).bind(v.ID, *v.Value), nil
	}
	if v.Scope == vartree.ScopeMessage || v.Scope == vartree.ScopeSession {
		if bits, ok := p.Memory.Get(v.ID); ok {
			return p.emit(bits).bind(v.ID, bits), nil
		}
	}

	var bits bitstream.Slice
	if mi, ok := rc.fz.Resolve(v.ID, rc.fieldName, rc.symbolName, v.Type.String()); ok {
		var err error
		bits, err = mi.NextBits(rc.ctx, v.Type, v.Type.Generate)
		if err != nil {
			return p, err
		}
	} else {
		bits = v.Type.Generate(rc.defaultRNG)
	}

	next := p.emit(bits).bind(v.ID, bits)
	if v.Scope == vartree.ScopeMessage || v.Scope == vartree.ScopeSession {
		next.Memory = next.Memory.Set(v.ID, v.Scope, bits)
	}
	return next, nil
}

func specializeRelation(v *vartree.Variable, p SpecializingPath) (SpecializingPath, error) {
	if v.RelKind == vartree.RelationPadding {
		n := paddingNeeded(p.consumed(), v.RelModulo)
		bits := bitstream.New(n, bitstream.BigEndian)
		return p.emit(bits).bind(v.ID, bits), nil
	}

	width, ok := relationWidth(v)
	if !ok {
		return p, &Error{Code: ErrUnresolvedRelation, Message: "relation has no statically known width", Context: v.Name}
	}
	if targetBits, ok := gatherTargets(p, v.RelTargets); ok {
		bits, err := computeRelation(v, targetBits)
		if err != nil {
			return p, &Error{Code: ErrUnresolvedRelation, Message: err.Error(), Context: v.Name}
		}
		return p.emit(bits).bind(v.ID, bits), nil
	}
	return p.emitHole(v, width), nil
}

// defaultAltMaxDepth bounds recursive Alt specialization when no
// mutator override sets its own MaxDepth, per spec.md §4.8.
const defaultAltMaxDepth = 20

// withAltSeen mirrors parser.withAltSeen: rejects a recursive Alt
// entered twice at the same output length, since that can only mean
// an infinite loop that never consumes or produces input.
func withAltSeen(p SpecializingPath, id vartree.VarId, at int) (SpecializingPath, bool) {
	if prev, seen := p.altSeen[id]; seen && prev == at {
		return p, false
	}
	cp := make(map[vartree.VarId]int, len(p.altSeen)+1)
	for k, v := range p.altSeen {
		cp[k] = v
	}
	cp[id] = at
	p.altSeen = cp
	return p, true
}

// withAltDepth increments id's recursion-entry count and returns the
// new count alongside the updated path. Unlike withAltSeen (a
// zero-production-loop guard keyed on output length), this counts
// every entry into the same Alt regardless of whether it produced
// output, bounding a self-referential Alt that legitimately produces
// output each time it recurses.
func withAltDepth(p SpecializingPath, id vartree.VarId) (SpecializingPath, int) {
	depth := p.altDepth[id] + 1
	cp := make(map[vartree.VarId]int, len(p.altDepth)+1)
	for k, v := range p.altDepth {
		cp[k] = v
	}
	cp[id] = depth
	p.altDepth = cp
	return p, depth
}

func specializeAlt(v *vartree.Variable, p SpecializingPath, rc *runCtx) (SpecializingPath, error) {
	guarded, ok := withAltSeen(p, v.ID, p.consumed())
	if !ok {
		return p, &Error{Code: ErrRecursionLimit, Message: "alt entered twice without producing output", Context: v.Name}
	}

	mi, hasMutator := rc.fz.Resolve(v.ID, rc.fieldName, rc.symbolName, "")
	if hasMutator {
		rc.fz.Propagate(v, mi)
	}

	maxDepth := defaultAltMaxDepth
	if hasMutator && mi.MaxDepth > 0 {
		maxDepth = mi.MaxDepth
	}
	var depth int
	guarded, depth = withAltDepth(guarded, v.ID)
	if depth > maxDepth {
		return p, &Error{Code: ErrRecursionLimit, Message: "alt recursion exceeded max depth", Context: v.Name}
	}

	idx := -1
	if v.AltCallback != nil {
		idx = v.AltCallback()
		if idx == -1 {
			idx = len(v.AltChildren) - 1
		}
	}
	if v.AltCallback == nil {
		if hasMutator {
			n, err := mi.NextAltIndex(rc.ctx, len(v.AltChildren))
			if err != nil {
				return p, err
			}
			idx = n
		} else {
			idx = int(rc.defaultRNG.Uint64() % uint64(len(v.AltChildren)))
		}
	}
	if idx < 0 || idx >= len(v.AltChildren) {
		return p, &Error{Code: ErrInvalidTree, Message: "alt callback returned out-of-range index", Context: v.Name}
	}

	child := v.AltChildren[idx]
	next, err := specializeVariable(child, guarded, rc)
	if err != nil {
		return p, err
	}
	return next.bind(v.ID, bitsFor(next, child)), nil
}

func specializeAgg(v *vartree.Variable, p SpecializingPath, rc *runCtx) (SpecializingPath, error) {
	// Agg makes no decision of its own; a mutator resolved for it only
	// ever matters for its MutateChild propagation into AggChildren.
	if mi, ok := rc.fz.Resolve(v.ID, rc.fieldName, rc.symbolName, ""); ok {
		rc.fz.Propagate(v, mi)
	}

	parts := make([]bitstream.Slice, len(v.AggChildren))
	cur := p
	for i, c := range v.AggChildren {
		next, err := specializeVariable(c, cur, rc)
		if err != nil {
			return p, err
		}
		parts[i] = bitsFor(next, c)
		cur = next
	}
	var agg bitstream.Slice
	if len(parts) > 0 {
		agg = bitstream.Concat(parts[0], parts[1:]...)
	}
	return cur.bind(v.ID, agg), nil
}

func specializeOpt(v *vartree.Variable, p SpecializingPath, rc *runCtx) (SpecializingPath, error) {
	present := true
	if mi, ok := rc.fz.Resolve(v.ID, rc.fieldName, rc.symbolName, ""); ok {
		rc.fz.Propagate(v, mi)
		idx, err := mi.NextAltIndex(rc.ctx, 2)
		if err != nil {
			return p, err
		}
		present = idx == 0
	} else {
		present = rc.defaultRNG.Uint64()%2 == 0
	}
	if !present {
		return p.bind(v.ID, bitstream.Slice{}), nil
	}
	next, err := specializeVariable(v.OptChild, p, rc)
	if err != nil {
		return p, err
	}
	return next.bind(v.ID, bitsFor(next, v.OptChild)), nil
}

func specializeRepeat(v *vartree.Variable, p SpecializingPath, rc *runCtx) (SpecializingPath, error) {
	n := v.RepeatLo
	if mi, ok := rc.fz.Resolve(v.ID, rc.fieldName, rc.symbolName, ""); ok {
		rc.fz.Propagate(v, mi)
		var err error
		n, err = mi.NextRepeatCount(rc.ctx, v.RepeatLo, v.RepeatHi)
		if err != nil {
			return p, err
		}
	} else if v.RepeatHi > v.RepeatLo {
		span := uint64(v.RepeatHi - v.RepeatLo + 1)
		n = v.RepeatLo + int(rc.defaultRNG.Uint64()%span)
	}

	cur := p
	parts := make([]bitstream.Slice, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 && v.RepeatDelimiter != nil {
			next, err := specializeVariable(v.RepeatDelimiter, cur, rc)
			if err != nil {
				return p, err
			}
			parts = append(parts, bitsFor(next, v.RepeatDelimiter))
			cur = next
		}
		next, err := specializeVariable(v.RepeatChild, cur, rc)
		if err != nil {
			return p, err
		}
		parts = append(parts, bitsFor(next, v.RepeatChild))
		cur = next
	}
	var agg bitstream.Slice
	if len(parts) > 0 {
		agg = bitstream.Concat(parts[0], parts[1:]...)
	}
	return cur.bind(v.ID, agg), nil
}
