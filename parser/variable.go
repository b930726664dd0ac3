package parser

import (
	"iter"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/types"
	"github.com/fieldgraph/varspec/vartree"
)

// parseVariable dispatches to the handler for v.Kind. Every handler
// enumerates every branch consistent with p's cursor, yielding
// (ParsingPath, nil) for each, or (_, err) for an iterator-level
// failure. Branch-local mismatches are never yielded at all: the
// branch is simply skipped, per spec.md §7's ParseMiss policy.
//
// isLast is true only when v occupies the final position of the
// top-level tree on this branch: the last top-level leaf may consume
// the remaining input even past its type's max length when the
// caller asked for carnivorous mode (WithCarnivorous). It is threaded
// down through Agg/Repeat/Opt/Alt so only the structurally last Data
// leaf ever sees it as true; every other position always parses with
// isLast=false regardless of what the caller requested.
func parseVariable(v *vartree.Variable, p ParsingPath, isLast bool) iter.Seq2[ParsingPath, error] {
	switch v.Kind {
	case vartree.KindData:
		return parseData(v, p, isLast)
	case vartree.KindRelation:
		return parseRelation(v, p)
	case vartree.KindAlt:
		return parseAlt(v, p, isLast)
	case vartree.KindAgg:
		return parseAgg(v, p, isLast)
	case vartree.KindRepeat:
		return parseRepeat(v, p, isLast)
	case vartree.KindOpt:
		return parseOpt(v, p, isLast)
	default:
		return func(yield func(ParsingPath, error) bool) {
			yield(p, &Error{Code: ErrInvalidParsingPath, Message: "unknown variable kind"})
		}
	}
}

// bitsFor returns the bits p has already bound for v, or the empty
// slice if v was never bound on this branch (should not happen for a
// v just yielded by parseVariable).
func bitsFor(p ParsingPath, v *vartree.Variable) bitstream.Slice {
	b, _ := p.Assignments.Get(uint64(v.ID))
	return b
}

func cloneSlices(s []bitstream.Slice) []bitstream.Slice {
	return append([]bitstream.Slice{}, s...)
}

// candidateLengths enumerates the bit lengths worth trying for a Data
// leaf of type t against available remaining bits. A fixed-size type
// has exactly one candidate. A carnivorous leaf (the last leaf of a
// top-level parse) consumes everything available in one shot. An
// unbounded or wide-ranged type enumerates ascending, capped by what
// remains in the cursor.
func candidateLengths(t types.Type, available int, carnivorous bool) []int {
	b := t.Size()
	if b.Fixed() {
		if b.Min > available {
			return nil
		}
		return []int{b.Min}
	}
	if carnivorous {
		if available < b.Min {
			return nil
		}
		return []int{available}
	}
	max := b.Max
	if b.Unbounded || max > available {
		max = available
	}
	if max < b.Min {
		return nil
	}
	out := make([]int, 0, max-b.Min+1)
	for n := b.Min; n <= max; n++ {
		out = append(out, n)
	}
	return out
}

// tryBindFixed attempts to bind v to exactly bits, requiring the
// cursor's next len(bits) bits to match bits exactly. Used for
// Constant scope and for repeat encounters of Message/Session scope,
// both of which require an exact match against a previously fixed
// value rather than free enumeration.
func tryBindFixed(p ParsingPath, v *vartree.Variable, bits bitstream.Slice, yield func(ParsingPath, error) bool) bool {
	n := bits.Len()
	if n > p.Cursor.Len() {
		return true
	}
	if !p.Cursor.Slice(0, n).Equal(bits) {
		return true
	}
	next := p
	next.Cursor = p.Cursor.Slice(n, p.Cursor.Len())
	next = next.bind(v.ID, bits)
	resolved, ok := resolvePending(next)
	if !ok {
		return true
	}
	return yield(resolved, nil)
}

func parseData(v *vartree.Variable, p ParsingPath, isLast bool) iter.Seq2[ParsingPath, error] {
	return func(yield func(ParsingPath, error) bool) {
		if v.Value != nil {
			tryBindFixed(p, v, *v.Value, yield)
			return
		}
		if v.Scope == vartree.ScopeMessage || v.Scope == vartree.ScopeSession {
			if bits, ok := p.Memory.Get(v.ID); ok {
				tryBindFixed(p, v, bits, yield)
				return
			}
		}
		for _, n := range candidateLengths(v.Type, p.Cursor.Len(), isLast) {
			candidate := p.Cursor.Slice(0, n)
			probe := candidate
			if b := v.Type.Size(); isLast && !b.Unbounded && n > b.Max {
				// A carnivorous leaf past its type's max is checked on
				// its first max bits; the rest is taken as-is.
				probe = candidate.Slice(0, b.Max)
			}
			if !v.Type.CanParse(probe) {
				continue
			}
			next := p
			next.Cursor = p.Cursor.Slice(n, p.Cursor.Len())
			next = next.bind(v.ID, candidate)
			if v.Scope == vartree.ScopeMessage || v.Scope == vartree.ScopeSession {
				next.Memory = next.Memory.Set(v.ID, v.Scope, candidate)
			}
			resolved, ok := resolvePending(next)
			if !ok {
				continue
			}
			if !yield(resolved, nil) {
				return
			}
		}
	}
}

func parseRelation(v *vartree.Variable, p ParsingPath) iter.Seq2[ParsingPath, error] {
	return func(yield func(ParsingPath, error) bool) {
		if v.RelKind == vartree.RelationPadding {
			n := paddingNeeded(p.consumed(), v.RelModulo)
			if n > p.Cursor.Len() {
				return
			}
			bits := p.Cursor.Slice(0, n)
			next := p
			next.Cursor = p.Cursor.Slice(n, p.Cursor.Len())
			next = next.bind(v.ID, bits)
			yield(next, nil)
			return
		}

		width, ok := relationWidth(v)
		if !ok {
			yield(p, &Error{Code: ErrUnresolvedRelation, Message: "relation has no statically known width", Context: v.Name})
			return
		}
		if width > p.Cursor.Len() {
			return
		}
		bits := p.Cursor.Slice(0, width)
		next := p
		next.Cursor = p.Cursor.Slice(width, p.Cursor.Len())
		next = next.bind(v.ID, bits)

		if targetBits, ok := gatherTargets(next, v.RelTargets); ok {
			expected, err := computeRelation(v, targetBits)
			if err != nil {
				return
			}
			if !bits.Equal(expected) {
				return
			}
		} else {
			next.pending = append(cloneRel(next.pending), pendingRelation{rel: v, bits: bits})
		}

		resolved, ok := resolvePending(next)
		if !ok {
			return
		}
		yield(resolved, nil)
	}
}

func cloneRel(s []pendingRelation) []pendingRelation {
	return append([]pendingRelation{}, s...)
}

// withAltSeen records that v is being entered at the given cursor
// length, returning ok=false if v was already entered at that exact
// length earlier on this branch (a recursion that consumed no bits,
// which would otherwise loop forever), per spec.md §4.8.
func withAltSeen(p ParsingPath, id vartree.VarId, cursorLen int) (ParsingPath, bool) {
	if prev, seen := p.altSeen[id]; seen && prev == cursorLen {
		return p, false
	}
	cp := make(map[vartree.VarId]int, len(p.altSeen)+1)
	for k, v := range p.altSeen {
		cp[k] = v
	}
	cp[id] = cursorLen
	p.altSeen = cp
	return p, true
}

func parseAlt(v *vartree.Variable, p ParsingPath, isLast bool) iter.Seq2[ParsingPath, error] {
	return func(yield func(ParsingPath, error) bool) {
		guarded, ok := withAltSeen(p, v.ID, p.Cursor.Len())
		if !ok {
			yield(p, &Error{Code: ErrRecursionLimit, Message: "alt entered twice without consuming input", Context: v.Name})
			return
		}

		tryChild := func(child *vartree.Variable) bool {
			for branch, err := range parseVariable(child, guarded, isLast) {
				if err != nil {
					if !yield(branch, err) {
						return false
					}
					continue
				}
				bound := branch.bind(v.ID, bitsFor(branch, child))
				if !yield(bound, nil) {
					return false
				}
			}
			return true
		}

		if v.AltCallback != nil {
			idx := v.AltCallback()
			if idx == -1 {
				idx = len(v.AltChildren) - 1
			}
			if idx < 0 || idx >= len(v.AltChildren) {
				yield(p, &Error{Code: ErrInvalidParsingPath, Message: "alt callback returned out-of-range index", Context: v.Name})
				return
			}
			tryChild(v.AltChildren[idx])
			return
		}

		for _, child := range v.AltChildren {
			if !tryChild(child) {
				return
			}
		}
	}
}

func parseAgg(v *vartree.Variable, p ParsingPath, isLast bool) iter.Seq2[ParsingPath, error] {
	return func(yield func(ParsingPath, error) bool) {
		walkAgg(v, v.AggChildren, p, isLast, yield)
	}
}

// walkAgg enumerates every way to parse remaining in declaration
// order, starting from p. It returns false once yield has asked to
// stop, so the caller can unwind without trying further branches.
// isLast only reaches the final element of remaining: every earlier
// child is necessarily followed by more of the tree, so it can never
// be the carnivorous tail.
func walkAgg(v *vartree.Variable, remaining []*vartree.Variable, p ParsingPath, isLast bool, yield func(ParsingPath, error) bool) bool {
	if len(remaining) == 0 {
		parts := make([]bitstream.Slice, len(v.AggChildren))
		for i, c := range v.AggChildren {
			parts[i] = bitsFor(p, c)
		}
		var agg bitstream.Slice
		if len(parts) > 0 {
			agg = bitstream.Concat(parts[0], parts[1:]...)
		}
		bound := p.bind(v.ID, agg)
		resolved, ok := resolvePending(bound)
		if !ok {
			return true
		}
		return yield(resolved, nil)
	}
	childIsLast := isLast && len(remaining) == 1
	for branch, err := range parseVariable(remaining[0], p, childIsLast) {
		if err != nil {
			if !yield(branch, err) {
				return false
			}
			continue
		}
		if !walkAgg(v, remaining[1:], branch, isLast, yield) {
			return false
		}
	}
	return true
}

func parseOpt(v *vartree.Variable, p ParsingPath, isLast bool) iter.Seq2[ParsingPath, error] {
	return func(yield func(ParsingPath, error) bool) {
		for branch, err := range parseVariable(v.OptChild, p, isLast) {
			if err != nil {
				if !yield(branch, err) {
					return
				}
				continue
			}
			bound := branch.bind(v.ID, bitsFor(branch, v.OptChild))
			if !yield(bound, nil) {
				return
			}
		}
		bound := p.bind(v.ID, bitstream.Slice{})
		resolved, ok := resolvePending(bound)
		if ok {
			yield(resolved, nil)
		}
	}
}

func parseRepeat(v *vartree.Variable, p ParsingPath, isLast bool) iter.Seq2[ParsingPath, error] {
	return func(yield func(ParsingPath, error) bool) {
		for n := v.RepeatLo; n <= v.RepeatHi; n++ {
			if !walkRepeat(v, n, p, nil, isLast, yield) {
				return
			}
		}
	}
}

// walkRepeat descends through the remaining occurrences of v.
// isLast only ever reaches the child parsed on the final occurrence
// (remaining == 1): every earlier occurrence, and every delimiter, is
// necessarily followed by more of the repeat or the rest of the tree.
func walkRepeat(v *vartree.Variable, remaining int, p ParsingPath, parts []bitstream.Slice, isLast bool, yield func(ParsingPath, error) bool) bool {
	if remaining == 0 {
		var agg bitstream.Slice
		if len(parts) > 0 {
			agg = bitstream.Concat(parts[0], parts[1:]...)
		}
		bound := p.bind(v.ID, agg)
		resolved, ok := resolvePending(bound)
		if !ok {
			return true
		}
		return yield(resolved, nil)
	}
	if v.RepeatDelimiter != nil && len(parts) > 0 {
		for dbranch, err := range parseVariable(v.RepeatDelimiter, p, false) {
			if err != nil {
				if !yield(dbranch, err) {
					return false
				}
				continue
			}
			dparts := append(cloneSlices(parts), bitsFor(dbranch, v.RepeatDelimiter))
			if !walkRepeatChild(v, remaining, dbranch, dparts, isLast, yield) {
				return false
			}
		}
		return true
	}
	return walkRepeatChild(v, remaining, p, parts, isLast, yield)
}

func walkRepeatChild(v *vartree.Variable, remaining int, p ParsingPath, parts []bitstream.Slice, isLast bool, yield func(ParsingPath, error) bool) bool {
	childIsLast := isLast && remaining == 1
	for branch, err := range parseVariable(v.RepeatChild, p, childIsLast) {
		if err != nil {
			if !yield(branch, err) {
				return false
			}
			continue
		}
		nparts := append(cloneSlices(parts), bitsFor(branch, v.RepeatChild))
		if !walkRepeat(v, remaining-1, branch, nparts, isLast, yield) {
			return false
		}
	}
	return true
}
