package parser

import (
	"math"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/checksum"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/memory/persist"
	"github.com/fieldgraph/varspec/vartree"
)

// ParsingPath is one branch of the non-deterministic parse: a cursor
// over the remaining input, a persistent map from every bound
// variable (leaf or node) to its concatenated encoded bits, the
// per-message/session memory view, and any relations still waiting on
// a target that has not yet been bound.
type ParsingPath struct {
	Cursor      bitstream.Slice
	Assignments persist.Map[bitstream.Slice]
	Memory      *memory.Message

	totalLen int
	pending  []pendingRelation
	altSeen  map[vartree.VarId]int
}

type pendingRelation struct {
	rel  *vartree.Variable
	bits bitstream.Slice
}

func (p ParsingPath) consumed() int { return p.totalLen - p.Cursor.Len() }

func (p ParsingPath) bind(id vartree.VarId, bits bitstream.Slice) ParsingPath {
	p.Assignments = p.Assignments.Insert(uint64(id), bits)
	return p
}

// resolvePending validates any pending relation whose targets are now
// fully bound. It returns ok=false when a relation resolves to a
// mismatch, meaning this branch must be silently pruned per spec.md
// §7's ParseMiss policy.
func resolvePending(p ParsingPath) (ParsingPath, bool) {
	if len(p.pending) == 0 {
		return p, true
	}
	remaining := p.pending[:0:0]
	for _, pr := range p.pending {
		targetBits, ok := gatherTargets(p, pr.rel.RelTargets)
		if !ok {
			remaining = append(remaining, pr)
			continue
		}
		expected, err := computeRelation(pr.rel, targetBits)
		if err != nil {
			return p, false
		}
		if !pr.bits.Equal(expected) {
			return p, false
		}
	}
	p.pending = remaining
	return p, true
}

func gatherTargets(p ParsingPath, targets []*vartree.Variable) (bitstream.Slice, bool) {
	parts := make([]bitstream.Slice, 0, len(targets))
	for _, t := range targets {
		b, ok := p.Assignments.Get(uint64(t.ID))
		if !ok {
			return bitstream.Slice{}, false
		}
		parts = append(parts, b)
	}
	if len(parts) == 0 {
		return bitstream.Slice{}, true
	}
	return bitstream.Concat(parts[0], parts[1:]...), true
}

// staticBitLen returns v's bit length when it is determinable purely
// from static type/shape information, without consulting any bound
// value. Used to size a Value relation leaf ahead of knowing its
// targets' actual bits.
func staticBitLen(v *vartree.Variable) (int, bool) {
	switch v.Kind {
	case vartree.KindData:
		b := v.Type.Size()
		if !b.Fixed() {
			return 0, false
		}
		return b.Min, true
	case vartree.KindRelation:
		return relationWidth(v)
	case vartree.KindAgg:
		total := 0
		for _, c := range v.AggChildren {
			n, ok := staticBitLen(c)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true
	case vartree.KindRepeat:
		if v.RepeatLo != v.RepeatHi {
			return 0, false
		}
		n, ok := staticBitLen(v.RepeatChild)
		if !ok {
			return 0, false
		}
		total := n * v.RepeatLo
		if v.RepeatDelimiter != nil && v.RepeatLo > 1 {
			d, ok := staticBitLen(v.RepeatDelimiter)
			if !ok {
				return 0, false
			}
			total += d * (v.RepeatLo - 1)
		}
		return total, true
	case vartree.KindAlt:
		if len(v.AltChildren) == 0 {
			return 0, false
		}
		first, ok := staticBitLen(v.AltChildren[0])
		if !ok {
			return 0, false
		}
		for _, c := range v.AltChildren[1:] {
			n, ok := staticBitLen(c)
			if !ok || n != first {
				return 0, false
			}
		}
		return first, true
	default:
		return 0, false
	}
}

// relationWidth returns the statically known bit length of a
// Relation leaf's own emitted value, independent of whether its
// targets are currently bound.
func relationWidth(v *vartree.Variable) (int, bool) {
	switch v.RelKind {
	case vartree.RelationSize:
		b := v.RelType.Size()
		if !b.Fixed() {
			return 0, false
		}
		return b.Min, true
	case vartree.RelationChecksum:
		return checksum.Algo(v.ChecksumAlgoID).Size(), true
	case vartree.RelationValue:
		total := 0
		for _, t := range v.RelTargets {
			n, ok := staticBitLen(t)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true
	default:
		return 0, false
	}
}

// computeRelation evaluates v's relation function over the
// concatenated bits of its (now-bound) targets.
func computeRelation(v *vartree.Variable, targetBits bitstream.Slice) (bitstream.Slice, error) {
	switch v.RelKind {
	case vartree.RelationSize:
		n := targetBits.Len()
		val := int64(math.Round(float64(n)*v.RelFactor + v.RelOffset))
		return v.RelType.Encode(val)
	case vartree.RelationValue:
		return targetBits, nil
	case vartree.RelationChecksum:
		algo := checksum.Algo(v.ChecksumAlgoID)
		sum, err := checksum.Compute(algo, targetBits.Bytes())
		if err != nil {
			return bitstream.Slice{}, err
		}
		return bitstream.FromBytes(sum, bitstream.BigEndian), nil
	default:
		return bitstream.Slice{}, &Error{Code: ErrUnresolvedRelation, Message: "unsupported relation kind for computation"}
	}
}

// paddingNeeded returns how many bits to consume/emit so that
// consumed+needed is congruent to 0 modulo modulo.
func paddingNeeded(consumed, modulo int) int {
	if modulo <= 0 {
		return 0
	}
	rem := consumed % modulo
	if rem == 0 {
		return 0
	}
	return modulo - rem
}
