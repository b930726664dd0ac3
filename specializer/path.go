package specializer

import (
	"math"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/checksum"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/memory/persist"
	"github.com/fieldgraph/varspec/vartree"
)

// segment is one piece of the output under construction: either
// concrete bits, or a placeholder of known width standing in for a
// relation whose targets are not yet specialized (the "emit a hole,
// patch it later" model of spec.md §4.3/§4.4).
type segment struct {
	bits bitstream.Slice
	hole *vartree.Variable
}

// SpecializingPath is the specializer's analogue of parser.ParsingPath:
// an in-progress output, the bound value of every variable specialized
// so far, and the memory view for Message/Session scope.
type SpecializingPath struct {
	Assignments persist.Map[bitstream.Slice]
	Memory      *memory.Message
	Segments    []segment

	altSeen  map[vartree.VarId]int
	altDepth map[vartree.VarId]int
}

func (p SpecializingPath) consumed() int {
	total := 0
	for _, seg := range p.Segments {
		total += seg.bits.Len()
	}
	return total
}

func (p SpecializingPath) bind(id vartree.VarId, bits bitstream.Slice) SpecializingPath {
	p.Assignments = p.Assignments.Insert(uint64(id), bits)
	return p
}

func (p SpecializingPath) emit(bits bitstream.Slice) SpecializingPath {
	p.Segments = append(cloneSegments(p.Segments), segment{bits: bits})
	return p
}

func (p SpecializingPath) emitHole(v *vartree.Variable, width int) SpecializingPath {
	p.Segments = append(cloneSegments(p.Segments), segment{bits: bitstream.New(width, bitstream.BigEndian), hole: v})
	return p
}

func cloneSegments(s []segment) []segment {
	return append([]segment{}, s...)
}

// output concatenates every segment's bits into the final produced value.
func (p SpecializingPath) output() bitstream.Slice {
	if len(p.Segments) == 0 {
		return bitstream.Slice{}
	}
	parts := make([]bitstream.Slice, len(p.Segments))
	for i, seg := range p.Segments {
		parts[i] = seg.bits
	}
	return bitstream.Concat(parts[0], parts[1:]...)
}

// patchHoles resolves every placeholder segment left over once the
// whole tree has been walked once, now that every leaf (including
// ones declared after their relation) has a bound value.
func patchHoles(p SpecializingPath) (SpecializingPath, error) {
	for i, seg := range p.Segments {
		if seg.hole == nil {
			continue
		}
		targetBits, ok := gatherTargets(p, seg.hole.RelTargets)
		if !ok {
			return p, &Error{Code: ErrUnresolvedRelation, Message: "relation target was never specialized", Context: seg.hole.Name}
		}
		computed, err := computeRelation(seg.hole, targetBits)
		if err != nil {
			return p, &Error{Code: ErrUnresolvedRelation, Message: err.Error(), Context: seg.hole.Name}
		}
		fresh := cloneSegments(p.Segments)
		fresh[i] = segment{bits: computed}
		p.Segments = fresh
		p = p.bind(seg.hole.ID, computed)
	}
	return p, nil
}

func gatherTargets(p SpecializingPath, targets []*vartree.Variable) (bitstream.Slice, bool) {
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

// staticBitLen mirrors parser.staticBitLen: the bit length of v when
// determinable purely from static type/shape information.
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
