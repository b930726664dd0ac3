// Package vartree declares the variable-domain tree: leaves that carry
// concrete types or cross-tree relations, and nodes that express
// alternation, aggregation, repetition and optionality. Construction
// is programmatic (Data/Alt/Agg/Repeat/Opt/...) or declarative via the
// schema package.
package vartree

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/types"
)

// VarId is a stable identity for a Variable, minted by a monotonic
// counter (NewVarId).
type VarId uint64

var nextID atomic.Uint64

// NewVarId mints a fresh, process-unique identifier.
func NewVarId() VarId {
	return VarId(nextID.Add(1))
}

// Scope governs value reuse across parses/specializations of a Variable.
type Scope uint8

const (
	// ScopeNone re-generates/re-parses freely each encounter.
	ScopeNone Scope = iota
	// ScopeConstant requires an exact match against a pre-set value.
	ScopeConstant
	// ScopeMessage learns on first encounter within a message and must
	// match on subsequent encounters within the same message.
	ScopeMessage
	// ScopeSession is like ScopeMessage but memory persists across
	// messages within a session.
	ScopeSession
)

func (s Scope) String() string {
	switch s {
	case ScopeConstant:
		return "constant"
	case ScopeMessage:
		return "message"
	case ScopeSession:
		return "session"
	default:
		return "none"
	}
}

// Kind tags the concrete variant a Variable holds. It is a closed set:
// every Variable is exactly one of these, never a type outside it.
type Kind uint8

const (
	KindData Kind = iota
	KindRelation
	KindAlt
	KindAgg
	KindRepeat
	KindOpt
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindRelation:
		return "relation"
	case KindAlt:
		return "alt"
	case KindAgg:
		return "agg"
	case KindRepeat:
		return "repeat"
	case KindOpt:
		return "opt"
	default:
		return "unknown"
	}
}

// RelationKind names the function a Relation leaf computes over its targets.
type RelationKind uint8

const (
	RelationSize RelationKind = iota
	RelationValue
	RelationChecksum
	RelationPadding
)

func (k RelationKind) String() string {
	switch k {
	case RelationSize:
		return "size"
	case RelationValue:
		return "value"
	case RelationChecksum:
		return "checksum"
	case RelationPadding:
		return "padding"
	default:
		return "unknown"
	}
}

// AltCallback picks a deterministic child index; -1 picks the last
// child, in both parse and specialize. An Alt with no callback tries
// every child (parse) or picks one uniformly at random, or by its fuzz
// mutator (specialize).
type AltCallback func() int

// TypeError reports misuse of the construction API: a wrong-kind
// argument passed to a constructor. It is fatal at construction and
// never recovered by the engine.
type TypeError struct {
	Op     string
	Reason string
}

func (e *TypeError) Error() string { return fmt.Sprintf("vartree: %s: %s", e.Op, e.Reason) }

// ValueError reports a valid-kind but out-of-domain argument (for
// example a Repeat with lo > hi).
type ValueError struct {
	Op     string
	Reason string
}

func (e *ValueError) Error() string { return fmt.Sprintf("vartree: %s: %s", e.Op, e.Reason) }

var errCyclic = errors.New("vartree: variable graph contains a cycle")

// Variable is a node or leaf of the declarative format tree. Exactly
// one of the kind-specific fields below is meaningful, selected by
// Kind; this mirrors a closed sum type without introducing a separate
// interface per variant.
type Variable struct {
	ID    VarId
	Name  string
	Scope Scope
	Kind  Kind

	// KindData
	Type  types.Type
	Value *bitstream.Slice // pre-set bit-slice, nil means no pre-set value

	// KindRelation
	RelTargets     []*Variable
	RelKind        RelationKind
	RelType        types.Type
	RelFactor      float64
	RelOffset      float64
	RelModulo      int
	RelOnce        bool
	ChecksumAlgoID uint8 // interpreted by package checksum; 0 = default CRC32

	// KindAlt
	AltChildren []*Variable
	AltCallback AltCallback

	// KindAgg
	AggChildren []*Variable

	// KindRepeat
	RepeatChild     *Variable
	RepeatLo        int
	RepeatHi        int
	RepeatDelimiter *Variable

	// KindOpt
	OptChild *Variable
}

// IsNode reports whether v has children, per spec.md's is_node invariant.
func (v *Variable) IsNode() bool {
	switch v.Kind {
	case KindAlt, KindAgg, KindRepeat, KindOpt:
		return true
	default:
		return false
	}
}

// Children returns v's ordered child list, empty for leaves.
func (v *Variable) Children() []*Variable {
	switch v.Kind {
	case KindAlt:
		return v.AltChildren
	case KindAgg:
		return v.AggChildren
	case KindRepeat:
		if v.RepeatDelimiter != nil {
			return []*Variable{v.RepeatChild, v.RepeatDelimiter}
		}
		return []*Variable{v.RepeatChild}
	case KindOpt:
		return []*Variable{v.OptChild}
	default:
		return nil
	}
}

// CheckAcyclic walks v's graph and returns errCyclic if any variable is
// its own ancestor. Shared children (the same *Variable reachable via
// two parents) are permitted and treated as the same logical slot.
func CheckAcyclic(v *Variable) error {
	return checkAcyclic(v, map[*Variable]bool{})
}

func checkAcyclic(v *Variable, onStack map[*Variable]bool) error {
	if v == nil {
		return nil
	}
	if onStack[v] {
		return errCyclic
	}
	onStack[v] = true
	for _, c := range v.Children() {
		if err := checkAcyclic(c, onStack); err != nil {
			return err
		}
	}
	onStack[v] = false
	return nil
}

// CountEstimate returns an over-approximation of the number of
// distinct bit-streams v's domain can produce, clamped to 2^32 when
// any descendant is unbounded (repeat with no effective upper bound,
// a type whose Size is unbounded, or a variable that is its own
// ancestor). Used to interpret a fuzz global_counter_max expressed as
// a ratio.
func (v *Variable) CountEstimate() uint64 {
	const clamp = uint64(1) << 32
	n := v.countEstimate(clamp, map[*Variable]bool{})
	if n > clamp {
		return clamp
	}
	return n
}

func (v *Variable) countEstimate(clamp uint64, onStack map[*Variable]bool) uint64 {
	if v == nil {
		return 1
	}
	if onStack[v] {
		return clamp
	}
	onStack[v] = true
	defer delete(onStack, v)
	switch v.Kind {
	case KindData:
		b := v.Type.Size()
		if b.Unbounded {
			return clamp
		}
		if b.Max-b.Min > 60 {
			return clamp
		}
		return uint64(1) << uint(b.Max-b.Min+1)
	case KindRelation:
		return 1
	case KindAlt:
		var sum uint64
		for _, c := range v.AltChildren {
			sum += c.countEstimate(clamp, onStack)
			if sum > clamp {
				return clamp
			}
		}
		return sum
	case KindAgg:
		prod := uint64(1)
		for _, c := range v.AggChildren {
			prod *= c.countEstimate(clamp, onStack)
			if prod > clamp {
				return clamp
			}
		}
		return prod
	case KindRepeat:
		if v.RepeatHi <= 0 {
			return clamp
		}
		child := v.RepeatChild.countEstimate(clamp, onStack)
		var total uint64
		for n := v.RepeatLo; n <= v.RepeatHi; n++ {
			p := uint64(1)
			for i := 0; i < n; i++ {
				p *= child
				if p > clamp {
					p = clamp
					break
				}
			}
			total += p
			if total > clamp {
				return clamp
			}
		}
		return total
	case KindOpt:
		return v.OptChild.countEstimate(clamp, onStack) + 1
	default:
		return 1
	}
}
