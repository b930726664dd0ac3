// Package flow implements parse_flow (spec.md §4.6): decomposing a
// concatenated byte stream into a sequence of (symbol, assignments)
// segments by trying each candidate symbol against the remaining bits
// with must_consume_everything=false, then recursing on whatever that
// symbol's match left behind.
package flow

import (
	"iter"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/memory/persist"
	"github.com/fieldgraph/varspec/parser"
	"github.com/fieldgraph/varspec/vartree"
)

// Segment is one matched symbol within a flow decomposition.
type Segment struct {
	Symbol      *vartree.Symbol
	Assignments persist.Map[bitstream.Slice]
	Bits        bitstream.Slice
}

// FlowParser decomposes messages against a fixed, ordered list of
// candidate symbols. Order matters: spec.md §4.6 breaks ties "by
// symbol order in the input list".
type FlowParser struct {
	symbols []*vartree.Symbol
	parsers map[*vartree.Symbol]*parser.MessageParser
	cfg     config
}

// NewFlowParser returns a FlowParser trying symbols in the given order
// at every position.
func NewFlowParser(symbols []*vartree.Symbol, opts ...Option) *FlowParser {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	fp := &FlowParser{symbols: symbols, parsers: map[*vartree.Symbol]*parser.MessageParser{}, cfg: cfg}
	for _, sym := range symbols {
		fp.parsers[sym] = parser.New(symbolRoot(sym))
	}
	return fp
}

// symbolRoot returns the single tree parser.New needs to drive: the
// symbol's fields concatenated in order, or the lone field's domain
// directly when there is only one (avoiding a pointless wrapping Agg).
func symbolRoot(sym *vartree.Symbol) *vartree.Variable {
	if len(sym.Fields) == 1 {
		return sym.Fields[0].Domain
	}
	domains := make([]*vartree.Variable, len(sym.Fields))
	for i, f := range sym.Fields {
		domains[i] = f.Domain
	}
	return vartree.Agg(domains...)
}

// ParseFlow enumerates every complete segmentation of message into a
// sequence of symbol matches that together account for every byte.
func (fp *FlowParser) ParseFlow(message []byte, session *memory.Session) iter.Seq2[[]Segment, error] {
	bits := bitstream.FromBytes(message, bitstream.BigEndian)
	return func(yield func([]Segment, error) bool) {
		walkFlow(fp, bits, session.Begin(), nil, yield)
	}
}

// walkFlow tries every candidate symbol against remaining and recurses on
// the leftover cursor. head carries the session-scoped bindings accumulated
// by earlier segments of this branch, uncommitted: a later symbol may still
// fail every continuation and abandon the whole branch, so nothing is
// published to the shared Session until a full segmentation reaches the end
// of the message, at which point head.Commit() publishes every segment's
// writes in one shot. Each candidate still sees earlier segments' bindings
// in the meantime via head.Next(), so session-memoized lookups spanning
// segments resolve correctly during exploration.
func walkFlow(fp *FlowParser, remaining bitstream.Slice, head *memory.Message, prefix []Segment, yield func([]Segment, error) bool) bool {
	if remaining.Len() == 0 {
		head.Commit()
		out := append([]Segment{}, prefix...)
		return yield(out, nil)
	}
	if fp.cfg.maxSegments > 0 && len(prefix) >= fp.cfg.maxSegments {
		return true
	}

	for _, sym := range fp.symbols {
		mp := fp.parsers[sym]
		mem := head.Next()
		for p, err := range mp.ParseBits(remaining, mem, parser.WithMustConsumeEverything(false)) {
			if err != nil {
				// InvalidParsingPath/UnresolvedRelation just rules out
				// this candidate symbol at this position; spec.md §7
				// has this trigger backtracking, not a fatal stop.
				continue
			}
			consumedLen := remaining.Len() - p.Cursor.Len()
			if consumedLen == 0 {
				// A zero-width match would recurse forever at the same
				// offset; skip it rather than loop.
				continue
			}
			seg := Segment{
				Symbol:      sym,
				Assignments: p.Assignments,
				Bits:        remaining.Slice(0, consumedLen),
			}
			next := append(append([]Segment{}, prefix...), seg)
			if !walkFlow(fp, p.Cursor, p.Memory, next, yield) {
				return false
			}
		}
	}
	return true
}
