// Package parser implements the non-deterministic recursive-descent
// walker described in spec.md §4.2: given a variable tree and a bit
// stream, it enumerates every ParsingPath consistent with the tree's
// grammar, lazily, as an iter.Seq2 of successful paths.
package parser

import (
	"iter"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/vartree"
)

// MessageParser parses bit streams against a fixed variable tree.
type MessageParser struct {
	tree *vartree.Variable
	cfg  config
}

// New returns a MessageParser for tree.
func New(tree *vartree.Variable, opts ...Option) *MessageParser {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	return &MessageParser{tree: tree, cfg: cfg}
}

// ParseBits enumerates every ParsingPath that fully accounts for bits
// against the parser's tree, using mem as the per-message/session
// memory view. By default a path that leaves input unconsumed is
// dropped; pass WithMustConsumeEverything(false) to keep it (needed by
// FlowParser's segmentation).
func (mp *MessageParser) ParseBits(bits bitstream.Slice, mem *memory.Message, opts ...ParseOption) iter.Seq2[*ParsingPath, error] {
	pc := parseConfig{mustConsumeEverything: true}
	for _, o := range opts {
		o(&pc)
	}
	return func(yield func(*ParsingPath, error) bool) {
		start := ParsingPath{Cursor: bits, totalLen: bits.Len(), Memory: mem}
		for branch, err := range parseVariable(mp.tree, start, pc.carnivorous) {
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if pc.mustConsumeEverything && branch.Cursor.Len() != 0 {
				continue
			}
			if len(branch.pending) > 0 {
				if !yield(nil, &Error{Code: ErrUnresolvedRelation, Message: "a relation's target was never bound"}) {
					return
				}
				continue
			}
			b := branch
			if !yield(&b, nil) {
				return
			}
		}
	}
}

// Cursor pulls one ParsingPath at a time from a ParseBits iterator
// rather than driving it with a range loop, for callers (such as
// interactive tooling) that need to interleave other work between
// branches or stop after the first acceptable one without a sentinel
// "break" value threaded through the generator itself.
type Cursor struct {
	next func() (*ParsingPath, error, bool)
	stop func()
}

// NewCursor wraps seq for pull-based, single-step consumption.
func NewCursor(seq iter.Seq2[*ParsingPath, error]) *Cursor {
	next, stop := iter.Pull2(seq)
	return &Cursor{next: next, stop: stop}
}

// Next returns the next path/error pair, or ok=false once the
// underlying walk is exhausted.
func (c *Cursor) Next() (*ParsingPath, error, bool) {
	return c.next()
}

// Close releases the goroutine backing the pulled generator. Safe to
// call more than once, and safe to skip if Next was already drained
// to exhaustion.
func (c *Cursor) Close() {
	c.stop()
}
