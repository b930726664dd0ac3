// Package memory implements the two-layer value store described in
// spec.md §4.5: a session-wide layer that lives across messages, and
// a per-message layer reset at the start of every top-level
// parse/specialize. Lookups consult the per-message layer first, then
// fall back to the session layer; writes go to the layer matching the
// variable's scope.
package memory

import (
	"sync"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/memory/persist"
	"github.com/fieldgraph/varspec/vartree"
)

// Session owns the values memoized under ScopeSession, shared across
// every message processed against it. It is the session driver's
// object: concurrent use requires disjoint Sessions per spec.md §5.
type Session struct {
	mu     sync.Mutex
	values persist.Map[bitstream.Slice]
}

// NewSession returns an empty session-wide memory.
func NewSession() *Session {
	return &Session{}
}

// Begin starts a new per-message layer chained in front of the
// session's current snapshot. The returned Message sees the session
// state as of this call; later writes to other messages (even
// concurrent ones on distinct Messages) do not retroactively appear.
func (s *Session) Begin() *Message {
	s.mu.Lock()
	snapshot := s.values
	s.mu.Unlock()
	return &Message{session: s, sessionView: snapshot}
}

// Entry is one bound VarId for snapshotting.
type Entry struct {
	ID    vartree.VarId
	Value bitstream.Slice
}

// Entries returns every session-scoped binding, for memsnap to serialize.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, s.values.Len())
	s.values.Range(func(key uint64, v bitstream.Slice) bool {
		out = append(out, Entry{ID: vartree.VarId(key), Value: v})
		return true
	})
	return out
}

// LoadEntries replaces the session's bindings with entries, for
// memsnap to restore a prior snapshot.
func (s *Session) LoadEntries(entries []Entry) {
	var m persist.Map[bitstream.Slice]
	for _, e := range entries {
		m = m.Insert(uint64(e.ID), e.Value)
	}
	s.mu.Lock()
	s.values = m
	s.mu.Unlock()
}

// Message is the per-top-level-invocation memory layer. It is an
// immutable value: Set returns a new *Message rather than mutating
// the receiver, so that branching a path (Alt fanout, Repeat) is a
// cheap duplication that shares every unwritten subtree, per spec.md
// §4.5's "duplication must be O(1) amortized" requirement.
type Message struct {
	session     *Session
	sessionView persist.Map[bitstream.Slice]
	local       persist.Map[bitstream.Slice]
}

// Get looks up id, consulting the per-message layer first, then the
// session layer, per spec.md §4.5's lookup order.
func (m *Message) Get(id vartree.VarId) (bitstream.Slice, bool) {
	if v, ok := m.local.Get(uint64(id)); ok {
		return v, true
	}
	return m.sessionView.Get(uint64(id))
}

// Clone returns a shallow copy of m. Because local/sessionView are
// persist.Map values (already copy-on-write), this is O(1).
func (m *Message) Clone() *Message {
	cp := *m
	return &cp
}

// Set returns a new Message with id bound to value in the layer
// matching scope: ScopeSession writes to the session-wide view
// (visible to Commit, not yet to other in-flight Messages), every
// other scope writes to the per-message layer.
func (m *Message) Set(id vartree.VarId, scope vartree.Scope, value bitstream.Slice) *Message {
	cp := m.Clone()
	if scope == vartree.ScopeSession {
		cp.sessionView = cp.sessionView.Insert(uint64(id), value)
	} else {
		cp.local = cp.local.Insert(uint64(id), value)
	}
	return cp
}

// Next starts the memory layer for the message that logically follows
// m within the same branch of exploration, carrying m's session-scoped
// writes forward as the starting view even though m itself has not
// been (and may never be) committed. This lets a multi-message walk
// (flow's segmentation, trying one symbol after another) see earlier
// segments' ScopeSession bindings while still deferring the actual
// Session.Commit until the whole walk succeeds and the branch is known
// not to be abandoned.
func (m *Message) Next() *Message {
	return &Message{session: m.session, sessionView: m.sessionView}
}

// Commit publishes m's session-scoped writes back into the owning
// Session so that later Begin() calls observe them. Call once per
// successfully completed top-level parse/specialize; branches
// discarded mid-parse never call Commit and so never affect the
// session.
func (m *Message) Commit() {
	m.session.mu.Lock()
	m.session.values = m.sessionView
	m.session.mu.Unlock()
}
