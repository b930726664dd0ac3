package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/vartree"
)

func TestMessageSetLeavesOriginalUnchanged(t *testing.T) {
	sess := memory.NewSession()
	msg := sess.Begin()

	v := bitstream.FromBytes([]byte{0x01}, bitstream.BigEndian)
	msg2 := msg.Set(1, vartree.ScopeMessage, v)

	got, ok := msg2.Get(1)
	assert.True(t, ok)
	assert.Equal(t, v.Bytes(), got.Bytes())

	_, stillAbsent := msg.Get(1)
	assert.False(t, stillAbsent, "original message must be unaffected by Set's returned copy")
}

func TestSessionCommitPersistsAcrossMessages(t *testing.T) {
	sess := memory.NewSession()
	msg1 := sess.Begin()
	v := bitstream.FromBytes([]byte{0xAA}, bitstream.BigEndian)
	msg1 = msg1.Set(5, vartree.ScopeSession, v)
	msg1.Commit()

	msg2 := sess.Begin()
	got, ok := msg2.Get(5)
	assert.True(t, ok)
	assert.Equal(t, v.Bytes(), got.Bytes())
}

func TestUncommittedSessionWriteDoesNotLeak(t *testing.T) {
	sess := memory.NewSession()
	msg1 := sess.Begin()
	v := bitstream.FromBytes([]byte{0xAA}, bitstream.BigEndian)
	msg1.Set(5, vartree.ScopeSession, v) // not committed, not reassigned

	msg2 := sess.Begin()
	_, ok := msg2.Get(5)
	assert.False(t, ok)
}

func TestEntriesRoundTripThroughLoadEntries(t *testing.T) {
	sess := memory.NewSession()
	msg := sess.Begin()
	v := bitstream.FromBytes([]byte{0x7f}, bitstream.BigEndian)
	msg = msg.Set(9, vartree.ScopeSession, v)
	msg.Commit()

	entries := sess.Entries()
	assert.Len(t, entries, 1)

	restored := memory.NewSession()
	restored.LoadEntries(entries)
	got, ok := restored.Begin().Get(9)
	assert.True(t, ok)
	assert.Equal(t, v.Bytes(), got.Bytes())
}
