package memsnap_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/memsnap"
	"github.com/fieldgraph/varspec/vartree"
)

func TestWriteReadRoundTrip(t *testing.T) {
	session := memory.NewSession()
	msg := session.Begin()
	v1 := bitstream.FromBytes([]byte{0xAA, 0xBB}, bitstream.BigEndian)
	v2 := bitstream.FromBytes([]byte{0x01}, bitstream.LittleEndian).Slice(0, 5)
	msg = msg.Set(1, vartree.ScopeSession, v1)
	msg = msg.Set(2, vartree.ScopeSession, v2)
	msg.Commit()

	var buf bytes.Buffer
	require.NoError(t, memsnap.Write(&buf, session))

	restored, err := memsnap.Read(&buf)
	require.NoError(t, err)

	got1, ok := restored.Begin().Get(1)
	require.True(t, ok)
	assert.Equal(t, v1.Bytes(), got1.Bytes())

	got2, ok := restored.Begin().Get(2)
	require.True(t, ok)
	assert.Equal(t, 5, got2.Len())
	assert.Equal(t, v2.Bytes(), got2.Bytes())
}

func TestReadRejectsBadMagic(t *testing.T) {
	_, err := memsnap.Read(bytes.NewReader([]byte("nope")))
	require.Error(t, err)
}

func TestRestoreIntoReplacesExistingBindings(t *testing.T) {
	src := memory.NewSession()
	m := src.Begin().Set(9, vartree.ScopeSession, bitstream.FromBytes([]byte{0x7f}, bitstream.BigEndian))
	m.Commit()

	var buf bytes.Buffer
	require.NoError(t, memsnap.Write(&buf, src))

	dst := memory.NewSession()
	stale := dst.Begin().Set(1, vartree.ScopeSession, bitstream.FromBytes([]byte{0x00}, bitstream.BigEndian))
	stale.Commit()

	require.NoError(t, memsnap.RestoreInto(&buf, dst))

	_, staleStillThere := dst.Begin().Get(1)
	assert.False(t, staleStillThere)
	got, ok := dst.Begin().Get(9)
	require.True(t, ok)
	assert.Equal(t, byte(0x7f), got.Bytes()[0])
}
