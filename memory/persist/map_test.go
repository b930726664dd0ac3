package persist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldgraph/varspec/memory/persist"
)

func TestInsertGet(t *testing.T) {
	var m persist.Map[string]
	m = m.Insert(42, "hello")
	v, ok := m.Get(42)
	assert.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestInsertDistinguishesLowNibble(t *testing.T) {
	var m persist.Map[int]
	m = m.Insert(0x10, 1)
	m = m.Insert(0x11, 2)
	v1, _ := m.Get(0x10)
	v2, _ := m.Get(0x11)
	assert.Equal(t, 1, v1)
	assert.Equal(t, 2, v2)
}

func TestBranchDoesNotMutateOriginal(t *testing.T) {
	var base persist.Map[int]
	base = base.Insert(1, 100)
	branch := base.Insert(2, 200)

	_, baseHasTwo := base.Get(2)
	assert.False(t, baseHasTwo)

	v, ok := branch.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 100, v)
}

func TestDeleteRemovesKey(t *testing.T) {
	var m persist.Map[int]
	m = m.Insert(7, 70)
	m2 := m.Delete(7)
	_, ok := m2.Get(7)
	assert.False(t, ok)
	v, ok := m.Get(7)
	assert.True(t, ok)
	assert.Equal(t, 70, v)
}

func TestLenAndRange(t *testing.T) {
	var m persist.Map[int]
	keys := []uint64{1, 2, 3, 0xFFFFFFFFFFFF}
	for i, k := range keys {
		m = m.Insert(k, i)
	}
	assert.Equal(t, len(keys), m.Len())

	seen := map[uint64]bool{}
	m.Range(func(k uint64, v int) bool {
		seen[k] = true
		return true
	})
	assert.Len(t, seen, len(keys))
}

func TestOverwriteKey(t *testing.T) {
	var m persist.Map[int]
	m = m.Insert(5, 1)
	m = m.Insert(5, 2)
	v, ok := m.Get(5)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}
