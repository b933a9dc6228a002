package fsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyMapInsert(t *testing.T) {
	m := newKeyMap(withCapacity(2))
	id, added := m.Insert([]int32{1, 2})
	assert.True(t, added)
	assert.Equal(t, 0, id)

	id, added = m.Insert([]int32{2, 1})
	assert.True(t, added)
	assert.Equal(t, 1, id)

	id, added = m.Insert([]int32{1, 2})
	assert.False(t, added)
	assert.Equal(t, 0, id)

	id, added = m.Insert(nil)
	assert.True(t, added)
	assert.Equal(t, 2, id)
	assert.Empty(t, m.Key(2))

	_, ok := m.Lookup([]int32{1})
	assert.False(t, ok)
}

func TestKeyMapResize(t *testing.T) {
	m := newKeyMap(withCapacity(1), withLoadFactor(0.5))
	for i := int32(0); i < 5000; i++ {
		id, added := m.Insert([]int32{i, i * 7, -i})
		assert.True(t, added)
		assert.Equal(t, int(i), id)
	}
	assert.Equal(t, 5000, m.Len())
	for i := int32(0); i < 5000; i += 37 {
		id, ok := m.Lookup([]int32{i, i * 7, -i})
		assert.True(t, ok)
		assert.Equal(t, int(i), id)
		assert.Equal(t, []int32{i, i * 7, -i}, m.Key(id))
	}
}

func TestHashKeySpreads(t *testing.T) {
	seen := map[uint64]bool{}
	for i := int32(0); i < 1000; i++ {
		seen[hashKey([]int32{i})] = true
		seen[hashKey([]int32{0, i})] = true
	}
	assert.Greater(t, len(seen), 1990)
	assert.NotEqual(t, hashKey([]int32{1, 2}), hashKey([]int32{2, 1}))
}
