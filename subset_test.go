package fsa

import (
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubsetRepresentations(t *testing.T) {
	s := NewSubset(10)
	assert.Equal(t, KindEmpty, s.Kind())
	_, ok := s.First()
	assert.False(t, ok)

	s.Include(4)
	assert.Equal(t, KindSingleton, s.Kind())
	s.Include(5)
	s.Include(3)
	assert.Equal(t, KindRange, s.Kind())
	assert.Equal(t, []int{3, 4, 5}, s.Slice())

	s.Include(8)
	assert.Equal(t, KindList, s.Kind())
	assert.Equal(t, 4, s.Count())

	for i := 1; i < 10; i++ {
		s.Include(i)
	}
	assert.Equal(t, KindFull, s.Kind())
	assert.Equal(t, 9, s.Count())

	s.Exclude(1)
	assert.Equal(t, KindRange, s.Kind())
	first, _ := s.First()
	assert.Equal(t, 2, first)

	s.Include(0)
	s.Include(10)
	assert.Equal(t, 8, s.Count(), "ids outside the universe are ignored")
	assert.False(t, s.Contains(0))
	assert.False(t, s.Contains(10))
}

func TestSubsetHints(t *testing.T) {
	s := NewSubset(1000)
	s.ExpectBigBitset(true)
	s.Include(10)
	assert.Equal(t, KindBitset, s.Kind())

	s = NewSubset(1000)
	s.SetFastSequentialAccess()
	s.SetFastRandomAccess()
	s.Include(10)
	s.Include(20)
	assert.Equal(t, KindBoth, s.Kind())
	assert.Equal(t, []int{10, 20}, s.Slice())

	s = NewSubset(1000)
	for i := 1; i < 200; i += 2 {
		s.Include(i)
	}
	assert.Equal(t, KindBitset, s.Kind())
	s.SetFastSequentialAccess()
	assert.Equal(t, KindBoth, s.Kind())
}

func TestSubsetResize(t *testing.T) {
	s := FullSubset(5)
	s.Resize(8)
	assert.Equal(t, KindRange, s.Kind())
	assert.Equal(t, []int{1, 2, 3, 4}, s.Slice())

	s.Include(7)
	s.Resize(5)
	assert.Equal(t, []int{1, 2, 3, 4}, s.Slice())
	assert.Equal(t, KindFull, s.Kind())
}

// TestSubsetAgainstModel applies random operations to subsets with
// different access hints and compares them with a plain set.
func TestSubsetAgainstModel(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for _, n := range []int{2, 9, 100, 3000} {
		for hint := 0; hint < 4; hint++ {
			s := NewSubset(n)
			switch hint {
			case 1:
				s.SetFastRandomAccess()
			case 2:
				s.SetFastSequentialAccess()
			case 3:
				s.ExpectBigBitset(true)
			}
			model := map[int]bool{}
			for i := 0; i < 2000; i++ {
				id := r.Intn(n+1) - 1
				switch op := r.Intn(10); {
				case op < 6:
					s.Include(id)
					if id > 0 && id < n {
						model[id] = true
					}
				case op < 9:
					s.Exclude(id)
					delete(model, id)
				case r.Intn(20) == 0:
					s.Clear()
					clear(model)
				}
				if i%97 == 0 {
					checkSubset(t, s, model)
				}
			}
			checkSubset(t, s, model)

			packed, err := UnpackSubset(s.Pack())
			require.NoError(t, err)
			assert.Equal(t, s.Slice(), packed.Slice())
			assert.Equal(t, s.Universe(), packed.Universe())
		}
	}
}

func checkSubset(t *testing.T, s *Subset, model map[int]bool) {
	t.Helper()
	want := make([]int, 0, len(model))
	for id := range model {
		want = append(want, id)
	}
	sort.Ints(want)
	require.Equal(t, len(want), s.Count())
	require.Equal(t, want, s.Slice())
	for _, id := range want {
		require.True(t, s.Contains(id))
	}
	if len(want) > 0 {
		lo, _ := s.First()
		hi, _ := s.Last()
		require.Equal(t, want[0], lo)
		require.Equal(t, want[len(want)-1], hi)
		next, ok := s.Next(want[0])
		if len(want) > 1 {
			require.True(t, ok)
			require.Equal(t, want[1], next)
		} else {
			require.False(t, ok)
		}
	}
}

func TestSubsetClone(t *testing.T) {
	s := NewSubset(50)
	for _, id := range []int{3, 9, 27} {
		s.Include(id)
	}
	c := s.Clone()
	c.Exclude(9)
	assert.True(t, s.Contains(9))
	assert.Equal(t, []int{3, 27}, c.Slice())
	assert.True(t, slices.Equal([]int{3, 9, 27}, s.Slice()))
}

func TestUnpackSubsetRejectsCorruptData(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		{5},
		{5, 99},
		{5, byte(packRange), 3, 9},
		{5, byte(packList), 2, 1},
		{5, byte(packList), 1, 0},
	} {
		_, err := UnpackSubset(data)
		assert.ErrorIs(t, err, ErrCorruptSubset, "data %v", data)
	}
}
