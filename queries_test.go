package fsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cycle returns an automaton accepting (ab)*: 1 -a-> 2 -b-> 1.
func cycle() *Dense {
	d := NewDense(ab, 3)
	d.SetTransition(1, 0, 2)
	d.SetTransition(2, 1, 1)
	d.SetAccepting(1, true)
	return d
}

func TestAccepts(t *testing.T) {
	d := FromWords(ab, words(t, "a", "ab")...)
	for text, want := range map[string]bool{"a": true, "ab": true, "": false, "b": false, "abb": false} {
		w, err := ParseWord(ab, text)
		require.NoError(t, err)
		assert.Equal(t, want, Accepts(d, w), text)
	}
	assert.Equal(t, 0, ReadWord(d, 1, Word{1, 0}))
	assert.Equal(t, 0, ReadWord(d, 0, nil))
}

func TestAccessibleAndRecurrent(t *testing.T) {
	d := cycle()
	extra := d.AddState()
	d.SetTransition(2, 0, extra)
	orphan := d.AddState()
	d.SetTransition(orphan, 0, 1)

	assert.Equal(t, []int{1, 2, extra}, AccessibleStates(d).Slice())
	assert.Equal(t, []int{1, 2}, RecurrentStates(d, false).Slice())
	assert.Equal(t, []int{1, 2, extra}, RecurrentStates(d, true).Slice())
}

func TestRepetend(t *testing.T) {
	d := cycle()
	w, ok := Repetend(d, 2)
	require.True(t, ok)
	assert.Equal(t, Word{1, 0}, w)
	assert.True(t, IsRepetend(d, 2, w))
	assert.False(t, IsRepetend(d, 2, nil))
	assert.False(t, IsRepetend(d, 1, Word{0}))

	_, ok = Repetend(FromWords(ab, words(t, "ab")...), 1)
	assert.False(t, ok)

	loop := NewDense(ab, 2)
	loop.SetTransition(1, 1, 1)
	w, ok = Repetend(loop, 1)
	require.True(t, ok)
	assert.Equal(t, Word{1}, w)
}

func TestLanguageSize(t *testing.T) {
	d := FromWords(ab, words(t, "a", "ab", "ba", "")...)
	assert.Equal(t, Size{Kind: SizeFinite, Count: 4}, LanguageSize(d, true, 0))
	assert.Equal(t, "4", LanguageSize(d, true, 0).String())
	assert.Equal(t, uint64(2), LanguageSize(d, true, ReadWord(d, 1, Word{0})).Count)

	assert.Equal(t, SizeInfinite, LanguageSize(cycle(), true, 0).Kind)
	assert.Equal(t, "infinite", LanguageSize(Universal(ab), false, 0).String())

	assert.Equal(t, Size{}, LanguageSize(NewDense(ab, 1), true, 0))

	d.SetInitial(2, true)
	assert.Equal(t, SizeUncountable, LanguageSize(d, true, 0).Kind)
	assert.Equal(t, uint64(6), LanguageSize(d, false, 0).Count)
}

func TestLanguageSizeOverflow(t *testing.T) {
	// 64 layers of two parallel edges accept 2^64 words
	alphabet := NewAlphabet("0", "1")
	d := NewDense(alphabet, 66)
	for s := 1; s <= 64; s++ {
		d.SetRow(s, []int{s + 1, s + 1})
	}
	d.SetAccepting(65, true)
	assert.Equal(t, SizeUncountable, LanguageSize(d, true, 0).Kind)
	assert.Equal(t, uint64(1)<<63, LanguageSize(d, true, 2).Count)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(Empty(ab)))
	assert.False(t, IsEmpty(EmptyWord(ab)))

	d := NewDense(ab, 3)
	d.SetAccepting(2, true)
	assert.True(t, IsEmpty(d), "accepting state out of reach")
}

func TestCommonPrefix(t *testing.T) {
	d := FromWords(ab, words(t, "aba", "abb")...)
	w, err := CommonPrefix(d)
	require.NoError(t, err)
	assert.Equal(t, Word{0, 1}, w)

	w, err = CommonPrefix(FromWords(ab, words(t, "ab", "abab")...))
	require.NoError(t, err)
	assert.Equal(t, Word{0, 1}, w)

	w, err = CommonPrefix(Empty(ab))
	require.NoError(t, err)
	assert.Empty(t, w)

	d.SetTransition(1, 1, d.AddState())
	_, err = CommonPrefix(d)
	assert.ErrorIs(t, err, ErrDeadStates)
}
