package fsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelsIntern(t *testing.T) {
	l := NewLabels(LabelString, nil, 1)
	a := l.Intern(Label{Text: "x"})
	b := l.Intern(Label{Text: "y"})
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, a, l.Intern(Label{Text: "x"}))
	assert.Equal(t, 3, l.Count())

	l.Set(2, Label{Text: "x"})
	// the first id wins for duplicates
	assert.Equal(t, 1, l.Intern(Label{Text: "x"}))
	assert.Equal(t, l.Key(1), l.Key(2))
}

func TestLabelsRender(t *testing.T) {
	alphabet := NewAlphabet("a", "b")
	words := NewLabels(LabelWords, alphabet, 1)
	id := words.Add(Label{Words: []Word{{0, 1}, {}}})
	assert.Equal(t, "[ab,IdWord]", words.Render(id))

	ints := NewLabels(LabelInts, nil, 1)
	id = ints.Add(Label{Ints: []int{3, 1}})
	assert.Equal(t, "[3,1]", ints.Render(id))
	assert.Equal(t, "", ints.Render(9))

	pairs := NewLabels(LabelProduct, nil, 1)
	id = pairs.Add(Label{Pair: [2]int{2, 0}})
	assert.Equal(t, "(2,0)", pairs.Render(id))
}

func TestLabelsConvert(t *testing.T) {
	alphabet := NewAlphabet("a", "b")
	l := NewLabels(LabelWord, alphabet, 1)
	l.Add(Label{Words: []Word{{1, 0}}})

	assert.True(t, l.Convert(LabelInts))
	v, _ := l.Get(1)
	assert.Equal(t, []int{1, 0}, v.Ints)

	assert.True(t, l.Convert(LabelWords))
	v, _ = l.Get(1)
	assert.Equal(t, []Word{{1, 0}}, v.Words)

	l.Add(Label{Words: []Word{{0}, {1}}})
	assert.False(t, l.Convert(LabelWord))

	assert.False(t, l.Convert(LabelString))
	v, _ = l.Get(1)
	assert.Equal(t, "ba", v.Text)
	assert.Equal(t, LabelString, l.Type())
}

func TestLabelsMerge(t *testing.T) {
	words := NewLabels(LabelWord, nil, 1)
	x := words.Add(Label{Words: []Word{{1}}})
	y := words.Add(Label{Words: []Word{{0, 0}}})
	z := words.Add(Label{Words: []Word{{1}}})
	assert.Equal(t, LabelWords, words.mergedType())
	assert.Equal(t, []Word{{1}, {0, 0}}, words.merge([]int{y, x, z}).Words)

	names := NewLabels(LabelString, nil, 1)
	names.Add(Label{Text: "p"})
	names.Add(Label{Text: "q"})
	assert.Equal(t, LabelInts, names.mergedType())
	assert.Equal(t, []int{1, 2}, names.merge([]int{2, 1, 2}).Ints)
}

func TestLabelsClone(t *testing.T) {
	l := NewLabels(LabelInts, nil, 1)
	l.Add(Label{Ints: []int{1, 2}})
	c := l.Clone()
	v, _ := c.Get(1)
	v.Ints[0] = 9
	orig, _ := l.Get(1)
	assert.Equal(t, []int{1, 2}, orig.Ints)
}
