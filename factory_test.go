package fsa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allWords returns every word over k symbols of length at most n.
func allWords(k, n int) []Word {
	out := []Word{{}}
	layer := []Word{{}}
	for i := 0; i < n; i++ {
		var next []Word
		for _, w := range layer {
			for c := 0; c < k; c++ {
				next = append(next, append(append(Word{}, w...), c))
			}
		}
		out = append(out, next...)
		layer = next
	}
	return out
}

func sameLanguage(t *testing.T, want func(Word) bool, got Automaton) {
	t.Helper()
	for _, w := range allWords(got.AlphabetSize(), 5) {
		assert.Equal(t, want(w), Accepts(got, w), "word %s", FormatWord(got.Alphabet(), w))
	}
}

func acceptor(a Automaton) func(Word) bool {
	return func(w Word) bool { return Accepts(a, w) }
}

func TestCombineAndNot(t *testing.T) {
	f := NewFactory()
	a1 := FromWords(ab, words(t, "a", "ab")...)
	a2 := FromWords(ab, words(t, "a")...)
	require.Equal(t, 4, a1.StateCount())

	d, err := f.Combine(a1, a2, OpAndNot)
	require.NoError(t, err)
	assert.True(t, Accepts(d, words(t, "ab")[0]))
	assert.False(t, Accepts(d, words(t, "a")[0]))
	assert.Equal(t, Size{Kind: SizeFinite, Count: 1}, LanguageSize(d, true, 0))
	assert.True(t, d.Flags().Has(FlagMinimised))
}

func TestCombineSingleCacheRow(t *testing.T) {
	a := FromWords(ab, words(t, "a", "ab")...)
	b := FromWords(ab, words(t, "a")...)
	for op := OpAnd; op <= OpAndFirst; op++ {
		want, err := NewFactory().Combine(a, b, op)
		require.NoError(t, err)
		got, err := NewFactory(WithRealiserRows(1)).Combine(a, b, op)
		require.NoError(t, err, op.String())
		sameLanguage(t, acceptor(want), got)
	}
}

func TestCombineTruthTables(t *testing.T) {
	f := NewFactory()
	a := FromWords(ab, words(t, "a", "ab", "b")...)
	b := cycle()
	b.SetAccepting(2, true)
	for _, op := range []BoolOp{OpAnd, OpOr, OpAndNot, OpNotAnd} {
		t.Run(op.String(), func(t *testing.T) {
			d, err := f.Combine(a, b, op)
			require.NoError(t, err)
			sameLanguage(t, func(w Word) bool {
				return op.accepts(Accepts(a, w), Accepts(b, w))
			}, d)
		})
	}
}

// hasPrefixIn reports whether b accepts a prefix of w, w itself included
// unless proper is set.
func hasPrefixIn(b Automaton, w Word, proper bool) bool {
	end := len(w)
	if proper {
		end--
	}
	for i := 0; i <= end; i++ {
		if Accepts(b, w[:i]) {
			return true
		}
	}
	return false
}

func TestCombineFirstOperations(t *testing.T) {
	f := NewFactory()
	a := Universal(ab)
	b := FromWords(ab, words(t, "ab", "abab", "ba")...)

	notFirst := func(w Word) bool { return !hasPrefixIn(b, w, false) }
	for _, op := range []BoolOp{OpAndNotFirst, OpAndNotFirstTrim} {
		d, err := f.Combine(a, b, op)
		require.NoError(t, err)
		sameLanguage(t, notFirst, d)
	}

	d, err := f.Combine(a, b, OpAndFirst)
	require.NoError(t, err)
	sameLanguage(t, func(w Word) bool {
		return Accepts(b, w) && !hasPrefixIn(b, w, true)
	}, d)
	assert.Equal(t, Size{Kind: SizeFinite, Count: 2}, LanguageSize(d, true, 0))

	trimmed, err := f.Combine(a, b, OpAndNotFirstTrim)
	require.NoError(t, err)
	assert.True(t, trimmed.Flags().Has(FlagTrim))
}

func TestCombineAlphabetMismatch(t *testing.T) {
	_, err := NewFactory().Combine(Universal(ab), Universal(NewAlphabet("x")), OpOr)
	assert.ErrorIs(t, err, ErrAlphabetMismatch)
}

func TestNot(t *testing.T) {
	f := NewFactory()
	a := FromWords(ab, words(t, "a", "ab", "bba")...)
	n, err := f.Not(a)
	require.NoError(t, err)
	sameLanguage(t, func(w Word) bool { return !Accepts(a, w) }, n)

	nn, err := f.Not(n)
	require.NoError(t, err)
	m, err := f.Minimize(a, MergeNone)
	require.NoError(t, err)
	assert.Equal(t, m.table, nn.table)
	assert.Equal(t, m.AcceptingStates().Slice(), nn.AcceptingStates().Slice())

	u, err := f.Not(Empty(ab))
	require.NoError(t, err)
	assert.Equal(t, Universal(ab).table, u.table)
}

func TestMinimize(t *testing.T) {
	f := NewFactory()
	a := FromWords(ab, words(t, "ab", "bb", "aab", "bab")...)
	m, err := f.Minimize(a, MergeNone)
	require.NoError(t, err)
	sameLanguage(t, acceptor(a), m)
	assert.True(t, m.Flags().Has(FlagMinimised|FlagTrim|FlagBFS))
	// a and b lead to the same state
	assert.Equal(t, 5, m.StateCount())

	again, err := f.Minimize(m, MergeNone)
	require.NoError(t, err)
	assert.Equal(t, m.table, again.table)

	dead := a.Clone()
	end := ReadWord(dead, 1, Word{0, 1})
	sink := dead.AddState()
	dead.SetTransition(end, 0, sink)
	dead.SetTransition(sink, 0, sink)
	m2, err := f.Minimize(dead, MergeNone)
	require.NoError(t, err)
	assert.Equal(t, m.table, m2.table, "states with an empty language vanish")
}

func TestMinimizeLabels(t *testing.T) {
	f := NewFactory()
	d := FromWords(ab, words(t, "a", "b")...)
	labels := NewLabels(LabelString, ab, 1)
	x := labels.Add(Label{Text: "x"})
	y := labels.Add(Label{Text: "y"})
	d.SetLabels(labels)
	d.SetLabelOf(2, x, false)
	d.SetLabelOf(3, y, false)

	m, err := f.Minimize(d, MergeNone)
	require.NoError(t, err)
	assert.Equal(t, 4, m.StateCount(), "different labels keep states apart")

	m, err = f.Minimize(d, MergeAll)
	require.NoError(t, err)
	assert.Equal(t, 3, m.StateCount())
	final := ReadWord(m, 1, Word{0})
	assert.Equal(t, LabelInts, m.LabelType())
	assert.Equal(t, "[1,2]", m.Labels().Render(m.LabelOf(final)))

	m, err = f.Minimize(d, MergeNonAccepting)
	require.NoError(t, err)
	assert.Equal(t, 4, m.StateCount(), "accepting states keep their labels")
}

func TestTrim(t *testing.T) {
	f := NewFactory()
	d := FromWords(ab, words(t, "ab")...)
	dead := d.AddState()
	d.SetTransition(1, 1, dead)
	orphan := d.AddState()
	d.SetTransition(orphan, 0, 1)

	tr, err := f.Trim(d)
	require.NoError(t, err)
	assert.Equal(t, 4, tr.StateCount())
	assert.True(t, tr.Flags().Has(FlagTrim|FlagAccessible))
	sameLanguage(t, acceptor(d), tr)

	again, err := f.Trim(tr)
	require.NoError(t, err)
	assert.Equal(t, tr.table, again.table)

	empty, err := f.Trim(NewDense(ab, 3))
	require.NoError(t, err)
	assert.True(t, IsEmpty(empty))
}

// midfa accepts a* from state 1 and b+ from state 2.
func midfa() *Dense {
	d := NewDense(ab, 4)
	d.SetTransition(1, 0, 1)
	d.SetAccepting(1, true)
	d.SetTransition(2, 1, 3)
	d.SetTransition(3, 1, 3)
	d.SetAccepting(3, true)
	d.SetInitial(2, true)
	return d
}

func TestDeterminize(t *testing.T) {
	f := NewFactory()
	a := midfa()
	require.True(t, a.Flags().Has(FlagMIDFA))

	d, err := f.Determinize(a, DeterminizeAll, MergeNone)
	require.NoError(t, err)
	assert.Equal(t, 1, d.InitialStates().Count())
	assert.True(t, d.Flags().Has(FlagDFA))
	sameLanguage(t, acceptor(a), d)
}

func TestDeterminizeModes(t *testing.T) {
	f := NewFactory()
	a := midfa()
	a.Grow(2)
	a.SetTransition(4, 0, 1)
	a.SetTransition(5, 1, 3)
	a.SetInitial(4, true)
	a.SetInitial(5, true)

	labels := NewLabels(LabelString, ab, 1)
	a.SetLabels(labels)
	a.SetLabelOf(1, labels.Add(Label{Text: "x"}), false)
	a.SetLabelOf(2, labels.Add(Label{Text: "x"}), false)
	a.SetLabelOf(4, labels.Add(Label{Text: "y"}), false)

	cases := map[DeterminizeMode]int{
		DeterminizeAll:                  1,
		DeterminizeMergeEqualLabels:     3,
		DeterminizeMergeIdenticalLabels: 4,
	}
	for mode, initials := range cases {
		d, err := f.Determinize(a, mode, MergeAll)
		require.NoError(t, err)
		assert.Equal(t, initials, d.InitialStates().Count(), mode.String())
		sameLanguage(t, acceptor(a), d)
	}
}

func TestReverse(t *testing.T) {
	f := NewFactory()
	a := FromWords(ab, words(t, "ab", "abb", "ba")...)
	r, err := f.Reverse(a, ReverseOptions{})
	require.NoError(t, err)
	sameLanguage(t, func(w Word) bool {
		rev := make(Word, len(w))
		for i, c := range w {
			rev[len(w)-1-i] = c
		}
		return Accepts(a, rev)
	}, r)

	rr, err := f.Reverse(r, ReverseOptions{})
	require.NoError(t, err)
	sameLanguage(t, acceptor(a), rr)

	multi, err := f.Reverse(a, ReverseOptions{MultiInitial: true, SubsetLabels: true})
	require.NoError(t, err)
	assert.Equal(t, a.AcceptingStates().Count(), multi.InitialStates().Count())
	assert.Equal(t, LabelInts, multi.LabelType())
	for s := range multi.InitialStates().All() {
		v, ok := multi.Labels().Get(multi.LabelOf(s))
		require.True(t, ok)
		require.Len(t, v.Ints, 1)
		assert.True(t, a.IsAccepting(v.Ints[0]))
	}

	empty, err := f.Reverse(NewDense(ab, 2), ReverseOptions{})
	require.NoError(t, err)
	assert.True(t, IsEmpty(empty))
}

// pad pairs u and v into a two-tape word, padding the shorter one.
func pad(pa ProductAlphabet, u, v Word) Word {
	w := make(Word, max(len(u), len(v)))
	for i := range w {
		x, y := Padding, Padding
		if i < len(u) {
			x = u[i]
		}
		if i < len(v) {
			y = v[i]
		}
		w[i] = pa.ProductID(x, y)
	}
	return w
}

func TestCartesianProduct(t *testing.T) {
	f := NewFactory()
	pa := NewProductAlphabet(ab)
	a := FromWords(ab, words(t, "a", "ab", "")...)
	b := FromWords(ab, words(t, "b", "aab")...)
	p, err := f.CartesianProduct(a, b, pa)
	require.NoError(t, err)
	assert.True(t, IsProduct(p))

	for _, u := range allWords(2, 3) {
		for _, v := range allWords(2, 3) {
			assert.Equal(t, Accepts(a, u) && Accepts(b, v), Accepts(p, pad(pa, u, v)),
				"pair (%s,%s)", FormatWord(ab, u), FormatWord(ab, v))
		}
	}

	p.CreateDefinitions()
	accepting, _ := p.AcceptingStates().First()
	u, v, ok := p.DefiningPair(accepting)
	require.True(t, ok)
	assert.True(t, Accepts(a, u))
	assert.True(t, Accepts(b, v))

	_, err = f.CartesianProduct(a, Universal(NewAlphabet("x")), pa)
	assert.ErrorIs(t, err, ErrAlphabetMismatch)
}

func TestComposite(t *testing.T) {
	f := NewFactory()
	pa := NewProductAlphabet(ab)
	first, err := f.CartesianProduct(FromWords(ab, words(t, "a")...), FromWords(ab, words(t, "b")...), pa)
	require.NoError(t, err)
	second, err := f.CartesianProduct(FromWords(ab, words(t, "b")...), FromWords(ab, words(t, "ab")...), pa)
	require.NoError(t, err)

	c, err := f.Composite(first, second)
	require.NoError(t, err)
	for _, u := range allWords(2, 2) {
		for _, v := range allWords(2, 3) {
			want := FormatWord(ab, u) == "a" && FormatWord(ab, v) == "ab"
			assert.Equal(t, want, Accepts(c, pad(pa, u, v)))
		}
	}

	_, err = f.Composite(Universal(ab), second)
	assert.ErrorIs(t, err, ErrNotProduct)
}

// lasso is the (ab)* cycle with an extra accepting state after b.
func lasso() *Dense {
	d := cycle()
	tail := d.AddState()
	d.SetTransition(1, 1, tail)
	d.SetAccepting(tail, true)
	return d
}

func TestPrune(t *testing.T) {
	f := NewFactory()
	d := lasso()
	entry := d.AddState()
	d.SetTransition(entry, 0, 1)
	d.SetInitial(1, false)
	d.SetInitial(entry, true)

	p, err := f.Prune(d)
	require.NoError(t, err)
	// the tail has a finite language
	assert.Equal(t, 4, p.StateCount())
	assert.Equal(t, SizeInfinite, LanguageSize(p, true, 0).Kind)
}

func TestSeparate(t *testing.T) {
	f := NewFactory()
	s, err := f.Separate(Universal(ab))
	require.NoError(t, err)
	assert.Equal(t, 4, s.StateCount())
	sameLanguage(t, func(Word) bool { return true }, s)

	entered := map[int]int{}
	row := make([]int, 2)
	for st := 1; st < s.StateCount(); st++ {
		s.Row(st, row)
		for c, target := range row {
			if target == 0 {
				continue
			}
			if prev, ok := entered[target]; ok {
				assert.Equal(t, prev, c, "state %d", target)
			}
			entered[target] = c
		}
	}
	_, initialEntered := entered[1]
	assert.False(t, initialEntered)
}

func TestRestriction(t *testing.T) {
	f := NewFactory()
	abc := NewAlphabet("a", "b", "c")
	var ws []Word
	for _, text := range []string{"ab", "ac", "c", "bc"} {
		w, err := ParseWord(abc, text)
		require.NoError(t, err)
		ws = append(ws, w)
	}
	ac := NewAlphabet("a", "c")
	r, err := f.Restriction(FromWords(abc, ws...), ac)
	require.NoError(t, err)
	assert.Same(t, ac, r.Alphabet())
	sameLanguage(t, func(w Word) bool {
		text := FormatWord(ac, w)
		return text == "ac" || text == "c"
	}, r)
	assert.Equal(t, 5, r.StateCount(), "states only reachable through b are dropped")
}

func TestKernel(t *testing.T) {
	f := NewFactory()
	d := lasso()

	k, err := f.Kernel(d, KernelOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, k.StateCount())
	assert.Equal(t, 2, k.InitialStates().Count())
	assert.Equal(t, 1, k.AcceptingStates().Count())

	k, err = f.Kernel(d, KernelOptions{AcceptAll: true, IncludeChains: true})
	require.NoError(t, err)
	assert.Equal(t, 4, k.StateCount())
	assert.Equal(t, 3, k.AcceptingStates().Count())

	k, err = f.Kernel(FromWords(ab, words(t, "ab")...), KernelOptions{})
	require.NoError(t, err)
	assert.True(t, IsEmpty(k))
}

func TestFactoryCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFactory(WithContext(ctx), WithPollInterval(1))

	_, err := f.Determinize(midfa(), DeterminizeAll, MergeNone)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = f.Minimize(Universal(ab), MergeNone)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuiltins(t *testing.T) {
	sameLanguage(t, func(w Word) bool { return len(w) == 0 }, EmptyWord(ab))
	sameLanguage(t, func(Word) bool { return false }, Empty(ab))
	sameLanguage(t, func(Word) bool { return true }, Universal(ab))

	d := FromWords(ab, Word{0, 5}, Word{1})
	assert.Equal(t, 3, d.StateCount(), "words outside the alphabet are skipped")
}
