package fsa

import (
	"cmp"
	"slices"

	"go.uber.org/zap"
)

// tape modes of a cartesian product state
const (
	bothRunning = iota
	firstDone
	secondDone
)

// CartesianProduct returns the two-tape automaton over pa accepting the
// padded pair (u,v) exactly when a accepts u and b accepts v. a and b must
// be over the base alphabet of pa.
func (f *Factory) CartesianProduct(a, b Automaton, pa ProductAlphabet) (*Dense, error) {
	if !SameAlphabet(a.Alphabet(), pa.Base()) || !SameAlphabet(b.Alphabet(), pa.Base()) {
		return nil, ErrAlphabetMismatch
	}
	a, err := f.single(a)
	if err != nil {
		return nil, err
	}
	if b, err = f.single(b); err != nil {
		return nil, err
	}
	ia, ib := initialState(a), initialState(b)
	if ia == 0 || ib == 0 {
		return emptyResult(pa), nil
	}
	k := pa.Size()
	p := newTableBuilder(k)
	p.state([]int32{int32(ia), int32(ib), bothRunning})

	var accepting []int
	row := make([]int32, k)
	key := make([]int32, 3)
	t := f.ticker()
	for s := 1; s <= p.states(); s++ {
		if err := t.tick(); err != nil {
			return nil, err
		}
		cur := p.key(s)
		sa, sb, mode := int(cur[0]), int(cur[1]), cur[2]
		if a.IsAccepting(sa) && b.IsAccepting(sb) {
			accepting = append(accepting, s)
		}
		for c := range row {
			x, y := pa.Split(c)
			ta, tb, next := sa, sb, mode
			switch {
			case x != Padding && y != Padding && mode == bothRunning:
				ta, tb = a.Step(sa, x, true), b.Step(sb, y, true)
			case x == Padding && mode != secondDone && (mode == firstDone || a.IsAccepting(sa)):
				tb, next = b.Step(sb, y, true), firstDone
			case y == Padding && mode != firstDone && (mode == secondDone || b.IsAccepting(sb)):
				ta, next = a.Step(sa, x, true), secondDone
			default:
				ta = 0
			}
			if ta <= 0 || tb <= 0 {
				row[c] = 0
				continue
			}
			key[0], key[1], key[2] = int32(ta), int32(tb), next
			row[c] = int32(p.state(key))
		}
		p.addRow(row)
	}
	d := p.build(pa)
	for _, s := range accepting {
		d.accepting.Include(s)
	}
	setInitials(d, 1)
	d.flags |= FlagAccessible | FlagBFS
	f.log().Debug("cartesian product", zap.Int("product", d.StateCount()))
	return f.Minimize(d, MergeNone)
}

// statePair is a pair of states of the two operands of Composite.
type statePair struct {
	a, b int32
}

func comparePairs(x, y statePair) int {
	if c := cmp.Compare(x.a, y.a); c != 0 {
		return c
	}
	return cmp.Compare(x.b, y.b)
}

// Composite returns the composition of the relations of a and b: it
// accepts (u,v) when a accepts (u,w) and b accepts (w,v) for some w. Each
// result state is a set of state pairs; the middle tape is guessed one
// symbol at a time. When u and v have both ended the middle tape may
// still continue, so acceptance looks through those moves.
func (f *Factory) Composite(a, b Automaton) (*Dense, error) {
	pa, ok := a.Alphabet().(ProductAlphabet)
	if !ok {
		return nil, ErrNotProduct
	}
	pb, ok := b.Alphabet().(ProductAlphabet)
	if !ok {
		return nil, ErrNotProduct
	}
	if !SameAlphabet(pa.Base(), pb.Base()) {
		return nil, ErrAlphabetMismatch
	}
	base := pa.Base().Size()
	k := pa.Size()

	var start []statePair
	for sa := range a.InitialStates().All() {
		for sb := range b.InitialStates().All() {
			start = append(start, statePair{int32(sa), int32(sb)})
		}
	}
	if len(start) == 0 {
		return emptyResult(pa), nil
	}

	p := newTableBuilder(k)
	p.state(flattenPairs(start))
	var accepting []int
	row := make([]int32, k)
	var pairs []statePair
	t := f.ticker()
	for s := 1; s <= p.states(); s++ {
		if err := t.tick(); err != nil {
			return nil, err
		}
		cur := unflattenPairs(p.key(s))
		if composedAccepts(a, b, pa, pb, cur) {
			accepting = append(accepting, s)
		}
		for c := range row {
			x, y := pa.Split(c)
			pairs = pairs[:0]
			for _, q := range cur {
				for m := Padding; m < base; m++ {
					ta, tb := int(q.a), int(q.b)
					if x != Padding || m != Padding {
						ta = a.Step(ta, pa.ProductID(x, m), true)
					}
					if m != Padding || y != Padding {
						tb = b.Step(tb, pb.ProductID(m, y), true)
					}
					if ta > 0 && tb > 0 {
						pairs = append(pairs, statePair{int32(ta), int32(tb)})
					}
				}
			}
			if len(pairs) == 0 {
				row[c] = 0
				continue
			}
			slices.SortFunc(pairs, comparePairs)
			pairs = slices.Compact(pairs)
			row[c] = int32(p.state(flattenPairs(pairs)))
		}
		p.addRow(row)
	}
	d := p.build(pa)
	for _, s := range accepting {
		d.accepting.Include(s)
	}
	setInitials(d, 1)
	d.flags |= FlagAccessible | FlagBFS
	f.log().Debug("composite", zap.Int("product", d.StateCount()))
	return f.Minimize(d, MergeNone)
}

// composedAccepts reports whether some pair of cur reaches a pair of
// accepting states by reading the middle tape alone.
func composedAccepts(a, b Automaton, pa, pb ProductAlphabet, cur []statePair) bool {
	base := pa.Base().Size()
	seen := make(map[statePair]bool, len(cur))
	queue := slices.Clone(cur)
	for _, q := range queue {
		seen[q] = true
	}
	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]
		if a.IsAccepting(int(q.a)) && b.IsAccepting(int(q.b)) {
			return true
		}
		for m := 0; m < base; m++ {
			ta := a.Step(int(q.a), pa.ProductID(Padding, m), true)
			tb := b.Step(int(q.b), pb.ProductID(m, Padding), true)
			next := statePair{int32(ta), int32(tb)}
			if ta > 0 && tb > 0 && !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

func flattenPairs(pairs []statePair) []int32 {
	out := make([]int32, 0, 2*len(pairs))
	for _, q := range pairs {
		out = append(out, q.a, q.b)
	}
	return out
}

func unflattenPairs(key []int32) []statePair {
	out := make([]statePair, len(key)/2)
	for i := range out {
		out[i] = statePair{key[2*i], key[2*i+1]}
	}
	return out
}
