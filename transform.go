package fsa

import (
	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"
)

// Trim returns a without the states that are unreachable from an initial
// state or cannot reach an accepting state.
func (f *Factory) Trim(a Automaton) (*Dense, error) {
	live := coaccessible(a)
	keep := reachable(a, a.InitialStates().Slice()).Intersection(live)
	if keep.Count() == 0 {
		return emptyResult(a.Alphabet()), nil
	}
	d := restrict(a, func(s int) bool { return keep.Test(uint(s)) })
	d.flags |= FlagTrim | FlagAccessible | a.Flags()&FlagMinimised
	f.log().Debug("trimmed", zap.Int("in", a.StateCount()), zap.Int("out", d.StateCount()))
	return d, nil
}

// Prune returns a restricted to the states whose forward language is
// infinite.
func (f *Factory) Prune(a Automaton) (*Dense, error) {
	live := coaccessible(a)
	t := restrict(a, func(s int) bool { return live.Test(uint(s)) })
	if err := f.check(); err != nil {
		return nil, err
	}
	cyclic := stronglyConnected(t, allStates(t)).cyclic
	// states that can reach a live cycle
	keep := cyclic.Clone()
	preds := buildPredecessors(t)
	var queue []int
	for s, ok := cyclic.NextSet(0); ok; s, ok = cyclic.NextSet(s + 1) {
		queue = append(queue, int(s))
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		from, _ := preds.into(s)
		for _, p := range from {
			if !keep.Test(uint(p)) {
				keep.Set(uint(p))
				queue = append(queue, int(p))
			}
		}
	}
	d := restrict(t, func(s int) bool { return keep.Test(uint(s)) })
	f.log().Debug("pruned", zap.Int("in", a.StateCount()), zap.Int("out", d.StateCount()))
	return d, nil
}

// Separate splits every state reached by more than one symbol, so that all
// transitions into a state read the same symbol. Initial states keep a copy
// that is entered by no transition.
func (f *Factory) Separate(a Automaton) (*Dense, error) {
	k := a.AlphabetSize()
	r := f.realiser(a)
	b := newTableBuilder(k, withCapacity(a.StateCount()))
	var initials []int
	for s := range a.InitialStates().All() {
		initials = append(initials, b.state([]int32{int32(s), -1}))
	}
	if len(initials) == 0 {
		return emptyResult(a.Alphabet()), nil
	}
	var accepting []int
	origin := []int{0}
	row := make([]int32, k)
	key := make([]int32, 2)
	t := f.ticker()
	for s := 1; s <= b.states(); s++ {
		if err := t.tick(); err != nil {
			return nil, err
		}
		q := int(b.key(s)[0])
		origin = append(origin, q)
		if a.IsAccepting(q) {
			accepting = append(accepting, s)
		}
		for c, target := range r.Row(q, 0) {
			if target <= 0 {
				row[c] = int32(min(target, 0))
				continue
			}
			key[0], key[1] = int32(target), int32(c)
			row[c] = int32(b.state(key))
		}
		b.addRow(row)
	}
	d := b.build(a.Alphabet())
	for _, s := range accepting {
		d.accepting.Include(s)
	}
	if l := a.Labels(); l != nil {
		d.labels = l.Clone()
		d.labelOf = make([]int32, d.states)
		for s, q := range origin {
			d.labelOf[s] = int32(a.LabelOf(q))
		}
	}
	setInitials(d, initials...)
	d.flags |= FlagAccessible | FlagBFS | a.Flags()&FlagRewrite
	return d, nil
}

// Restriction returns a over the alphabet sub, keeping the transitions on
// symbols whose glyph exists in both alphabets, and then only the states
// still reachable.
func (f *Factory) Restriction(a Automaton, sub Alphabet) (*Dense, error) {
	n, k := a.StateCount(), sub.Size()
	symbols := make([]int, k)
	for c := range symbols {
		if s, ok := a.Alphabet().Symbol(sub.Glyph(c)); ok {
			symbols[c] = s
		} else {
			symbols[c] = -1
		}
	}
	d := blankDense(sub, n)
	row := make([]int, a.AlphabetSize())
	for s := 1; s < n; s++ {
		a.Row(s, row)
		dst := d.rowSlice(s)
		for c, old := range symbols {
			if old >= 0 && row[old] > 0 {
				dst[c] = int32(row[old])
			}
		}
	}
	d.copyHeader(a)
	d.flags &= FlagDFA | FlagMIDFA
	access := reachable(d, d.initial.Slice())
	out := restrict(d, func(s int) bool { return access.Test(uint(s)) })
	out.flags |= FlagAccessible
	return out, nil
}

// KernelOptions configures Kernel.
type KernelOptions struct {
	// AcceptAll makes every kept state accepting.
	AcceptAll bool
	// IncludeChains keeps the states reachable from a cycle as well.
	IncludeChains bool
}

// Kernel returns the part of a that lies on cycles from which an accepting
// state can be reached, with every kept state initial.
func (f *Factory) Kernel(a Automaton, opts KernelOptions) (*Dense, error) {
	live := coaccessible(a).Intersection(reachable(a, a.InitialStates().Slice()))
	t := restrict(a, func(s int) bool { return live.Test(uint(s)) })
	if err := f.check(); err != nil {
		return nil, err
	}
	var keep *bitset.BitSet
	if opts.IncludeChains {
		keep = bitset.New(uint(t.StateCount()))
		for s := range RecurrentStates(t, true).All() {
			keep.Set(uint(s))
		}
	} else {
		keep = stronglyConnected(t, allStates(t)).cyclic
	}
	if keep.Count() == 0 {
		return emptyResult(a.Alphabet()), nil
	}
	d := restrict(t, func(s int) bool { return keep.Test(uint(s)) })
	d.initial.Fill()
	if opts.AcceptAll {
		d.accepting.Fill()
	}
	setInitials(d)
	return d, nil
}
