package fsa

import (
	"slices"

	"go.uber.org/zap"
)

// ReverseOptions configures Reverse.
type ReverseOptions struct {
	// MultiInitial gives the result one initial state per accepting state
	// of the input instead of a single one for all of them.
	MultiInitial bool
	// SubsetLabels labels each result state with the list of input states
	// it stands for.
	SubsetLabels bool
}

// Reverse returns a deterministic automaton accepting the reversed words
// of a. It runs the subset construction over the incoming edges of a,
// starting from its accepting states.
func (f *Factory) Reverse(a Automaton, opts ReverseOptions) (*Dense, error) {
	k := a.AlphabetSize()
	if a.AcceptingStates().Count() == 0 {
		return emptyResult(a.Alphabet()), nil
	}
	preds := buildPredecessors(a)
	if err := f.check(); err != nil {
		return nil, err
	}
	b := newTableBuilder(k, withCapacity(a.StateCount()))
	var initials []int
	if opts.MultiInitial {
		for s := range a.AcceptingStates().All() {
			initials = append(initials, b.state([]int32{int32(s)}))
		}
	} else {
		start := make([]int32, 0, a.AcceptingStates().Count())
		for s := range a.AcceptingStates().All() {
			start = append(start, int32(s))
		}
		initials = append(initials, b.state(start))
	}

	var accepting []int
	var subsets *Labels
	labels := []int{0}
	if opts.SubsetLabels {
		subsets = NewLabels(LabelInts, a.Alphabet(), 1)
	}
	buckets := make([][]int32, k)
	row := make([]int32, k)
	t := f.ticker()
	for s := 1; s <= b.states(); s++ {
		if err := t.tick(); err != nil {
			return nil, err
		}
		members := b.key(s)
		for c := range buckets {
			buckets[c] = buckets[c][:0]
		}
		initial := false
		for _, q := range members {
			initial = initial || a.IsInitial(int(q))
			from, sym := preds.into(int(q))
			for i, p := range from {
				buckets[sym[i]] = append(buckets[sym[i]], p)
			}
		}
		if initial {
			accepting = append(accepting, s)
		}
		if subsets != nil {
			ints := make([]int, len(members))
			for i, q := range members {
				ints[i] = int(q)
			}
			labels = append(labels, subsets.Intern(Label{Ints: ints}))
		}
		for c, set := range buckets {
			if len(set) == 0 {
				row[c] = 0
				continue
			}
			slices.Sort(set)
			buckets[c] = slices.Compact(set)
			row[c] = int32(b.state(buckets[c]))
		}
		b.addRow(row)
	}

	d := b.build(a.Alphabet())
	for _, s := range accepting {
		d.accepting.Include(s)
	}
	if subsets != nil {
		d.labels = subsets
		d.labelOf = make([]int32, d.states)
		for s, l := range labels {
			d.labelOf[s] = int32(l)
		}
	}
	setInitials(d, initials...)
	d.flags |= FlagAccessible | FlagBFS
	f.log().Debug("reversed",
		zap.Int("in", a.StateCount()),
		zap.Int("out", d.StateCount()))
	return d, nil
}
