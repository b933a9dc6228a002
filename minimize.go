package fsa

import (
	"go.uber.org/zap"
)

// Minimize returns the minimal deterministic automaton of a, which must be
// deterministic but may have several initial states. Refinement starts from
// the classes (accepting, label) and splits them by the classes of their
// successors until the number of classes stops changing. States whose
// language is empty fall into the class of the failure state and vanish.
// The result is renumbered breadth first from its initial states.
func (f *Factory) Minimize(a Automaton, policy MergePolicy) (*Dense, error) {
	n, k := a.StateCount(), a.AlphabetSize()
	if a.InitialStates().Count() == 0 {
		return emptyResult(a.Alphabet()), nil
	}
	access := reachable(a, a.InitialStates().Slice())
	states := make([]int, 0, access.Count())
	for s, ok := access.NextSet(1); ok; s, ok = access.NextSet(s + 1) {
		states = append(states, int(s))
	}
	r := f.realiser(a)
	class := make([]int32, n)

	// initial partition
	keys := newKeyMap(withCapacity(64))
	keys.Insert([]int32{0, 0})
	labelClass := make(map[string]int32)
	for _, s := range states {
		acc := int32(0)
		if a.IsAccepting(s) {
			acc = 1
		}
		lc := int32(0)
		if id := a.LabelOf(s); id != 0 && (policy == MergeNone || policy == MergeNonAccepting && acc == 1) {
			key := a.Labels().Key(id)
			lc = labelClass[key]
			if lc == 0 {
				lc = int32(len(labelClass) + 1)
				labelClass[key] = lc
			}
		}
		id, _ := keys.Insert([]int32{acc, lc})
		class[s] = int32(id)
	}
	count := keys.Len()

	sig := make([]int32, k+1)
	next := make([]int32, n)
	for pass := 1; ; pass++ {
		if err := f.check(); err != nil {
			return nil, err
		}
		keys = newKeyMap(withCapacity(count))
		clear(sig)
		keys.Insert(sig[:k+1])
		for _, s := range states {
			sig[0] = class[s]
			for c, t := range r.Row(s, 0) {
				if t > 0 {
					sig[c+1] = class[t]
				} else {
					sig[c+1] = 0
				}
			}
			id, _ := keys.Insert(sig)
			next[s] = int32(id)
		}
		class, next = next, class
		f.log().Debug("minimize pass", zap.Int("pass", pass), zap.Int("classes", keys.Len()))
		if keys.Len() == count {
			break
		}
		count = keys.Len()
	}

	// renumber breadth first from the initial classes
	members := make([][]int32, count)
	for _, s := range states {
		members[class[s]] = append(members[class[s]], int32(s))
	}
	order := make([]int32, count)
	queue := make([]int32, 0, count)
	var initials []int
	for s := range a.InitialStates().All() {
		c := class[s]
		if c == 0 {
			continue
		}
		if order[c] == 0 {
			queue = append(queue, c)
			order[c] = int32(len(queue))
		}
		initials = append(initials, int(order[c]))
	}
	if len(queue) == 0 {
		return emptyResult(a.Alphabet()), nil
	}
	for i := 0; i < len(queue); i++ {
		rep := int(members[queue[i]][0])
		for _, t := range r.Row(rep, 0) {
			if t <= 0 {
				continue
			}
			if c := class[t]; c != 0 && order[c] == 0 {
				queue = append(queue, c)
				order[c] = int32(len(queue))
			}
		}
	}

	d := blankDense(a.Alphabet(), len(queue)+1)
	merger := newLabelMerger(a, policy)
	labels := make([]int, len(queue)+1)
	for i, c := range queue {
		s := i + 1
		rep := int(members[c][0])
		dst := d.rowSlice(s)
		for sym, t := range r.Row(rep, 0) {
			if t > 0 {
				dst[sym] = order[class[t]]
			}
		}
		acc := a.IsAccepting(rep)
		if acc {
			d.accepting.Include(s)
		}
		if merger != nil {
			labels[s] = merger.label(members[c], acc)
		}
	}
	merger.apply(d, labels)
	d.flags = 0
	setInitials(d, initials...)
	d.flags |= FlagMinimised | FlagAccessible | FlagBFS
	if coaccessible(d).Count() == uint(d.states-1) {
		d.flags |= FlagTrim
	}
	f.log().Debug("minimized",
		zap.Stringer("policy", policy),
		zap.Int("in", n),
		zap.Int("out", d.StateCount()))
	return d, nil
}
