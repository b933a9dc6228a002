package fsa

import (
	"slices"
	"strconv"

	"go.uber.org/zap"
)

// DeterminizeMode selects how the initial states of a multi-initial
// automaton are combined.
type DeterminizeMode int

const (
	// DeterminizeAll merges every initial state into one.
	DeterminizeAll DeterminizeMode = iota
	// DeterminizeMergeEqualLabels merges initial states whose labels have
	// equal payloads. Unlabelled initial states are merged together.
	DeterminizeMergeEqualLabels
	// DeterminizeMergeIdenticalLabels merges initial states with the same
	// label id. Unlabelled initial states stay apart.
	DeterminizeMergeIdenticalLabels
)

var determinizeModeNames = [...]string{"all", "merge-equal-labels", "merge-identical-labels"}

func (m DeterminizeMode) String() string {
	if m < 0 || int(m) >= len(determinizeModeNames) {
		return "unknown"
	}
	return determinizeModeNames[m]
}

// ParseDeterminizeMode is the inverse of DeterminizeMode.String.
func ParseDeterminizeMode(name string) (DeterminizeMode, bool) {
	i := slices.Index(determinizeModeNames[:], name)
	return DeterminizeMode(max(i, 0)), i >= 0
}

// MergePolicy says which states may be merged although their labels differ.
// Labels of merged states are combined into one label.
type MergePolicy int

const (
	MergeNone MergePolicy = iota
	MergeNonAccepting
	MergeAll
)

var mergePolicyNames = [...]string{"none", "non-accepting", "all"}

func (p MergePolicy) String() string {
	if p < 0 || int(p) >= len(mergePolicyNames) {
		return "unknown"
	}
	return mergePolicyNames[p]
}

// ParseMergePolicy is the inverse of MergePolicy.String.
func ParseMergePolicy(name string) (MergePolicy, bool) {
	i := slices.Index(mergePolicyNames[:], name)
	return MergePolicy(max(i, 0)), i >= 0
}

// labelMerger computes the labels of states built from several input states.
type labelMerger struct {
	src    Automaton
	table  *Labels
	policy MergePolicy
	out    *Labels
	ids    []int
}

func newLabelMerger(src Automaton, policy MergePolicy) *labelMerger {
	table := src.Labels()
	if table == nil {
		return nil
	}
	m := &labelMerger{src: src, table: table, policy: policy}
	if policy == MergeNone {
		m.out = table.Clone()
	} else {
		m.out = NewLabels(table.mergedType(), table.Alphabet(), 1)
	}
	return m
}

// merges reports whether states with different labels may be combined.
func (m *labelMerger) merges(accepting bool) bool {
	switch m.policy {
	case MergeAll:
		return true
	case MergeNonAccepting:
		return !accepting
	}
	return false
}

// label returns the output label for a state made of members. When merging
// is not allowed the members must agree on the label payload, otherwise
// the state gets no label.
func (m *labelMerger) label(members []int32, accepting bool) int {
	m.ids = m.ids[:0]
	for _, s := range members {
		if id := m.src.LabelOf(int(s)); id != 0 {
			m.ids = append(m.ids, id)
		}
	}
	if len(m.ids) == 0 {
		return 0
	}
	slices.Sort(m.ids)
	m.ids = slices.Compact(m.ids)
	if m.merges(accepting) {
		return m.out.Intern(m.table.merge(m.ids))
	}
	key := m.table.Key(m.ids[0])
	for _, id := range m.ids[1:] {
		if m.table.Key(id) != key {
			return 0
		}
	}
	if m.policy == MergeNone {
		return m.ids[0]
	}
	return m.out.Intern(m.table.merge(m.ids[:1]))
}

// apply attaches the merged labels to d.
func (m *labelMerger) apply(d *Dense, labels []int) {
	if m == nil {
		return
	}
	d.labels = m.out
	for s, l := range labels {
		if l != 0 {
			if d.labelOf == nil {
				d.labelOf = make([]int32, d.states)
			}
			d.labelOf[s] = int32(l)
		}
	}
}

// initialGroups splits the initial states of a into the groups that become
// one initial state each.
func initialGroups(a Automaton, mode DeterminizeMode) [][]int32 {
	initial := a.InitialStates()
	if mode == DeterminizeAll || a.Labels() == nil {
		g := make([]int32, 0, initial.Count())
		for s := range initial.All() {
			g = append(g, int32(s))
		}
		return [][]int32{g}
	}
	var groups [][]int32
	index := make(map[string]int)
	for s := range initial.All() {
		id := a.LabelOf(s)
		var key string
		switch {
		case mode == DeterminizeMergeIdenticalLabels && id == 0:
			groups = append(groups, []int32{int32(s)})
			continue
		case mode == DeterminizeMergeIdenticalLabels:
			key = strconv.Itoa(id)
		case id == 0:
			key = "\x00"
		default:
			key = "=" + a.Labels().Key(id)
		}
		if g, ok := index[key]; ok {
			groups[g] = append(groups[g], int32(s))
			continue
		}
		index[key] = len(groups)
		groups = append(groups, []int32{int32(s)})
	}
	return groups
}

// Determinize runs the subset construction from the initial states of a,
// grouped as mode says. Each result state stands for a set of input
// states; its label combines theirs under policy.
func (f *Factory) Determinize(a Automaton, mode DeterminizeMode, policy MergePolicy) (*Dense, error) {
	if a.InitialStates().Count() == 0 {
		return emptyResult(a.Alphabet()), nil
	}
	k := a.AlphabetSize()
	r := f.realiser(a)
	b := newTableBuilder(k, withCapacity(a.StateCount()))
	groups := initialGroups(a, mode)
	initials := make([]int, len(groups))
	for i, g := range groups {
		initials[i] = b.state(g)
	}

	merger := newLabelMerger(a, policy)
	var accepting []int
	labels := []int{0}
	buckets := make([][]int32, k)
	row := make([]int32, k)
	t := f.ticker()
	for s := 1; s <= b.states(); s++ {
		if err := t.tick(); err != nil {
			return nil, err
		}
		members := b.key(s)
		acc := false
		for c := range buckets {
			buckets[c] = buckets[c][:0]
		}
		for _, q := range members {
			acc = acc || a.IsAccepting(int(q))
			for c, target := range r.Row(int(q), 0) {
				if target > 0 {
					buckets[c] = append(buckets[c], int32(target))
				}
			}
		}
		if acc {
			accepting = append(accepting, s)
		}
		if merger != nil {
			labels = append(labels, merger.label(members, acc))
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
	merger.apply(d, labels)
	setInitials(d, initials...)
	d.flags |= FlagAccessible | FlagBFS
	f.log().Debug("determinized",
		zap.Stringer("mode", mode),
		zap.Int("in", a.StateCount()),
		zap.Int("out", d.StateCount()))
	return d, nil
}
