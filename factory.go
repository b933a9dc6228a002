package fsa

import (
	"go.uber.org/zap"
)

// Factory builds new automata from existing ones. Inputs are only read;
// every result is a new automaton owned by the caller.
type Factory struct {
	opts *factoryOptions
}

// NewFactory returns a factory configured by opts.
func NewFactory(opts ...FactoryOption) *Factory {
	return &Factory{opts: newFactoryOptions(opts...)}
}

func (f *Factory) log() *zap.Logger {
	return f.opts.logger
}

func (f *Factory) realiser(a Automaton) *Realiser {
	return NewRealiser(a, WithCacheRows(f.opts.rows))
}

// check reports cancellation between passes.
func (f *Factory) check() error {
	return f.opts.ctx.Err()
}

// ticker polls the context every few thousand calls.
type ticker struct {
	f *Factory
	n int
}

func (f *Factory) ticker() *ticker {
	return &ticker{f: f}
}

func (t *ticker) tick() error {
	t.n++
	if t.n%t.f.opts.pollEvery != 0 {
		return nil
	}
	return t.f.check()
}

func sameAlphabet(a, b Automaton) error {
	if !SameAlphabet(a.Alphabet(), b.Alphabet()) {
		return ErrAlphabetMismatch
	}
	return nil
}

// single returns a with at most one initial state, determinizing the
// initial states together when there are several.
func (f *Factory) single(a Automaton) (Automaton, error) {
	if a.InitialStates().Count() <= 1 {
		return a, nil
	}
	return f.Determinize(a, DeterminizeAll, MergeNone)
}

func initialState(a Automaton) int {
	s, _ := a.InitialStates().First()
	return s
}

// emptyResult is the automaton of the empty language: one initial state
// with no transitions.
func emptyResult(alphabet Alphabet) *Dense {
	d := NewDense(alphabet, 2)
	d.flags = FlagDFA | FlagMinimised | FlagAccessible | FlagBFS
	return d
}

// tableBuilder collects the rows of an automaton whose states are
// discovered breadth first and numbered by key. State ids start at 1.
type tableBuilder struct {
	k     int
	keys  *keyMap
	table []int32
}

func newTableBuilder(k int, opts ...keyMapOption) *tableBuilder {
	return &tableBuilder{k: k, keys: newKeyMap(opts...), table: make([]int32, k)}
}

// state returns the id of the state with the given key.
func (b *tableBuilder) state(key []int32) int {
	id, _ := b.keys.Insert(key)
	return id + 1
}

// key returns the key of state.
func (b *tableBuilder) key(state int) []int32 {
	return b.keys.Key(state - 1)
}

// states returns the number of discovered states, excluding the failure state.
func (b *tableBuilder) states() int {
	return b.keys.Len()
}

func (b *tableBuilder) addRow(row []int32) {
	b.table = append(b.table, row...)
}

// build returns the automaton once every discovered state has a row.
func (b *tableBuilder) build(alphabet Alphabet) *Dense {
	return denseFromTable(alphabet, b.table)
}

func denseFromTable(alphabet Alphabet, table []int32) *Dense {
	n := len(table) / alphabet.Size()
	d := &Dense{header: newHeader(alphabet, n), table: table}
	d.self = d
	return d
}

// setInitials marks the given states initial and sets the determinism flag.
func setInitials(d *Dense, states ...int) {
	for _, s := range states {
		d.initial.Include(s)
	}
	d.flags &^= FlagDFA | FlagMIDFA
	if d.initial.Count() > 1 {
		d.flags |= FlagMIDFA
	} else {
		d.flags |= FlagDFA
	}
}

// restrict returns the automaton induced by the states in keep, in their
// original order. Transitions to dropped states go to the failure state.
func restrict(a Automaton, keep func(int) bool) *Dense {
	n, k := a.StateCount(), a.AlphabetSize()
	remap := make([]int32, n)
	count := 1
	for s := 1; s < n; s++ {
		if keep(s) {
			remap[s] = int32(count)
			count++
		}
	}
	d := blankDense(a.Alphabet(), count)
	row := make([]int, k)
	for s := 1; s < n; s++ {
		ns := int(remap[s])
		if ns == 0 {
			continue
		}
		a.Row(s, row)
		dst := d.rowSlice(ns)
		for c, t := range row {
			if t > 0 {
				dst[c] = remap[t]
			} else if t < 0 {
				dst[c] = int32(t)
			}
		}
		if a.IsInitial(s) {
			d.initial.Include(ns)
		}
		if a.IsAccepting(s) {
			d.accepting.Include(ns)
		}
	}
	if l := a.Labels(); l != nil {
		d.labels = l.Clone()
		for s := 1; s < n; s++ {
			if ns := remap[s]; ns != 0 && a.LabelOf(s) != 0 {
				if d.labelOf == nil {
					d.labelOf = make([]int32, count)
				}
				d.labelOf[ns] = int32(a.LabelOf(s))
			}
		}
	}
	d.flags = a.Flags() & (FlagSparse | FlagRewrite)
	setInitials(d)
	return d
}
