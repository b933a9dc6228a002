package fsa

// Realiser gives a dense row view of any automaton. Small tables are
// decoded once; otherwise each slot caches one decoded row.
//
// A row returned for a slot stays valid until the next call with the same
// slot, so rows read together must use distinct slots.
type Realiser struct {
	a     Automaton
	k     int
	n     int
	dense *Dense
	table []int
	slots [][]int
	held  []int
	zero  []int
}

// NewRealiser returns a row view of a.
func NewRealiser(a Automaton, opts ...RealiserOption) *Realiser {
	o := newRealiserOptions(opts...)
	r := &Realiser{
		a:    a,
		k:    a.AlphabetSize(),
		n:    a.StateCount(),
		zero: make([]int, a.AlphabetSize()),
	}
	if d, ok := a.(*Dense); ok {
		r.dense = d
	} else if r.n*r.k <= o.eagerLimit {
		r.table = make([]int, r.n*r.k)
		for s := 1; s < r.n; s++ {
			a.Row(s, r.table[s*r.k:(s+1)*r.k])
		}
		return r
	}
	r.slots = make([][]int, o.rows)
	r.held = make([]int, o.rows)
	for i := range r.slots {
		r.slots[i] = make([]int, r.k)
		r.held[i] = -1
	}
	return r
}

// Slots returns the number of row slots.
func (r *Realiser) Slots() int {
	return len(r.slots)
}

// Row returns the targets of state. The result must not be modified.
func (r *Realiser) Row(state, slot int) []int {
	if state <= 0 || state >= r.n {
		return r.zero
	}
	if r.table != nil {
		return r.table[state*r.k : (state+1)*r.k]
	}
	buf := r.slots[slot]
	if r.held[slot] == state {
		return buf
	}
	if r.dense != nil {
		for i, v := range r.dense.rowSlice(state) {
			buf[i] = int(v)
		}
	} else {
		r.a.Row(state, buf)
	}
	r.held[slot] = state
	return buf
}

// Step returns the target of state on symbol.
func (r *Realiser) Step(state, symbol int) int {
	if r.table != nil {
		if state <= 0 || state >= r.n || symbol < 0 || symbol >= r.k {
			return 0
		}
		return r.table[state*r.k+symbol]
	}
	return r.a.Step(state, symbol, false)
}
