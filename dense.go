package fsa

// Dense stores transitions in one flat table, row after row.
type Dense struct {
	header
	table []int32
}

var _ Mutable = (*Dense)(nil)

// NewDense returns an automaton with the given number of states, including
// the failure state, and no transitions. State 1, when it exists, is initial.
func NewDense(alphabet Alphabet, states int) *Dense {
	d := blankDense(alphabet, states)
	if states > 1 {
		d.initial.Include(1)
	}
	return d
}

// blankDense returns a store with no initial state.
func blankDense(alphabet Alphabet, states int) *Dense {
	states = max(states, 1)
	d := &Dense{
		header: newHeader(alphabet, states),
		table:  make([]int32, states*alphabet.Size()),
	}
	d.self = d
	return d
}

// Step Return the target of state on symbol.
func (d *Dense) Step(state, symbol int, _ bool) int {
	if state <= 0 || state >= d.states || symbol < 0 || symbol >= d.symbols {
		return 0
	}
	return int(d.table[state*d.symbols+symbol])
}

func (d *Dense) Row(state int, row []int) bool {
	if state < 0 || state >= d.states || len(row) < d.symbols {
		return false
	}
	for i, v := range d.table[state*d.symbols : (state+1)*d.symbols] {
		row[i] = int(v)
	}
	return true
}

// rowSlice returns the stored row without copying.
func (d *Dense) rowSlice(state int) []int32 {
	return d.table[state*d.symbols : (state+1)*d.symbols]
}

func (d *Dense) validTarget(t int) bool {
	if t < 0 {
		return d.flags.Has(FlagRewrite)
	}
	return t < d.states
}

// SetRow Replace all transitions of state. Nothing is written unless every
// target is valid.
func (d *Dense) SetRow(state int, row []int) bool {
	if !d.valid(state) || len(row) < d.symbols {
		return false
	}
	for _, t := range row[:d.symbols] {
		if !d.validTarget(t) {
			return false
		}
	}
	dst := d.rowSlice(state)
	for i := range dst {
		dst[i] = int32(row[i])
	}
	d.touched()
	return true
}

func (d *Dense) SetTransition(state, symbol, target int) bool {
	if !d.valid(state) || symbol < 0 || symbol >= d.symbols || !d.validTarget(target) {
		return false
	}
	d.table[state*d.symbols+symbol] = int32(target)
	d.touched()
	return true
}

// Grow adds extra states without transitions and returns the first new id.
func (d *Dense) Grow(extra int) int {
	first := d.states
	if extra <= 0 {
		return first
	}
	n := d.states + extra
	if cap(d.table) >= n*d.symbols {
		d.table = d.table[:n*d.symbols]
		clear(d.table[first*d.symbols:])
	} else {
		table := make([]int32, n*d.symbols, 2*n*d.symbols)
		copy(table, d.table)
		d.table = table
	}
	d.grow(n)
	d.flags &^= FlagTrim
	return first
}

// AddState Add one state and return its id.
func (d *Dense) AddState() int {
	return d.Grow(1)
}

// Clone returns an independent copy.
func (d *Dense) Clone() *Dense {
	c := blankDense(d.alphabet, d.states)
	copy(c.table, d.table)
	c.copyHeader(d)
	return c
}

func (d *Dense) Release() {
	d.table = nil
	d.release()
}

// Expand returns a dense copy of a.
func Expand(a Automaton) *Dense {
	if d, ok := a.(*Dense); ok {
		return d.Clone()
	}
	d := blankDense(a.Alphabet(), a.StateCount())
	row := make([]int, d.symbols)
	for s := 1; s < d.states; s++ {
		a.Row(s, row)
		dst := d.rowSlice(s)
		for i, v := range row {
			dst[i] = int32(v)
		}
	}
	d.copyHeader(a)
	d.flags &^= FlagSparse
	return d
}

// Freeze returns a in the storage its FlagSparse asks for. Rewrite tables
// always stay dense.
func Freeze(a Automaton) Mutable {
	if a.Flags().Has(FlagSparse) && !a.Flags().Has(FlagRewrite) {
		if s, ok := a.(*Sparse); ok {
			return s
		}
		s, err := Compact(a)
		if err == nil {
			return s
		}
	}
	if d, ok := a.(*Dense); ok {
		return d
	}
	return Expand(a)
}
