package fsa

import "fmt"

// Sparse stores each row compressed. One decoded row is cached, and one row
// at a time may be locked for in-place editing.
type Sparse struct {
	header
	rows   [][]byte
	comp   *Compressor
	cache  []int
	cached int
	locked int
}

var _ Mutable = (*Sparse)(nil)

// NewSparse returns a compressed automaton with the given number of
// states and no transitions. State 1, when it exists, is initial.
func NewSparse(alphabet Alphabet, states int) *Sparse {
	s := blankSparse(alphabet, states)
	if s.states > 1 {
		s.initial.Include(1)
	}
	return s
}

func blankSparse(alphabet Alphabet, states int) *Sparse {
	states = max(states, 1)
	s := &Sparse{
		header: newHeader(alphabet, states),
		rows:   make([][]byte, states),
		comp:   NewCompressor(alphabet.Size(), states),
		cache:  make([]int, alphabet.Size()),
		cached: -1,
	}
	s.flags |= FlagSparse
	s.self = s
	return s
}

func (s *Sparse) Step(state, symbol int, bufferHint bool) int {
	if state <= 0 || state >= s.states || symbol < 0 || symbol >= s.symbols {
		return 0
	}
	if s.cached == state {
		return s.cache[symbol]
	}
	if bufferHint {
		s.comp.Decompress(s.rows[state], s.cache)
		s.cached = state
		return s.cache[symbol]
	}
	return s.comp.Target(s.rows[state], symbol)
}

func (s *Sparse) Row(state int, row []int) bool {
	if state < 0 || state >= s.states || len(row) < s.symbols {
		return false
	}
	if s.cached == state {
		copy(row, s.cache)
		return true
	}
	s.comp.Decompress(s.rows[state], row)
	return true
}

func (s *Sparse) validRow(row []int) bool {
	if len(row) < s.symbols {
		return false
	}
	for _, t := range row[:s.symbols] {
		if t < 0 || t >= s.states {
			return false
		}
	}
	return true
}

func (s *Sparse) store(state int, row []int) {
	s.rows[state] = s.comp.Compress(row)
	if s.cached == state {
		s.cached = -1
	}
	s.touched()
}

// SetRow Replace all transitions of state. Negative targets are rejected.
func (s *Sparse) SetRow(state int, row []int) bool {
	if !s.valid(state) || state == s.locked || !s.validRow(row) {
		return false
	}
	s.store(state, row)
	return true
}

func (s *Sparse) SetTransition(state, symbol, target int) bool {
	if !s.valid(state) || state == s.locked || symbol < 0 || symbol >= s.symbols || target < 0 || target >= s.states {
		return false
	}
	row := make([]int, s.symbols)
	s.Row(state, row)
	if row[symbol] == target {
		return true
	}
	row[symbol] = target
	s.store(state, row)
	return true
}

// RowGuard is a decoded row locked for editing. Changes are kept only when
// the guard is marked dirty before Unlock.
type RowGuard struct {
	owner *Sparse
	state int
	row   []int
	dirty bool
}

// Lock decodes the row of state for editing. Only one row may be locked at
// a time; locking a second row before unlocking the first panics.
func (s *Sparse) Lock(state int) (*RowGuard, bool) {
	if s.locked != 0 {
		panic(fmt.Sprintf("fsa: row %d locked while row %d is still locked", state, s.locked))
	}
	if !s.valid(state) {
		return nil, false
	}
	g := &RowGuard{owner: s, state: state, row: make([]int, s.symbols)}
	s.Row(state, g.row)
	s.locked = state
	return g, true
}

// State returns the locked state.
func (g *RowGuard) State() int {
	return g.state
}

// Row returns the editable row.
func (g *RowGuard) Row() []int {
	return g.row
}

func (g *RowGuard) MarkDirty() {
	g.dirty = true
}

// Unlock releases the row, re-compressing it if it was marked dirty. It
// returns false, and keeps the old row, when a dirty row holds an invalid
// target. Unlocking twice panics.
func (g *RowGuard) Unlock() bool {
	s := g.owner
	if s == nil || s.locked != g.state {
		panic(fmt.Sprintf("fsa: unlock of row %d which is not locked", g.state))
	}
	g.owner = nil
	s.locked = 0
	if !g.dirty {
		return true
	}
	if !s.validRow(g.row) {
		return false
	}
	s.store(g.state, g.row)
	return true
}

// WithRow locks the row of state, passes it to fn and unlocks it, keeping
// the changes when fn returns true.
func (s *Sparse) WithRow(state int, fn func(row []int) bool) bool {
	g, ok := s.Lock(state)
	if !ok {
		return false
	}
	defer func() {
		if g.owner != nil {
			g.owner.locked = 0
			g.owner = nil
		}
	}()
	if fn(g.row) {
		g.MarkDirty()
	}
	return g.Unlock()
}

// Grow adds extra states without transitions and returns the first new id.
// Rows are re-encoded when the target width changes.
func (s *Sparse) Grow(extra int) int {
	first := s.states
	if extra <= 0 {
		return first
	}
	n := s.states + extra
	comp := NewCompressor(s.symbols, n)
	if comp.Width() != s.comp.Width() {
		row := make([]int, s.symbols)
		for i, buf := range s.rows {
			if len(buf) == 0 {
				continue
			}
			s.comp.Decompress(buf, row)
			s.rows[i] = comp.Compress(row)
		}
	}
	s.comp = comp
	s.rows = append(s.rows, make([][]byte, extra)...)
	s.grow(n)
	s.flags &^= FlagTrim
	return first
}

// StorageBytes returns the size of the compressed rows.
func (s *Sparse) StorageBytes() int {
	n := 0
	for _, r := range s.rows {
		n += len(r)
	}
	return n
}

// Clone returns an independent copy. Row buffers are never modified in
// place, so they are shared.
func (s *Sparse) Clone() *Sparse {
	c := blankSparse(s.alphabet, s.states)
	copy(c.rows, s.rows)
	c.copyHeader(s)
	return c
}

func (s *Sparse) Release() {
	s.rows = nil
	s.cache = nil
	s.cached = -1
	s.release()
}

// Compact returns a compressed copy of a. Rewrite tables cannot be
// compressed.
func Compact(a Automaton) (*Sparse, error) {
	if a.Flags().Has(FlagRewrite) {
		return nil, ErrRewriteTargets
	}
	if sp, ok := a.(*Sparse); ok {
		return sp.Clone(), nil
	}
	s := blankSparse(a.Alphabet(), a.StateCount())
	row := make([]int, s.symbols)
	for st := 1; st < s.states; st++ {
		a.Row(st, row)
		if !s.validRow(row) {
			return nil, ErrRewriteTargets
		}
		s.rows[st] = s.comp.Compress(row)
	}
	s.copyHeader(a)
	s.flags |= FlagSparse
	return s, nil
}
