package fsa

import (
	"slices"

	"go.uber.org/zap"
)

// BoolOp is a boolean combination of two languages.
type BoolOp int

const (
	// OpAnd accepts words accepted by both operands.
	OpAnd BoolOp = iota
	OpOr
	// OpAndNot accepts words accepted by the first operand only.
	OpAndNot
	// OpNotAnd accepts words accepted by the second operand only.
	OpNotAnd
	// OpAndNotFirst accepts words of the first operand none of whose
	// prefixes, the word included, is accepted by the second. The product
	// is returned as built.
	OpAndNotFirst
	// OpAndNotFirstTrim is OpAndNotFirst with useless states removed. The
	// result is not minimised.
	OpAndNotFirstTrim
	// OpAndFirst accepts words accepted by both operands of which no
	// proper prefix is accepted by the second.
	OpAndFirst
)

var boolOpNames = [...]string{"and", "or", "and-not", "not-and", "and-not-first", "and-not-first-trim", "and-first"}

func (op BoolOp) String() string {
	if op < 0 || int(op) >= len(boolOpNames) {
		return "unknown"
	}
	return boolOpNames[op]
}

// ParseBoolOp is the inverse of BoolOp.String.
func ParseBoolOp(name string) (BoolOp, bool) {
	i := slices.Index(boolOpNames[:], name)
	return BoolOp(max(i, 0)), i >= 0
}

// first reports whether op tracks prefixes accepted by the second operand.
func (op BoolOp) first() bool {
	return op == OpAndNotFirst || op == OpAndNotFirstTrim || op == OpAndFirst
}

// accepts is the truth table of op.
func (op BoolOp) accepts(inA, inB bool) bool {
	switch op {
	case OpAnd, OpAndFirst:
		return inA && inB
	case OpOr:
		return inA || inB
	case OpNotAnd:
		return !inA && inB
	}
	return inA && !inB
}

// dead reports whether no word can be accepted after reaching (sa, sb).
func (op BoolOp) dead(sa, sb int, diverged bool) bool {
	switch {
	case op.first() && diverged:
		return true
	case sa == 0 && sb == 0:
		return true
	case op == OpAnd || op == OpAndFirst:
		return sa == 0 || sb == 0
	case op == OpNotAnd:
		return sb == 0
	case op == OpOr:
		return false
	}
	return sa == 0
}

// Combine returns the automaton of op applied to the languages of a and
// b, built as their synchronised product. The "first" operations carry a
// bit per product state that is set once b has accepted a prefix.
func (f *Factory) Combine(a, b Automaton, op BoolOp) (*Dense, error) {
	if err := sameAlphabet(a, b); err != nil {
		return nil, err
	}
	a, err := f.single(a)
	if err != nil {
		return nil, err
	}
	if b, err = f.single(b); err != nil {
		return nil, err
	}
	k := a.AlphabetSize()
	ra, rb := f.realiser(a), f.realiser(b)
	ia, ib := initialState(a), initialState(b)
	if op.dead(ia, ib, false) {
		return emptyResult(a.Alphabet()), nil
	}
	p := newTableBuilder(k, withCapacity(a.StateCount()+b.StateCount()))
	p.state([]int32{int32(ia), int32(ib), 0})

	var accepting []int
	row := make([]int32, k)
	key := make([]int32, 3)
	t := f.ticker()
	for s := 1; s <= p.states(); s++ {
		if err := t.tick(); err != nil {
			return nil, err
		}
		cur := p.key(s)
		sa, sb, div := int(cur[0]), int(cur[1]), cur[2] != 0
		inA, inB := a.IsAccepting(sa), b.IsAccepting(sb)
		if op.accepts(inA, inB) && !(op.first() && div) {
			accepting = append(accepting, s)
		}
		rowA, rowB := ra.Row(sa, 0), rb.Row(sb, 0)
		nextDiv := div || op.first() && inB
		for c := range row {
			ta, tb := max(rowA[c], 0), max(rowB[c], 0)
			if op.dead(ta, tb, nextDiv) {
				row[c] = 0
				continue
			}
			key[0], key[1], key[2] = int32(ta), int32(tb), 0
			if nextDiv {
				key[2] = 1
			}
			row[c] = int32(p.state(key))
		}
		p.addRow(row)
	}

	d := p.build(a.Alphabet())
	for _, s := range accepting {
		d.accepting.Include(s)
	}
	setInitials(d, 1)
	d.flags |= FlagAccessible | FlagBFS
	f.log().Debug("combined",
		zap.Stringer("op", op),
		zap.Int("product", d.StateCount()))

	switch op {
	case OpAndNotFirst:
		return d, nil
	case OpAndNotFirstTrim:
		return f.Trim(d)
	}
	return f.Minimize(d, MergeNone)
}

// Not returns the complement of the language of a over its alphabet.
func (f *Factory) Not(a Automaton) (*Dense, error) {
	a, err := f.single(a)
	if err != nil {
		return nil, err
	}
	n, k := a.StateCount(), a.AlphabetSize()
	// state n is an accepting sink standing in for the failure state
	d := blankDense(a.Alphabet(), n+1)
	sink := int32(n)
	row := make([]int, k)
	for s := 1; s <= n; s++ {
		if s < n {
			a.Row(s, row)
		} else {
			clear(row)
		}
		dst := d.rowSlice(s)
		for c, t := range row {
			if t > 0 {
				dst[c] = int32(t)
			} else {
				dst[c] = sink
			}
		}
		if !a.IsAccepting(s) {
			d.accepting.Include(s)
		}
	}
	if s := initialState(a); s != 0 {
		setInitials(d, s)
	} else {
		setInitials(d, int(sink))
	}
	return f.Minimize(d, MergeNone)
}
