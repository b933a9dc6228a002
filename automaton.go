package fsa

import "strings"

// Flags are advisory properties of an automaton. Algorithms only set the
// flags they can guarantee; mutators clear the ones they may invalidate.
type Flags uint32

const (
	// FlagDFA marks a deterministic automaton with a single initial state.
	FlagDFA Flags = 1 << iota
	// FlagMIDFA marks a deterministic automaton with several initial states.
	FlagMIDFA
	FlagMinimised
	// FlagAccessible marks an automaton whose states are all reachable.
	FlagAccessible
	FlagTrim
	// FlagSparse asks for compressed storage when the automaton is frozen.
	FlagSparse
	// FlagBFS marks states numbered in breadth-first order from the initial states.
	FlagBFS
	// FlagRewrite marks a table whose negative targets name rewrite rules.
	FlagRewrite
)

var flagNames = [...]string{"DFA", "MIDFA", "minimized", "accessible", "trim", "sparse", "BFS", "RWS"}

// Has reports whether every flag in g is set.
func (f Flags) Has(g Flags) bool {
	return f&g == g
}

// Names returns the names of the set flags in a fixed order.
func (f Flags) Names() []string {
	var out []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			out = append(out, name)
		}
	}
	return out
}

func (f Flags) String() string {
	return strings.Join(f.Names(), "|")
}

// ParseFlag returns the flag with the given name.
func ParseFlag(name string) (Flags, bool) {
	for i, n := range flagNames {
		if n == name {
			return 1 << i, true
		}
	}
	return 0, false
}

// structural flags are cleared by any change to the transition table.
const structural = FlagMinimised | FlagAccessible | FlagTrim | FlagBFS

// Automaton is the read side of an automaton.
//
// States are 0..StateCount()-1; state 0 is the failure state, which has no
// transitions and is never initial or accepting. Symbols are
// 0..AlphabetSize()-1. A transition to 0 means "no transition". Queries on
// ids out of range return zero values rather than failing.
type Automaton interface {
	Alphabet() Alphabet
	AlphabetSize() int
	StateCount() int
	Flags() Flags

	// InitialStates and AcceptingStates return the live sets; use
	// SetInitial and SetAccepting to change them.
	InitialStates() *Subset
	AcceptingStates() *Subset
	IsInitial(state int) bool
	IsAccepting(state int) bool

	// Step returns the target of state on symbol. bufferHint says the
	// caller will read more of the same row, so a store may decode it once.
	Step(state, symbol int, bufferHint bool) int
	// Row copies the targets of state into row, which needs one entry per symbol.
	Row(state int, row []int) bool

	Labels() *Labels
	LabelOf(state int) int
}

// Definer computes and follows shortest witnessing paths.
type Definer interface {
	CreateDefinitions()
	CreateAcceptDefinitions()
	DefiningWord(state int) (Word, bool)
	DefiningPair(state int) (Word, Word, bool)
	AcceptingPath(state int) (Word, bool)
	AcceptingPair(state int) (Word, Word, bool)
}

// Mutable is the full automaton contract. Mutators return false, without
// changing anything, when their preconditions are not met.
type Mutable interface {
	Automaton
	Definer

	SetRow(state int, row []int) bool
	SetTransition(state, symbol, target int) bool
	SetInitial(state int, on bool) bool
	SetAccepting(state int, on bool) bool
	ChangeFlags(set, clear Flags)

	SetLabels(l *Labels)
	SetLabelOf(state, label int, grow bool) bool
	LabelCount() int
	LabelType() LabelType
	SetLabelType(kind LabelType) bool
	SetLabelCount(n int)

	// Release drops the automaton's storage. The automaton must not be used afterwards.
	Release()
}

// IsProduct reports whether a is a two-tape automaton.
func IsProduct(a Automaton) bool {
	_, ok := a.Alphabet().(ProductAlphabet)
	return ok
}
