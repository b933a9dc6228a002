package fsa

import (
	"errors"
	"fmt"
)

var (
	// ErrAlphabetMismatch is returned when two operands do not share an alphabet.
	ErrAlphabetMismatch = errors.New("fsa: automata are over different alphabets")
	// ErrNotProduct is returned by two-tape operations given a one-tape automaton.
	ErrNotProduct = errors.New("fsa: automaton is not over a product alphabet")
	// ErrRewriteTargets is returned when rewrite-rule targets reach a store that cannot hold them.
	ErrRewriteTargets = errors.New("fsa: automaton contains rewrite targets")
	// ErrCorruptSubset is returned by UnpackSubset for truncated or malformed input.
	ErrCorruptSubset = errors.New("fsa: corrupt packed subset")
	// ErrDeadStates is returned by CommonPrefix for automata that are not trim.
	ErrDeadStates = errors.New("fsa: automaton has dead states")
)

// ParseError reports malformed persisted input.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("fsa: parse error at line %d, column %d: %s", e.Line, e.Col, e.Msg)
}
