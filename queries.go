package fsa

import (
	"fmt"
	"math/bits"

	"github.com/bits-and-blooms/bitset"
)

// ReadWord returns the state reached by reading w from start. The failure
// state is absorbing.
func ReadWord(a Automaton, start int, w Word) int {
	s := start
	if s <= 0 || s >= a.StateCount() {
		return 0
	}
	for _, c := range w {
		s = a.Step(s, c, false)
		if s <= 0 {
			return 0
		}
	}
	return s
}

// AcceptsFrom reports whether reading w from start ends in an accepting state.
func AcceptsFrom(a Automaton, start int, w Word) bool {
	return a.IsAccepting(ReadWord(a, start, w))
}

// Accepts reports whether some initial state accepts w.
func Accepts(a Automaton, w Word) bool {
	for s := range a.InitialStates().All() {
		if AcceptsFrom(a, s, w) {
			return true
		}
	}
	return false
}

func reachable(a Automaton, roots []int) *bitset.BitSet {
	seen := bitset.New(uint(a.StateCount()))
	queue := make([]int, 0, len(roots))
	for _, r := range roots {
		if r > 0 && r < a.StateCount() && !seen.Test(uint(r)) {
			seen.Set(uint(r))
			queue = append(queue, r)
		}
	}
	k := a.AlphabetSize()
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for c := 0; c < k; c++ {
			t := a.Step(s, c, true)
			if t > 0 && !seen.Test(uint(t)) {
				seen.Set(uint(t))
				queue = append(queue, t)
			}
		}
	}
	return seen
}

// coaccessible returns the states from which an accepting state can be reached.
func coaccessible(a Automaton) *bitset.BitSet {
	n := a.StateCount()
	seen := bitset.New(uint(n))
	preds := buildPredecessors(a)
	queue := a.AcceptingStates().Slice()
	for _, s := range queue {
		seen.Set(uint(s))
	}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		from, _ := preds.into(t)
		for _, p := range from {
			if !seen.Test(uint(p)) {
				seen.Set(uint(p))
				queue = append(queue, int(p))
			}
		}
	}
	return seen
}

func toSubset(b *bitset.BitSet, n int) *Subset {
	out := NewSubset(n)
	if b.Count() > uint(out.listLimit()) {
		out.ExpectBigBitset(true)
	}
	for i, ok := b.NextSet(1); ok && int(i) < n; i, ok = b.NextSet(i + 1) {
		out.Include(int(i))
	}
	return out
}

// AccessibleStates returns the states reachable from an initial state.
func AccessibleStates(a Automaton) *Subset {
	return toSubset(reachable(a, a.InitialStates().Slice()), a.StateCount())
}

// sccResult is the outcome of a strongly connected component sweep. order
// lists the visited states with every state after all its successors in
// other components; cyclic marks the states lying on a cycle.
type sccResult struct {
	order  []int
	cyclic *bitset.BitSet
}

type sccFrame struct {
	state int
	sym   int
}

// stronglyConnected runs Tarjan's algorithm without recursion over the
// states reachable from roots.
func stronglyConnected(a Automaton, roots []int) sccResult {
	n, k := a.StateCount(), a.AlphabetSize()
	index := make([]int32, n)
	low := make([]int32, n)
	onStack := bitset.New(uint(n))
	selfLoop := bitset.New(uint(n))
	res := sccResult{cyclic: bitset.New(uint(n))}

	var stack []int
	var frames []sccFrame
	next := int32(0)
	push := func(s int) {
		next++
		index[s], low[s] = next, next
		stack = append(stack, s)
		onStack.Set(uint(s))
		frames = append(frames, sccFrame{state: s})
	}

	for _, r := range roots {
		if r <= 0 || r >= n || index[r] != 0 {
			continue
		}
		push(r)
		for len(frames) > 0 {
			top := len(frames) - 1
			s := frames[top].state
			if c := frames[top].sym; c < k {
				frames[top].sym++
				t := a.Step(s, c, true)
				if t <= 0 || t >= n {
					continue
				}
				if t == s {
					selfLoop.Set(uint(s))
				}
				if index[t] == 0 {
					push(t)
				} else if onStack.Test(uint(t)) {
					low[s] = min(low[s], index[t])
				}
				continue
			}
			frames = frames[:top]
			if top > 0 {
				p := frames[top-1].state
				low[p] = min(low[p], low[s])
			}
			if low[s] != index[s] {
				continue
			}
			base := len(stack)
			for {
				base--
				onStack.Clear(uint(stack[base]))
				if stack[base] == s {
					break
				}
			}
			members := stack[base:]
			if len(members) > 1 || selfLoop.Test(uint(s)) {
				for _, m := range members {
					res.cyclic.Set(uint(m))
				}
			}
			res.order = append(res.order, members...)
			stack = stack[:base]
		}
	}
	return res
}

func allStates(a Automaton) []int {
	out := make([]int, 0, a.StateCount())
	for s := 1; s < a.StateCount(); s++ {
		out = append(out, s)
	}
	return out
}

// RecurrentStates returns the states lying on a cycle. With extend, every
// state reachable from such a state is included too.
func RecurrentStates(a Automaton, extend bool) *Subset {
	res := stronglyConnected(a, allStates(a))
	cyclic := res.cyclic
	if extend && cyclic.Any() {
		roots := make([]int, 0, cyclic.Count())
		for i, ok := cyclic.NextSet(0); ok; i, ok = cyclic.NextSet(i + 1) {
			roots = append(roots, int(i))
		}
		cyclic = reachable(a, roots)
	}
	return toSubset(cyclic, a.StateCount())
}

// Repetend returns a shortest non-empty word leading from state back to itself.
func Repetend(a Automaton, state int) (Word, bool) {
	n, k := a.StateCount(), a.AlphabetSize()
	if state <= 0 || state >= n {
		return nil, false
	}
	prev := make([]int32, n)
	sym := make([]int32, n)
	for i := range prev {
		prev[i] = -1
	}
	queue := []int{state}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for c := 0; c < k; c++ {
			t := a.Step(s, c, true)
			if t <= 0 || prev[t] != -1 {
				continue
			}
			prev[t], sym[t] = int32(s), int32(c)
			if t == state {
				w := Word{}
				for x := t; ; {
					w = append(w, int(sym[x]))
					x = int(prev[x])
					if x == state {
						break
					}
				}
				for i, j := 0, len(w)-1; i < j; i, j = i+1, j-1 {
					w[i], w[j] = w[j], w[i]
				}
				return w, true
			}
			queue = append(queue, t)
		}
	}
	return nil, false
}

// IsRepetend reports whether w is non-empty and leads from state back to itself.
func IsRepetend(a Automaton, state int, w Word) bool {
	return len(w) > 0 && state > 0 && ReadWord(a, state, w) == state
}

// SizeKind classifies the result of LanguageSize.
type SizeKind int

const (
	SizeFinite SizeKind = iota
	SizeInfinite
	// SizeUncountable is a finite language whose size could not be
	// determined exactly.
	SizeUncountable
)

// Size is the size of an accepted language.
type Size struct {
	Kind  SizeKind
	Count uint64
}

func (s Size) String() string {
	switch s.Kind {
	case SizeInfinite:
		return "infinite"
	case SizeUncountable:
		return "finite (not exactly countable)"
	}
	return fmt.Sprintf("%d", s.Count)
}

// LanguageSize counts the words accepted from start, or from the initial
// states when start is 0. A cycle among the reachable states is reported
// as infinite, so an automaton that is not trim may be reported infinite
// although its language is finite. With several initial states the
// languages may overlap; exact then yields SizeUncountable, otherwise the
// sum of the sizes.
func LanguageSize(a Automaton, exact bool, start int) Size {
	var roots []int
	if start > 0 {
		if start >= a.StateCount() {
			return Size{}
		}
		roots = []int{start}
	} else {
		roots = a.InitialStates().Slice()
	}
	if len(roots) == 0 {
		return Size{}
	}
	res := stronglyConnected(a, roots)
	if res.cyclic.Any() {
		return Size{Kind: SizeInfinite}
	}
	if exact && len(roots) > 1 {
		return Size{Kind: SizeUncountable}
	}

	k := a.AlphabetSize()
	counts := make([]uint64, a.StateCount())
	for _, s := range res.order {
		var c, carry uint64
		if a.IsAccepting(s) {
			c = 1
		}
		for sym := 0; sym < k; sym++ {
			if t := a.Step(s, sym, true); t > 0 {
				var o uint64
				c, o = bits.Add64(c, counts[t], 0)
				carry |= o
			}
		}
		if carry != 0 {
			return Size{Kind: SizeUncountable}
		}
		counts[s] = c
	}
	var total, carry uint64
	for _, r := range roots {
		var o uint64
		total, o = bits.Add64(total, counts[r], 0)
		carry |= o
	}
	if carry != 0 {
		return Size{Kind: SizeUncountable}
	}
	return Size{Count: total}
}

// IsEmpty reports whether a accepts no word.
func IsEmpty(a Automaton) bool {
	if a.AcceptingStates().Count() == 0 || a.InitialStates().Count() == 0 {
		return true
	}
	seen := reachable(a, a.InitialStates().Slice())
	for s := range a.AcceptingStates().All() {
		if seen.Test(uint(s)) {
			return false
		}
	}
	return true
}

// CommonPrefix returns the longest word that is a prefix of every accepted
// word. a must be trim unless its language is empty.
func CommonPrefix(a Automaton) (Word, error) {
	n := a.StateCount()
	prefix := Word{}
	if IsEmpty(a) {
		return prefix, nil
	}
	live := coaccessible(a)
	access := reachable(a, a.InitialStates().Slice())
	if access.Difference(live).Any() {
		return nil, ErrDeadStates
	}
	k := a.AlphabetSize()
	current := bitset.New(uint(n))
	next := bitset.New(uint(n))
	for s := range a.InitialStates().All() {
		current.Set(uint(s))
	}
	for steps := 0; steps < n; steps++ {
		label := -1
		for i, ok := current.NextSet(0); ok; i, ok = current.NextSet(i + 1) {
			s := int(i)
			// an accepted word ends here
			if a.IsAccepting(s) {
				return prefix, nil
			}
			for c := 0; c < k; c++ {
				t := a.Step(s, c, true)
				if t <= 0 {
					continue
				}
				if label == -1 {
					label = c
				}
				if c != label {
					return prefix, nil
				}
				next.Set(uint(t))
			}
		}
		if label == -1 {
			break
		}
		prefix = append(prefix, label)
		current, next = next, current
		next.ClearAll()
	}
	return prefix, nil
}
