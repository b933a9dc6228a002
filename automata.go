package fsa

// Empty returns an automaton accepting no word.
func Empty(alphabet Alphabet) *Dense {
	return emptyResult(alphabet)
}

// EmptyWord returns an automaton accepting only the empty word.
func EmptyWord(alphabet Alphabet) *Dense {
	d := emptyResult(alphabet)
	d.accepting.Include(1)
	d.flags |= FlagTrim
	return d
}

// Universal returns an automaton accepting every word over alphabet.
func Universal(alphabet Alphabet) *Dense {
	d := NewDense(alphabet, 2)
	for c := 0; c < d.symbols; c++ {
		d.table[d.symbols+c] = 1
	}
	d.accepting.Include(1)
	d.flags = FlagDFA | FlagMinimised | FlagAccessible | FlagTrim | FlagBFS
	return d
}

// FromWords returns a trie accepting exactly the given words. Words with
// symbols outside the alphabet are skipped.
func FromWords(alphabet Alphabet, words ...Word) *Dense {
	d := NewDense(alphabet, 2)
	k := d.symbols
next:
	for _, w := range words {
		for _, c := range w {
			if c < 0 || c >= k {
				continue next
			}
		}
		s := 1
		for _, c := range w {
			t := d.Step(s, c, false)
			if t == 0 {
				t = d.AddState()
				d.table[s*k+c] = int32(t)
			}
			s = t
		}
		d.accepting.Include(s)
	}
	d.flags = FlagDFA | FlagAccessible
	if d.accepting.Count() > 0 {
		d.flags |= FlagTrim
	}
	return d
}
