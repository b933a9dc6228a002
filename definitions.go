package fsa

import "slices"

// definitions records one edge per state on a shortest path from an
// initial state (forward) or to an accepting state (backward). link is the
// neighbouring state on that path and sym the symbol read; sym is -1 at
// the ends of paths and link is -1 for states with no path.
type definitions struct {
	link []int32
	sym  []int32
}

func newDefinitions(n int) *definitions {
	d := &definitions{link: make([]int32, n), sym: make([]int32, n)}
	for i := range d.link {
		d.link[i] = -1
		d.sym[i] = -1
	}
	return d
}

func forwardDefinitions(a Automaton) *definitions {
	n := a.StateCount()
	d := newDefinitions(n)
	queue := make([]int, 0, n)
	for s := range a.InitialStates().All() {
		d.link[s] = 0
		queue = append(queue, s)
	}
	row := make([]int, a.AlphabetSize())
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		a.Row(s, row)
		for c, t := range row {
			if t <= 0 || d.link[t] != -1 {
				continue
			}
			d.link[t] = int32(s)
			d.sym[t] = int32(c)
			queue = append(queue, t)
		}
	}
	return d
}

func backwardDefinitions(a Automaton) *definitions {
	n := a.StateCount()
	d := newDefinitions(n)
	preds := buildPredecessors(a)
	queue := make([]int, 0, n)
	for s := range a.AcceptingStates().All() {
		d.link[s] = 0
		queue = append(queue, s)
	}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		for i := preds.start[t]; i < preds.start[t+1]; i++ {
			p := int(preds.from[i])
			if d.link[p] != -1 {
				continue
			}
			d.link[p] = int32(t)
			d.sym[p] = preds.sym[i]
			queue = append(queue, p)
		}
	}
	return d
}

// path follows the recorded edges from state. Forward paths are collected
// backwards and reversed.
func (d *definitions) path(state int, forward bool) (Word, bool) {
	if d == nil || state <= 0 || state >= len(d.link) || d.link[state] == -1 {
		return nil, false
	}
	w := Word{}
	for s := state; d.sym[s] != -1; s = int(d.link[s]) {
		w = append(w, int(d.sym[s]))
	}
	if forward {
		slices.Reverse(w)
	}
	return w, true
}

// predecessors lists the incoming edges of every state in compressed
// form: edges into t are from[start[t]:start[t+1]] with symbols sym.
type predecessors struct {
	start []int
	from  []int32
	sym   []int32
}

func buildPredecessors(a Automaton) *predecessors {
	n, k := a.StateCount(), a.AlphabetSize()
	p := &predecessors{start: make([]int, n+1)}
	row := make([]int, k)
	for s := 1; s < n; s++ {
		a.Row(s, row)
		for _, t := range row {
			if t > 0 {
				p.start[t+1]++
			}
		}
	}
	for t := 1; t <= n; t++ {
		p.start[t] += p.start[t-1]
	}
	p.from = make([]int32, p.start[n])
	p.sym = make([]int32, p.start[n])
	fill := slices.Clone(p.start[:n])
	for s := 1; s < n; s++ {
		a.Row(s, row)
		for c, t := range row {
			if t > 0 {
				p.from[fill[t]] = int32(s)
				p.sym[fill[t]] = int32(c)
				fill[t]++
			}
		}
	}
	return p
}

// into returns the edges into t.
func (p *predecessors) into(t int) ([]int32, []int32) {
	return p.from[p.start[t]:p.start[t+1]], p.sym[p.start[t]:p.start[t+1]]
}
