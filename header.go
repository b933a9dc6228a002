package fsa

// header holds everything a store keeps besides its transition table.
// Concrete stores embed it and set self so shared code can read rows.
type header struct {
	self      Automaton
	alphabet  Alphabet
	symbols   int
	states    int
	flags     Flags
	initial   *Subset
	accepting *Subset

	labels  *Labels
	labelOf []int32

	defs       *definitions
	acceptDefs *definitions
}

func newHeader(alphabet Alphabet, states int) header {
	return header{
		alphabet:  alphabet,
		symbols:   alphabet.Size(),
		states:    states,
		flags:     FlagDFA,
		initial:   NewSubset(states),
		accepting: NewSubset(states),
	}
}

func (h *header) Alphabet() Alphabet {
	return h.alphabet
}

func (h *header) AlphabetSize() int {
	return h.symbols
}

func (h *header) StateCount() int {
	return h.states
}

func (h *header) Flags() Flags {
	return h.flags
}

func (h *header) ChangeFlags(set, clear Flags) {
	h.flags = h.flags&^clear | set
}

func (h *header) InitialStates() *Subset {
	return h.initial
}

func (h *header) AcceptingStates() *Subset {
	return h.accepting
}

func (h *header) IsInitial(state int) bool {
	return h.initial.Contains(state)
}

func (h *header) IsAccepting(state int) bool {
	return h.accepting.Contains(state)
}

func (h *header) valid(state int) bool {
	return state > 0 && state < h.states
}

func (h *header) SetInitial(state int, on bool) bool {
	if !h.valid(state) {
		return false
	}
	h.initial.Assign(state, on)
	if h.initial.Count() > 1 {
		h.flags = h.flags&^FlagDFA | FlagMIDFA
	} else {
		h.flags = h.flags&^FlagMIDFA | FlagDFA
	}
	h.flags &^= FlagBFS | FlagAccessible | FlagTrim
	h.forget()
	return true
}

func (h *header) SetAccepting(state int, on bool) bool {
	if !h.valid(state) {
		return false
	}
	h.accepting.Assign(state, on)
	h.flags &^= FlagMinimised | FlagTrim
	h.acceptDefs = nil
	return true
}

// touched records a change to the transition table.
func (h *header) touched() {
	h.flags &^= structural
	h.forget()
}

func (h *header) forget() {
	h.defs = nil
	h.acceptDefs = nil
}

// grow extends the header to n states.
func (h *header) grow(n int) {
	h.states = n
	h.initial.Resize(n)
	h.accepting.Resize(n)
	if h.labelOf != nil {
		h.labelOf = append(h.labelOf, make([]int32, n-len(h.labelOf))...)
	}
	h.forget()
}

func (h *header) Labels() *Labels {
	return h.labels
}

func (h *header) SetLabels(l *Labels) {
	h.labels = l
	if l == nil {
		h.labelOf = nil
	}
}

func (h *header) LabelOf(state int) int {
	if h.labelOf == nil || state <= 0 || state >= len(h.labelOf) {
		return 0
	}
	return int(h.labelOf[state])
}

func (h *header) SetLabelOf(state, label int, grow bool) bool {
	if !h.valid(state) || h.labels == nil || label < 0 {
		return false
	}
	if label >= h.labels.Count() {
		if !grow {
			return false
		}
		h.labels.SetCount(label + 1)
	}
	if h.labelOf == nil {
		if label == 0 {
			return true
		}
		h.labelOf = make([]int32, h.states)
	}
	h.labelOf[state] = int32(label)
	h.flags &^= FlagMinimised
	return true
}

func (h *header) LabelCount() int {
	if h.labels == nil {
		return 0
	}
	return h.labels.Count()
}

func (h *header) LabelType() LabelType {
	if h.labels == nil {
		return LabelNone
	}
	return h.labels.Type()
}

// SetLabelType converts the label table, creating an empty one if needed,
// and reports whether the conversion was lossless.
func (h *header) SetLabelType(kind LabelType) bool {
	if h.labels == nil {
		h.labels = NewLabels(kind, h.alphabet, 1)
		return true
	}
	return h.labels.Convert(kind)
}

// SetLabelCount resizes the label table. States whose label no longer
// exists become unlabelled.
func (h *header) SetLabelCount(n int) {
	if h.labels == nil {
		h.labels = NewLabels(LabelIdentifier, h.alphabet, n)
		return
	}
	h.labels.SetCount(n)
	for s, l := range h.labelOf {
		if int(l) >= h.labels.Count() {
			h.labelOf[s] = 0
		}
	}
}

func (h *header) CreateDefinitions() {
	h.defs = forwardDefinitions(h.self)
}

func (h *header) CreateAcceptDefinitions() {
	h.acceptDefs = backwardDefinitions(h.self)
}

// DefiningWord returns a shortest word leading from an initial state to
// state. It needs CreateDefinitions and is unavailable for two-tape
// automata, whose witnesses come in pairs; use DefiningPair there.
func (h *header) DefiningWord(state int) (Word, bool) {
	if IsProduct(h.self) {
		return nil, false
	}
	return h.defs.path(state, true)
}

// DefiningPair returns the two tapes of a shortest word leading to state
// in a two-tape automaton, with padding removed.
func (h *header) DefiningPair(state int) (Word, Word, bool) {
	w, ok := h.defs.path(state, true)
	if !ok {
		return nil, nil, false
	}
	return splitTapes(h.alphabet, w)
}

// AcceptingPath returns a shortest word leading from state to an
// accepting state. It needs CreateAcceptDefinitions.
func (h *header) AcceptingPath(state int) (Word, bool) {
	if IsProduct(h.self) {
		return nil, false
	}
	return h.acceptDefs.path(state, false)
}

func (h *header) AcceptingPair(state int) (Word, Word, bool) {
	w, ok := h.acceptDefs.path(state, false)
	if !ok {
		return nil, nil, false
	}
	return splitTapes(h.alphabet, w)
}

func (h *header) release() {
	h.initial = NewSubset(0)
	h.accepting = NewSubset(0)
	h.labels = nil
	h.labelOf = nil
	h.states = 0
	h.forget()
}

// copyHeader copies the non-transition data of src into h, which must
// already have the same state count.
func (h *header) copyHeader(src Automaton) {
	h.flags = src.Flags()
	h.initial = src.InitialStates().Clone()
	h.accepting = src.AcceptingStates().Clone()
	if l := src.Labels(); l != nil {
		h.labels = l.Clone()
		for s := 1; s < h.states; s++ {
			if id := src.LabelOf(s); id != 0 {
				if h.labelOf == nil {
					h.labelOf = make([]int32, h.states)
				}
				h.labelOf[s] = int32(id)
			}
		}
	}
}

func splitTapes(alphabet Alphabet, w Word) (Word, Word, bool) {
	pa, ok := alphabet.(ProductAlphabet)
	if !ok {
		return nil, nil, false
	}
	u, v := Word{}, Word{}
	for _, s := range w {
		g1, g2 := pa.Split(s)
		if g1 != Padding {
			u = append(u, g1)
		}
		if g2 != Padding {
			v = append(v, g2)
		}
	}
	return u, v, true
}
