package fsa

// noCopy makes go vet's copylocks check reject copies of the struct holding it.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Owned is an owning handle on an automaton. It forwards the whole
// Mutable contract to the automaton it holds, so types embedding it can
// override single methods. Ownership moves with Take; an Owned must not be
// copied.
type Owned struct {
	_ noCopy
	Mutable
}

var _ Mutable = (*Owned)(nil)

// Own takes ownership of m.
func Own(m Mutable) *Owned {
	return &Owned{Mutable: m}
}

// Valid reports whether the handle still holds an automaton.
func (o *Owned) Valid() bool {
	return o.Mutable != nil
}

// Take moves the automaton into a new handle and leaves o empty.
func (o *Owned) Take() *Owned {
	n := &Owned{Mutable: o.Mutable}
	o.Mutable = nil
	return n
}

// Borrow returns a non-owning view. It must not outlive o.
func (o *Owned) Borrow() Borrowed {
	return Borrowed{Mutable: o.Mutable}
}

// Unwrap returns the held automaton without giving up ownership.
func (o *Owned) Unwrap() Mutable {
	return o.Mutable
}

// Close releases the held automaton. Later calls do nothing.
func (o *Owned) Close() error {
	if o.Mutable == nil {
		return nil
	}
	o.Mutable.Release()
	o.Mutable = nil
	return nil
}

// Release is Close.
func (o *Owned) Release() {
	_ = o.Close()
}

// Borrowed is a non-owning view forwarding the Mutable contract. Releasing
// it leaves the automaton alone.
type Borrowed struct {
	Mutable
}

// Borrow returns a non-owning view of m.
func Borrow(m Mutable) Borrowed {
	return Borrowed{Mutable: m}
}

func (b Borrowed) Release() {}

// Unwrap returns the viewed automaton.
func (b Borrowed) Unwrap() Mutable {
	return b.Mutable
}
