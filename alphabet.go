package fsa

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Padding marks the end of one tape in a product symbol.
const Padding = -1

// Word is a sequence of symbols.
type Word []int

// Alphabet maps symbols 0..Size()-1 to printable glyphs and back.
type Alphabet interface {
	Size() int
	Glyph(symbol int) string
	Symbol(glyph string) (int, bool)
}

// ProductAlphabet pairs two copies of a base alphabet for two-tape automata.
// Either component of a product symbol may be Padding, but not both.
type ProductAlphabet interface {
	Alphabet
	Base() Alphabet
	ProductID(g1, g2 int) int
	Split(symbol int) (int, int)
}

type letters struct {
	glyphs []string
	index  map[string]int
}

// NewAlphabet returns an alphabet whose symbols are the given glyphs, in order.
func NewAlphabet(glyphs ...string) Alphabet {
	a := &letters{
		glyphs: append([]string(nil), glyphs...),
		index:  make(map[string]int, len(glyphs)),
	}
	for i, g := range a.glyphs {
		a.index[g] = i
	}
	return a
}

func (a *letters) Size() int {
	return len(a.glyphs)
}

func (a *letters) Glyph(symbol int) string {
	if symbol < 0 || symbol >= len(a.glyphs) {
		return "?"
	}
	return a.glyphs[symbol]
}

func (a *letters) Symbol(glyph string) (int, bool) {
	s, ok := a.index[glyph]
	return s, ok
}

type product struct {
	base Alphabet
	n    int
}

// NewProductAlphabet returns the padded product of base with itself.
// Symbol ids are stable for a given base: id = (g1+1)*(n+1) + (g2+1) - 1.
func NewProductAlphabet(base Alphabet) ProductAlphabet {
	return &product{base: base, n: base.Size()}
}

func (p *product) Size() int {
	return (p.n+1)*(p.n+1) - 1
}

func (p *product) Base() Alphabet {
	return p.base
}

func (p *product) ProductID(g1, g2 int) int {
	if g1 < Padding || g1 >= p.n || g2 < Padding || g2 >= p.n {
		return -1
	}
	if g1 == Padding && g2 == Padding {
		return -1
	}
	return (g1+1)*(p.n+1) + (g2 + 1) - 1
}

func (p *product) Split(symbol int) (int, int) {
	v := symbol + 1
	return v/(p.n+1) - 1, v%(p.n+1) - 1
}

func (p *product) component(g int) string {
	if g == Padding {
		return "_"
	}
	return p.base.Glyph(g)
}

func (p *product) Glyph(symbol int) string {
	if symbol < 0 || symbol >= p.Size() {
		return "?"
	}
	g1, g2 := p.Split(symbol)
	return "(" + p.component(g1) + "," + p.component(g2) + ")"
}

func (p *product) Symbol(glyph string) (int, bool) {
	if !strings.HasPrefix(glyph, "(") || !strings.HasSuffix(glyph, ")") {
		return 0, false
	}
	left, right, ok := strings.Cut(glyph[1:len(glyph)-1], ",")
	if !ok {
		return 0, false
	}
	g1, ok1 := p.lookup(left)
	g2, ok2 := p.lookup(right)
	if !ok1 || !ok2 {
		return 0, false
	}
	id := p.ProductID(g1, g2)
	return id, id >= 0
}

func (p *product) lookup(glyph string) (int, bool) {
	if glyph == "_" {
		return Padding, true
	}
	return p.base.Symbol(glyph)
}

// SameAlphabet reports whether a and b describe the same symbols.
func SameAlphabet(a, b Alphabet) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Size() != b.Size() {
		return false
	}
	pa, aIsProduct := a.(ProductAlphabet)
	pb, bIsProduct := b.(ProductAlphabet)
	if aIsProduct != bIsProduct {
		return false
	}
	if aIsProduct {
		return SameAlphabet(pa.Base(), pb.Base())
	}
	for i := 0; i < a.Size(); i++ {
		if a.Glyph(i) != b.Glyph(i) {
			return false
		}
	}
	return true
}

// ParseWord converts text into a word. Glyphs may be separated by '*' or
// white space; an unseparated string over single-rune glyphs is read rune by rune.
func ParseWord(a Alphabet, text string) (Word, error) {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == '*' || unicode.IsSpace(r)
	})
	if len(tokens) == 1 {
		if s, ok := a.Symbol(tokens[0]); ok {
			return Word{s}, nil
		}
		tokens = tokens[:0]
		for _, r := range text {
			tokens = append(tokens, string(r))
		}
	}
	w := make(Word, 0, len(tokens))
	for _, t := range tokens {
		s, ok := a.Symbol(t)
		if !ok {
			return nil, fmt.Errorf("fsa: unknown glyph %q", t)
		}
		w = append(w, s)
	}
	return w, nil
}

// FormatWord renders w with the glyphs of a. Single-rune glyphs are
// concatenated, longer ones joined with '*'.
func FormatWord(a Alphabet, w Word) string {
	short := true
	for _, s := range w {
		if utf8.RuneCountInString(a.Glyph(s)) != 1 {
			short = false
			break
		}
	}
	var b strings.Builder
	for i, s := range w {
		if i > 0 && !short {
			b.WriteByte('*')
		}
		b.WriteString(a.Glyph(s))
	}
	return b.String()
}
