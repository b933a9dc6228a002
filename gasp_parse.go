package fsa

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokString
	tokAssign
	tokLParen
	tokRParen
	tokLBrack
	tokRBrack
	tokComma
	tokSemi
	tokDotDot
	tokStar
	tokCaret
)

var tokenNames = [...]string{"end of input", "identifier", "integer", "string", "':='", "'('", "')'", "'['", "']'", "','", "';'", "'..'", "'*'", "'^'"}

type token struct {
	kind tokenKind
	text string
	num  int
	line int
	col  int
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &ParseError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r := l.peekRune()
		switch {
		case r == '#':
			for l.pos < len(l.src) && l.peekRune() != '\n' {
				l.advance()
			}
		case unicode.IsSpace(r):
			l.advance()
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	tok := token{line: l.line, col: l.col}
	if l.pos >= len(l.src) {
		return tok, nil
	}
	start := l.pos
	r := l.advance()
	switch {
	case r == '_' || unicode.IsLetter(r):
		for r := l.peekRune(); r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r); r = l.peekRune() {
			l.advance()
		}
		tok.kind, tok.text = tokIdent, l.src[start:l.pos]
	case unicode.IsDigit(r) || r == '-' && unicode.IsDigit(l.peekRune()):
		for unicode.IsDigit(l.peekRune()) {
			l.advance()
		}
		n, err := strconv.Atoi(l.src[start:l.pos])
		if err != nil {
			return tok, l.errorf(tok.line, tok.col, "bad integer %s", l.src[start:l.pos])
		}
		tok.kind, tok.num, tok.text = tokInt, n, l.src[start:l.pos]
	case r == '"':
		for {
			c := l.peekRune()
			if c == -1 || c == '\n' {
				return tok, l.errorf(tok.line, tok.col, "unterminated string")
			}
			l.advance()
			if c == '\\' && l.peekRune() != -1 {
				l.advance()
			} else if c == '"' {
				break
			}
		}
		text, err := strconv.Unquote(l.src[start:l.pos])
		if err != nil {
			return tok, l.errorf(tok.line, tok.col, "bad string %s", l.src[start:l.pos])
		}
		tok.kind, tok.text = tokString, text
	case r == ':' && l.peekRune() == '=':
		l.advance()
		tok.kind = tokAssign
	case r == '.' && l.peekRune() == '.':
		l.advance()
		tok.kind = tokDotDot
	default:
		kinds := map[rune]tokenKind{
			'(': tokLParen, ')': tokRParen, '[': tokLBrack, ']': tokRBrack,
			',': tokComma, ';': tokSemi, '*': tokStar, '^': tokCaret,
		}
		k, ok := kinds[r]
		if !ok {
			return tok, l.errorf(tok.line, tok.col, "unexpected character %q", r)
		}
		tok.kind = k
	}
	return tok, nil
}

type valueKind int

const (
	valInt valueKind = iota
	valIdent
	valString
	valList
	valRec
	valRange
	valWord
)

var valueNames = [...]string{"integer", "identifier", "string", "list", "record", "range", "word"}

// value is a parsed GASP expression.
type value struct {
	kind  valueKind
	line  int
	col   int
	num   int // integer, or start of a range
	hi    int
	text  string
	items []*value
	field []recField
	atoms []wordAtom
}

type recField struct {
	name string
	val  *value
}

type wordAtom struct {
	glyph string
	power int
}

type parser struct {
	lex *lexer
	tok token
}

func newParser(src string) (*parser, error) {
	p := &parser{lex: &lexer{src: src, line: 1, col: 1}}
	return p, p.advance()
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) failf(format string, args ...any) error {
	return p.lex.errorf(p.tok.line, p.tok.col, format, args...)
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.tok
	if tok.kind != kind {
		return tok, p.failf("expected %s, found %s", tokenNames[kind], tokenNames[tok.kind])
	}
	return tok, p.advance()
}

// record parses `name := value ;`.
func (p *parser) record() (string, *value, error) {
	name, err := p.expect(tokIdent)
	if err != nil {
		return "", nil, err
	}
	if _, err := p.expect(tokAssign); err != nil {
		return "", nil, err
	}
	v, err := p.value()
	if err != nil {
		return "", nil, err
	}
	if p.tok.kind == tokSemi {
		if err := p.advance(); err != nil {
			return "", nil, err
		}
	}
	return name.text, v, nil
}

func (p *parser) value() (*value, error) {
	tok := p.tok
	v := &value{line: tok.line, col: tok.col}
	switch tok.kind {
	case tokInt:
		v.kind, v.num = valInt, tok.num
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokDotDot {
			return v, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		hi, err := p.expect(tokInt)
		if err != nil {
			return nil, err
		}
		v.kind, v.hi = valRange, hi.num
		return v, nil
	case tokLBrack:
		v.kind = valList
		if err := p.advance(); err != nil {
			return nil, err
		}
		for p.tok.kind != tokRBrack {
			item, err := p.value()
			if err != nil {
				return nil, err
			}
			v.items = append(v.items, item)
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		_, err := p.expect(tokRBrack)
		return v, err
	case tokIdent:
		if tok.text == "rec" {
			return p.rec(v)
		}
		v.kind, v.text = valIdent, tok.text
	case tokString:
		v.kind, v.text = valString, tok.text
	default:
		return nil, p.failf("unexpected %s", tokenNames[tok.kind])
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokStar && p.tok.kind != tokCaret {
		return v, nil
	}
	return p.word(v)
}

func (p *parser) rec(v *value) (*value, error) {
	v.kind = valRec
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	for p.tok.kind != tokRParen {
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokAssign); err != nil {
			return nil, err
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		v.field = append(v.field, recField{name: name.text, val: val})
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	_, err := p.expect(tokRParen)
	return v, err
}

// word continues a product of glyphs whose first glyph is already in v.
func (p *parser) word(first *value) (*value, error) {
	v := &value{kind: valWord, line: first.line, col: first.col}
	atom := wordAtom{glyph: first.text, power: 1}
	for {
		if p.tok.kind == tokCaret {
			if err := p.advance(); err != nil {
				return nil, err
			}
			n, err := p.expect(tokInt)
			if err != nil {
				return nil, err
			}
			if n.num < 0 {
				return nil, p.lex.errorf(n.line, n.col, "negative power %d", n.num)
			}
			atom.power = n.num
		}
		v.atoms = append(v.atoms, atom)
		if p.tok.kind != tokStar {
			return v, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		tok := p.tok
		if tok.kind != tokIdent && tok.kind != tokString {
			return nil, p.failf("expected a generator, found %s", tokenNames[tok.kind])
		}
		atom = wordAtom{glyph: tok.text, power: 1}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (v *value) errorf(format string, args ...any) error {
	return &ParseError{Line: v.line, Col: v.col, Msg: fmt.Sprintf(format, args...)}
}

func (v *value) get(name string) *value {
	for _, f := range v.field {
		if f.name == name {
			return f.val
		}
	}
	return nil
}

func (v *value) require(name string) (*value, error) {
	f := v.get(name)
	if f == nil {
		return nil, v.errorf("missing field %s", name)
	}
	return f, nil
}

func (v *value) want(kind valueKind) error {
	if v.kind != kind {
		return v.errorf("expected %s, found %s", valueNames[kind], valueNames[v.kind])
	}
	return nil
}

func (v *value) integer() (int, error) {
	return v.num, v.want(valInt)
}

// str returns the text of an identifier or string.
func (v *value) str() (string, error) {
	if v.kind != valIdent && v.kind != valString {
		return "", v.errorf("expected a name, found %s", valueNames[v.kind])
	}
	return v.text, nil
}

func (v *value) list() ([]*value, error) {
	return v.items, v.want(valList)
}

func (v *value) intField(name string) (int, error) {
	f, err := v.require(name)
	if err != nil {
		return 0, err
	}
	return f.integer()
}

func (v *value) strField(name string) (string, error) {
	f, err := v.require(name)
	if err != nil {
		return "", err
	}
	return f.str()
}

// ints returns the integers of a list, expanding ranges. A range must lie
// within lo..hi.
func (v *value) ints(lo, hi int) ([]int, error) {
	items, err := v.list()
	if err != nil {
		return nil, err
	}
	var out []int
	for _, it := range items {
		switch it.kind {
		case valInt:
			out = append(out, it.num)
		case valRange:
			if it.hi < it.num {
				return nil, it.errorf("empty range %d..%d", it.num, it.hi)
			}
			if it.num < lo || it.hi > hi {
				return nil, it.errorf("range %d..%d outside %d..%d", it.num, it.hi, lo, hi)
			}
			for i := it.num; i <= it.hi; i++ {
				out = append(out, i)
			}
		default:
			return nil, it.errorf("expected an integer, found %s", valueNames[it.kind])
		}
	}
	return out, nil
}

func (v *value) word(alphabet Alphabet) (Word, error) {
	glyph := func(g string) (int, error) {
		c, ok := alphabet.Symbol(g)
		if !ok {
			return 0, v.errorf("unknown generator %s", g)
		}
		return c, nil
	}
	switch v.kind {
	case valIdent, valString:
		if v.kind == valIdent && v.text == "IdWord" {
			return Word{}, nil
		}
		c, err := glyph(v.text)
		return Word{c}, err
	case valWord:
		w := Word{}
		for _, a := range v.atoms {
			c, err := glyph(a.glyph)
			if err != nil {
				return nil, err
			}
			for range a.power {
				w = append(w, c)
			}
		}
		return w, nil
	}
	return nil, v.errorf("expected a word, found %s", valueNames[v.kind])
}

// Read parses one GASP automaton record from r and returns it with the
// record's name. Malformed input yields a *ParseError.
func Read(r io.Reader) (*Dense, string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("fsa: read: %w", err)
	}
	p, err := newParser(string(src))
	if err != nil {
		return nil, "", err
	}
	name, v, err := p.record()
	if err != nil {
		return nil, "", err
	}
	if err := v.want(valRec); err != nil {
		return nil, "", err
	}
	d, err := buildAutomaton(v)
	if err != nil {
		return nil, "", err
	}
	return d, name, nil
}

func buildAlphabet(v *value) (Alphabet, error) {
	if err := v.want(valRec); err != nil {
		return nil, err
	}
	kind, err := v.strField("type")
	if err != nil {
		return nil, err
	}
	size, err := v.intField("size")
	if err != nil {
		return nil, err
	}
	var alphabet Alphabet
	switch kind {
	case "identifiers":
		f, err := v.require("names")
		if err != nil {
			return nil, err
		}
		items, err := f.list()
		if err != nil {
			return nil, err
		}
		names := make([]string, len(items))
		for i, it := range items {
			if names[i], err = it.str(); err != nil {
				return nil, err
			}
		}
		alphabet = NewAlphabet(names...)
	case "product":
		base, err := v.require("base")
		if err != nil {
			return nil, err
		}
		b, err := buildAlphabet(base)
		if err != nil {
			return nil, err
		}
		alphabet = NewProductAlphabet(b)
	default:
		return nil, v.errorf("unsupported alphabet type %q", kind)
	}
	if alphabet.Size() != size {
		return nil, v.errorf("alphabet has %d symbols, size says %d", alphabet.Size(), size)
	}
	return alphabet, nil
}

func buildFlags(v *value) (Flags, error) {
	if v == nil {
		return 0, nil
	}
	items, err := v.list()
	if err != nil {
		return 0, err
	}
	var flags Flags
	for _, it := range items {
		name, err := it.str()
		if err != nil {
			return 0, err
		}
		f, ok := ParseFlag(name)
		if !ok {
			return 0, it.errorf("unknown flag %q", name)
		}
		flags |= f
	}
	return flags, nil
}

func buildAutomaton(v *value) (*Dense, error) {
	af, err := v.require("alphabet")
	if err != nil {
		return nil, err
	}
	alphabet, err := buildAlphabet(af)
	if err != nil {
		return nil, err
	}
	sf, err := v.require("states")
	if err != nil {
		return nil, err
	}
	if err := sf.want(valRec); err != nil {
		return nil, err
	}
	n, err := sf.intField("size")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, sf.errorf("negative state count %d", n)
	}
	flags, err := buildFlags(v.get("flags"))
	if err != nil {
		return nil, err
	}
	tf, err := v.require("table")
	if err != nil {
		return nil, err
	}
	format, rows, err := tableRows(tf)
	if err != nil {
		return nil, err
	}
	if len(rows) != n {
		return nil, tf.errorf("%d rows for %d states", len(rows), n)
	}
	if k := alphabet.Size(); n >= math.MaxInt32 || k > 0 && n+1 > math.MaxInt/k {
		return nil, sf.errorf("table of %d states by %d symbols is too large", n, k)
	}

	d := blankDense(alphabet, n+1)
	d.flags = flags
	if err := fillTable(d, tf, format, rows); err != nil {
		return nil, err
	}
	if err := fillSet(d, v.get("initial"), d.initial, []int{1}); err != nil {
		return nil, err
	}
	if err := fillSet(d, v.get("accepting"), d.accepting, nil); err != nil {
		return nil, err
	}
	kind, err := sf.strField("type")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "simple":
	case "labeled", "labelled":
		if err := fillLabels(d, sf); err != nil {
			return nil, err
		}
	default:
		return nil, sf.errorf("unsupported states type %q", kind)
	}
	setInitials(d)
	return d, nil
}

func fillSet(d *Dense, v *value, set *Subset, fallback []int) error {
	members := fallback
	if v != nil {
		var err error
		if members, err = v.ints(1, d.states-1); err != nil {
			return err
		}
	}
	for _, s := range members {
		if s <= 0 || s >= d.states {
			if v == nil {
				continue
			}
			return v.errorf("state %d out of range", s)
		}
		set.Include(s)
	}
	return nil
}

func checkTarget(d *Dense, v *value, t int) error {
	if !d.validTarget(t) {
		return v.errorf("target %d out of range", t)
	}
	return nil
}

func tableRows(v *value) (string, []*value, error) {
	if err := v.want(valRec); err != nil {
		return "", nil, err
	}
	format, err := v.strField("format")
	if err != nil {
		return "", nil, err
	}
	tf, err := v.require("transitions")
	if err != nil {
		return "", nil, err
	}
	rows, err := tf.list()
	if err != nil {
		return "", nil, err
	}
	return format, rows, nil
}

// fillTable copies rows into d, which has one state per row.
func fillTable(d *Dense, v *value, format string, rows []*value) error {
	k := d.symbols
	for i, rv := range rows {
		dst := d.rowSlice(i + 1)
		switch format {
		case "dense deterministic":
			targets, err := rv.ints(0, d.states-1)
			if err != nil {
				return err
			}
			if len(targets) != k {
				return rv.errorf("row has %d entries, expected %d", len(targets), k)
			}
			for c, t := range targets {
				if err := checkTarget(d, rv, t); err != nil {
					return err
				}
				dst[c] = int32(t)
			}
		case "sparse":
			cells, err := rv.list()
			if err != nil {
				return err
			}
			for _, cell := range cells {
				pair, err := cell.ints(0, max(k, d.states-1))
				if err != nil {
					return err
				}
				if len(pair) != 2 || pair[0] < 1 || pair[0] > k {
					return cell.errorf("expected [generator,target]")
				}
				if err := checkTarget(d, cell, pair[1]); err != nil {
					return err
				}
				dst[pair[0]-1] = int32(pair[1])
			}
		default:
			return v.errorf("unsupported table format %q", format)
		}
	}
	return nil
}

func fillLabels(d *Dense, sf *value) error {
	lf, err := sf.require("labels")
	if err != nil {
		return err
	}
	if err := lf.want(valRec); err != nil {
		return err
	}
	name, err := lf.strField("type")
	if err != nil {
		return err
	}
	kind, ok := ParseLabelType(name)
	if !ok || kind == LabelNone || kind == LabelCustom {
		return lf.errorf("unsupported label type %q", name)
	}
	size, err := lf.intField("size")
	if err != nil {
		return err
	}
	alphabet := d.alphabet
	if af := lf.get("alphabet"); af != nil {
		if alphabet, err = buildAlphabet(af); err != nil {
			return err
		}
	}
	field := map[LabelType]string{
		LabelIdentifier: "names", LabelString: "names",
		LabelWord: "words", LabelWords: "words",
		LabelInts: "ints", LabelProduct: "pairs",
	}[kind]
	vf, err := lf.require(field)
	if err != nil {
		return err
	}
	items, err := vf.list()
	if err != nil {
		return err
	}
	if len(items) != size {
		return vf.errorf("%d labels, size says %d", len(items), size)
	}
	labels := NewLabels(kind, alphabet, size+1)
	for i, it := range items {
		var l Label
		switch kind {
		case LabelIdentifier, LabelString:
			l.Text, err = it.str()
		case LabelWord:
			var w Word
			w, err = it.word(alphabet)
			l.Words = []Word{w}
		case LabelWords:
			var ws []*value
			if ws, err = it.list(); err != nil {
				return err
			}
			l.Words = []Word{}
			for _, wv := range ws {
				w, err := wv.word(alphabet)
				if err != nil {
					return err
				}
				l.Words = append(l.Words, w)
			}
		case LabelInts:
			l.Ints, err = it.ints(0, d.states-1)
			if l.Ints == nil {
				l.Ints = []int{}
			}
		case LabelProduct:
			var pair []int
			if pair, err = it.ints(0, d.states-1); err == nil && len(pair) != 2 {
				err = it.errorf("expected a pair")
			}
			if err == nil {
				l.Pair = [2]int{pair[0], pair[1]}
			}
		}
		if err != nil {
			return err
		}
		labels.Set(i+1, l)
	}
	d.labels = labels

	if format, _ := sf.strField("format"); format != "" && format != "sparse" {
		return sf.errorf("unsupported setToLabels format %q", format)
	}
	mf, err := sf.require("setToLabels")
	if err != nil {
		return err
	}
	pairs, err := mf.list()
	if err != nil {
		return err
	}
	for _, pv := range pairs {
		pair, err := pv.ints(0, max(d.states-1, size))
		if err != nil {
			return err
		}
		if len(pair) != 2 {
			return pv.errorf("expected [state,label]")
		}
		if !d.valid(pair[0]) || pair[1] < 0 || pair[1] > size {
			return pv.errorf("bad state %d or label %d", pair[0], pair[1])
		}
		if d.labelOf == nil {
			d.labelOf = make([]int32, d.states)
		}
		d.labelOf[pair[0]] = int32(pair[1])
	}
	return nil
}
