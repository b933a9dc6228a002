package fsa

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// SaveOptions controls how Save renders an automaton.
type SaveOptions struct {
	// Sparse writes each row as a list of [generator, target] pairs
	// instead of one target per symbol.
	Sparse bool
	// Comments adds a header comment with the state and label counts.
	Comments bool
	// Annotate adds a comment to each row naming the state and its role.
	Annotate bool
}

// Save writes a as a GASP record named name. States are written as
// 1..StateCount()-1; the failure state is implicit.
func Save(w io.Writer, a Automaton, name string, opts SaveOptions) error {
	bw := bufio.NewWriter(w)
	p := &printer{w: bw, opts: opts}
	p.automaton(a, name)
	if p.err != nil {
		return fmt.Errorf("fsa: save %s: %w", name, p.err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("fsa: save %s: %w", name, err)
	}
	return nil
}

type printer struct {
	w    *bufio.Writer
	opts SaveOptions
	err  error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) automaton(a Automaton, name string) {
	n := a.StateCount() - 1
	if p.opts.Comments {
		p.printf("# %d states, %d symbols", n, a.AlphabetSize())
		if l := a.Labels(); l != nil {
			p.printf(", %d labels", l.Count()-1)
		}
		p.printf("\n")
	}
	p.printf("%s := rec(\n", name)
	p.printf("  isFSA := true,\n")
	p.printf("  alphabet := ")
	p.alphabet(a.Alphabet(), "  ")
	p.printf(",\n  states := ")
	p.states(a, "  ")
	p.printf(",\n  flags := [%s],\n", quoteAll(a.Flags().Names()))
	p.printf("  initial := [%s],\n", formatSet(a.InitialStates()))
	p.printf("  accepting := [%s],\n", formatSet(a.AcceptingStates()))
	p.printf("  table := ")
	p.table(a, "  ")
	p.printf("\n);\n")
}

func (p *printer) alphabet(alphabet Alphabet, indent string) {
	if pa, ok := alphabet.(ProductAlphabet); ok {
		p.printf("rec(\n")
		p.printf("%s  type := \"product\",\n", indent)
		p.printf("%s  size := %d,\n", indent, pa.Size())
		p.printf("%s  arity := 2,\n", indent)
		p.printf("%s  padding := _,\n", indent)
		p.printf("%s  base := ", indent)
		p.alphabet(pa.Base(), indent+"  ")
		p.printf("\n%s)", indent)
		return
	}
	names := make([]string, alphabet.Size())
	for i := range names {
		names[i] = formatGlyph(alphabet.Glyph(i))
	}
	p.printf("rec(\n")
	p.printf("%s  type := \"identifiers\",\n", indent)
	p.printf("%s  size := %d,\n", indent, alphabet.Size())
	p.printf("%s  format := \"dense\",\n", indent)
	p.printf("%s  names := [%s]\n", indent, strings.Join(names, ","))
	p.printf("%s)", indent)
}

func (p *printer) states(a Automaton, indent string) {
	n := a.StateCount() - 1
	l := a.Labels()
	if l == nil {
		p.printf("rec(\n%s  type := \"simple\",\n%s  size := %d\n%s)", indent, indent, n, indent)
		return
	}
	p.printf("rec(\n")
	p.printf("%s  type := \"labeled\",\n", indent)
	p.printf("%s  size := %d,\n", indent, n)
	p.printf("%s  labels := ", indent)
	p.labels(a, l, indent+"  ")
	p.printf(",\n%s  format := \"sparse\",\n", indent)
	var pairs []string
	for s := 1; s <= n; s++ {
		if id := a.LabelOf(s); id != 0 {
			pairs = append(pairs, fmt.Sprintf("[%d,%d]", s, id))
		}
	}
	p.printf("%s  setToLabels := [%s]\n", indent, strings.Join(pairs, ","))
	p.printf("%s)", indent)
}

func (p *printer) labels(a Automaton, l *Labels, indent string) {
	kind := l.Type()
	field, render := "names", func(v Label) string { return formatGlyph(v.Text) }
	alphabet := l.Alphabet()
	if alphabet == nil {
		alphabet = a.Alphabet()
	}
	switch kind {
	case LabelString:
		render = func(v Label) string { return strconv.Quote(v.Text) }
	case LabelWord:
		field = "words"
		render = func(v Label) string {
			if len(v.Words) == 0 {
				return formatWord(alphabet, nil)
			}
			return formatWord(alphabet, v.Words[0])
		}
	case LabelWords:
		field = "words"
		render = func(v Label) string {
			parts := make([]string, len(v.Words))
			for i, w := range v.Words {
				parts[i] = formatWord(alphabet, w)
			}
			return "[" + strings.Join(parts, ",") + "]"
		}
	case LabelInts:
		field = "ints"
		render = func(v Label) string { return "[" + joinInts(v.Ints) + "]" }
	case LabelProduct:
		field = "pairs"
		render = func(v Label) string { return "[" + joinInts(v.Pair[:]) + "]" }
	case LabelIdentifier:
	default:
		// no textual form; saved as strings
		kind = LabelString
		render = func(v Label) string { return strconv.Quote(l.render(v)) }
	}
	values := make([]string, l.Count()-1)
	for id := 1; id < l.Count(); id++ {
		v, _ := l.Get(id)
		values[id-1] = render(v)
	}
	p.printf("rec(\n")
	p.printf("%s  type := %s,\n", indent, strconv.Quote(kind.String()))
	p.printf("%s  size := %d,\n", indent, l.Count()-1)
	if l.Alphabet() != nil && !SameAlphabet(l.Alphabet(), a.Alphabet()) && (kind == LabelWord || kind == LabelWords) {
		p.printf("%s  alphabet := ", indent)
		p.alphabet(l.Alphabet(), indent+"  ")
		p.printf(",\n")
	}
	p.printf("%s  %s := [%s]\n", indent, field, strings.Join(values, ","))
	p.printf("%s)", indent)
}

func (p *printer) table(a Automaton, indent string) {
	n, k := a.StateCount()-1, a.AlphabetSize()
	row := make([]int, k)
	transitions := 0
	for s := 1; s <= n; s++ {
		a.Row(s, row)
		for _, t := range row {
			if t != 0 {
				transitions++
			}
		}
	}
	format := "dense deterministic"
	if p.opts.Sparse {
		format = "sparse"
	}
	p.printf("rec(\n")
	p.printf("%s  format := %q,\n", indent, format)
	p.printf("%s  numTransitions := %d,\n", indent, transitions)
	p.printf("%s  transitions := [", indent)
	for s := 1; s <= n; s++ {
		a.Row(s, row)
		var cells []string
		for c, t := range row {
			switch {
			case !p.opts.Sparse:
				cells = append(cells, strconv.Itoa(t))
			case t != 0:
				cells = append(cells, fmt.Sprintf("[%d,%d]", c+1, t))
			}
		}
		if s > 1 {
			p.printf("%s                 ", indent)
		}
		p.printf("[%s]", strings.Join(cells, ","))
		if s < n {
			p.printf(",")
		}
		if p.opts.Annotate {
			p.printf(" # %s", annotation(a, s))
		}
		p.printf("\n")
	}
	if n == 0 {
		p.printf("\n")
	}
	p.printf("%s                ]\n%s)", indent, indent)
}

func annotation(a Automaton, s int) string {
	parts := []string{strconv.Itoa(s)}
	if a.IsInitial(s) {
		parts = append(parts, "initial")
	}
	if a.IsAccepting(s) {
		parts = append(parts, "accepting")
	}
	if id := a.LabelOf(s); id != 0 && a.Labels() != nil {
		parts = append(parts, "label "+a.Labels().Render(id))
	}
	// a newline would end the comment early
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, strings.Join(parts, " "))
}

// formatSet renders the members of s, collapsing runs into ranges.
func formatSet(s *Subset) string {
	var parts []string
	members := s.Slice()
	for i := 0; i < len(members); {
		j := i
		for j+1 < len(members) && members[j+1] == members[j]+1 {
			j++
		}
		if j-i >= 2 {
			parts = append(parts, fmt.Sprintf("%d..%d", members[i], members[j]))
		} else {
			for _, m := range members[i : j+1] {
				parts = append(parts, strconv.Itoa(m))
			}
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}

func isIdent(s string) bool {
	if s == "" || s == "_" || s == "IdWord" || s == "rec" || s == "true" || s == "false" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

func formatGlyph(g string) string {
	if isIdent(g) {
		return g
	}
	return strconv.Quote(g)
}

func formatWord(alphabet Alphabet, w Word) string {
	if len(w) == 0 {
		return "IdWord"
	}
	parts := make([]string, len(w))
	for i, c := range w {
		parts[i] = formatGlyph(alphabet.Glyph(c))
	}
	return strings.Join(parts, "*")
}

func quoteAll(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strconv.Quote(n)
	}
	return strings.Join(out, ",")
}

func joinInts(vs []int) string {
	var b strings.Builder
	writeInts(&b, vs)
	return b.String()
}
