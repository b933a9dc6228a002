package fsa

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// LabelType is the kind of payload held by a label table.
type LabelType int

const (
	LabelNone LabelType = iota
	LabelIdentifier
	LabelString
	LabelWord
	LabelWords
	LabelInts
	LabelProduct
	LabelCustom
)

var labelTypeNames = [...]string{
	"none",
	"identifiers",
	"strings",
	"words",
	"list of words",
	"list of integers",
	"product",
	"custom",
}

func (t LabelType) String() string {
	if t < 0 || int(t) >= len(labelTypeNames) {
		return "unknown"
	}
	return labelTypeNames[t]
}

// ParseLabelType is the inverse of LabelType.String.
func ParseLabelType(name string) (LabelType, bool) {
	for i, n := range labelTypeNames {
		if n == name {
			return LabelType(i), true
		}
	}
	return LabelNone, false
}

// Label is one label payload. Which fields are meaningful depends on the
// table's LabelType: Text for identifiers and strings, Words for words
// (one entry) and lists of words, Ints for lists of integers, Pair for
// products of two labels, Custom for opaque payloads.
type Label struct {
	Text   string
	Words  []Word
	Ints   []int
	Pair   [2]int
	Custom any
}

// Labels is a table of label payloads. Label 0 means "no label" and is
// never stored.
type Labels struct {
	kind     LabelType
	alphabet Alphabet
	values   []Label
	index    map[string]int
}

// NewLabels returns a table of the given kind with ids 1..count-1 allocated
// and empty. alphabet is used to render word-valued labels.
func NewLabels(kind LabelType, alphabet Alphabet, count int) *Labels {
	return &Labels{
		kind:     kind,
		alphabet: alphabet,
		values:   make([]Label, max(count, 1)),
	}
}

// Type returns the payload kind.
func (l *Labels) Type() LabelType {
	return l.kind
}

// Alphabet returns the alphabet of word-valued labels.
func (l *Labels) Alphabet() Alphabet {
	return l.alphabet
}

// Count returns the number of label ids, including the unused id 0.
func (l *Labels) Count() int {
	return len(l.values)
}

// SetCount grows or truncates the table.
func (l *Labels) SetCount(n int) {
	n = max(n, 1)
	if n < len(l.values) {
		l.values = l.values[:n]
	} else {
		l.values = append(l.values, make([]Label, n-len(l.values))...)
	}
	l.index = nil
}

// Get returns the payload of label id.
func (l *Labels) Get(id int) (Label, bool) {
	if id <= 0 || id >= len(l.values) {
		return Label{}, false
	}
	return l.values[id], true
}

// Set replaces the payload of label id.
func (l *Labels) Set(id int, v Label) bool {
	if id <= 0 || id >= len(l.values) {
		return false
	}
	l.values[id] = v
	l.index = nil
	return true
}

// Add appends a payload and returns its id.
func (l *Labels) Add(v Label) int {
	l.values = append(l.values, v)
	id := len(l.values) - 1
	if l.index != nil {
		l.index[l.key(v)] = id
	}
	return id
}

// Intern returns the id of a label equal to v, adding one if needed.
func (l *Labels) Intern(v Label) int {
	if l.index == nil {
		l.index = make(map[string]int, len(l.values))
		for id := 1; id < len(l.values); id++ {
			if _, dup := l.index[l.key(l.values[id])]; !dup {
				l.index[l.key(l.values[id])] = id
			}
		}
	}
	if id, ok := l.index[l.key(v)]; ok {
		return id
	}
	return l.Add(v)
}

// Key returns a string that is equal for equal payloads of this table.
func (l *Labels) Key(id int) string {
	v, ok := l.Get(id)
	if !ok {
		return ""
	}
	return l.key(v)
}

func (l *Labels) key(v Label) string {
	var b strings.Builder
	switch l.kind {
	case LabelIdentifier, LabelString:
		return v.Text
	case LabelWord, LabelWords:
		for _, w := range v.Words {
			writeInts(&b, []int(w))
			b.WriteByte(';')
		}
	case LabelInts:
		writeInts(&b, v.Ints)
	case LabelProduct:
		writeInts(&b, v.Pair[:])
	case LabelCustom:
		fmt.Fprintf(&b, "%v", v.Custom)
	}
	return b.String()
}

func writeInts(b *strings.Builder, vs []int) {
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
}

// Render returns a printable form of label id.
func (l *Labels) Render(id int) string {
	v, ok := l.Get(id)
	if !ok {
		return ""
	}
	return l.render(v)
}

func (l *Labels) render(v Label) string {
	switch l.kind {
	case LabelIdentifier, LabelString:
		return v.Text
	case LabelWord, LabelWords:
		parts := make([]string, len(v.Words))
		for i, w := range v.Words {
			parts[i] = l.renderWord(w)
		}
		if l.kind == LabelWord && len(parts) == 1 {
			return parts[0]
		}
		return "[" + strings.Join(parts, ",") + "]"
	case LabelInts:
		var b strings.Builder
		b.WriteByte('[')
		writeInts(&b, v.Ints)
		b.WriteByte(']')
		return b.String()
	case LabelProduct:
		return fmt.Sprintf("(%d,%d)", v.Pair[0], v.Pair[1])
	case LabelCustom:
		return fmt.Sprintf("%v", v.Custom)
	}
	return ""
}

func (l *Labels) renderWord(w Word) string {
	if len(w) == 0 {
		return "IdWord"
	}
	if l.alphabet == nil {
		var b strings.Builder
		writeInts(&b, []int(w))
		return b.String()
	}
	return FormatWord(l.alphabet, w)
}

// Clone returns an independent copy of the table.
func (l *Labels) Clone() *Labels {
	c := &Labels{kind: l.kind, alphabet: l.alphabet, values: make([]Label, len(l.values))}
	for i, v := range l.values {
		c.values[i] = cloneLabel(v)
	}
	return c
}

func cloneLabel(v Label) Label {
	out := Label{Text: v.Text, Pair: v.Pair, Custom: v.Custom}
	if v.Words != nil {
		out.Words = make([]Word, len(v.Words))
		for i, w := range v.Words {
			out.Words[i] = slices.Clone(w)
		}
	}
	if v.Ints != nil {
		out.Ints = slices.Clone(v.Ints)
	}
	return out
}

// Convert changes the payload kind of every label and reports whether the
// conversion was lossless. Conversions among words, lists of words and
// lists of integers are lossless whenever the payloads fit the target
// (one word per list, integers that are symbols); identifiers and strings
// convert into each other losslessly; anything else falls back to the
// rendered text.
func (l *Labels) Convert(kind LabelType) bool {
	if kind == l.kind {
		return true
	}
	lossless := true
	for id := 1; id < len(l.values); id++ {
		v, ok := l.convert(l.values[id], kind)
		if !ok {
			lossless = false
		}
		l.values[id] = v
	}
	l.kind = kind
	l.index = nil
	return lossless
}

func (l *Labels) convert(v Label, kind LabelType) (Label, bool) {
	switch {
	case kind == LabelNone:
		return Label{}, false
	case isWordLike(l.kind) && isWordLike(kind):
		return l.convertWordLike(v, kind)
	case isTextual(l.kind) && isTextual(kind):
		return Label{Text: v.Text}, true
	case kind == LabelIdentifier || kind == LabelString:
		return Label{Text: l.render(v)}, false
	case kind == LabelCustom:
		return Label{Custom: l.render(v)}, false
	}
	return Label{}, false
}

func isWordLike(t LabelType) bool {
	return t == LabelWord || t == LabelWords || t == LabelInts
}

func isTextual(t LabelType) bool {
	return t == LabelIdentifier || t == LabelString
}

// convertWordLike converts among word, list of words and list of integers.
// A list of integers is read as the symbols of a single word.
func (l *Labels) convertWordLike(v Label, kind LabelType) (Label, bool) {
	var words []Word
	if l.kind == LabelInts {
		words = []Word{Word(slices.Clone(v.Ints))}
	} else {
		words = v.Words
	}
	switch kind {
	case LabelWords:
		return Label{Words: words}, true
	case LabelWord:
		if len(words) == 0 {
			return Label{Words: []Word{{}}}, false
		}
		return Label{Words: words[:1]}, len(words) == 1
	default:
		if len(words) == 0 {
			return Label{Ints: []int{}}, false
		}
		ok := len(words) == 1
		if l.alphabet != nil {
			for _, s := range words[0] {
				if s < 0 || s >= l.alphabet.Size() {
					ok = false
				}
			}
		}
		return Label{Ints: slices.Clone([]int(words[0]))}, ok
	}
}

// mergedType is the kind used when several labels of this table are merged.
func (l *Labels) mergedType() LabelType {
	switch l.kind {
	case LabelWord, LabelWords:
		return LabelWords
	default:
		return LabelInts
	}
}

// merge returns the union of the given labels as a payload of mergedType.
// Word-valued labels union their words, integer lists union their
// integers, and other kinds produce the sorted list of label ids.
func (l *Labels) merge(ids []int) Label {
	switch l.kind {
	case LabelWord, LabelWords:
		var words []Word
		for _, id := range ids {
			if v, ok := l.Get(id); ok {
				words = append(words, v.Words...)
			}
		}
		slices.SortFunc(words, compareWords)
		words = slices.CompactFunc(words, func(a, b Word) bool { return compareWords(a, b) == 0 })
		return Label{Words: words}
	case LabelInts:
		var ints []int
		for _, id := range ids {
			if v, ok := l.Get(id); ok {
				ints = append(ints, v.Ints...)
			}
		}
		slices.Sort(ints)
		return Label{Ints: slices.Compact(ints)}
	default:
		out := slices.Clone(ids)
		slices.Sort(out)
		return Label{Ints: slices.Compact(out)}
	}
}

// compareWords orders words by length, then lexicographically.
func compareWords(a, b Word) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return slices.Compare(a, b)
}
