package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geange/fsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAutomaton(t *testing.T, dir, name string, words ...string) string {
	t.Helper()
	alphabet := fsa.NewAlphabet("a", "b")
	var ws []fsa.Word
	for _, text := range words {
		w, err := fsa.ParseWord(alphabet, text)
		require.NoError(t, err)
		ws = append(ws, w)
	}
	path := filepath.Join(dir, name+".gasp")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, fsa.Save(f, fsa.FromWords(alphabet, ws...), name, fsa.SaveOptions{}))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := newContainer(strings.NewReader(""), &stdout, &stderr)
	cmd := newRootCmd(c)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func loadFile(t *testing.T, path string) *fsa.Dense {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	d, _, err := fsa.Read(f)
	require.NoError(t, err)
	return d
}

func TestAccepts(t *testing.T) {
	dir := t.TempDir()
	path := writeAutomaton(t, dir, "A", "a", "ab")

	out, _, err := run(t, "accepts", path, "a", "ab", "b")
	require.NoError(t, err)
	assert.Equal(t, "a\ttrue\nab\ttrue\nb\tfalse\n", out)
}

func TestCount(t *testing.T) {
	dir := t.TempDir()
	path := writeAutomaton(t, dir, "A", "a", "ab", "bb")

	out, _, err := run(t, "count", path)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestCombineAndNot(t *testing.T) {
	dir := t.TempDir()
	a1 := writeAutomaton(t, dir, "A1", "a", "ab")
	a2 := writeAutomaton(t, dir, "A2", "a")
	out := filepath.Join(dir, "out.gasp")

	_, _, err := run(t, "combine", "--op", "and-not", "-o", out, a1, a2)
	require.NoError(t, err)

	d := loadFile(t, out)
	ab, _ := fsa.ParseWord(d.Alphabet(), "ab")
	assert.True(t, fsa.Accepts(d, ab))
	assert.False(t, fsa.Accepts(d, fsa.Word{0}))
	assert.Equal(t, fsa.Size{Kind: fsa.SizeFinite, Count: 1}, fsa.LanguageSize(d, true, 0))
}

func TestCombineOneCacheRow(t *testing.T) {
	dir := t.TempDir()
	a1 := writeAutomaton(t, dir, "A1", "a", "ab")
	a2 := writeAutomaton(t, dir, "A2", "a")
	out := filepath.Join(dir, "out.gasp")

	_, _, err := run(t, "--cache-rows", "1", "combine", "--op", "and-not", "-o", out, a1, a2)
	require.NoError(t, err)
	assert.Equal(t, fsa.Size{Kind: fsa.SizeFinite, Count: 1}, fsa.LanguageSize(loadFile(t, out), true, 0))
}

func TestMinimizeSparseOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeAutomaton(t, dir, "A", "ab", "bb")
	out := filepath.Join(dir, "min.gasp")

	_, _, err := run(t, "minimize", "--sparse", "-o", out, path)
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `format := "sparse"`)

	d := loadFile(t, out)
	assert.True(t, d.Flags().Has(fsa.FlagMinimised))
	// a and b both lead to the state accepting b
	assert.Equal(t, 4, d.StateCount())
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	path := writeAutomaton(t, dir, "A", "ab", "abb")

	out, _, err := run(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "name: A\n")
	assert.Contains(t, out, "language: \"2\"\n")
	assert.Contains(t, out, "common_prefix: ab\n")
}

func TestUnknownOperation(t *testing.T) {
	dir := t.TempDir()
	path := writeAutomaton(t, dir, "A", "a")

	_, _, err := run(t, "combine", "--op", "xor", path, path)
	assert.Error(t, err)
}

func TestReportExitCodes(t *testing.T) {
	var stderr bytes.Buffer
	c := newContainer(strings.NewReader(""), &bytes.Buffer{}, &stderr)

	_, _, err := run(t, "count", filepath.Join(t.TempDir(), "missing.gasp"))
	require.Error(t, err)
	assert.Equal(t, 1, c.report(err))
	assert.Contains(t, stderr.String(), "error: ")

	c = newContainer(strings.NewReader("A := rec(isFSA := true"), &bytes.Buffer{}, &stderr)
	_, _, err = c.load("-")
	require.Error(t, err)
	assert.Equal(t, 2, c.report(err))
}
