package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/geange/fsa"
)

// container binds automata to files. The path "-" means standard input or
// standard output.
type container struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newContainer(stdin io.Reader, stdout, stderr io.Writer) *container {
	return &container{stdin: stdin, stdout: stdout, stderr: stderr}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func (c *container) openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(c.stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func (c *container) openOutput(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		return nopWriteCloser{c.stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return f, nil
}

// load reads one automaton and returns it with its record name.
func (c *container) load(path string) (*fsa.Dense, string, error) {
	r, err := c.openInput(path)
	if err != nil {
		return nil, "", err
	}
	defer r.Close()
	a, name, err := fsa.Read(r)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", displayName(path), err)
	}
	return a, name, nil
}

func (c *container) store(path, name string, a fsa.Automaton, opts fsa.SaveOptions) (err error) {
	w, err := c.openOutput(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return fsa.Save(w, a, name, opts)
}

// report prints err and returns the exit status: 2 for malformed input,
// 1 for anything else.
func (c *container) report(err error) int {
	fmt.Fprintf(c.stderr, "error: %v\n", err)
	var perr *fsa.ParseError
	if errors.As(err, &perr) {
		return 2
	}
	return 1
}

func displayName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}
