// Command fsa reads, transforms and writes finite state automata stored
// in GASP format.
package main

import (
	"os"
)

func main() {
	c := newContainer(os.Stdin, os.Stdout, os.Stderr)
	if err := newRootCmd(c).Execute(); err != nil {
		os.Exit(c.report(err))
	}
}
