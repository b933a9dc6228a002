package main

import (
	"fmt"
	"strings"

	"github.com/geange/fsa"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type report struct {
	Name       string   `yaml:"name"`
	States     int      `yaml:"states"`
	Symbols    int      `yaml:"symbols"`
	Alphabet   []string `yaml:"alphabet"`
	Product    bool     `yaml:"product,omitempty"`
	Flags      []string `yaml:"flags"`
	Initial    int      `yaml:"initial"`
	Accepting  int      `yaml:"accepting"`
	Accessible int      `yaml:"accessible"`
	Recurrent  int      `yaml:"recurrent"`
	Labels     int      `yaml:"labels,omitempty"`
	LabelType  string   `yaml:"label_type,omitempty"`
	Language   string   `yaml:"language"`
	Prefix     string   `yaml:"common_prefix,omitempty"`
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [FILE]",
		Short: "Describe an automaton as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, name, err := a.c.load(inputArg(args, 0))
			if err != nil {
				return err
			}
			r := report{
				Name:       name,
				States:     d.StateCount() - 1,
				Symbols:    d.AlphabetSize(),
				Product:    fsa.IsProduct(d),
				Flags:      d.Flags().Names(),
				Initial:    d.InitialStates().Count(),
				Accepting:  d.AcceptingStates().Count(),
				Accessible: fsa.AccessibleStates(d).Count(),
				Recurrent:  fsa.RecurrentStates(d, false).Count(),
				Language:   fsa.LanguageSize(d, true, 0).String(),
			}
			for c := 0; c < d.AlphabetSize(); c++ {
				r.Alphabet = append(r.Alphabet, d.Alphabet().Glyph(c))
			}
			if l := d.Labels(); l != nil {
				r.Labels = l.Count() - 1
				r.LabelType = l.Type().String()
			}
			if w, err := fsa.CommonPrefix(d); err == nil && len(w) > 0 {
				r.Prefix = fsa.FormatWord(d.Alphabet(), w)
			}
			w, err := a.c.openOutput(a.output)
			if err != nil {
				return err
			}
			defer w.Close()
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(r); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func (a *app) acceptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accepts FILE WORD...",
		Short: "Report whether each word is accepted",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := a.c.load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, text := range args[1:] {
				w, err := fsa.ParseWord(d.Alphabet(), text)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%t\n", text, fsa.Accepts(d, w))
			}
			return nil
		},
	}
}

func (a *app) countCmd() *cobra.Command {
	var state int
	var loose bool
	cmd := &cobra.Command{
		Use:   "count [FILE]",
		Short: "Print the size of the accepted language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := a.c.load(inputArg(args, 0))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fsa.LanguageSize(d, !loose, state))
			return nil
		},
	}
	cmd.Flags().IntVar(&state, "state", 0, "count from this state instead of the initial states")
	cmd.Flags().BoolVar(&loose, "sum", false, "add up the languages of several initial states")
	return cmd
}

func (a *app) convertCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "convert [FILE]",
		Short: "Rewrite an automaton with the current output settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, old, err := a.c.load(inputArg(args, 0))
			if err != nil {
				return err
			}
			if name == "" {
				name = old
			}
			var out fsa.Automaton = d
			if a.cfg.Sparse {
				if s, err := fsa.Compact(d); err == nil {
					out = s
				}
			}
			return a.store(name, out)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "record name of the output")
	return cmd
}

func (a *app) minimizeCmd() *cobra.Command {
	var merge string
	cmd := &cobra.Command{
		Use:   "minimize [FILE]",
		Short: "Minimize a deterministic automaton",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := parseMerge(merge)
			if err != nil {
				return err
			}
			return a.transform(args, func(f *fsa.Factory, d *fsa.Dense) (*fsa.Dense, error) {
				return f.Minimize(d, policy)
			})
		},
	}
	cmd.Flags().StringVar(&merge, "merge", fsa.MergeNone.String(), "label merging: none, non-accepting or all")
	return cmd
}

func (a *app) determinizeCmd() *cobra.Command {
	var mode, merge string
	cmd := &cobra.Command{
		Use:   "determinize [FILE]",
		Short: "Build a deterministic automaton",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := fsa.ParseDeterminizeMode(mode)
			if !ok {
				return fmt.Errorf("unknown determinize mode %q", mode)
			}
			policy, err := parseMerge(merge)
			if err != nil {
				return err
			}
			return a.transform(args, func(f *fsa.Factory, d *fsa.Dense) (*fsa.Dense, error) {
				return f.Determinize(d, m, policy)
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", fsa.DeterminizeAll.String(), "grouping of initial states")
	cmd.Flags().StringVar(&merge, "merge", fsa.MergeNone.String(), "label merging: none, non-accepting or all")
	return cmd
}

func (a *app) reverseCmd() *cobra.Command {
	var opts fsa.ReverseOptions
	cmd := &cobra.Command{
		Use:   "reverse [FILE]",
		Short: "Build an automaton for the reversed language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transform(args, func(f *fsa.Factory, d *fsa.Dense) (*fsa.Dense, error) {
				return f.Reverse(d, opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.MultiInitial, "multi-initial", false, "one initial state per accepting state")
	cmd.Flags().BoolVar(&opts.SubsetLabels, "subset-labels", false, "label states with the states they stand for")
	return cmd
}

func (a *app) kernelCmd() *cobra.Command {
	var opts fsa.KernelOptions
	cmd := &cobra.Command{
		Use:   "kernel [FILE]",
		Short: "Keep the live cycles of an automaton",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transform(args, func(f *fsa.Factory, d *fsa.Dense) (*fsa.Dense, error) {
				return f.Kernel(d, opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.AcceptAll, "accept-all", false, "make every kept state accepting")
	cmd.Flags().BoolVar(&opts.IncludeChains, "chains", false, "keep states reachable from a cycle")
	return cmd
}

func (a *app) restrictCmd() *cobra.Command {
	var glyphs string
	cmd := &cobra.Command{
		Use:   "restrict --glyphs a,b,... [FILE]",
		Short: "Restrict an automaton to a smaller alphabet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub := fsa.NewAlphabet(strings.Split(glyphs, ",")...)
			return a.transform(args, func(f *fsa.Factory, d *fsa.Dense) (*fsa.Dense, error) {
				return f.Restriction(d, sub)
			})
		},
	}
	cmd.Flags().StringVar(&glyphs, "glyphs", "", "comma separated glyphs of the new alphabet")
	_ = cmd.MarkFlagRequired("glyphs")
	return cmd
}

func (a *app) unaryCmd(use, short string, op func(*fsa.Factory, fsa.Automaton) (*fsa.Dense, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [FILE]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transform(args, func(f *fsa.Factory, d *fsa.Dense) (*fsa.Dense, error) {
				return op(f, d)
			})
		},
	}
}

func (a *app) combineCmd() *cobra.Command {
	var op string
	cmd := &cobra.Command{
		Use:   "combine --op OP A B",
		Short: "Apply a boolean operation to two automata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bop, ok := fsa.ParseBoolOp(op)
			if !ok {
				return fmt.Errorf("unknown operation %q", op)
			}
			return a.binary(args, func(f *fsa.Factory, x, y *fsa.Dense) (*fsa.Dense, error) {
				return f.Combine(x, y, bop)
			})
		},
	}
	cmd.Flags().StringVar(&op, "op", fsa.OpAnd.String(), "and, or, and-not, not-and, and-not-first, and-not-first-trim or and-first")
	return cmd
}

func (a *app) productCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "product A B",
		Short: "Build the two-tape product of two automata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.binary(args, func(f *fsa.Factory, x, y *fsa.Dense) (*fsa.Dense, error) {
				return f.CartesianProduct(x, y, fsa.NewProductAlphabet(x.Alphabet()))
			})
		},
	}
}

func (a *app) composeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compose A B",
		Short: "Compose two two-tape automata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.binary(args, func(f *fsa.Factory, x, y *fsa.Dense) (*fsa.Dense, error) {
				return f.Composite(x, y)
			})
		},
	}
}

func (a *app) transform(args []string, fn func(*fsa.Factory, *fsa.Dense) (*fsa.Dense, error)) error {
	d, name, err := a.c.load(inputArg(args, 0))
	if err != nil {
		return err
	}
	out, err := fn(a.factory(), d)
	if err != nil {
		return err
	}
	return a.store(name, out)
}

func (a *app) binary(args []string, fn func(*fsa.Factory, *fsa.Dense, *fsa.Dense) (*fsa.Dense, error)) error {
	x, name, err := a.c.load(args[0])
	if err != nil {
		return err
	}
	y, _, err := a.c.load(args[1])
	if err != nil {
		return err
	}
	out, err := fn(a.factory(), x, y)
	if err != nil {
		return err
	}
	return a.store(name, out)
}

func parseMerge(name string) (fsa.MergePolicy, error) {
	p, ok := fsa.ParseMergePolicy(name)
	if !ok {
		return 0, fmt.Errorf("unknown merge policy %q", name)
	}
	return p, nil
}

func inputArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return "-"
}
