package main

import (
	"context"

	"github.com/geange/fsa"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app is the state shared by the commands of one invocation.
type app struct {
	c      *container
	v      *viper.Viper
	cfg    *config
	log    *zap.Logger
	output string
	cancel context.CancelFunc
}

func newRootCmd(c *container) *cobra.Command {
	a := &app{c: c, v: viper.New(), log: zap.NewNop()}
	setDefaults(a.v)
	var configFile string

	root := &cobra.Command{
		Use:           "fsa",
		Short:         "Transform finite state automata stored in GASP format",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.v, configFile)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			fsa.SetLogger(log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.cancel != nil {
				a.cancel()
			}
			_ = a.log.Sync()
		},
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "configuration file (default ./fsa.yaml)")
	flags.String("log-level", "warn", "logging level (debug, info, warn, error)")
	flags.Bool("development", false, "human readable logs")
	flags.Bool("sparse", false, "write tables in sparse format")
	flags.Bool("comments", false, "write a header comment")
	flags.Bool("annotate", false, "annotate each state in the output")
	flags.Int("cache-rows", 2, "rows cached while reading compressed automata")
	flags.Duration("timeout", 0, "abort long operations after this duration")
	flags.StringVarP(&a.output, "output", "o", "-", "output file")
	for _, key := range []string{"log-level", "development", "sparse", "comments", "annotate", "cache-rows", "timeout"} {
		_ = a.v.BindPFlag(flagKey(key), flags.Lookup(key))
	}

	root.AddCommand(
		a.infoCmd(),
		a.acceptsCmd(),
		a.countCmd(),
		a.convertCmd(),
		a.minimizeCmd(),
		a.determinizeCmd(),
		a.reverseCmd(),
		a.unaryCmd("trim", "Remove states not on a path from an initial to an accepting state", (*fsa.Factory).Trim),
		a.unaryCmd("prune", "Keep only states with an infinite language", (*fsa.Factory).Prune),
		a.unaryCmd("not", "Complement the language", (*fsa.Factory).Not),
		a.unaryCmd("separate", "Split states entered by several symbols", (*fsa.Factory).Separate),
		a.kernelCmd(),
		a.restrictCmd(),
		a.combineCmd(),
		a.productCmd(),
		a.composeCmd(),
	)
	return root
}

func flagKey(name string) string {
	out := []byte(name)
	for i, b := range out {
		if b == '-' {
			out[i] = '_'
		}
	}
	return string(out)
}

func (a *app) factory() *fsa.Factory {
	ctx := context.Background()
	if a.cfg.Timeout > 0 {
		ctx, a.cancel = context.WithTimeout(ctx, a.cfg.Timeout)
	}
	return fsa.NewFactory(
		fsa.WithContext(ctx),
		fsa.WithLogger(a.log),
		fsa.WithRealiserRows(a.cfg.CacheRows),
	)
}

func (a *app) saveOptions() fsa.SaveOptions {
	return fsa.SaveOptions{
		Sparse:   a.cfg.Sparse,
		Comments: a.cfg.Comments,
		Annotate: a.cfg.Annotate,
	}
}

func (a *app) store(name string, d fsa.Automaton) error {
	return a.c.store(a.output, name, d, a.saveOptions())
}
