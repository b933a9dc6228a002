package fsa

import (
	"context"

	"go.uber.org/zap"
)

// DefaultEagerLimit is the largest table, in cells, a Realiser decodes up front.
const DefaultEagerLimit = 1 << 24

type realiserOptions struct {
	rows       int // cached rows, 2 by default
	eagerLimit int
}

func newRealiserOptions(opts ...RealiserOption) *realiserOptions {
	options := &realiserOptions{
		rows:       2,
		eagerLimit: DefaultEagerLimit,
	}
	for _, opt := range opts {
		opt(options)
	}
	options.rows = max(options.rows, 1)
	return options
}

type RealiserOption func(*realiserOptions)

// WithCacheRows sets how many rows a Realiser keeps decoded at once. Each
// row is addressed by a slot in [0, n).
func WithCacheRows(n int) RealiserOption {
	return func(o *realiserOptions) {
		o.rows = n
	}
}

// WithEagerLimit sets the largest table, in cells, that is decoded up front
// instead of row by row.
func WithEagerLimit(cells int) RealiserOption {
	return func(o *realiserOptions) {
		o.eagerLimit = cells
	}
}

type factoryOptions struct {
	ctx       context.Context
	logger    *zap.Logger
	rows      int
	pollEvery int
}

func newFactoryOptions(opts ...FactoryOption) *factoryOptions {
	options := &factoryOptions{
		ctx:       context.Background(),
		rows:      2,
		pollEvery: 4096,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = Logger()
	}
	if options.ctx == nil {
		options.ctx = context.Background()
	}
	options.pollEvery = max(options.pollEvery, 1)
	return options
}

type FactoryOption func(*factoryOptions)

// WithContext makes long operations stop with ctx.Err() once ctx is done.
func WithContext(ctx context.Context) FactoryOption {
	return func(o *factoryOptions) {
		o.ctx = ctx
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *zap.Logger) FactoryOption {
	return func(o *factoryOptions) {
		o.logger = l
	}
}

// WithRealiserRows sets the row cache size of the realisers the factory uses.
func WithRealiserRows(n int) FactoryOption {
	return func(o *factoryOptions) {
		o.rows = n
	}
}

// WithPollInterval sets how many new states are built between checks of
// the context.
func WithPollInterval(states int) FactoryOption {
	return func(o *factoryOptions) {
		o.pollEvery = states
	}
}
