package steg

import (
	"go.uber.org/zap"
)

type option struct {
	logger *zap.Logger
	// Maximum number of images probed in parallel by Capacity.
	// 0 - one per CPU.
	parallelism int
}

type OptionFunc func(*option)

func applyOpts(options ...OptionFunc) *option {
	opts := &option{
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(opts)
	}
	return opts
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) {
		if logger == nil {
			logger = zap.NewNop()
		}
		o.logger = logger
	}
}

func WithParallelism(n int) OptionFunc {
	return func(o *option) {
		o.parallelism = n
	}
}
