package extraction

import (
	"errors"

	"go.uber.org/zap"

	"github.com/spacemeshos/steg/bitstream"
	"github.com/spacemeshos/steg/config"
)

type option struct {
	mask   *bitstream.Mask
	logger *zap.Logger
}

func (o *option) validate() error {
	if o.mask == nil {
		return errors.New("`mask` is required")
	}
	return nil
}

type OptionFunc func(*option) error

// WithMask sets the chunk mask used to extract the secret.
func WithMask(m bitstream.Mask) OptionFunc {
	return func(o *option) error {
		o.mask = &m
		return nil
	}
}

// WithBits sets the number of low-order carrier bits used to extract the secret.
func WithBits(bits uint8) OptionFunc {
	return func(o *option) error {
		m, err := bitstream.NewMask(bits)
		if err != nil {
			return err
		}
		o.mask = &m
		return nil
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) error {
		if logger == nil {
			logger = zap.NewNop()
		}
		o.logger = logger
		return nil
	}
}

func applyOpts(options ...OptionFunc) (*option, error) {
	opts := &option{
		logger: zap.NewNop(),
	}
	if err := WithBits(config.DefaultBits)(opts); err != nil {
		return nil, err
	}
	for _, opt := range options {
		if err := opt(opts); err != nil {
			return nil, err
		}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}
