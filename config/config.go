package config

import (
	"fmt"

	"github.com/spacemeshos/steg/bitstream"
	"github.com/spacemeshos/steg/shared"
)

const (
	MinBits = shared.MinBits
	MaxBits = shared.MaxBits

	// DefaultBits uses the two least-significant bits of every carrier byte.
	DefaultBits = 2
)

type Config struct {
	// Bits is the number of low-order bits of every carrier byte that hold the secret.
	// The same value must be used to hide and to reveal a secret.
	Bits uint `mapstructure:"bits"`

	DisableSpaceAvailabilityChecks bool `mapstructure:"disable-space-checks"`
}

func (cfg Config) Validate() error {
	if cfg.Bits < MinBits || cfg.Bits > MaxBits {
		return fmt.Errorf("invalid `Bits`; %w", &shared.WidthError{Bits: int(cfg.Bits)})
	}

	return nil
}

// Mask returns the chunk mask described by the config.
func (cfg Config) Mask() (bitstream.Mask, error) {
	if err := cfg.Validate(); err != nil {
		return bitstream.Mask{}, err
	}
	return bitstream.NewMask(uint8(cfg.Bits))
}

func DefaultConfig() Config {
	return Config{
		Bits: DefaultBits,
	}
}
