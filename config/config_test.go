package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/steg/bitstream"
	"github.com/spacemeshos/steg/config"
	"github.com/spacemeshos/steg/shared"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultConfig()
	require.Nil(t, cfg.Validate())

	cfg.Bits = 0
	require.ErrorIs(t, cfg.Validate(), shared.ErrInvalidWidth)

	cfg.Bits = 9
	require.EqualError(t, cfg.Validate(), "invalid `Bits`; invalid number of bits; expected: [1, 8], given: 9")
}

func TestMask(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultConfig()

	m, err := cfg.Mask()
	require.NoError(t, err)
	require.Equal(t, uint8(config.DefaultBits), m.Bits())
	require.Equal(t, 4, m.Chunks())

	cfg.Bits = 1 << 9
	_, err = cfg.Mask()
	require.ErrorIs(t, err, shared.ErrInvalidWidth)
}

func TestDeriveCarrierLayout(t *testing.T) {
	t.Parallel()

	for bits := uint8(config.MinBits); bits <= config.MaxBits; bits++ {
		m, err := bitstream.NewMask(bits)
		require.NoError(t, err)

		required := uint64(10 * m.Chunks())

		layout, err := config.DeriveCarrierLayout(m, required+7, 10)
		require.NoError(t, err)
		require.Equal(t, config.CarrierLayout{
			CarrierLen:   required + 7,
			SecretLen:    10,
			SecretChunks: required,
			ZeroPadCount: 7,
		}, layout)

		layout, err = config.DeriveCarrierLayout(m, required, 10)
		require.NoError(t, err)
		require.Zero(t, layout.ZeroPadCount)

		_, err = config.DeriveCarrierLayout(m, required-1, 10)
		require.ErrorIs(t, err, shared.ErrSecretTooLarge)
	}
}
