package extraction_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/steg/bitstream"
	"github.com/spacemeshos/steg/embedding"
	"github.com/spacemeshos/steg/extraction"
	"github.com/spacemeshos/steg/shared"
)

func TestExtract_Example(t *testing.T) {
	r := require.New(t)

	carrier := []byte{0b10, 0b01, 0b00, 0b11}
	buf := bytes.NewBuffer(nil)

	n, err := extraction.Extract(carrier, buf, extraction.WithBits(2))
	r.NoError(err)
	r.Equal(int64(1), n)
	r.Equal([]byte{0x93}, buf.Bytes())
}

func TestExtract_Realign(t *testing.T) {
	r := require.New(t)

	// The first secret chunk is zero, so the start is found one byte late.
	carrier := []byte{0xF0, 0xF0, 0xF0, 0xF1, 0xF2, 0xF3}
	buf := bytes.NewBuffer(nil)

	n, err := extraction.Extract(carrier, buf, extraction.WithBits(2))
	r.NoError(err)
	r.Equal(int64(1), n)
	r.Equal([]byte{0b00011011}, buf.Bytes())
}

func TestExtract_NoSecret(t *testing.T) {
	r := require.New(t)

	buf := bytes.NewBuffer(nil)
	n, err := extraction.Extract(bytes.Repeat([]byte{0xFC}, 64), buf, extraction.WithBits(2))
	r.NoError(err)
	r.Zero(n)
	r.Zero(buf.Len())
}

func TestExtractStats(t *testing.T) {
	r := require.New(t)

	stats, err := extraction.ExtractStats([]byte{0xF0, 0xF0, 0xF0, 0xF1, 0xF2, 0xF3}, bytes.NewBuffer(nil), extraction.WithBits(2))
	r.NoError(err)
	r.Equal(extraction.Stats{Written: 1, ZeroPadCount: 2}, stats)

	stats, err = extraction.ExtractStats(bytes.Repeat([]byte{0xFC}, 64), bytes.NewBuffer(nil), extraction.WithBits(2))
	r.NoError(err)
	r.Equal(extraction.Stats{ZeroPadCount: 64}, stats)

	// Realignment asks for more chunks than there are carrier bytes in front of the start.
	buf := bytes.NewBuffer(nil)
	stats, err = extraction.ExtractStats([]byte{0xFF, 0xFF, 0xFF}, buf, extraction.WithBits(4))
	r.NoError(err)
	r.Equal(extraction.Stats{Written: 2}, stats)
	r.Equal([]byte{0x0F, 0xFF}, buf.Bytes())
}

func TestExtract_NilLogger(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	_, err := extraction.Extract([]byte{0b10, 0b01, 0b00, 0b11}, buf, extraction.WithBits(2), extraction.WithLogger(nil))
	require.NoError(t, err)
	require.Equal(t, []byte{0x93}, buf.Bytes())
}

func TestExtract_InvalidWidth(t *testing.T) {
	_, err := extraction.NewExtractor(extraction.WithBits(0))
	require.ErrorIs(t, err, shared.ErrInvalidWidth)

	_, err = extraction.NewExtractor(extraction.WithBits(9))
	require.ErrorIs(t, err, shared.ErrInvalidWidth)
}

func TestExtract_BadWriter(t *testing.T) {
	_, err := extraction.Extract([]byte{0xFF}, &badWriter{}, extraction.WithBits(8))
	require.ErrorIs(t, err, shared.ErrSecretAccess)
	require.ErrorIs(t, err, errBadWriter)
}

func TestEmbedExtract(t *testing.T) {
	secret := []byte("The Matrix has you.")

	for bits := uint8(shared.MinBits); bits <= shared.MaxBits; bits++ {
		m, err := bitstream.NewMask(bits)
		require.NoError(t, err)

		required := len(secret) * m.Chunks()
		for _, extra := range []int{0, 1, 7, 1000} {
			carrier := make([]byte, required+extra)
			require.NoError(t, embedding.Embed(carrier, secret, embedding.WithMask(m)))

			buf := bytes.NewBuffer(nil)
			e, err := extraction.NewExtractor(
				extraction.WithMask(m),
				extraction.WithLogger(zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel))),
			)
			require.NoError(t, err)

			n, err := e.Extract(carrier, buf)
			require.NoError(t, err)
			require.Equal(t, int64(len(secret)), n, "bits=%d, extra=%d", bits, extra)
			require.Equal(t, secret, buf.Bytes(), "bits=%d, extra=%d", bits, extra)
		}
	}
}

func TestEmbedExtract_NoisyHighBits(t *testing.T) {
	r := require.New(t)

	secret := make([]byte, 256)
	_, err := rand.Read(secret)
	r.NoError(err)
	secret[0] = 0x80

	for bits := uint8(shared.MinBits); bits <= shared.MaxBits; bits++ {
		m, err := bitstream.NewMask(bits)
		r.NoError(err)

		// High bits are random, low bits of the zero run are clear.
		carrier := make([]byte, len(secret)*m.Chunks()+33)
		_, err = rand.Read(carrier)
		r.NoError(err)
		for i := range carrier {
			carrier[i] &^= m.Value()
		}

		r.NoError(embedding.Embed(carrier, secret, embedding.WithMask(m)))

		buf := bytes.NewBuffer(nil)
		stats, err := extraction.ExtractStats(carrier, buf, extraction.WithMask(m))
		r.NoError(err)
		r.Equal(secret, buf.Bytes(), "bits=%d", bits)
		r.Equal(uint64(33), stats.ZeroPadCount, "bits=%d", bits)
	}
}

func TestEmbedExtract_LeadingZeroBytes(t *testing.T) {
	r := require.New(t)

	// Leading zero bytes can't be told apart from the zero run.
	secret := []byte{0x00, 0x00, 0x42, 0x00, 0x17}
	carrier := make([]byte, 64)
	r.NoError(embedding.Embed(carrier, secret, embedding.WithBits(3)))

	buf := bytes.NewBuffer(nil)
	_, err := extraction.Extract(carrier, buf, extraction.WithBits(3))
	r.NoError(err)
	r.Equal([]byte{0x42, 0x00, 0x17}, buf.Bytes())
}

var errBadWriter = errors.New("bad writer")

type badWriter struct{}

func (*badWriter) Write([]byte) (int, error) {
	return 0, errBadWriter
}
