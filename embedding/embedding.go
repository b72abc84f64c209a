// Package embedding hides a secret in the low-order bits of a carrier.
//
// The carrier is filled from its first byte with a run of zero chunks, followed
// by the chunks of the secret, so that the last secret chunk lands on the last
// carrier byte. The higher bits of every carrier byte are left untouched.
package embedding

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/spacemeshos/steg/bitstream"
	"github.com/spacemeshos/steg/config"
	"github.com/spacemeshos/steg/shared"
)

type Embedder struct {
	mask   bitstream.Mask
	layout config.CarrierLayout
	logger *zap.Logger
}

// NewEmbedder returns an Embedder for a carrier of carrierLen bytes and a secret of
// secretLen bytes. It fails with shared.ErrSecretTooLarge if the secret doesn't fit.
func NewEmbedder(carrierLen, secretLen uint64, opts ...OptionFunc) (*Embedder, error) {
	options, err := applyOpts(opts...)
	if err != nil {
		return nil, err
	}

	layout, err := config.DeriveCarrierLayout(*options.mask, carrierLen, secretLen)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		mask:   *options.mask,
		layout: layout,
		logger: options.logger,
	}, nil
}

// ZeroPadCount returns the number of leading carrier bytes that get a zero chunk.
func (e *Embedder) ZeroPadCount() uint64 {
	return e.layout.ZeroPadCount
}

func (e *Embedder) Layout() config.CarrierLayout {
	return e.layout
}

// Embed writes the secret into the low bits of carrier, in place. Exactly the declared
// number of secret bytes is consumed from secret.
func (e *Embedder) Embed(carrier []byte, secret io.Reader) error {
	if uint64(len(carrier)) != e.layout.CarrierLen {
		return fmt.Errorf("%w: carrier length mismatch; expected: %d, given: %d",
			shared.ErrCarrierAccess, e.layout.CarrierLen, len(carrier))
	}

	e.logger.Debug("embedding: starting",
		zap.Uint8("bits", e.mask.Bits()),
		zap.Uint64("carrier", e.layout.CarrierLen),
		zap.Uint64("secret", e.layout.SecretLen),
		zap.Uint64("zeroes", e.layout.ZeroPadCount),
	)

	keep := ^e.mask.Value()
	// NewReader may buffer ahead; the limit keeps bytes past the secret in the stream.
	chunks := bitstream.NewReader(io.LimitReader(secret, int64(e.layout.SecretLen)), e.mask)

	for i := range carrier {
		var c byte
		if uint64(i) >= e.layout.ZeroPadCount {
			var err error
			c, err = chunks.ReadChunk()
			switch {
			case err == io.EOF:
				return fmt.Errorf("%w: secret ended after %d of %d bytes: %w",
					shared.ErrSecretAccess, chunks.BytesRead(), e.layout.SecretLen, io.ErrUnexpectedEOF)
			case err != nil:
				return fmt.Errorf("%w: %w", shared.ErrSecretAccess, err)
			}
		}
		carrier[i] = carrier[i]&keep | c
	}

	e.logger.Debug("embedding: completed", zap.Int64("secret", chunks.BytesRead()))
	return nil
}

// Embed is a shorthand for NewEmbedder followed by Embed of an in-memory secret.
func Embed(carrier, secret []byte, opts ...OptionFunc) error {
	e, err := NewEmbedder(uint64(len(carrier)), uint64(len(secret)), opts...)
	if err != nil {
		return err
	}
	return e.Embed(carrier, bytes.NewReader(secret))
}
