// Package extraction recovers a secret hidden by package embedding.
//
// The carrier holds no length or start marker. The secret is assumed to start at
// the first carrier byte whose masked low bits are non-zero; the chunk buffer is
// then realigned so that the secret ends on the last carrier byte. This has two
// known limitations:
//   - leading 0x00 bytes of the secret are indistinguishable from the zero run
//     and are not recovered;
//   - a carrier whose zero run has non-zero low bits (for instance an image that
//     was not produced by the embedder) starts the secret too early.
package extraction

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/spacemeshos/steg/bitstream"
	"github.com/spacemeshos/steg/shared"
)

type Extractor struct {
	mask   bitstream.Mask
	logger *zap.Logger
}

func NewExtractor(opts ...OptionFunc) (*Extractor, error) {
	options, err := applyOpts(opts...)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		mask:   *options.mask,
		logger: options.logger,
	}, nil
}

// Stats describes a completed extraction.
type Stats struct {
	// Written is the number of secret bytes written.
	Written int64
	// ZeroPadCount is the number of carrier bytes in front of the secret, not
	// counting the leading zero chunks of its first byte.
	ZeroPadCount uint64
	// Discarded is the number of chunks of the incomplete trailing byte.
	Discarded int
}

// Extract scans carrier once and writes the recovered secret to w, byte by byte.
// It returns the number of bytes written.
func (e *Extractor) Extract(carrier []byte, w io.Writer) (int64, error) {
	stats, err := e.ExtractStats(carrier, w)
	return stats.Written, err
}

// ExtractStats is Extract reporting where the secret was found.
func (e *Extractor) ExtractStats(carrier []byte, w io.Writer) (Stats, error) {
	cw := bitstream.NewWriter(w, e.mask)
	n := e.mask.Chunks()
	started := false
	stats := Stats{ZeroPadCount: uint64(len(carrier))}

	for i, b := range carrier {
		c := b & e.mask.Value()

		if !started && c > 0 {
			// The secret starts on a multiple of n counted from the carrier end.
			pad := 0
			if offset := (len(carrier) - i) % n; offset != 0 {
				pad = n - offset
				if err := cw.Pad(pad); err != nil {
					stats.Written = cw.Written()
					return stats, fmt.Errorf("%w: %w", shared.ErrSecretAccess, err)
				}
			}
			started = true
			// The realigned chunks stand in for carrier bytes before index i, unless
			// the carrier is too short to have held them.
			stats.ZeroPadCount = 0
			if i > pad {
				stats.ZeroPadCount = uint64(i - pad)
			}

			e.logger.Debug("extraction: secret start found",
				zap.Int("index", i),
				zap.Int("carrier", len(carrier)),
				zap.Int("padding", cw.Pending()),
			)
		}

		if !started {
			continue
		}

		if err := cw.WriteChunk(c); err != nil {
			stats.Written = cw.Written()
			return stats, fmt.Errorf("%w: %w", shared.ErrSecretAccess, err)
		}
	}

	discarded, err := cw.Flush()
	stats.Written = cw.Written()
	stats.Discarded = discarded
	if err != nil {
		return stats, fmt.Errorf("%w: %w", shared.ErrSecretAccess, err)
	}

	if !started {
		e.logger.Info("extraction: no secret found in carrier", zap.Int("carrier", len(carrier)))
	}
	if discarded > 0 {
		e.logger.Warn("extraction: discarded incomplete trailing byte", zap.Int("chunks", discarded))
	}

	return stats, nil
}

// Extract is a shorthand for NewExtractor followed by Extract.
func Extract(carrier []byte, w io.Writer, opts ...OptionFunc) (int64, error) {
	e, err := NewExtractor(opts...)
	if err != nil {
		return 0, err
	}
	return e.Extract(carrier, w)
}

// ExtractStats is a shorthand for NewExtractor followed by ExtractStats.
func ExtractStats(carrier []byte, w io.Writer, opts ...OptionFunc) (Stats, error) {
	e, err := NewExtractor(opts...)
	if err != nil {
		return Stats{}, err
	}
	return e.ExtractStats(carrier, w)
}
