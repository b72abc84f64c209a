// Package steg hides files in the least-significant bits of images and recovers them.
//
// Hide loads an image, packs the secret into the low bits of its RGB bytes and writes
// the result to a lossless image file. Reveal reads those bits back. Both ends have
// to agree on the number of bits; nothing in the image records it.
package steg

import (
	"encoding/hex"
	"fmt"
	"io"

	"code.cloudfoundry.org/bytefmt"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/spacemeshos/steg/carrier"
	"github.com/spacemeshos/steg/config"
	"github.com/spacemeshos/steg/embedding"
	"github.com/spacemeshos/steg/extraction"
	"github.com/spacemeshos/steg/persistence"
)

// Report summarises a Hide or Reveal run.
type Report struct {
	Bits         uint
	CarrierLen   uint64
	SecretLen    uint64
	ZeroPadCount uint64
	// Digest is the BLAKE3 digest of the secret, hex encoded.
	Digest string
}

// Hide embeds the file at secretPath into the image at imagePath and writes the
// result to outputPath, whose extension selects a lossless output format.
func Hide(cfg config.Config, imagePath, secretPath, outputPath string, opts ...OptionFunc) (*Report, error) {
	options := applyOpts(opts...)
	logger := options.logger

	m, err := cfg.Mask()
	if err != nil {
		return nil, err
	}

	if err := carrier.ValidateOutput(outputPath); err != nil {
		return nil, err
	}

	img, err := carrier.Load(imagePath)
	if err != nil {
		return nil, err
	}

	secret, err := persistence.NewFileReader(secretPath)
	if err != nil {
		return nil, err
	}
	defer secret.Close()

	e, err := embedding.NewEmbedder(uint64(img.Len()), secret.Size(),
		embedding.WithMask(m),
		embedding.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("hiding secret",
		zap.String("image", imagePath),
		zap.String("secret", secretPath),
		zap.Uint("bits", cfg.Bits),
		zap.String("carrier", bytefmt.ByteSize(uint64(img.Len()))),
		zap.String("size", bytefmt.ByteSize(secret.Size())),
		zap.Uint64("zeroes", e.ZeroPadCount()),
	)

	hasher := blake3.New()
	if err := e.Embed(img.Pix, io.TeeReader(io.LimitReader(secret, int64(secret.Size())), hasher)); err != nil {
		return nil, err
	}

	if err := img.Save(outputPath, !cfg.DisableSpaceAvailabilityChecks); err != nil {
		return nil, err
	}

	report := &Report{
		Bits:         cfg.Bits,
		CarrierLen:   uint64(img.Len()),
		SecretLen:    secret.Size(),
		ZeroPadCount: e.ZeroPadCount(),
		Digest:       hex.EncodeToString(hasher.Sum(nil)),
	}
	logger.Info("secret hidden", zap.String("output", outputPath), zap.String("blake3", report.Digest))
	return report, nil
}

// Reveal recovers the secret hidden in the image at imagePath and writes it to outputPath.
func Reveal(cfg config.Config, imagePath, outputPath string, opts ...OptionFunc) (*Report, error) {
	options := applyOpts(opts...)
	logger := options.logger

	m, err := cfg.Mask()
	if err != nil {
		return nil, err
	}

	img, err := carrier.Load(imagePath)
	if err != nil {
		return nil, err
	}

	logger.Info("revealing secret",
		zap.String("image", imagePath),
		zap.Uint("bits", cfg.Bits),
		zap.String("carrier", bytefmt.ByteSize(uint64(img.Len()))),
	)

	w, err := persistence.NewFileWriter(outputPath)
	if err != nil {
		return nil, err
	}

	hasher := blake3.New()
	stats, err := extraction.ExtractStats(img.Pix, io.MultiWriter(w, hasher),
		extraction.WithMask(m),
		extraction.WithLogger(logger),
	)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to write %v: %w", outputPath, err)
	}

	report := &Report{
		Bits:         cfg.Bits,
		CarrierLen:   uint64(img.Len()),
		SecretLen:    uint64(stats.Written),
		ZeroPadCount: stats.ZeroPadCount,
		Digest:       hex.EncodeToString(hasher.Sum(nil)),
	}

	logger.Info("secret revealed",
		zap.String("output", outputPath),
		zap.String("size", bytefmt.ByteSize(report.SecretLen)),
		zap.String("blake3", report.Digest),
	)
	return report, nil
}
