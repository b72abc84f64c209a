package steg

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/steg/carrier"
	"github.com/spacemeshos/steg/config"
	"github.com/spacemeshos/steg/shared"
)

var secret = []byte("The Matrix has you.\n")

func writeImage(t *testing.T, path string, width, height int) {
	img := &carrier.Image{
		Pix:    make([]byte, width*height*3),
		Width:  width,
		Height: height,
	}
	_, err := rand.Read(img.Pix)
	require.NoError(t, err)
	require.NoError(t, img.Save(path, false))
}

func writeSecret(t *testing.T, path string, data []byte) {
	require.NoError(t, os.WriteFile(path, data, shared.OwnerReadWrite))
}

func TestHideReveal(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "carrier.png")
	secretPath := filepath.Join(dir, "secret.txt")
	writeImage(t, imagePath, 32, 24)
	writeSecret(t, secretPath, secret)

	for bits := uint(config.MinBits); bits <= config.MaxBits; bits++ {
		for _, ext := range []string{".png", ".bmp", ".tiff"} {
			r := require.New(t)
			cfg := config.DefaultConfig()
			cfg.Bits = bits

			outputPath := filepath.Join(dir, "output"+ext)
			revealedPath := filepath.Join(dir, "revealed.txt")

			hidden, err := Hide(cfg, imagePath, secretPath, outputPath, WithLogger(zaptest.NewLogger(t)))
			r.NoError(err)
			r.Equal(uint64(32*24*3), hidden.CarrierLen)
			r.Equal(uint64(len(secret)), hidden.SecretLen)

			revealed, err := Reveal(cfg, outputPath, revealedPath, WithLogger(zaptest.NewLogger(t)))
			r.NoError(err)
			r.Equal(hidden.SecretLen, revealed.SecretLen, "bits=%d, ext=%s", bits, ext)
			r.Equal(hidden.ZeroPadCount, revealed.ZeroPadCount)
			r.Equal(hidden.Digest, revealed.Digest)

			data, err := os.ReadFile(revealedPath)
			r.NoError(err)
			r.Equal(secret, data, "bits=%d, ext=%s", bits, ext)
		}
	}
}

func TestReveal_OddCarrierWithoutSecret(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "white.png")
	img := &carrier.Image{Pix: []byte{0xFF, 0xFF, 0xFF}, Width: 1, Height: 1}
	r.NoError(img.Save(imagePath, false))

	cfg := config.DefaultConfig()
	cfg.Bits = 4
	report, err := Reveal(cfg, imagePath, filepath.Join(dir, "revealed.bin"))
	r.NoError(err)
	r.Equal(uint64(3), report.CarrierLen)
	r.Equal(uint64(2), report.SecretLen)
	r.Zero(report.ZeroPadCount)
}

func TestHide_PreservesHighBits(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "carrier.png")
	secretPath := filepath.Join(dir, "secret.txt")
	outputPath := filepath.Join(dir, "output.png")
	writeImage(t, imagePath, 8, 8)
	writeSecret(t, secretPath, secret)

	cfg := config.DefaultConfig()
	_, err := Hide(cfg, imagePath, secretPath, outputPath)
	r.NoError(err)

	original, err := carrier.Load(imagePath)
	r.NoError(err)
	hidden, err := carrier.Load(outputPath)
	r.NoError(err)
	r.Equal(original.Len(), hidden.Len())
	for i := range original.Pix {
		r.Equal(original.Pix[i]&^0b11, hidden.Pix[i]&^0b11, "byte %d", i)
	}
}

func TestHide_SecretTooLarge(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "carrier.png")
	secretPath := filepath.Join(dir, "secret.txt")
	outputPath := filepath.Join(dir, "output.png")
	writeImage(t, imagePath, 2, 2)
	writeSecret(t, secretPath, secret)

	_, err := Hide(config.DefaultConfig(), imagePath, secretPath, outputPath)
	r.ErrorIs(err, shared.ErrSecretTooLarge)
	r.NoFileExists(outputPath)
}

func TestHide_Errors(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "carrier.png")
	secretPath := filepath.Join(dir, "secret.txt")
	writeImage(t, imagePath, 4, 4)
	writeSecret(t, secretPath, []byte{0x42})

	cfg := config.DefaultConfig()

	_, err := Hide(cfg, imagePath, secretPath, filepath.Join(dir, "output.jpg"))
	require.ErrorIs(t, err, shared.ErrLossyFormat)

	_, err = Hide(cfg, filepath.Join(dir, "missing.png"), secretPath, filepath.Join(dir, "output.png"))
	require.ErrorIs(t, err, shared.ErrCarrierAccess)

	_, err = Hide(cfg, imagePath, filepath.Join(dir, "missing.txt"), filepath.Join(dir, "output.png"))
	require.ErrorIs(t, err, shared.ErrSecretAccess)

	cfg.Bits = 9
	_, err = Hide(cfg, imagePath, secretPath, filepath.Join(dir, "output.png"))
	require.ErrorIs(t, err, shared.ErrInvalidWidth)

	_, err = Reveal(cfg, imagePath, filepath.Join(dir, "revealed.txt"))
	require.ErrorIs(t, err, shared.ErrInvalidWidth)
}

func TestCapacity(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.bmp"),
		filepath.Join(dir, "c.tiff"),
	}
	writeImage(t, paths[0], 10, 10)
	writeImage(t, paths[1], 3, 7)
	writeImage(t, paths[2], 1, 1)

	reports, err := Capacity(paths, WithParallelism(2), WithLogger(zaptest.NewLogger(t)))
	r.NoError(err)
	r.Len(reports, 3)

	r.Equal(paths[0], reports[0].Path)
	r.Equal(carrier.FormatPNG, reports[0].Format)
	r.Equal(uint64(300), reports[0].CarrierLen)
	r.Len(reports[0].Entries, config.MaxBits)

	expected := map[uint8]uint64{1: 37, 2: 75, 3: 100, 4: 150, 5: 150, 6: 150, 7: 150, 8: 300}
	for _, e := range reports[0].Entries {
		r.Equal(expected[e.Bits], e.Capacity, "bits=%d", e.Bits)
	}

	r.Equal(carrier.FormatBMP, reports[1].Format)
	r.Equal(uint64(63), reports[1].CarrierLen)

	r.Equal(uint64(3), reports[2].CarrierLen)
	r.Equal(uint64(0), reports[2].Entries[0].Capacity)
	r.Equal(uint64(1), reports[2].Entries[2].Capacity)

	reports, err = Capacity(paths[:1], WithLogger(nil))
	r.NoError(err)
	r.Len(reports, 1)

	_, err = Capacity([]string{paths[0], filepath.Join(dir, "missing.png")})
	r.ErrorIs(err, shared.ErrCarrierAccess)
}
