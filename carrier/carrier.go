// Package carrier converts images to and from the flat byte sequence the secret is
// hidden in. Every image is normalised to 8-bit RGB: pixels are laid out row by row,
// three bytes per pixel, and the alpha channel is dropped.
package carrier

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spacemeshos/steg/shared"
)

const channels = 3

const (
	FormatPNG  = "png"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatWEBP = "webp"
)

var extensions = map[string]string{
	".png":  FormatPNG,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
	".webp": FormatWEBP,
}

// Image is a decoded RGB image. Pix is the carrier.
type Image struct {
	Pix    []byte
	Width  int
	Height int
	// Format is the name of the format the image was decoded from.
	Format string
}

// Len returns the carrier length in bytes.
func (img *Image) Len() int {
	return len(img.Pix)
}

// FormatFromPath returns the image format implied by the file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", shared.ErrUnsupportedFormat, ext)
	}
	return format, nil
}

// Load decodes the image at path.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrCarrierAccess, err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %v: %w", path, err)
	}
	return img, nil
}

// Decode reads an image in any of the registered formats and converts it to RGB.
func Decode(r io.Reader) (*Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrCarrierAccess, err)
	}

	return fromImage(src, format), nil
}

// fromImage flattens src to RGB. Common decoder outputs are read straight from
// their pixel buffers; the result matches a conversion through color.NRGBAModel.
func fromImage(src image.Image, format string) *Image {
	bounds := src.Bounds()
	img := &Image{
		Pix:    make([]byte, 0, bounds.Dx()*bounds.Dy()*channels),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}

	switch src := src.(type) {
	case *image.NRGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				i := src.PixOffset(x, y)
				img.Pix = append(img.Pix, src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			}
		}
	case *image.RGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				i := src.PixOffset(x, y)
				a := src.Pix[i+3]
				img.Pix = append(img.Pix,
					unpremultiply(src.Pix[i], a),
					unpremultiply(src.Pix[i+1], a),
					unpremultiply(src.Pix[i+2], a),
				)
			}
		}
	case *image.YCbCr:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				yi, ci := src.YOffset(x, y), src.COffset(x, y)
				c := color.YCbCr{Y: src.Y[yi], Cb: src.Cb[ci], Cr: src.Cr[ci]}
				r, g, b, _ := c.RGBA()
				img.Pix = append(img.Pix, byte(r>>8), byte(g>>8), byte(b>>8))
			}
		}
	default:
		img.Pix = appendGeneric(img.Pix, src)
	}

	return img
}

func appendGeneric(pix []byte, src image.Image) []byte {
	bounds := src.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			pix = append(pix, c.R, c.G, c.B)
		}
	}
	return pix
}

// unpremultiply converts an alpha-premultiplied 8-bit channel the way
// color.NRGBAModel does.
func unpremultiply(c, a byte) byte {
	switch a {
	case 0xFF:
		return c
	case 0:
		return 0
	}
	c16, a16 := uint32(c)*0x101, uint32(a)*0x101
	return byte((c16 * 0xFFFF / a16) >> 8)
}

// NRGBA returns an opaque copy of the image.
func (img *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for i, j := 0, 0; i+channels <= len(img.Pix); i, j = i+channels, j+4 {
		dst.Pix[j] = img.Pix[i]
		dst.Pix[j+1] = img.Pix[i+1]
		dst.Pix[j+2] = img.Pix[i+2]
		dst.Pix[j+3] = 0xFF
	}
	return dst
}

// Encode writes the image in the given format. Lossy formats are refused since
// they would not keep the low bits intact.
func (img *Image) Encode(w io.Writer, format string) error {
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img.NRGBA())
	case FormatBMP:
		err = bmp.Encode(w, img.NRGBA())
	case FormatTIFF:
		err = tiff.Encode(w, img.NRGBA(), &tiff.Options{Compression: tiff.Deflate})
	case FormatJPEG, FormatGIF:
		return fmt.Errorf("%w: %v", shared.ErrLossyFormat, format)
	default:
		return fmt.Errorf("%w: %v", shared.ErrUnsupportedFormat, format)
	}

	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrCarrierAccess, err)
	}
	return nil
}

// Save encodes the image in the format implied by the extension of path and
// atomically replaces path with it.
func (img *Image) Save(path string, checkSpace bool) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	buf := bytes.NewBuffer(nil)
	if err := img.Encode(buf, format); err != nil {
		return err
	}

	if checkSpace {
		if err := shared.ValidateSpace(path, uint64(buf.Len())); err != nil {
			return err
		}
	}

	if err := atomic.WriteFile(path, buf); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrCarrierAccess, err)
	}
	return nil
}

// Info describes an image without decoding its pixels.
type Info struct {
	Width  int
	Height int
	Format string
}

// Len returns the carrier length the image would provide.
func (info Info) Len() int {
	return info.Width * info.Height * channels
}

// Probe reads the image header at path.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", shared.ErrCarrierAccess, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, fmt.Errorf("%w: failed to decode %v: %w", shared.ErrCarrierAccess, path, err)
	}

	return Info{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// ValidateOutput checks that path names a format the secret survives in.
func ValidateOutput(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatPNG, FormatBMP, FormatTIFF:
		return nil
	case FormatJPEG, FormatGIF:
		return fmt.Errorf("%w: %v", shared.ErrLossyFormat, format)
	default:
		return fmt.Errorf("%w: %v", shared.ErrUnsupportedFormat, format)
	}
}
