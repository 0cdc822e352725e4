// Package imaging converts between image files and the float32 CHW layout
// the networks consume.
//
// Decoding understands JPEG, PNG, GIF, BMP, TIFF and WebP. Real images are
// resized with bilinear filtering and mapped to [-1, 1]; generated images
// are rescaled per image to the full 0..255 range before PNG encoding.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"math"
	"os"

	_ "golang.org/x/image/bmp" // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Channels is the number of colour channels in a CHW buffer.
const Channels = 3

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("empty image")

// Decode reads an image in any registered format.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, format, ErrEmptyImage
	}
	return img, format, nil
}

// Load opens and decodes the image at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Resize scales img to exactly height×width with bilinear filtering.
func Resize(img image.Image, height, width int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
		return dst
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ToCHW resizes img to height×width and writes it into dst as
// [Channels, height, width] values in [-1, 1]. dst must hold
// Channels*height*width values.
func ToCHW(dst []float32, img image.Image, height, width int) error {
	plane := height * width
	if len(dst) != Channels*plane {
		return fmt.Errorf("to chw: buffer holds %d values, want %d", len(dst), Channels*plane)
	}

	rgba := Resize(img, height, width)
	for y := range height {
		for x := range width {
			off := rgba.PixOffset(x, y)
			i := y*width + x
			dst[i] = float32(rgba.Pix[off])/127.5 - 1
			dst[plane+i] = float32(rgba.Pix[off+1])/127.5 - 1
			dst[2*plane+i] = float32(rgba.Pix[off+2])/127.5 - 1
		}
	}
	return nil
}

// FromCHW turns a [Channels, height, width] buffer into an opaque image,
// rescaling so the smallest value maps to 0 and the largest to 255. A
// constant buffer becomes black.
func FromCHW(src []float32, height, width int) (*image.RGBA, error) {
	plane := height * width
	if len(src) != Channels*plane {
		return nil, fmt.Errorf("from chw: buffer holds %d values, want %d", len(src), Channels*plane)
	}
	if plane == 0 {
		return nil, ErrEmptyImage
	}

	lo, hi := src[0], src[0]
	for _, v := range src {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	scale := float32(0)
	if hi > lo {
		scale = 255 / (hi - lo)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			i := y*width + x
			img.SetRGBA(x, y, color.RGBA{
				R: toByte((src[i] - lo) * scale),
				G: toByte((src[plane+i] - lo) * scale),
				B: toByte((src[2*plane+i] - lo) * scale),
				A: 255,
			})
		}
	}
	return img, nil
}

func toByte(v float32) uint8 {
	switch {
	case math.IsNaN(float64(v)) || v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}

// SavePNG encodes img to path, failing if the file already exists.
func SavePNG(path string, img image.Image) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
