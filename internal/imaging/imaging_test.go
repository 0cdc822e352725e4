package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestToCHWNormalises(t *testing.T) {
	img := solid(4, 6, color.RGBA{R: 255, G: 0, B: 51, A: 255})
	dst := make([]float32, Channels*6*4)

	require.NoError(t, ToCHW(dst, img, 6, 4))
	assert.InDelta(t, 1, dst[0], 1e-6)
	assert.InDelta(t, -1, dst[24], 1e-6)
	assert.InDelta(t, 51/127.5-1, dst[48], 1e-6)

	assert.Error(t, ToCHW(dst[:10], img, 6, 4))
}

func TestToCHWResizes(t *testing.T) {
	img := solid(8, 8, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	dst := make([]float32, Channels*2*4)

	require.NoError(t, ToCHW(dst, img, 2, 4))
	for _, v := range dst {
		assert.InDelta(t, 128/127.5-1, v, 0.01)
	}
}

func TestFromCHWRescalesToFullRange(t *testing.T) {
	// 1x2 image: first pixel at the minimum, second at the maximum.
	src := []float32{
		-0.5, 0.5, // R
		-0.5, 0.0, // G
		-0.5, 0.5, // B
	}
	img, err := FromCHW(src, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 128, 255, 255}, img.RGBAAt(1, 0))
}

func TestFromCHWConstantIsBlack(t *testing.T) {
	img, err := FromCHW([]float32{0.3, 0.3, 0.3}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(0, 0))
}

func TestSavePNGAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	img := solid(3, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	require.NoError(t, SavePNG(path, img))
	assert.Error(t, SavePNG(path, img), "existing files are never overwritten")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), loaded.Bounds())
}

func TestDecodeRegisteredFormats(t *testing.T) {
	img := solid(2, 2, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	var pngBuf, bmpBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))
	require.NoError(t, bmp.Encode(&bmpBuf, img))

	_, format, err := Decode(&pngBuf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	_, format, err = Decode(&bmpBuf)
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)

	_, _, err = Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
