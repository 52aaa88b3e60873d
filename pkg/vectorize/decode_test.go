package vectorize_test

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/askiada/go-vectorize/pkg/vectorize"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for y := range 4 {
		for x := range 6 {
			if x < 3 {
				src.Set(x, y, color.NRGBA{A: 0xff})
			} else {
				src.Set(x, y, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
			}
		}
	}

	tcs := map[string]func(w io.Writer, m image.Image) error{
		"png":  png.Encode,
		"bmp":  bmp.Encode,
		"tiff": func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) },
		"gif":  func(w io.Writer, m image.Image) error { return gif.Encode(w, m, nil) },
		"jpeg": func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, &jpeg.Options{Quality: 100}) },
	}

	for name, encode := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, encode(&buf, src))

			got, err := vectorize.Decode(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, 6, got.Width)
			assert.Equal(t, 4, got.Height)
			require.Len(t, got.Pix, 6*4*4)

			r, _, _, a := got.RGBAAt(0)
			assert.Less(t, r, uint8(40))
			assert.Equal(t, uint8(0xff), a)
			r, _, _, _ = got.RGBAAt(5)
			assert.Greater(t, r, uint8(215))
		})
	}
}

func TestDecodeTransparency(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	got, err := vectorize.Decode(buf.Bytes())
	require.NoError(t, err)

	r, g, b, a := got.RGBAAt(0)
	assert.InDelta(t, 10, r, 1)
	assert.InDelta(t, 20, g, 1)
	assert.InDelta(t, 30, b, 1)
	assert.Equal(t, uint8(128), a)
	_, _, _, a = got.RGBAAt(1)
	assert.Zero(t, a)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	_, err := vectorize.Decode(nil)
	require.ErrorIs(t, err, vectorize.ErrSourceMustBeSet)

	_, err = vectorize.Decode([]byte("definitely not an image"))
	require.ErrorIs(t, err, image.ErrFormat)
}
