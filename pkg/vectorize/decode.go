package vectorize

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

// Decode reads a PNG, JPEG, GIF, BMP, TIFF or WebP image into a non-premultiplied RGBA buffer.
func Decode(data []byte) (*model.PixelBuffer, error) {
	if len(data) == 0 {
		return nil, ErrSourceMustBeSet
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode image")
	}

	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)

	return &model.PixelBuffer{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pix:    dst.Pix,
	}, nil
}

// dimensions reads the image size without decoding the pixels.
func dimensions(data []byte) (width, height int, ok bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, false
	}

	return cfg.Width, cfg.Height, true
}
