package model

import (
	"image"
	"image/color"
)

// Polarity tells which side of the luminance threshold is treated as ink.
type Polarity int

const (
	// DarkForeground treats pixels darker than the threshold as ink.
	DarkForeground Polarity = iota
	// LightForeground treats pixels lighter than the threshold as ink.
	LightForeground
)

func (p Polarity) String() string {
	switch p {
	case DarkForeground:
		return "dark"
	case LightForeground:
		return "light"
	default:
		return "unknown"
	}
}

// Opposite returns the other polarity.
func (p Polarity) Opposite() Polarity {
	if p == DarkForeground {
		return LightForeground
	}

	return DarkForeground
}

// PixelBuffer holds decoded RGBA pixels, row-major, top to bottom.
// It must not be modified once captured from the source image.
type PixelBuffer struct {
	Width  int
	Height int
	// Pix holds 4 bytes per pixel: R, G, B, A.
	Pix []uint8
}

// NewPixelBuffer allocates a zeroed (fully transparent) buffer.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// Len returns the number of pixels in the buffer.
func (b *PixelBuffer) Len() int {
	return b.Width * b.Height
}

// RGBAAt returns the channels of the i-th pixel.
func (b *PixelBuffer) RGBAAt(i int) (r, g, bl, a uint8) {
	o := i * 4

	return b.Pix[o], b.Pix[o+1], b.Pix[o+2], b.Pix[o+3]
}

// BinaryBitmap is a black and white rendition of a PixelBuffer. Every pixel is either
// opaque black (ink) or opaque white (background).
type BinaryBitmap struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBinaryBitmap allocates an all-white bitmap.
func NewBinaryBitmap(width, height int) *BinaryBitmap {
	bm := &BinaryBitmap{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
	for i := range bm.Pix {
		bm.Pix[i] = 0xff
	}

	return bm
}

// SetInk marks the i-th pixel as ink (ink=true) or background.
func (bm *BinaryBitmap) SetInk(i int, ink bool) {
	o := i * 4
	v := uint8(0xff)
	if ink {
		v = 0
	}
	bm.Pix[o], bm.Pix[o+1], bm.Pix[o+2], bm.Pix[o+3] = v, v, v, 0xff
}

// IsInk reports whether the pixel at (x, y) is ink.
func (bm *BinaryBitmap) IsInk(x, y int) bool {
	if x < 0 || y < 0 || x >= bm.Width || y >= bm.Height {
		return false
	}

	return bm.Pix[(y*bm.Width+x)*4] == 0
}

// InkCount returns the number of ink pixels.
func (bm *BinaryBitmap) InkCount() int {
	n := 0
	for o := 0; o < len(bm.Pix); o += 4 {
		if bm.Pix[o] == 0 {
			n++
		}
	}

	return n
}

// ColorModel implements image.Image.
func (bm *BinaryBitmap) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (bm *BinaryBitmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, bm.Width, bm.Height)
}

// At implements image.Image.
func (bm *BinaryBitmap) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= bm.Width || y >= bm.Height {
		return color.RGBA{}
	}
	if bm.IsInk(x, y) {
		return color.RGBA{A: 0xff}
	}

	return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
}

var _ image.Image = (*BinaryBitmap)(nil)
