// Package classify turns decoded pixels into a black and white bitmap ready for tracing.
//
// The threshold is the mean perceptual luminance of the visible pixels, clamped into
// [MinThreshold, MaxThreshold]. The side of the threshold holding the minority of the visible
// pixels becomes the ink. When the resulting ink ratio looks degenerate (nearly blank or nearly
// full) the polarity is flipped once.
package classify

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

const (
	// AlphaCutoff is the alpha under which a pixel is treated as fully transparent.
	AlphaCutoff = 8

	// DefaultMean is used when no pixel is visible.
	DefaultMean  = 160.0
	MinThreshold = 45.0
	MaxThreshold = 210.0

	// MinForegroundRatio and MaxForegroundRatio bound a healthy ink ratio.
	MinForegroundRatio = 0.01
	MaxForegroundRatio = 0.90
)

// Classification is the outcome of Classify.
type Classification struct {
	Bitmap    *model.BinaryBitmap
	Polarity  model.Polarity
	Threshold float64
	Mean      float64
	StdDev    float64
	// Visible is the number of pixels with alpha >= AlphaCutoff.
	Visible int
	// ForegroundRatio is ink pixels over all pixels, transparent ones included.
	ForegroundRatio float64
	// Flipped is set when the first polarity was judged degenerate.
	Flipped bool
}

// Luminance returns the perceptual luminance of an RGB triple.
func Luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// Classify builds the binary bitmap for buf. It never fails: an empty buffer yields an empty
// bitmap.
func Classify(buf *model.PixelBuffer) *Classification {
	total := buf.Len()
	lum := make([]float64, total)
	visible := make([]float64, 0, total)

	for i := 0; i < total; i++ {
		r, g, b, a := buf.RGBAAt(i)
		if a < AlphaCutoff {
			lum[i] = math.NaN()

			continue
		}
		lum[i] = Luminance(r, g, b)
		visible = append(visible, lum[i])
	}

	res := &Classification{
		Mean:    DefaultMean,
		Visible: len(visible),
	}

	switch len(visible) {
	case 0:
	case 1:
		res.Mean = visible[0]
	default:
		res.Mean, res.StdDev = stat.MeanStdDev(visible, nil)
	}

	res.Threshold = math.Min(math.Max(res.Mean, MinThreshold), MaxThreshold)

	dark := 0
	for _, l := range visible {
		if l < res.Threshold {
			dark++
		}
	}

	res.Polarity = model.LightForeground
	if dark*2 <= len(visible) {
		res.Polarity = model.DarkForeground
	}

	bitmap, ink := render(buf.Width, buf.Height, lum, res.Threshold, res.Polarity)
	ratio := foregroundRatio(ink, total)

	if ratio < MinForegroundRatio || ratio > MaxForegroundRatio {
		res.Polarity = res.Polarity.Opposite()
		res.Flipped = true
		bitmap, ink = render(buf.Width, buf.Height, lum, res.Threshold, res.Polarity)
		ratio = foregroundRatio(ink, total)
	}

	res.Bitmap = bitmap
	res.ForegroundRatio = ratio

	return res
}

// render paints ink pixels black. NaN luminance (transparent pixel) is never ink.
func render(width, height int, lum []float64, threshold float64, polarity model.Polarity) (*model.BinaryBitmap, int) {
	bitmap := model.NewBinaryBitmap(width, height)
	ink := 0

	for i, l := range lum {
		var isInk bool
		if polarity == model.DarkForeground {
			isInk = l < threshold
		} else {
			isInk = l > threshold
		}
		if isInk {
			bitmap.SetInk(i, true)
			ink++
		}
	}

	return bitmap, ink
}

func foregroundRatio(ink, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(ink) / float64(total)
}
