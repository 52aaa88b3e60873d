// Package scanline provides a reference tracing engine.
//
// The engine walks the bitmap row by row and emits one rectangle per horizontal run of filled
// pixels, merged into a single SVG path. It does not fit curves, so every converter profile yields
// a faithful but blocky outline. Importing the package registers it as the default engine runtime.
package scanline

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-vectorize/pkg/vectorize/engine"
	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

// RowsPerTick is the number of bitmap rows scanned by one tick.
const RowsPerTick = 16

var (
	ErrEmptyBitmap = errors.New("bitmap has no pixels")
	ErrUnknownMode = errors.New("unknown curve fitting mode")
	ErrNotDone     = errors.New("tracing is not complete")
	ErrReleased    = errors.New("engine already released")
)

// Engine is the scanline implementation of engine.Engine.
type Engine struct {
	bitmap  *model.BinaryBitmap
	profile model.ConverterProfile
	opts    model.RenderOptions

	row      int
	path     strings.Builder
	result   string
	done     bool
	released bool
}

// New is an engine.FactoryFunc.
func New(bitmap *model.BinaryBitmap, profile model.ConverterProfile, opts model.RenderOptions) (engine.Engine, error) {
	if bitmap == nil {
		return nil, engine.ErrNilBitmap
	}
	switch profile.Mode {
	case model.ModePixel, model.ModePolygon, model.ModeSpline:
	default:
		return nil, errors.Wrapf(ErrUnknownMode, "mode %q", profile.Mode)
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.PathColor == "" {
		opts.PathColor = "#000000"
	}

	return &Engine{
		bitmap:  bitmap,
		profile: profile,
		opts:    opts,
	}, nil
}

// Init implements engine.Engine.
func (e *Engine) Init() error {
	if e.released {
		return ErrReleased
	}
	if e.bitmap.Width <= 0 || e.bitmap.Height <= 0 {
		return ErrEmptyBitmap
	}
	if len(e.bitmap.Pix) < e.bitmap.Width*e.bitmap.Height*4 {
		return errors.Errorf("bitmap buffer too short: %d bytes for %dx%d", len(e.bitmap.Pix), e.bitmap.Width, e.bitmap.Height)
	}

	return nil
}

// Tick implements engine.Engine.
func (e *Engine) Tick() (bool, error) {
	if e.released {
		return false, ErrReleased
	}
	if e.done {
		return true, nil
	}

	last := min(e.row+RowsPerTick, e.bitmap.Height)
	for ; e.row < last; e.row++ {
		e.scanRow(e.row)
	}

	if e.row >= e.bitmap.Height {
		e.result = e.render()
		e.done = true
	}

	return e.done, nil
}

// filled reports whether the pixel is part of a traced shape.
func (e *Engine) filled(x, y int) bool {
	ink := e.bitmap.IsInk(x, y)
	if e.opts.Invert {
		return ink
	}

	return !ink
}

func (e *Engine) scanRow(y int) {
	minRun := max(e.profile.FilterSpeckle, 1)

	x := 0
	for x < e.bitmap.Width {
		if !e.filled(x, y) {
			x++

			continue
		}
		start := x
		for x < e.bitmap.Width && e.filled(x, y) {
			x++
		}
		if x-start < minRun {
			continue
		}
		e.writeRun(start, y, x-start)
	}
}

func (e *Engine) writeRun(x, y, length int) {
	if e.path.Len() > 0 {
		e.path.WriteByte(' ')
	}
	e.path.WriteByte('M')
	e.path.WriteString(e.num(float64(x)))
	e.path.WriteByte(' ')
	e.path.WriteString(e.num(float64(y)))
	e.path.WriteString("h")
	e.path.WriteString(e.num(float64(length)))
	e.path.WriteString("v")
	e.path.WriteString(e.num(1))
	e.path.WriteString("h-")
	e.path.WriteString(e.num(float64(length)))
	e.path.WriteByte('z')
}

// num scales v and rounds it to the profile's path precision, without trailing zeros.
func (e *Engine) num(v float64) string {
	s := strconv.FormatFloat(v*e.opts.Scale, 'f', max(e.profile.PathPrecision, 0), 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}

	return s
}

func (e *Engine) render() string {
	var sb strings.Builder

	w := e.num(float64(e.bitmap.Width))
	h := e.num(float64(e.bitmap.Height))
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="`)
	sb.WriteString(w)
	sb.WriteString(`" height="`)
	sb.WriteString(h)
	sb.WriteString(`">`)
	if !e.opts.TransparentBackground {
		sb.WriteString(`<rect x="0" y="0" width="`)
		sb.WriteString(w)
		sb.WriteString(`" height="`)
		sb.WriteString(h)
		sb.WriteString(`" fill="#ffffff"/>`)
	}
	if e.path.Len() > 0 {
		sb.WriteString(`<path d="`)
		sb.WriteString(e.path.String())
		sb.WriteString(`" fill="`)
		sb.WriteString(e.opts.PathColor)
		sb.WriteString(`"/>`)
	}
	sb.WriteString(`</svg>`)

	return sb.String()
}

// Progress implements engine.Engine. It returns the fraction of rows scanned.
func (e *Engine) Progress() float64 {
	if e.bitmap.Height <= 0 {
		return 0
	}

	return float64(e.row) / float64(e.bitmap.Height)
}

// Result implements engine.Engine. It is empty until Tick reported done.
func (e *Engine) Result() string {
	return e.result
}

// Release implements engine.Engine.
func (e *Engine) Release() {
	if e.released {
		return
	}
	e.released = true
	e.path.Reset()
}

func init() {
	engine.SetDefault(Runtime())
}

// Runtime returns a runtime serving scanline engines.
func Runtime() *engine.Runtime {
	return engine.NewRuntime(func() (engine.Factory, error) {
		return engine.FactoryFunc(New), nil
	})
}
