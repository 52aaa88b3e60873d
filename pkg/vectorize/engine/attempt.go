package engine

import (
	"math"

	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

// MaxInProgress is the highest percentage reported while an attempt is still ticking.
const MaxInProgress = 99.0

// attempt owns one engine instance for the duration of one profile.
type attempt struct {
	index    int
	profile  model.ConverterProfile
	engine   Engine
	progress float64
	released bool
}

func newAttempt(index int, profile model.ConverterProfile, eng Engine) *attempt {
	return &attempt{
		index:   index,
		profile: profile,
		engine:  eng,
	}
}

// release hands the engine back exactly once.
func (a *attempt) release() {
	if a.released {
		return
	}
	a.released = true
	a.engine.Release()
}

// advance records a raw engine progress sample and returns the percentage to report.
// The reported value never decreases while the attempt is active.
func (a *attempt) advance(raw float64) float64 {
	p := NormalizeProgress(raw)
	if p > a.progress {
		a.progress = p
	}

	return a.progress
}

// NormalizeProgress converts an engine progress sample into a percentage in [0, MaxInProgress].
// Samples up to 1 are fractions, larger ones are already percentages.
func NormalizeProgress(raw float64) float64 {
	if math.IsNaN(raw) || raw <= 0 {
		return 0
	}
	if raw <= 1 {
		raw *= 100
	}

	return math.Min(raw, MaxInProgress)
}
