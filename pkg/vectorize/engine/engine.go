// Package engine drives an external tracing engine through an ordered list of converter profiles.
//
// An Engine is a black box that turns a binary bitmap into SVG through small incremental ticks.
// A Cascade tries the profiles in order, one engine instance at a time, and returns the SVG of the
// first profile that completes. Every engine instance is released exactly once, whatever the
// outcome of its attempt.
package engine

import (
	"sync"
	"sync/atomic"

	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

// Engine is one instance of an external tracing engine bound to a bitmap and a profile.
type Engine interface {
	// Init prepares the instance before the first tick.
	Init() error
	// Tick runs one bounded increment of the tracing algorithm.
	Tick() (done bool, err error)
	// Progress returns the engine's own progress, either a fraction in [0, 1] or a percentage.
	Progress() float64
	// Result returns the SVG document once Tick reported done.
	Result() string
	// Release frees the instance. It must tolerate being called more than once.
	Release()
}

// Factory constructs engine instances.
type Factory interface {
	New(bitmap *model.BinaryBitmap, profile model.ConverterProfile, opts model.RenderOptions) (Engine, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(bitmap *model.BinaryBitmap, profile model.ConverterProfile, opts model.RenderOptions) (Engine, error)

// New implements Factory.
func (f FactoryFunc) New(bitmap *model.BinaryBitmap, profile model.ConverterProfile, opts model.RenderOptions) (Engine, error) {
	return f(bitmap, profile, opts)
}

// Runtime holds the one-time setup of an engine implementation. The setup runs on the first call
// to Factory and its outcome, error included, is cached for the life of the process.
type Runtime struct {
	setup   func() (Factory, error)
	once    sync.Once
	factory Factory
	err     error
}

// NewRuntime wraps a setup function.
func NewRuntime(setup func() (Factory, error)) *Runtime {
	return &Runtime{setup: setup}
}

// Factory runs the setup once and returns its cached outcome.
func (r *Runtime) Factory() (Factory, error) {
	r.once.Do(func() {
		if r.setup == nil {
			r.err = ErrNoFactory

			return
		}
		r.factory, r.err = r.setup()
		if r.err == nil && r.factory == nil {
			r.err = ErrNoFactory
		}
	})

	return r.factory, r.err
}

var defaultRuntime atomic.Pointer[Runtime]

// SetDefault installs the process-wide runtime used when a pipeline is given none.
// Engine packages call it from init, the same way image decoders register themselves.
func SetDefault(rt *Runtime) {
	defaultRuntime.Store(rt)
}

// Default returns the process-wide runtime, nil when no engine registered one.
func Default() *Runtime {
	return defaultRuntime.Load()
}
