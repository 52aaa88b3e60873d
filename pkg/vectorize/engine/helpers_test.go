package engine_test

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/askiada/go-vectorize/pkg/vectorize/engine"
	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

// behaviour scripts one fake engine instance.
type behaviour struct {
	constructErr error
	// partial makes a failing construct return its instance along with constructErr.
	partial bool
	initErr error
	tickErr error
	// ticks is the number of ticks before done, or before tickErr.
	ticks    int
	progress []float64
	svg      string
}

type fakeFactory struct {
	mu         sync.Mutex
	behaviours map[string]behaviour
	order      []string
	constructs int
	releases   int
	engines    []*fakeEngine
}

func newFakeFactory(behaviours map[string]behaviour) *fakeFactory {
	return &fakeFactory{behaviours: behaviours}
}

func (f *fakeFactory) New(_ *model.BinaryBitmap, profile model.ConverterProfile, _ model.RenderOptions) (engine.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.order = append(f.order, profile.Name)
	b := f.behaviours[profile.Name]
	if b.constructErr != nil && !b.partial {
		return nil, b.constructErr
	}
	f.constructs++
	e := &fakeEngine{factory: f, b: b}
	f.engines = append(f.engines, e)

	return e, b.constructErr
}

func (f *fakeFactory) counts() (constructs, releases int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.constructs, f.releases
}

func (f *fakeFactory) attempted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.order...)
}

type fakeEngine struct {
	factory  *fakeFactory
	b        behaviour
	tick     int
	released bool
	onTick   func(n int)
}

func (e *fakeEngine) Init() error {
	return e.b.initErr
}

func (e *fakeEngine) Tick() (bool, error) {
	e.tick++
	if e.onTick != nil {
		e.onTick(e.tick)
	}
	if e.tick > e.b.ticks {
		if e.b.tickErr != nil {
			return false, e.b.tickErr
		}

		return true, nil
	}

	return false, nil
}

func (e *fakeEngine) Progress() float64 {
	if len(e.b.progress) == 0 {
		return 0
	}
	i := e.tick - 1
	if i >= len(e.b.progress) {
		i = len(e.b.progress) - 1
	}

	return e.b.progress[i]
}

func (e *fakeEngine) Result() string {
	return e.b.svg
}

func (e *fakeEngine) Release() {
	if e.released {
		return
	}
	e.released = true
	e.factory.mu.Lock()
	e.factory.releases++
	e.factory.mu.Unlock()
}

func profiles(names ...string) []model.ConverterProfile {
	out := make([]model.ConverterProfile, 0, len(names))
	for _, name := range names {
		out = append(out, model.ConverterProfile{Name: name, Mode: model.ModeSpline})
	}

	return out
}

var errBoom = errors.New("boom")
