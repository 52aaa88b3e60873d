package vectorize

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/go-vectorize/internal/logging"
	"github.com/askiada/go-vectorize/pkg/vectorize/engine"
	_ "github.com/askiada/go-vectorize/pkg/vectorize/engine/scanline"
	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

// Source is an image submitted for conversion.
type Source struct {
	Name string
	Data []byte
}

// Sink receives the events of a run. Calls are serialized.
type Sink func(event model.Event)

// Pipeline converts images. It is safe for concurrent use, each Run owning its own state.
type Pipeline struct {
	profiles []model.ConverterProfile
	runtime  *engine.Runtime
	factory  engine.Factory
	fallback Fallback
	render   model.RenderOptions
	logger   *slog.Logger
	opts     []model.PipelineOption

	closeOnce sync.Once
	closeErr  error
}

// New creates a new pipeline.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		profiles: model.DefaultProfiles(),
		render:   model.DefaultRenderOptions(),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if len(p.profiles) == 0 {
		return nil, ErrNoProfiles
	}
	if p.factory == nil && p.runtime == nil {
		p.runtime = engine.Default()
	}
	p.logger = p.logger.With("component", "vectorize")

	for _, opt := range p.opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return p, nil
}

// Profiles returns a copy of the attempt order.
func (p *Pipeline) Profiles() []model.ConverterProfile {
	return append([]model.ConverterProfile(nil), p.profiles...)
}

// Run starts converting src and returns immediately. sink may be nil.
func (p *Pipeline) Run(ctx context.Context, src Source, sink Sink) (*Run, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if len(src.Data) == 0 {
		return nil, ErrSourceMustBeSet
	}

	id := uuid.New()
	rCtx, cancel := context.WithCancel(ctx)
	r := &Run{
		id:       id,
		pipeline: p,
		src:      src,
		sink:     sink,
		logger:   p.logger.With("run_id", id.String(), "source", src.Name),
		cancel:   cancel,
		done:     make(chan struct{}),
		last:     model.StartStage,
		stage:    model.StageLocal,
	}

	go r.execute(rCtx)

	return r, nil
}

// Convert runs src to completion and returns the SVG document.
func (p *Pipeline) Convert(ctx context.Context, src Source) (string, error) {
	run, err := p.Run(ctx, src, nil)
	if err != nil {
		return "", err
	}

	res := run.Wait()
	switch res.Kind {
	case model.ResultSuccess:
		return res.SVG, nil
	case model.ResultCancelled:
		if err := ctx.Err(); err != nil {
			return "", err
		}

		return "", ErrRunCancelled
	default:
		return "", res.Err
	}
}

// Close runs the Finish hook of every pipeline option. Runs still in flight are not waited for.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		for _, opt := range p.opts {
			err := opt.Finish()
			if err != nil {
				p.closeErr = errors.Wrap(err, "unable to finish pipeline option")

				return
			}
		}
	})

	return p.closeErr
}

func (p *Pipeline) engineFactory() (engine.Factory, error) {
	if p.factory != nil {
		return p.factory, nil
	}
	if p.runtime == nil {
		return nil, ErrNoEngine
	}

	factory, err := p.runtime.Factory()
	if err != nil {
		return nil, errors.Wrap(err, "tracing engine unavailable")
	}

	return factory, nil
}
