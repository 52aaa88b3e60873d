package vectorize

import (
	"context"
	"log/slog"

	"github.com/askiada/go-vectorize/internal/logging"
	"github.com/askiada/go-vectorize/pkg/vectorize/engine"
	"github.com/askiada/go-vectorize/pkg/vectorize/model"
	"github.com/askiada/go-vectorize/pkg/vectorize/remote"
)

// Fallback converts an image remotely. *remote.Client implements it.
type Fallback interface {
	Submit(ctx context.Context, file remote.File, cb remote.Callbacks) *remote.Request
}

type Option func(p *Pipeline)

// WithProfiles replaces the ordered list of converter profiles.
func WithProfiles(profiles ...model.ConverterProfile) Option {
	return func(p *Pipeline) {
		p.profiles = append([]model.ConverterProfile(nil), profiles...)
	}
}

// WithRuntime sets the engine runtime. The process default is used otherwise.
func WithRuntime(rt *engine.Runtime) Option {
	return func(p *Pipeline) {
		p.runtime = rt
	}
}

// WithFactory bypasses the runtime with an engine factory.
func WithFactory(factory engine.Factory) Option {
	return func(p *Pipeline) {
		p.factory = factory
	}
}

// WithRemote enables the remote fallback.
func WithRemote(fallback Fallback) Option {
	return func(p *Pipeline) {
		p.fallback = fallback
	}
}

func WithRenderOptions(opts model.RenderOptions) Option {
	return func(p *Pipeline) {
		p.render = opts
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.OrNop(logger)
	}
}

// WithHooks registers pipeline options such as measure.PipelineMeasure or drawer.PipelineDrawer.
func WithHooks(opts ...model.PipelineOption) Option {
	return func(p *Pipeline) {
		p.opts = append(p.opts, opts...)
	}
}
