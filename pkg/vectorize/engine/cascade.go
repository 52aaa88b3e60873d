package engine

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-vectorize/internal/logging"
	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

// Observer receives the attempt lifecycle of a cascade. Nil fields are skipped.
type Observer struct {
	// OnAttemptStart runs before the engine of an attempt is constructed.
	OnAttemptStart func(index int, profile model.ConverterProfile)
	// OnProgress runs after every tick that did not complete the attempt.
	OnProgress func(index int, profile model.ConverterProfile, percent float64)
	// OnAttemptEnd runs once the engine of an attempt has been released. err is nil on success.
	OnAttemptEnd func(index int, profile model.ConverterProfile, elapsed time.Duration, err error)
}

func (o Observer) start(a *attempt) {
	if o.OnAttemptStart != nil {
		o.OnAttemptStart(a.index, a.profile)
	}
}

func (o Observer) progress(a *attempt, percent float64) {
	if o.OnProgress != nil {
		o.OnProgress(a.index, a.profile, percent)
	}
}

func (o Observer) end(a *attempt, elapsed time.Duration, err error) {
	if o.OnAttemptEnd != nil {
		o.OnAttemptEnd(a.index, a.profile, elapsed, err)
	}
}

// Cascade tries converter profiles in order until one completes.
type Cascade struct {
	factory Factory
	options model.RenderOptions
	logger  *slog.Logger
}

type CascadeOption func(c *Cascade)

// CascadeRenderOptions sets the rendering options shared by every attempt.
func CascadeRenderOptions(opts model.RenderOptions) CascadeOption {
	return func(c *Cascade) {
		c.options = opts
	}
}

// CascadeLogger sets the logger used to report absorbed attempt failures.
func CascadeLogger(logger *slog.Logger) CascadeOption {
	return func(c *Cascade) {
		c.logger = logging.OrNop(logger)
	}
}

// NewCascade creates a cascade constructing its engines with factory.
func NewCascade(factory Factory, opts ...CascadeOption) (*Cascade, error) {
	if factory == nil {
		return nil, ErrNoFactory
	}

	c := &Cascade{
		factory: factory,
		options: model.DefaultRenderOptions(),
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Trace runs the profiles in order against bitmap and returns the SVG of the first one that
// completes. Attempt failures are absorbed; when none is left an *ExhaustedError is returned.
// Cancellation of ctx stops the cascade after the current engine is released, and ctx.Err() is
// returned as is.
func (c *Cascade) Trace(ctx context.Context, bitmap *model.BinaryBitmap, profiles []model.ConverterProfile, obs Observer) (string, error) {
	if bitmap == nil {
		return "", ErrNilBitmap
	}
	if len(profiles) == 0 {
		return "", ErrNoProfiles
	}

	exhausted := &ExhaustedError{}

	for idx, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		start := time.Now()
		svg, err := c.run(ctx, idx, bitmap, profile, obs)
		if err == nil {
			return svg, nil
		}

		var attemptErr *AttemptError
		if !errors.As(err, &attemptErr) {
			// cancellation
			return "", err
		}

		c.logger.Warn("trace attempt failed",
			"profile", profile.Name,
			"phase", attemptErr.Phase,
			"elapsed", time.Since(start),
			"error", attemptErr.Err,
		)
		exhausted.add(attemptErr)
	}

	return "", exhausted
}

// run performs one attempt. It returns either the SVG, an *AttemptError, or ctx.Err().
func (c *Cascade) run(ctx context.Context, idx int, bitmap *model.BinaryBitmap, profile model.ConverterProfile, obs Observer) (svg string, err error) {
	a := newAttempt(idx, profile, nil)
	start := time.Now()

	obs.start(a)
	obs.progress(a, 0)

	defer func() {
		if a.engine != nil {
			a.release()
		}
		obs.end(a, time.Since(start), err)
	}()

	eng, err := c.factory.New(bitmap, profile, c.options)
	if err != nil {
		if eng != nil {
			eng.Release()
		}

		return "", &AttemptError{Profile: profile.Name, Phase: PhaseConstruct, Err: err}
	}
	a.engine = eng

	if err := eng.Init(); err != nil {
		return "", &AttemptError{Profile: profile.Name, Phase: PhaseInit, Err: err}
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		done, err := eng.Tick()
		if err != nil {
			return "", &AttemptError{Profile: profile.Name, Phase: PhaseTick, Err: err}
		}
		if done {
			break
		}

		obs.progress(a, a.advance(eng.Progress()))

		// cede the processor between ticks
		runtime.Gosched()
	}

	return eng.Result(), nil
}
