package vectorize

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/go-vectorize/pkg/vectorize/classify"
	"github.com/askiada/go-vectorize/pkg/vectorize/engine"
	"github.com/askiada/go-vectorize/pkg/vectorize/model"
	"github.com/askiada/go-vectorize/pkg/vectorize/remote"
	"github.com/askiada/go-vectorize/pkg/vectorize/viewport"
)

var (
	decodeStage   = &model.StageInfo{Type: model.DecodeStageType, Name: "decode"}
	classifyStage = &model.StageInfo{Type: model.ClassifyStageType, Name: "classify"}
	remoteStage   = &model.StageInfo{Type: model.RemoteStageType, Name: "remote"}
)

// Run is one conversion. It is created by Pipeline.Run and never restarted.
type Run struct {
	id       uuid.UUID
	pipeline *Pipeline
	src      Source
	sink     Sink
	logger   *slog.Logger
	cancel   context.CancelFunc
	aborted  atomic.Bool
	done     chan struct{}
	result   model.Result

	// owned by the run goroutine
	last    *model.StageInfo
	attempt *model.StageInfo
	width   int
	height  int

	// guarded by mu
	mu            sync.Mutex
	stage         model.Stage
	terminal      bool
	remotePercent float64
}

// ID identifies the run in logs.
func (r *Run) ID() string {
	return r.id.String()
}

// Abort stops the run: the current engine is released and an in-flight remote request is
// cancelled. Deliveries are serialized, so once Abort returned at most the one event already being
// delivered can still reach the sink; called from the sink, none does. Abort does not wait for the
// run to end. It is idempotent and a no-op once the run ended.
func (r *Run) Abort() {
	select {
	case <-r.done:
		return
	default:
	}

	if r.aborted.CompareAndSwap(false, true) {
		r.logger.Debug("run aborted")
		r.cancel()
	}
}

// Done is closed once the run reached its terminal outcome.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run ended and returns its outcome.
func (r *Run) Wait() model.Result {
	<-r.done

	return r.result
}

// Result returns the outcome of the run, or a pending result while it is in flight.
func (r *Run) Result() model.Result {
	select {
	case <-r.done:
		return r.result
	default:
		return model.Result{Kind: model.ResultPending}
	}
}

func (r *Run) execute(ctx context.Context) {
	defer r.cancel()

	start := time.Now()
	r.logger.Debug("run started", "size", len(r.src.Data))

	r.finish(r.convert(ctx), time.Since(start))
}

func (r *Run) convert(ctx context.Context) model.Result {
	svg, localErr := r.local(ctx)
	if ctx.Err() != nil {
		return model.Result{Kind: model.ResultCancelled}
	}
	if localErr == nil {
		return model.Result{Kind: model.ResultSuccess, SVG: svg}
	}

	if r.pipeline.fallback == nil {
		return model.Result{Kind: model.ResultFailure, Err: &FailureError{Local: localErr}}
	}
	r.logger.Warn("local conversion failed, falling back to remote", "error", localErr)

	svg, remoteErr := r.remote(ctx)
	if errors.Is(remoteErr, remote.ErrCancelled) || ctx.Err() != nil {
		return model.Result{Kind: model.ResultCancelled}
	}
	if remoteErr != nil {
		return model.Result{Kind: model.ResultFailure, Err: &FailureError{Local: localErr, Remote: remoteErr}}
	}

	return model.Result{Kind: model.ResultSuccess, SVG: svg}
}

func (r *Run) local(ctx context.Context) (string, error) {
	var buf *model.PixelBuffer
	err := r.runStage(decodeStage, func() error {
		var err error
		buf, err = Decode(r.src.Data)

		return err
	})
	if err != nil {
		return "", err
	}
	r.width, r.height = buf.Width, buf.Height

	var cls *classify.Classification
	_ = r.runStage(classifyStage, func() error {
		cls = classify.Classify(buf)

		return nil
	})
	r.logger.Debug("image classified",
		"width", buf.Width,
		"height", buf.Height,
		"polarity", cls.Polarity,
		"threshold", cls.Threshold,
		"foreground_ratio", cls.ForegroundRatio,
		"flipped", cls.Flipped,
	)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	factory, err := r.pipeline.engineFactory()
	if err != nil {
		return "", err
	}
	cascade, err := engine.NewCascade(factory,
		engine.CascadeRenderOptions(r.pipeline.render),
		engine.CascadeLogger(r.logger),
	)
	if err != nil {
		return "", errors.Wrap(err, "unable to create cascade")
	}

	svg, err := cascade.Trace(ctx, cls.Bitmap, r.pipeline.profiles, r.observer())
	if err != nil {
		return "", err
	}

	var opts []viewport.Option
	if !r.pipeline.render.TransparentBackground {
		// the engine drew the background on request
		opts = append(opts, viewport.KeepBackground())
	}
	out, err := viewport.Normalize(svg, r.width, r.height, opts...)
	if err != nil {
		return "", errors.Wrap(err, "unable to normalize traced svg")
	}

	return out, nil
}

func (r *Run) observer() engine.Observer {
	return engine.Observer{
		OnAttemptStart: func(index int, profile model.ConverterProfile) {
			r.attempt = &model.StageInfo{Type: model.AttemptStageType, Name: profile.Name, Index: index}
			r.prepareStage(r.attempt)
		},
		OnProgress: func(_ int, profile model.ConverterProfile, percent float64) {
			r.emit(model.Event{Type: model.EventProgress, Profile: profile.Name, Percent: percent})
		},
		OnAttemptEnd: func(_ int, _ model.ConverterProfile, elapsed time.Duration, err error) {
			r.endStage(r.attempt, elapsed, err)
		},
	}
}

func (r *Run) remote(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	r.stage = model.StageRemote
	r.mu.Unlock()

	var svg string
	err := r.runStage(remoteStage, func() error {
		r.emit(model.Event{Type: model.EventProgress})

		req := r.pipeline.fallback.Submit(ctx, remote.File{Name: r.src.Name, Data: r.src.Data}, remote.Callbacks{
			OnProgress: r.remoteProgress,
			OnProcessing: func() {
				r.emit(model.Event{Type: model.EventProcessing, Percent: MaxRemotePercent})
			},
		})
		out, err := req.Wait()
		if err != nil {
			return err
		}

		width, height := r.width, r.height
		if width == 0 || height == 0 {
			var ok bool
			if width, height, ok = dimensions(r.src.Data); !ok {
				r.logger.Warn("source dimensions unknown, remote svg kept as is")
				svg = out

				return nil
			}
		}
		svg, err = viewport.Normalize(out, width, height)
		if err != nil {
			return errors.Wrap(err, "unable to normalize remote svg")
		}

		return nil
	})

	return svg, err
}

// MaxRemotePercent is the highest remote progress reported before the terminal event.
const MaxRemotePercent = 99.0

func (r *Run) remoteProgress(percent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	percent = min(max(percent, r.remotePercent), MaxRemotePercent)
	r.remotePercent = percent
	r.deliverLocked(model.Event{Type: model.EventProgress, Percent: percent})
}

func (r *Run) emit(ev model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deliverLocked(ev)
}

func (r *Run) deliverLocked(ev model.Event) {
	if r.sink == nil || r.terminal || r.aborted.Load() {
		return
	}
	if ev.Type.Terminal() {
		r.terminal = true
	}
	ev.Stage = r.stage
	r.sink(ev)
}

func (r *Run) runStage(stage *model.StageInfo, fn func() error) error {
	r.prepareStage(stage)
	start := time.Now()
	err := fn()
	r.endStage(stage, time.Since(start), err)

	return err
}

func (r *Run) prepareStage(stage *model.StageInfo) {
	for _, opt := range r.pipeline.opts {
		err := opt.PrepareStage(r.last, stage)
		if err != nil {
			r.logger.Warn("unable to prepare stage", "stage", stage.Name, "error", err)
		}
	}
	r.last = stage
}

func (r *Run) endStage(stage *model.StageInfo, elapsed time.Duration, err error) {
	for _, opt := range r.pipeline.opts {
		hookErr := opt.OnStageEnd(stage, elapsed, err)
		if hookErr != nil {
			r.logger.Warn("unable to end stage", "stage", stage.Name, "error", hookErr)
		}
	}
}

func (r *Run) finish(result model.Result, elapsed time.Duration) {
	r.prepareStage(model.EndStage)
	r.endStage(model.EndStage, elapsed, result.Err)

	r.mu.Lock()
	if r.aborted.Load() {
		result = model.Result{Kind: model.ResultCancelled}
	}
	switch result.Kind {
	case model.ResultSuccess:
		r.deliverLocked(model.Event{Type: model.EventSuccess, SVG: result.SVG, Percent: 100})
	case model.ResultFailure:
		r.deliverLocked(model.Event{Type: model.EventError, Err: result.Err})
	default:
		r.deliverLocked(model.Event{Type: model.EventCancelled})
	}
	r.mu.Unlock()

	switch result.Kind {
	case model.ResultSuccess:
		r.logger.Info("run succeeded", "elapsed", elapsed, "bytes", len(result.SVG))
	case model.ResultFailure:
		r.logger.Error("run failed", "elapsed", elapsed, "error", result.Err)
	default:
		r.logger.Info("run cancelled", "elapsed", elapsed)
	}

	for _, opt := range r.pipeline.opts {
		err := opt.OnRunEnd(&result)
		if err != nil {
			r.logger.Warn("unable to end run", "error", err)
		}
	}

	r.result = result
	close(r.done)
}
