package vectorize

import (
	"context"
	"sync"
)

// Surface holds at most one active run, the way a single result view shows one image at a time.
// Submitting a new image aborts the active run first.
type Surface struct {
	pipeline *Pipeline

	mu     sync.Mutex
	active *Run
}

// NewSurface creates a surface converting with p.
func NewSurface(p *Pipeline) (*Surface, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	return &Surface{pipeline: p}, nil
}

// Submit aborts the active run, if any, and starts converting src. The aborted run releases its
// engine asynchronously and may still hold it while src starts; use SubmitWait to wait for it.
// Submit may be called from a sink.
func (s *Surface) Submit(ctx context.Context, src Source, sink Sink) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.active.Abort()
		s.active = nil
	}

	run, err := s.pipeline.Run(ctx, src, sink)
	if err != nil {
		return nil, err
	}
	s.active = run

	return run, nil
}

// SubmitWait is Submit, except that the aborted run has ended, and released its engine, before src
// starts. It must not be called from a sink of the run it replaces.
func (s *Surface) SubmitWait(ctx context.Context, src Source, sink Sink) (*Run, error) {
	s.mu.Lock()
	previous := s.active
	s.active = nil
	s.mu.Unlock()

	if previous != nil {
		previous.Abort()
		select {
		case <-previous.Done():
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return s.Submit(ctx, src, sink)
}

// Active returns the run in flight, nil when the last one ended.
func (s *Surface) Active() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return nil
	}
	select {
	case <-s.active.Done():
		return nil
	default:
		return s.active
	}
}

// Close aborts the active run.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.active.Abort()
		s.active = nil
	}
}
