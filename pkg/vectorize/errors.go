package vectorize

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/askiada/go-vectorize/pkg/vectorize/engine"
)

var (
	ErrPipelineMustBeSet = errors.New("pipeline must be set")
	ErrSourceMustBeSet   = errors.New("source data must be set")
	ErrNoProfiles        = engine.ErrNoProfiles
	ErrNoEngine          = errors.New("no tracing engine runtime registered")
	ErrRunCancelled      = errors.New("run cancelled")
)

// FailureError is the terminal error of a run. Local is why the image could not be traced locally,
// Remote why the fallback failed. Remote is nil when no fallback is configured.
type FailureError struct {
	Local  error
	Remote error
}

func (e *FailureError) Error() string {
	if e.Remote == nil {
		return fmt.Sprintf("local conversion failed: %v", e.Local)
	}

	return fmt.Sprintf("local conversion failed: %v; remote fallback failed: %v", e.Local, e.Remote)
}

func (e *FailureError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Local != nil {
		errs = append(errs, e.Local)
	}
	if e.Remote != nil {
		errs = append(errs, e.Remote)
	}

	return errs
}
