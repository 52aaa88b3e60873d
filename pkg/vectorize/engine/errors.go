package engine

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNoFactory  = errors.New("no tracing engine factory")
	ErrNoProfiles = errors.New("at least one converter profile is required")
	ErrNilBitmap  = errors.New("bitmap must be set")
)

// Phase is the point of an attempt where it failed.
type Phase string

const (
	PhaseConstruct Phase = "construct"
	PhaseInit      Phase = "init"
	PhaseTick      Phase = "tick"
)

// AttemptError is the failure of one profile.
type AttemptError struct {
	Profile string
	Phase   Phase
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("profile %s: %s: %v", e.Profile, e.Phase, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// ExhaustedError reports that every profile failed. Only the first and the last failures are
// kept.
type ExhaustedError struct {
	Attempts int
	First    *AttemptError
	Last     *AttemptError
}

func (e *ExhaustedError) add(err *AttemptError) {
	e.Attempts++
	if e.First == nil {
		e.First = err
	}
	e.Last = err
}

func (e *ExhaustedError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "local attempts exhausted after %d profile(s)", e.Attempts)
	if e.Last != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Last.Error())
	}
	if e.First != nil && e.First != e.Last && e.First.Err != nil &&
		e.First.Err.Error() != "" && e.First.Err.Error() != e.Last.Err.Error() {
		sb.WriteString(" (first failure: ")
		sb.WriteString(e.First.Error())
		sb.WriteString(")")
	}

	return sb.String()
}

func (e *ExhaustedError) Unwrap() error {
	if e.Last == nil {
		return nil
	}

	return e.Last
}
