package remote

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrCancelled = errors.New("Upload cancelled")                                           //nolint:stylecheck
	ErrNetwork   = errors.New("Network error. Please check your connection and try again.") //nolint:stylecheck
	ErrEmptyFile = errors.New("file has no content")
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Server returned %d: %s", e.Code, e.Status)
}

// NetworkError is a transport failure. Its message is the user facing ErrNetwork text.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return ErrNetwork.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is matches ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork //nolint:errorlint
}
