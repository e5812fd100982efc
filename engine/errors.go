package engine

import (
	"errors"
	"fmt"
)

// ErrInterrupted is returned by Run when the context is cancelled while
// the inference binary is still running.
var ErrInterrupted = errors.New("inference interrupted")

// LaunchError reports that the inference binary could not be started.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("start inference binary %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitError reports a non-zero exit status from the inference binary.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("inference binary exited with code %d", e.Code)
}
