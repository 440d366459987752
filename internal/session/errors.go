package session

import (
	"errors"
	"fmt"

	"github.com/timvw/plotpipe/internal/framing"
	"github.com/timvw/plotpipe/internal/sink"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = sink.ErrClosed

// ErrFramingMismatch wraps framing.ErrInsufficientData or
// framing.ErrExcessData when the values do not fit the declared shape.
var ErrFramingMismatch = errors.New("framing mismatch")

// SpawnError reports that the program could not be started.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

func countMismatch(what string, got, want int) error {
	cause := framing.ErrInsufficientData
	if got > want {
		cause = framing.ErrExcessData
	}
	return fmt.Errorf("%s: %w: %w: got %d values, want %d", what, ErrFramingMismatch, cause, got, want)
}
