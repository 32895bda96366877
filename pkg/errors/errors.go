// Package errors defines the error taxonomy of eventmap. Typed errors keep
// their context (event ID, endpoint, file) and map onto a small set of
// sentinels, so callers branch with Is and As instead of matching text.
package errors

import (
	"errors"
	"fmt"
)

// Sentinels. Typed errors report the matching sentinel through Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("source unavailable")
	ErrTimeout      = errors.New("operation timed out")
	ErrCanceled     = errors.New("operation canceled")

	// ErrSuperseded marks a fetch result discarded because a newer refresh
	// was issued while it was in flight.
	ErrSuperseded = errors.New("superseded by a newer refresh")

	// ErrClosed is returned by Refresh after the store was closed.
	ErrClosed = errors.New("store closed")
)

// Re-exported so callers need a single errors import.
var (
	New    = errors.New
	Is     = errors.Is
	As     = errors.As
	Join   = errors.Join
	Errorf = fmt.Errorf
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports whether err is or wraps ErrInvalidInput.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsUnavailable reports whether the event source is temporarily down.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// IsCanceled reports whether err is or wraps ErrCanceled.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }

// IsSuperseded reports whether a refresh result was discarded as stale.
func IsSuperseded(err error) bool { return errors.Is(err, ErrSuperseded) }

// WrapIO wraps err as an IOError; nil stays nil.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps err as a ParseError; nil stays nil.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapFetch wraps err as a FetchError; nil stays nil.
func WrapFetch(source string, generation uint64, err error) error {
	if err == nil {
		return nil
	}
	return NewFetchError(source, generation, err)
}
