package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// NotFoundError reports a missing resource, usually an event ID.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError returns a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError reports bad input: a malformed event or a flag value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// NewValidationError returns a ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// APIError is a non-2xx answer, or a failed request, from an HTTP event
// source. A 404 matches ErrNotFound and a 5xx matches ErrUnavailable.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// NewAPIError returns an APIError for a response status.
func NewAPIError(endpoint string, status int, message string) *APIError {
	return &APIError{Endpoint: endpoint, StatusCode: status, Message: message}
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Endpoint)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// Is maps the status code onto the sentinels.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return target == ErrNotFound
	case e.StatusCode >= 500:
		return target == ErrUnavailable
	}
	return false
}

// FetchError is a failed catalog refresh. It always wraps the transport,
// decode or validation cause.
type FetchError struct {
	Source     string
	Generation uint64
	Err        error
}

// NewFetchError returns a FetchError.
func NewFetchError(source string, generation uint64, err error) *FetchError {
	return &FetchError{Source: source, Generation: generation, Err: err}
}

func (e *FetchError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("refresh failed: %v", e.Err)
	}
	return fmt.Sprintf("refresh from %s failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ConfigError reports an unusable configuration of a component.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// NewConfigError returns a ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Component != "" {
		msg = e.Component + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "config: " + msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ParseError reports an event payload that could not be decoded.
type ParseError struct {
	Format  string // json or yaml
	File    string
	Message string
	Err     error
}

// NewParseError returns a ParseError.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("decoding %s: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("decoding %s %s: %s", e.Format, e.File, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError reports a failed file operation such as read or watch.
type IOError struct {
	Operation string
	Path      string
	Err       error
}

// NewIOError returns an IOError.
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
