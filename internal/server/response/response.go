// Package response writes the JSON envelope every API endpoint returns:
// a data member on success and an error member on failure.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/agentstation/eventmap/pkg/errors"
)

// Response is the envelope written for every API response.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error is the failure member of the envelope.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Code is a machine-readable error code.
type Code string

// Error codes.
const (
	CodeBadRequest       Code = "BAD_REQUEST"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	CodeSuperseded       Code = "SUPERSEDED"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeUpstream         Code = "UPSTREAM_ERROR"
	CodeUnavailable      Code = "SERVICE_UNAVAILABLE"
	CodeTimeout          Code = "TIMEOUT"
)

var codes = map[Code]struct {
	status int
	title  string
}{
	CodeBadRequest:       {http.StatusBadRequest, "Bad request"},
	CodeUnauthorized:     {http.StatusUnauthorized, "Invalid or missing API key"},
	CodeNotFound:         {http.StatusNotFound, "Not found"},
	CodeMethodNotAllowed: {http.StatusMethodNotAllowed, "Method not allowed"},
	CodeSuperseded:       {http.StatusConflict, "Refresh superseded"},
	CodeRateLimited:      {http.StatusTooManyRequests, "Rate limit exceeded"},
	CodeInternal:         {http.StatusInternalServerError, "Internal server error"},
	CodeUpstream:         {http.StatusBadGateway, "Event source failed"},
	CodeUnavailable:      {http.StatusServiceUnavailable, "Service unavailable"},
	CodeTimeout:          {http.StatusGatewayTimeout, "Event source timed out"},
}

// Status returns the HTTP status for c, or 500 for unknown codes.
func (c Code) Status() int {
	if e, ok := codes[c]; ok {
		return e.status
	}
	return http.StatusInternalServerError
}

// Success wraps data in an envelope.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail builds an error envelope.
func Fail(code Code, message, details string) Response {
	return Response{Error: &Error{Code: code, Message: message, Details: details}}
}

// JSON writes resp with the given status. Encoding errors are dropped
// because the status line is already sent.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// Problem writes an error envelope for code. An empty message uses the
// code's standard title.
func Problem(w http.ResponseWriter, code Code, message, details string) {
	if message == "" {
		message = codes[code].title
	}
	JSON(w, code.Status(), Fail(code, message, details))
}

// OK writes data with status 200.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, message, details string) {
	Problem(w, CodeBadRequest, message, details)
}

// Unauthorized writes a 401.
func Unauthorized(w http.ResponseWriter, message, details string) {
	Problem(w, CodeUnauthorized, message, details)
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, message, details string) {
	Problem(w, CodeNotFound, message, details)
}

// MethodNotAllowed writes a 405 naming the rejected method.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	Problem(w, CodeMethodNotAllowed, "", "Method "+method+" is not supported for this endpoint")
}

// RateLimited writes a 429.
func RateLimited(w http.ResponseWriter, details string) {
	Problem(w, CodeRateLimited, "", details)
}

// InternalError writes a 500 without exposing err.
func InternalError(w http.ResponseWriter, _ error) {
	Problem(w, CodeInternal, "", "An unexpected error occurred")
}

// ServiceUnavailable writes a 503.
func ServiceUnavailable(w http.ResponseWriter, details string) {
	Problem(w, CodeUnavailable, "", details)
}

// ErrorFromType picks the response for err from its type. Upstream 5xx
// and transport failures become 502; upstream 4xx become 400.
func ErrorFromType(w http.ResponseWriter, err error) {
	var (
		notFound   *errors.NotFoundError
		validation *errors.ValidationError
		apiErr     *errors.APIError
	)
	switch {
	case errors.As(err, &notFound):
		NotFound(w, notFound.Error(), "")
	case errors.As(err, &validation):
		BadRequest(w, validation.Error(), "")
	case errors.Is(err, errors.ErrClosed):
		ServiceUnavailable(w, "Catalog is shutting down")
	case errors.Is(err, errors.ErrSuperseded):
		Problem(w, CodeSuperseded, "", err.Error())
	case errors.As(err, &apiErr) && apiErr.StatusCode > 0 && apiErr.StatusCode < 500:
		BadRequest(w, apiErr.Error(), "")
	case errors.As(err, &apiErr):
		Problem(w, CodeUpstream, "", apiErr.Error())
	case errors.Is(err, errors.ErrTimeout):
		Problem(w, CodeTimeout, "", err.Error())
	default:
		InternalError(w, err)
	}
}
