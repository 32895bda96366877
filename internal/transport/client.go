// Package transport provides the HTTP client used to read event sources.
package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap/pkg/constants"
	"github.com/agentstation/eventmap/pkg/errors"
	"github.com/agentstation/eventmap/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client provides HTTP client functionality with authentication.
type Client struct {
	http   *http.Client
	auth   Authenticator
	logger *zerolog.Logger
}

// New creates a new transport client with the specified authenticator.
func New(auth Authenticator, logger *zerolog.Logger) *Client {
	if auth == nil {
		auth = NoAuth{}
	}
	return &Client{
		http:   &http.Client{Timeout: DefaultHTTPTimeout},
		auth:   auth,
		logger: logging.OrNop(logger),
	}
}

// WithHTTPClient replaces the underlying http.Client, mostly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// Do performs an HTTP request with authentication applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.auth.Apply(req)
	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		switch ctxErr := req.Context().Err(); {
		case errors.Is(ctxErr, context.DeadlineExceeded):
			return nil, errors.Join(errors.ErrTimeout, ctxErr)
		case ctxErr != nil:
			return nil, errors.Join(errors.ErrCanceled, ctxErr)
		}
		return nil, &errors.APIError{
			Endpoint: req.URL.Redacted(),
			Message:  "request failed",
			Err:      errors.Join(errors.ErrUnavailable, err),
		}
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewValidationError("url", url, err.Error())
	}
	return c.Do(req)
}

// GetJSON performs a GET request and decodes a JSON response into target.
func (c *Client) GetJSON(ctx context.Context, url string, target any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	c.logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Msg("Event source responded")
	return DecodeResponse(resp, target)
}

// DecodeResponse decodes a JSON response into the target structure and
// closes the body.
func DecodeResponse(resp *http.Response, target any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		endpoint := ""
		if resp.Request != nil && resp.Request.URL != nil {
			endpoint = resp.Request.URL.Redacted()
		}
		return errors.NewAPIError(endpoint, resp.StatusCode, msg)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}
	return nil
}
