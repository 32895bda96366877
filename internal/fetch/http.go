// Package fetch provides catalog.Fetcher implementations for remote
// event sources and local catalog files.
package fetch

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap/internal/transport"
	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/constants"
	"github.com/agentstation/eventmap/pkg/errors"
	"github.com/agentstation/eventmap/pkg/logging"
)

var _ catalog.Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher reads the full event array from GET <base>/api/events.
type HTTPFetcher struct {
	endpoint string
	client   *transport.Client
	logger   *zerolog.Logger
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithClient sets the transport client.
func WithClient(c *transport.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// WithHTTPLogger sets the fetcher's logger.
func WithHTTPLogger(l *zerolog.Logger) HTTPOption {
	return func(f *HTTPFetcher) {
		f.logger = l
	}
}

// NewHTTP creates a fetcher for the event source at base. A base that
// already ends in the events path is used as is.
func NewHTTP(base string, opts ...HTTPOption) (*HTTPFetcher, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewValidationError("source_url", base, "must be an absolute http(s) URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.NewValidationError("source_url", base, "scheme must be http or https")
	}
	if !strings.HasSuffix(u.Path, constants.EventsPath) {
		u.Path = strings.TrimRight(u.Path, "/") + constants.EventsPath
	}

	f := &HTTPFetcher{endpoint: u.String()}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.OrNop(f.logger)
	if f.client == nil {
		f.client = transport.New(nil, f.logger)
	}
	return f, nil
}

// Endpoint returns the URL the fetcher reads.
func (f *HTTPFetcher) Endpoint() string {
	return f.endpoint
}

// Fetch implements catalog.Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]catalog.Event, error) {
	var events []catalog.Event
	if err := f.client.GetJSON(ctx, f.endpoint, &events); err != nil {
		return nil, err
	}
	f.logger.Debug().
		Str("endpoint", f.endpoint).
		Int("events", len(events)).
		Msg("Fetched events")
	return events, nil
}
