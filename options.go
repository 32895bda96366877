package eventmap

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/route"
)

// Option configures a Store.
type Option func(*options)

// options holds the store configuration collected from Option values.
type options struct {
	fetcher   catalog.Fetcher
	source    string
	navigator route.Navigator
	logger    *zerolog.Logger
	policy    catalog.Policy

	// auto refresh
	autoRefreshInterval time.Duration
}

func defaults() *options {
	return &options{
		source: "events",
		policy: catalog.LatestIssued,
	}
}

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithFetcher sets the collaborator that loads events. It is required.
func WithFetcher(f catalog.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithSource names the event source in logs and errors.
func WithSource(name string) Option {
	return func(o *options) {
		if name != "" {
			o.source = name
		}
	}
}

// WithNavigator sets the URL the store keeps in sync. Without it the store
// uses an empty in-memory URL.
func WithNavigator(n route.Navigator) Option {
	return func(o *options) {
		o.navigator = n
	}
}

// WithLogger sets the logger. The store is silent by default.
func WithLogger(l *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRefreshPolicy decides how overlapping refreshes resolve.
func WithRefreshPolicy(p catalog.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithAutoRefresh refreshes the catalog every interval until Close.
func WithAutoRefresh(interval time.Duration) Option {
	return func(o *options) {
		o.autoRefreshInterval = interval
	}
}
