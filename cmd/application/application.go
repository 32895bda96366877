// Package application defines what eventmap commands need from the
// running application.
//
// Commands accept this interface rather than the concrete App so they can
// be tested with Mock:
//
//	mock := &application.Mock{
//	    FetcherFunc: func() (catalog.Fetcher, error) {
//	        return catalog.Static(events...), nil
//	    },
//	}
//	cmd := list.NewCommand(mock)
package application

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap"
	"github.com/agentstation/eventmap/pkg/catalog"
)

// Application provides the dependencies commands use.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Fetcher returns the configured event source.
	Fetcher() (catalog.Fetcher, error)

	// NewStore creates a store over the configured source. Extra options
	// are applied after the configured ones.
	NewStore(opts ...eventmap.Option) (*eventmap.Store, error)

	// Settings returns the resolved configuration.
	Settings() Settings

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, wide, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string
}

// Settings is the part of the configuration commands read.
type Settings struct {
	// Source is the event source: an http(s) URL or a catalog file path.
	Source string

	// CatalogFile is the file served and watched by `serve`.
	CatalogFile string

	// Listen is the server bind address.
	Listen string

	// PathPrefix is the prefix for versioned API routes.
	PathPrefix string

	// CacheTTL is the lifetime of cached query responses.
	CacheTTL time.Duration

	// CORSOrigins enables CORS for these origins when non-empty.
	CORSOrigins []string

	// APIKey enables key authentication on the server when set.
	APIKey string

	// RateLimit is the per-IP request budget per minute; 0 disables it.
	RateLimit int

	// Watch reloads the catalog file when it changes.
	Watch bool

	// AutoRefresh re-fetches the source on this interval; 0 disables it.
	AutoRefresh time.Duration
}
