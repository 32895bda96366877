// Package app wires configuration, logging and the event source into the
// eventmap CLI commands.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap"
	"github.com/agentstation/eventmap/cmd/application"
	"github.com/agentstation/eventmap/internal/fetch"
	"github.com/agentstation/eventmap/internal/transport"
	"github.com/agentstation/eventmap/pkg/catalog"
)

var _ application.Application = (*App)(nil)

// App holds the configuration and dependencies shared by commands.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger

	mu      sync.Mutex
	fetcher catalog.Fetcher
	stores  []*eventmap.Store
}

// New creates an App. The config file is searched for in the standard
// locations unless WithConfigFile or WithConfig is given.
func New(version, commit, date string, opts ...Option) (*App, error) {
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.config == nil {
		cfg, err := LoadConfig("")
		if err != nil {
			return nil, err
		}
		a.config = cfg
	}
	if a.logger == nil {
		logger := NewLogger(a.config)
		a.logger = &logger
	}
	return a, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// Settings returns the configuration commands read.
func (a *App) Settings() application.Settings {
	c := a.config
	return application.Settings{
		Source:      c.Source(),
		CatalogFile: c.CatalogFile,
		Listen:      c.Listen,
		PathPrefix:  c.PathPrefix,
		CacheTTL:    c.CacheTTL,
		CORSOrigins: c.CORSOrigins,
		APIKey:      c.APIKey,
		RateLimit:   c.RateLimit,
		Watch:       c.Watch,
		AutoRefresh: c.AutoRefresh,
	}
}

// Fetcher returns the event source, creating it on first use.
func (a *App) Fetcher() (catalog.Fetcher, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fetcher != nil {
		return a.fetcher, nil
	}

	f, err := a.buildFetcher()
	if err != nil {
		return nil, err
	}
	a.fetcher = f
	return f, nil
}

func (a *App) buildFetcher() (catalog.Fetcher, error) {
	f, err := fetch.Source(a.config.Source(), a.logger)
	if err != nil {
		return nil, err
	}
	if h, ok := f.(*fetch.HTTPFetcher); ok && a.config.SourceToken != "" {
		client := transport.New(transport.BearerAuth{Token: a.config.SourceToken}, a.logger)
		return fetch.NewHTTP(h.Endpoint(), fetch.WithClient(client), fetch.WithHTTPLogger(a.logger))
	}
	return f, nil
}

// NewStore creates a store over the configured source. Stores are closed
// by Shutdown if the command has not closed them.
func (a *App) NewStore(opts ...eventmap.Option) (*eventmap.Store, error) {
	f, err := a.Fetcher()
	if err != nil {
		return nil, err
	}
	policy, err := catalog.ParsePolicy(a.config.RefreshPolicy)
	if err != nil {
		return nil, err
	}

	base := []eventmap.Option{
		eventmap.WithFetcher(f),
		eventmap.WithSource(a.config.Source()),
		eventmap.WithRefreshPolicy(policy),
		eventmap.WithLogger(a.logger),
	}
	store, err := eventmap.New(append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.stores = append(a.stores, store)
	a.mu.Unlock()
	return store, nil
}

// Shutdown closes every store created through the App.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	stores := a.stores
	a.stores = nil
	a.mu.Unlock()

	for _, s := range stores {
		if err := s.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close store during shutdown")
		}
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets the configuration instead of loading it.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithConfigFile loads configuration from path.
func WithConfigFile(path string) Option {
	return func(a *App) error {
		cfg, err := LoadConfig(path)
		if err != nil {
			return err
		}
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithFetcher sets the event source directly, bypassing configuration.
func WithFetcher(f catalog.Fetcher) Option {
	return func(a *App) error {
		a.fetcher = f
		return nil
	}
}
