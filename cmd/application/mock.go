package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap"
	"github.com/agentstation/eventmap/pkg/catalog"
)

var _ Application = (*Mock)(nil)

// Mock implements Application for tests. Each method calls the matching
// function field when set and returns a zero value otherwise.
type Mock struct {
	FetcherFunc      func() (catalog.Fetcher, error)
	SettingsValue    Settings
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
}

// Fetcher returns the mock fetcher, or an empty static catalog.
func (m *Mock) Fetcher() (catalog.Fetcher, error) {
	if m.FetcherFunc != nil {
		return m.FetcherFunc()
	}
	return catalog.Static(), nil
}

// NewStore creates a real store over the mock fetcher.
func (m *Mock) NewStore(opts ...eventmap.Option) (*eventmap.Store, error) {
	f, err := m.Fetcher()
	if err != nil {
		return nil, err
	}
	base := []eventmap.Option{
		eventmap.WithFetcher(f),
		eventmap.WithLogger(m.Logger()),
	}
	return eventmap.New(append(base, opts...)...)
}

// Settings returns SettingsValue.
func (m *Mock) Settings() Settings {
	return m.SettingsValue
}

// Logger returns the mock logger or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the mock format or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns the mock version or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}

// Commit returns "test".
func (m *Mock) Commit() string { return "test" }

// Date returns "test".
func (m *Mock) Date() string { return "test" }
