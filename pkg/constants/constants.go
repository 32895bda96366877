// Package constants provides shared constants used throughout the eventmap codebase.
// This includes timeouts, file permissions, route parameter names, and server defaults
// that should be consistent across the library, the server, and the CLI.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for requests to the event source
	DefaultHTTPTimeout = 30 * time.Second

	// RefreshTimeout bounds a single catalog refresh issued by the CLI
	RefreshTimeout = 1 * time.Minute

	// ShutdownTimeout is how long the server waits for in-flight requests on shutdown
	ShutdownTimeout = 5 * time.Second

	// WatchDebounce coalesces bursts of file system events into one reload
	WatchDebounce = 250 * time.Millisecond
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Server defaults
const (
	// DefaultListenAddr is the address the server binds to when none is configured
	DefaultListenAddr = ":8080"

	// DefaultPathPrefix is the prefix for versioned API routes
	DefaultPathPrefix = "/api/v1"

	// EventsPath is the unversioned endpoint the fetch collaborator reads
	EventsPath = "/api/events"

	// DefaultCacheTTL is the default lifetime of cached query responses
	DefaultCacheTTL = 5 * time.Minute
)

// Route query parameter names. These form the canonical external
// serialization of filter and selection state.
const (
	// ParamSearch carries the free-text search query
	ParamSearch = "search"

	// ParamCategories carries one value per selected category
	ParamCategories = "categories"

	// ParamEventID carries the stringified id of the selected event
	ParamEventID = "eventId"
)
