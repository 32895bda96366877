// Package serve implements the serve command.
package serve

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/eventmap"
	"github.com/agentstation/eventmap/cmd/application"
	"github.com/agentstation/eventmap/internal/fetch"
	"github.com/agentstation/eventmap/internal/server"
	"github.com/agentstation/eventmap/internal/watch"
	"github.com/agentstation/eventmap/pkg/constants"
	"github.com/agentstation/eventmap/pkg/errors"
)

// NewCommand creates the serve command. Flags left unset fall back to the
// configuration, so an explicit flag wins over env and config file.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Serve the event catalog over HTTP",
		Long: `Serve loads the catalog and exposes it over HTTP:

  GET  /api/events                     full event array
  GET  {prefix}/events                 filtered view (?search=&categories=&eventId=)
  GET  {prefix}/events/{id}            one event
  GET  {prefix}/categories             distinct categories
  POST {prefix}/refresh                reload the catalog
  GET  {prefix}/updates/stream         server-sent events
  GET  {prefix}/updates/ws             websocket

With --watch and a catalog file, edits to the file reload the catalog and
push a catalog.reloaded event to stream and websocket clients.`,
		Example: `  eventmap serve --file ./events.yaml --watch
  eventmap serve --source https://events.example.com --listen :9090
  eventmap serve --file ./events.json --api-key secret --rate-limit 120`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, app)
		},
	}

	cmd.Flags().String("listen", constants.DefaultListenAddr, "Address to listen on")
	cmd.Flags().String("prefix", constants.DefaultPathPrefix, "API path prefix")
	cmd.Flags().Duration("cache-ttl", constants.DefaultCacheTTL, "Lifetime of cached query responses")
	cmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (comma-separated, * for any)")
	cmd.Flags().String("api-key", "", "Require this key in the X-API-Key header")
	cmd.Flags().Int("rate-limit", 0, "Requests per minute per IP (0 to disable)")
	cmd.Flags().Bool("watch", false, "Reload the catalog file when it changes")
	cmd.Flags().Duration("auto-refresh", 0, "Re-fetch the source on this interval (0 to disable)")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, app application.Application) error {
	logger := app.Logger()
	settings := resolve(cmd, app.Settings())

	cfg, err := parseConfig(settings)
	if err != nil {
		return err
	}

	var opts []eventmap.Option
	if d := settings.AutoRefresh; d > 0 {
		opts = append(opts, eventmap.WithAutoRefresh(d))
	}
	store, err := app.NewStore(opts...)
	if err != nil {
		return err
	}
	defer store.Close()

	// A failed first load is served as 503 until a refresh succeeds.
	loadCtx, cancel := context.WithTimeout(ctx, constants.RefreshTimeout)
	if err := store.Refresh(loadCtx); err != nil {
		logger.Error().Err(err).Msg("Initial catalog load failed")
	}
	cancel()

	srv, err := server.New(store, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = srv.Shutdown(context.Background()) }()

	var w *watch.Watcher
	if settings.Watch {
		if w, err = newWatcher(app, store); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	if w != nil {
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Bool("auth", cfg.AuthEnabled).
		Int("rate_limit", cfg.RateLimit).
		Msg("Starting API server")

	return g.Wait()
}

// newWatcher reloads the store when the catalog file changes.
func newWatcher(app application.Application, store *eventmap.Store) (*watch.Watcher, error) {
	fetcher, err := app.Fetcher()
	if err != nil {
		return nil, err
	}
	file, ok := fetcher.(*fetch.FileFetcher)
	if !ok {
		return nil, errors.NewConfigError("serve", "--watch needs a catalog file source", nil)
	}

	logger := app.Logger()
	return watch.New(file.Path(), func(ctx context.Context) {
		if err := store.Refresh(ctx); err != nil {
			logger.Warn().Err(err).Str("file", file.Path()).Msg("Reload failed; keeping previous catalog")
		}
	}, watch.WithLogger(logger)), nil
}

// resolve overlays explicitly set flags on the configured settings.
func resolve(cmd *cobra.Command, s application.Settings) application.Settings {
	f := cmd.Flags()
	if f.Changed("listen") || s.Listen == "" {
		s.Listen = mustGetString(cmd, "listen")
	}
	if f.Changed("prefix") || s.PathPrefix == "" {
		s.PathPrefix = mustGetString(cmd, "prefix")
	}
	if f.Changed("cache-ttl") || s.CacheTTL <= 0 {
		s.CacheTTL = mustGetDuration(cmd, "cache-ttl")
	}
	if f.Changed("cors-origins") {
		s.CORSOrigins = mustGetStringSlice(cmd, "cors-origins")
	}
	if f.Changed("api-key") {
		s.APIKey = mustGetString(cmd, "api-key")
	}
	if f.Changed("rate-limit") {
		s.RateLimit = mustGetInt(cmd, "rate-limit")
	}
	if f.Changed("watch") {
		s.Watch = mustGetBool(cmd, "watch")
	}
	if f.Changed("auto-refresh") {
		s.AutoRefresh = mustGetDuration(cmd, "auto-refresh")
	}
	return s
}

// parseConfig builds the server configuration.
func parseConfig(s application.Settings) (server.Config, error) {
	cfg := server.DefaultConfig()

	host, port, err := splitListen(s.Listen)
	if err != nil {
		return cfg, err
	}
	cfg.Host, cfg.Port = host, port
	cfg.PathPrefix = s.PathPrefix
	if s.CacheTTL > 0 {
		cfg.CacheTTL = s.CacheTTL
	}
	if len(s.CORSOrigins) > 0 {
		cfg.CORSEnabled = true
		cfg.CORSOrigins = s.CORSOrigins
	}
	if s.APIKey != "" {
		cfg.AuthEnabled = true
		cfg.APIKey = s.APIKey
	}
	if s.RateLimit < 0 {
		return cfg, errors.NewValidationError("rate_limit", s.RateLimit, "must not be negative")
	}
	cfg.RateLimit = s.RateLimit
	return cfg, nil
}

// splitListen parses host:port; an empty host binds every interface.
func splitListen(addr string) (string, int, error) {
	if addr == "" {
		addr = constants.DefaultListenAddr
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, errors.NewValidationError("listen", addr, "must be host:port")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, errors.NewValidationError("listen", addr, "port out of range")
	}
	return host, port, nil
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetStringSlice(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetDuration(cmd *cobra.Command, name string) time.Duration {
	val, err := cmd.Flags().GetDuration(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
