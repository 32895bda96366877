package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap"
	"github.com/agentstation/eventmap/internal/server/cache"
	"github.com/agentstation/eventmap/internal/server/events"
	"github.com/agentstation/eventmap/internal/server/events/adapters"
	"github.com/agentstation/eventmap/internal/server/handlers"
	"github.com/agentstation/eventmap/internal/server/sse"
	ws "github.com/agentstation/eventmap/internal/server/websocket"
	"github.com/agentstation/eventmap/pkg/constants"
	"github.com/agentstation/eventmap/pkg/errors"
	"github.com/agentstation/eventmap/pkg/logging"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	catalog        handlers.Catalog
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	startTime      time.Time
	unhook         func()
	stopOnce       sync.Once
}

// New creates a new server over the catalog.
func New(cat handlers.Catalog, cfg Config, logger *zerolog.Logger) (*Server, error) {
	if cat == nil {
		return nil, errors.NewConfigError("server", "a catalog is required", nil)
	}
	logger = logging.OrNop(logger)

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = constants.DefaultCacheTTL
	}
	cfg.PathPrefix = "/" + strings.Trim(cfg.PathPrefix, "/")
	if cfg.PathPrefix == "/" {
		return nil, errors.NewConfigError("server", "path prefix cannot be the root", nil)
	}
	if cfg.AuthEnabled && cfg.APIKey == "" {
		return nil, errors.NewConfigError("server", "auth is enabled but no API key is configured", nil)
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		catalog:        cat,
		cache:          cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg),
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	s.unhook = cat.OnChange(s.onCatalogChange)

	logger.Debug().
		Str("prefix", cfg.PathPrefix).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Server instance created")
	return s, nil
}

// checkOrigin applies the CORS allow-list to websocket upgrades.
func checkOrigin(cfg Config) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || !cfg.CORSEnabled || len(cfg.CORSOrigins) == 0 {
			return true
		}
		for _, o := range cfg.CORSOrigins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// onCatalogChange turns store changes into cache invalidation and
// realtime notifications.
func (s *Server) onCatalogChange(c eventmap.Change) {
	snap := c.Snapshot
	switch {
	case c.Kind.Has(eventmap.EventsChanged):
		s.cache.Clear()
		s.broker.Publish(events.CatalogReloaded, map[string]any{
			"total":      snap.Total,
			"categories": snap.Categories,
			"fetched_at": snap.FetchedAt,
		})
		s.logger.Debug().Int("total", snap.Total).Msg("Catalog reloaded event published")

	case c.Kind.Has(eventmap.LoadingChanged) && !snap.Loading && snap.Err != nil:
		s.broker.Publish(events.CatalogFailed, map[string]any{
			"error": snap.Err.Error(),
			"total": snap.Total,
		})
		s.logger.Debug().Err(snap.Err).Msg("Catalog failed event published")
	}
}

// Start starts background services (broker, WebSocket hub, SSE broadcaster).
func (s *Server) Start() {
	go s.broker.Run(s.ctx)
	go s.wsHub.Run(s.ctx)
	go s.sseBroadcaster.Run(s.ctx)
	s.logger.Debug().Msg("Background services started")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// ListenAndServe starts background services, serves HTTP on the configured
// address and shuts down gracefully when ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return errors.WrapIO("listen", s.config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.Start()

	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return s.ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", ln.Addr().String()).
			Str("prefix", s.config.PathPrefix).
			Msg("API server listening")
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		_ = s.Shutdown(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	// Streams never finish on their own; cancel them before draining.
	_ = s.Shutdown(shutdownCtx)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("HTTP server shutdown incomplete")
		return err
	}
	s.logger.Info().Msg("API server stopped")
	return nil
}

// Shutdown stops background services and detaches from the catalog.
func (s *Server) Shutdown(_ context.Context) error {
	s.stopOnce.Do(func() {
		s.unhook()
		s.cancel()
	})
	return nil
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
