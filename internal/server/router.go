package server

import (
	"net/http"

	"github.com/agentstation/eventmap/internal/server/handlers"
	"github.com/agentstation/eventmap/internal/server/middleware"
	"github.com/agentstation/eventmap/pkg/constants"
)

// setupRouter builds the mux and wraps it in the middleware chain.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	s.registerRoutes(mux, handlers.New(handlers.Deps{
		Catalog:   s.catalog,
		Cache:     s.cache,
		Broker:    s.broker,
		Hub:       s.wsHub,
		SSE:       s.sseBroadcaster,
		Upgrader:  s.upgrader,
		Logger:    s.logger,
		StartTime: s.startTime,
	}))
	return s.applyMiddleware(mux)
}

// registerRoutes mounts the API under the path prefix. The raw event
// collection and /health stay at fixed paths.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Health
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)

	// Raw collection read by remote fetchers
	mux.HandleFunc("GET "+constants.EventsPath, h.HandleRawEvents)

	// Events
	mux.HandleFunc("GET "+prefix+"/events", h.HandleListEvents)
	mux.HandleFunc("GET "+prefix+"/events/{id}", h.HandleGetEvent)
	mux.HandleFunc("GET "+prefix+"/categories", h.HandleCategories)

	// Admin
	mux.HandleFunc("POST "+prefix+"/refresh", h.HandleRefresh)
	mux.HandleFunc("GET "+prefix+"/stats", h.HandleStats)

	// Realtime
	mux.HandleFunc("GET "+prefix+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc("GET "+prefix+"/updates/stream", h.HandleSSE)
}

// applyMiddleware wraps handler, outermost first: recovery, logging,
// CORS, auth, then rate limiting.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config
	chain := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	}

	if cfg.CORSEnabled {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.CORSOrigins
		cors.AllowAll = len(cfg.CORSOrigins) == 0
		chain = append(chain, middleware.CORS(cors))
	}

	if cfg.AuthEnabled {
		auth := middleware.DefaultAuthConfig(cfg.PathPrefix)
		auth.Enabled = true
		auth.APIKey = cfg.APIKey
		if cfg.AuthHeader != "" {
			auth.HeaderName = cfg.AuthHeader
		}
		chain = append(chain, middleware.Auth(auth, s.logger))
	}

	if cfg.RateLimit > 0 {
		chain = append(chain, middleware.RateLimit(middleware.NewRateLimiter(s.ctx, cfg.RateLimit, s.logger)))
	}

	return middleware.Chain(chain...)(handler)
}
