// Package server provides the HTTP API over an event catalog.
//
// The server reads from an eventmap.Store and adds:
//
//   - the full event array at /api/events, which is what remote fetchers read
//   - a filtered view at {prefix}/events driven by the same search,
//     categories and eventId parameters the store keeps in its URL
//   - realtime catalog.reloaded notifications over WebSocket and SSE
//
// Usage:
//
//	cfg := server.DefaultConfig()
//	srv, err := server.New(store, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return srv.ListenAndServe(ctx)
package server

//go:generate gomarkdoc --output README.md .
