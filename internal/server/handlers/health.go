package handlers

import (
	"net/http"

	"github.com/agentstation/eventmap/internal/server/response"
	"github.com/agentstation/eventmap/pkg/route"
)

// HandleHealth handles GET /health (liveness).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "eventmap-api",
		"version": "v1",
	})
}

// HandleReady handles GET {prefix}/ready. The server is ready once the
// first refresh has settled with events available.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	snap := h.catalog.Snapshot()
	if snap.Phase != route.Ready {
		response.ServiceUnavailable(w, "Catalog is still loading")
		return
	}
	if snap.Total == 0 && snap.Err != nil {
		response.ServiceUnavailable(w, "Catalog failed to load")
		return
	}

	data := map[string]any{
		"status":     "ready",
		"events":     snap.Total,
		"loading":    snap.Loading,
		"fetched_at": snap.FetchedAt,
		"cache": map[string]any{
			"items": h.cache.ItemCount(),
		},
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	}
	if snap.Err != nil {
		data["last_error"] = snap.Err.Error()
	}
	response.OK(w, data)
}
