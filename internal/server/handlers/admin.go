package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/agentstation/eventmap/internal/server/response"
	"github.com/agentstation/eventmap/pkg/logging"
)

// HandleRefresh handles POST {prefix}/refresh. It reloads the catalog from
// its source and reports the result; subscribers are notified through the
// store's change hook.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	start := time.Now()
	if err := h.catalog.Refresh(r.Context()); err != nil {
		logger.Warn().Err(err).Msg("Manual refresh failed")
		response.ErrorFromType(w, err)
		return
	}

	snap := h.catalog.Snapshot()
	response.OK(w, map[string]any{
		"status":      "completed",
		"total":       snap.Total,
		"categories":  snap.Categories,
		"fetched_at":  snap.FetchedAt,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// HandleStats handles GET {prefix}/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snap := h.catalog.Snapshot()

	response.OK(w, map[string]any{
		"runtime": map[string]any{
			"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"memory_mb":      memStats.Alloc / 1024 / 1024,
			"memory_sys_mb":  memStats.Sys / 1024 / 1024,
		},
		"catalog": map[string]any{
			"events_total":     snap.Total,
			"categories_total": len(snap.Categories),
			"loading":          snap.Loading,
			"phase":            snap.Phase.String(),
			"fetched_at":       snap.FetchedAt,
		},
		"events": map[string]any{
			"published_total": h.broker.EventsPublished(),
			"dropped_total":   h.broker.EventsDropped(),
			"queue_depth":     h.broker.QueueDepth(),
		},
		"realtime": map[string]any{
			"websocket_clients": h.wsHub.ClientCount(),
			"sse_clients":       h.sseBroadcaster.ClientCount(),
		},
		"cache": h.cache.GetStats(),
	})
}
