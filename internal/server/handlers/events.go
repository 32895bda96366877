package handlers

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/agentstation/eventmap/internal/server/cache"
	"github.com/agentstation/eventmap/internal/server/response"
	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/errors"
	"github.com/agentstation/eventmap/pkg/filter"
	"github.com/agentstation/eventmap/pkg/logging"
	"github.com/agentstation/eventmap/pkg/route"
)

// EventsView is the filtered view returned by GET {prefix}/events.
type EventsView struct {
	Events     []*catalog.Event `json:"events"`
	Count      int              `json:"count"`
	Total      int              `json:"total"`
	Categories []string         `json:"categories"`
	Selected   *catalog.Event   `json:"selected"`
	Query      route.State      `json:"query"`
	URL        string           `json:"url"`
}

// HandleRawEvents handles GET /api/events. It writes the bare event array
// rather than the response envelope, since that is the shape remote
// fetchers consume.
func (h *Handlers) HandleRawEvents(w http.ResponseWriter, r *http.Request) {
	snap := h.catalog.Snapshot()
	if snap.Total == 0 && snap.Err != nil {
		logging.FromContext(r.Context()).Warn().Err(snap.Err).Msg("Serving events with no catalog loaded")
		response.ServiceUnavailable(w, "Catalog failed to load")
		return
	}

	events := h.catalog.Events()
	w.Header().Set("Content-Type", "application/json")
	if !snap.FetchedAt.IsZero() {
		w.Header().Set("Last-Modified", snap.FetchedAt.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(events)
}

// HandleListEvents handles GET {prefix}/events?search=&categories=&eventId=.
// The query is decoded with the same rules the store applies to its URL,
// so a deep link and an API call with the same query agree.
func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	state := route.Decode(r.URL.Query())
	canonical := route.Canonical(state.Encode())

	view := cache.Remember(h.cache, cache.Key("events", canonical), func() (EventsView, bool) {
		all := h.catalog.Events()
		filtered := filter.Apply(all, filter.New(state.Search, state.Categories...))

		var selected *catalog.Event
		if state.EventID != "" {
			if i := slices.IndexFunc(all, func(e *catalog.Event) bool { return string(e.ID) == state.EventID }); i >= 0 {
				selected = all[i]
			}
		}
		return EventsView{
			Events:     filtered,
			Count:      len(filtered),
			Total:      len(all),
			Categories: catalog.Categories(all),
			Selected:   selected,
			Query:      state,
			URL:        canonical,
		}, true
	})
	response.OK(w, view)
}

// HandleGetEvent handles GET {prefix}/events/{id}.
func (h *Handlers) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := logging.WithEvent(r.Context(), id)

	e := cache.Remember(h.cache, cache.Key("event", id), func() (*catalog.Event, bool) {
		for _, e := range h.catalog.Events() {
			if string(e.ID) == id {
				return e, true
			}
		}
		return nil, false
	})
	if e == nil {
		logging.FromContext(ctx).Debug().Msg("Event not found")
		response.ErrorFromType(w, errors.NewNotFoundError("event", id))
		return
	}
	response.OK(w, e)
}

// HandleCategories handles GET {prefix}/categories.
func (h *Handlers) HandleCategories(w http.ResponseWriter, _ *http.Request) {
	categories := h.catalog.Categories()
	response.OK(w, map[string]any{
		"categories": categories,
		"count":      len(categories),
	})
}
