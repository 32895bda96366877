// Package handlers implements the event API endpoints: the raw collection
// and filtered views in events.go, refresh and stats in admin.go, probes
// in health.go and the realtime streams in realtime.go.
package handlers

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap"
	"github.com/agentstation/eventmap/internal/server/cache"
	"github.com/agentstation/eventmap/internal/server/events"
	"github.com/agentstation/eventmap/internal/server/sse"
	ws "github.com/agentstation/eventmap/internal/server/websocket"
	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/logging"
)

// Catalog is the part of eventmap.Store the API reads from.
type Catalog interface {
	Events() []*catalog.Event
	Categories() []string
	Snapshot() eventmap.Snapshot
	Refresh(ctx context.Context) error
	OnChange(fn eventmap.ChangeHook) func()
}

var _ Catalog = (*eventmap.Store)(nil)

// Deps are the collaborators the handlers share with the server.
type Deps struct {
	Catalog   Catalog
	Cache     *cache.Cache
	Broker    *events.Broker
	Hub       *ws.Hub
	SSE       *sse.Broadcaster
	Upgrader  websocket.Upgrader
	Logger    *zerolog.Logger
	StartTime time.Time
}

// Handlers implements every API endpoint.
type Handlers struct {
	catalog        Catalog
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	startTime      time.Time
}

// New builds the handlers. A nil logger disables handler logging.
func New(d Deps) *Handlers {
	if d.StartTime.IsZero() {
		d.StartTime = time.Now()
	}
	return &Handlers{
		catalog:        d.Catalog,
		cache:          d.Cache,
		broker:         d.Broker,
		wsHub:          d.Hub,
		sseBroadcaster: d.SSE,
		upgrader:       d.Upgrader,
		logger:         logging.OrNop(d.Logger),
		startTime:      d.StartTime,
	}
}
