// Package adapters connects the event broker to the realtime transports.
package adapters

import (
	"strconv"

	"github.com/agentstation/eventmap/internal/server/events"
	"github.com/agentstation/eventmap/internal/server/sse"
	ws "github.com/agentstation/eventmap/internal/server/websocket"
)

// NewSSESubscriber forwards broker events to every SSE client. The event
// type becomes the SSE event name and the sequence number its id.
func NewSSESubscriber(b *sse.Broadcaster) events.Subscriber {
	return events.Forward("sse", func(e events.Event) {
		b.Broadcast(sse.Event{
			Event: string(e.Type),
			ID:    strconv.FormatUint(e.ID, 10),
			Data:  e.Data,
		})
	})
}

// NewWebSocketSubscriber forwards broker events to every websocket client.
func NewWebSocketSubscriber(hub *ws.Hub) events.Subscriber {
	return events.Forward("websocket", func(e events.Event) {
		hub.Broadcast(ws.Message{
			ID:        e.ID,
			Type:      string(e.Type),
			Timestamp: e.Timestamp,
			Data:      e.Data,
		})
	})
}
