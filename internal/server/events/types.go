// Package events fans catalog notifications out to every realtime
// transport (WebSocket, SSE) through one broker.
package events

import "time"

// EventType names a realtime notification.
type EventType string

// Event types.
const (
	// CatalogReloaded is published after a refresh replaced the events.
	CatalogReloaded EventType = "catalog.reloaded"

	// CatalogFailed is published when a refresh failed and the previous
	// events were kept.
	CatalogFailed EventType = "catalog.failed"

	// ClientConnected is published by transports when a client attaches.
	ClientConnected EventType = "client.connected"
)

// Event is one notification. ID is a per-broker sequence number so
// clients can spot gaps.
type Event struct {
	ID        uint64    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
