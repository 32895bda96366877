// Package websocket pushes catalog notifications to websocket clients.
package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Message is the JSON frame sent to clients.
type Message struct {
	ID        uint64    `json:"id,omitempty"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Hub tracks connected clients and fans messages out to them. A client
// that cannot keep up is disconnected rather than slowing the others.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool

	queue  chan Message
	logger *zerolog.Logger
}

// NewHub returns a hub; call Run to start delivery.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		queue:   make(chan Message, 256),
		logger:  logger,
	}
}

// Run delivers queued messages until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case msg := <-h.queue:
			for _, c := range h.deliver(msg) {
				h.logger.Warn().Str("client_id", c.id).Msg("WebSocket client too slow, disconnecting")
				h.Unregister(c)
			}
		}
	}
}

// deliver offers msg to every client and returns the ones that were full.
func (h *Hub) deliver(msg Message) (slow []*Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.offer(msg) {
			slow = append(slow, c)
		}
	}
	return slow
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
	}
	clear(h.clients)
	h.closed = true
	h.mu.Unlock()
	h.logger.Info().Msg("WebSocket hub shut down")
}

// Register adds c. It reports false after the hub has shut down.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().Str("client_id", c.id).Int("total_clients", n).Msg("WebSocket client connected")
	return true
}

// Unregister removes c and closes its queue. Repeated calls are no-ops.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info().Str("client_id", c.id).Int("total_clients", n).Msg("WebSocket client disconnected")
	}
}

// Broadcast queues msg for every client. It drops msg when the queue is full.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.queue <- msg:
	default:
		h.logger.Warn().Str("type", msg.Type).Msg("Broadcast queue full, message dropped")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
