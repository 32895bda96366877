// Package sse streams catalog notifications as Server-Sent Events.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	keepAlive    = 30 * time.Second
	clientBuffer = 64
)

// Event is one SSE frame. Data is written as JSON.
type Event struct {
	Event string `json:"event,omitempty"`
	ID    string `json:"id,omitempty"`
	Data  any    `json:"data"`
}

// WriteTo writes the frame, terminated by a blank line.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return 0, err
	}
	var frame []byte
	if e.Event != "" {
		frame = fmt.Appendf(frame, "event: %s\n", e.Event)
	}
	if e.ID != "" {
		frame = fmt.Appendf(frame, "id: %s\n", e.ID)
	}
	frame = fmt.Appendf(frame, "data: %s\n\n", data)
	n, err := w.Write(frame)
	return int64(n), err
}

// Broadcaster fans events out to attached streams. A stream whose buffer
// is full misses the event.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan Event]struct{}
	closed  bool

	queue  chan Event
	logger *zerolog.Logger
}

// NewBroadcaster returns a broadcaster; call Run to start delivery.
func NewBroadcaster(logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan Event]struct{}),
		queue:   make(chan Event, 256),
		logger:  logger,
	}
}

// Run delivers queued events until ctx is done, then closes every stream.
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for c := range b.clients {
				close(c)
			}
			clear(b.clients)
			b.closed = true
			b.mu.Unlock()
			b.logger.Info().Msg("SSE broadcaster shut down")
			return
		case ev := <-b.queue:
			b.fanout(ev)
		}
	}
}

func (b *Broadcaster) fanout(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for c := range b.clients {
		select {
		case c <- ev:
		default:
			b.logger.Warn().Str("event", ev.Event).Msg("SSE client buffer full, event skipped")
		}
	}
}

// Attach registers a stream. After shutdown the returned channel is
// already closed.
func (b *Broadcaster) Attach() chan Event {
	c := make(chan Event, clientBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(c)
		return c
	}
	b.clients[c] = struct{}{}
	b.logger.Info().Int("total_clients", len(b.clients)).Msg("SSE client connected")
	return c
}

// Detach unregisters and closes c. Repeated calls are no-ops.
func (b *Broadcaster) Detach(c chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c)
		b.logger.Info().Int("total_clients", len(b.clients)).Msg("SSE client disconnected")
	}
}

// Broadcast queues ev for every stream; it drops ev when the queue is full.
func (b *Broadcaster) Broadcast(ev Event) {
	select {
	case b.queue <- ev:
	default:
		b.logger.Warn().Str("event", ev.Event).Msg("SSE broadcast queue full, event dropped")
	}
}

// ClientCount returns the number of attached streams.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// ServeHTTP attaches the request as a stream. It opens with a "connected"
// event and sends a comment line when idle so proxies keep the connection.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	c := b.Attach()
	defer b.Detach(c)

	send := func(ev Event) bool {
		if _, err := ev.WriteTo(w); err != nil {
			b.logger.Debug().Err(err).Msg("SSE write failed")
			return false
		}
		return rc.Flush() == nil
	}

	if !send(Event{Event: "connected", Data: map[string]any{
		"message":   "Connected to eventmap updates stream",
		"timestamp": time.Now(),
	}}) {
		return
	}

	idle := time.NewTicker(keepAlive)
	defer idle.Stop()
	for {
		select {
		case ev, ok := <-c:
			if !ok || !send(ev) {
				return
			}
		case <-idle.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil || rc.Flush() != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
