package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap/internal/server/events"
	"github.com/agentstation/eventmap/internal/server/sse"
	ws "github.com/agentstation/eventmap/internal/server/websocket"
)

// TestAdaptersImplementSubscriber tests interface satisfaction.
func TestAdaptersImplementSubscriber(t *testing.T) {
	logger := zerolog.Nop()
	var _ events.Subscriber = NewSSESubscriber(sse.NewBroadcaster(&logger))
	var _ events.Subscriber = NewWebSocketSubscriber(ws.NewHub(&logger))
}

// TestSSESubscriber_Send tests that events reach SSE clients.
func TestSSESubscriber_Send(t *testing.T) {
	logger := zerolog.Nop()
	b := sse.NewBroadcaster(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	client := b.Attach()
	defer b.Detach(client)

	sub := NewSSESubscriber(b)
	if err := sub.Send(events.Event{ID: 7, Type: events.CatalogReloaded, Timestamp: time.Now(), Data: map[string]any{"total": 3}}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	select {
	case ev := <-client:
		if ev.Event != string(events.CatalogReloaded) {
			t.Errorf("event = %q", ev.Event)
		}
		if ev.ID != "7" {
			t.Errorf("id = %q, want 7", ev.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	if err := sub.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

// TestWebSocketSubscriber_Send tests that Send never blocks without clients.
func TestWebSocketSubscriber_Send(t *testing.T) {
	logger := zerolog.Nop()
	sub := NewWebSocketSubscriber(ws.NewHub(&logger))

	for i := 0; i < 300; i++ {
		if err := sub.Send(events.Event{ID: uint64(i), Type: events.CatalogReloaded, Timestamp: time.Now()}); err != nil {
			t.Fatalf("Send() error: %v", err)
		}
	}
	if err := sub.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
