package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// TestHub_RegisterUnregister tests client bookkeeping without a connection.
func TestHub_RegisterUnregister(t *testing.T) {
	logger := zerolog.Nop()
	hub := NewHub(&logger)

	client := NewClient("test-1", hub, nil)
	if !hub.Register(client) {
		t.Fatal("Register returned false on a live hub")
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	hub.Unregister(client)
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", hub.ClientCount())
	}
	if client.Send(Message{Type: "x"}) {
		t.Error("Send on an unregistered client should fail")
	}
}

// TestHub_BroadcastDisconnectsSlowClients tests back-pressure handling.
func TestHub_BroadcastDisconnectsSlowClients(t *testing.T) {
	logger := zerolog.Nop()
	hub := NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := NewClient("slow", hub, nil)
	hub.Register(client)

	for i := 0; i < cap(client.send)+5; i++ {
		hub.Broadcast(Message{Type: "catalog.reloaded"})
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount() != 0 {
		t.Error("slow client was not disconnected")
	}
}

// TestHub_Shutdown tests that registration fails after Run returns.
func TestHub_Shutdown(t *testing.T) {
	logger := zerolog.Nop()
	hub := NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	if hub.Register(NewClient("late", hub, nil)) {
		t.Error("Register should fail after shutdown")
	}
}

// TestHub_EndToEnd tests delivery over a real connection.
func TestHub_EndToEnd(t *testing.T) {
	logger := zerolog.Nop()
	hub := NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	registered := make(chan struct{})
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient("e2e", hub, conn)
		hub.Register(client)
		close(registered)
		go client.WritePump()
		client.ReadPump()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("client never registered")
	}

	hub.Broadcast(Message{ID: 1, Type: "catalog.reloaded", Timestamp: time.Now(), Data: map[string]any{"total": 2}})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "catalog.reloaded" || msg.ID != 1 {
		t.Errorf("message = %+v", msg)
	}
}
