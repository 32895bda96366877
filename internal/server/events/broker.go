package events

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const queueSize = 256

// Broker numbers published events and fans them out, in order, to every
// subscriber from a single goroutine.
type Broker struct {
	mu   sync.RWMutex
	subs []Subscriber

	events chan Event
	logger *zerolog.Logger

	seq       atomic.Uint64
	published atomic.Uint64
	dropped   atomic.Uint64
}

// NewBroker returns a broker; call Run to start delivery.
func NewBroker(logger *zerolog.Logger) *Broker {
	return &Broker{events: make(chan Event, queueSize), logger: logger}
}

// Run delivers events until ctx is done, then closes every subscriber.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			b.logger.Info().Msg("Event broker shut down")
			return
		case ev := <-b.events:
			b.dispatch(ev)
		}
	}
}

func (b *Broker) dispatch(ev Event) {
	b.mu.RLock()
	subs := slices.Clone(b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.Send(ev); err != nil {
			b.logger.Warn().Err(err).Str("event_type", string(ev.Type)).Msg("Subscriber rejected event")
		}
	}
	b.logger.Debug().
		Str("event_type", string(ev.Type)).
		Uint64("event_id", ev.ID).
		Int("subscribers", len(subs)).
		Msg("Event dispatched")
}

func (b *Broker) closeAll() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	for _, s := range subs {
		_ = s.Close()
	}
}

// Publish stamps and queues an event. It never blocks: on a full queue
// the event is dropped and counted.
func (b *Broker) Publish(t EventType, data any) {
	ev := Event{ID: b.seq.Add(1), Type: t, Timestamp: time.Now(), Data: data}
	select {
	case b.events <- ev:
		b.published.Add(1)
	default:
		b.dropped.Add(1)
		b.logger.Warn().Str("event_type", string(t)).Msg("Event queue full, event dropped")
	}
}

// Subscribe adds s. It does not wait for Run.
func (b *Broker) Subscribe(s Subscriber) {
	b.mu.Lock()
	b.subs = append(b.subs, s)
	n := len(b.subs)
	b.mu.Unlock()
	b.logger.Debug().Int("total_subscribers", n).Msg("Subscriber registered")
}

// Unsubscribe removes and closes s. Unknown subscribers are ignored.
func (b *Broker) Unsubscribe(s Subscriber) {
	b.mu.Lock()
	i := slices.Index(b.subs, s)
	if i < 0 {
		b.mu.Unlock()
		return
	}
	b.subs = slices.Delete(b.subs, i, i+1)
	n := len(b.subs)
	b.mu.Unlock()

	_ = s.Close()
	b.logger.Debug().Int("total_subscribers", n).Msg("Subscriber unregistered")
}

// SubscriberCount returns the number of subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// EventsPublished returns how many events were queued.
func (b *Broker) EventsPublished() uint64 { return b.published.Load() }

// EventsDropped returns how many events were dropped on a full queue.
func (b *Broker) EventsDropped() uint64 { return b.dropped.Load() }

// QueueDepth returns the number of events waiting for dispatch.
func (b *Broker) QueueDepth() int { return len(b.events) }
