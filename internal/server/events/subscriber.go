package events

// Subscriber receives every event the broker publishes. Send must not
// block; slow transports drop or buffer on their own side.
type Subscriber interface {
	Send(Event) error
	Close() error
}

// Forward returns a Subscriber that passes each event to send. Close is a
// no-op. Each call returns a distinct subscriber.
func Forward(name string, send func(Event)) Subscriber {
	return &forwarder{name: name, send: send}
}

type forwarder struct {
	name string
	send func(Event)
}

func (f *forwarder) Send(e Event) error {
	f.send(e)
	return nil
}

func (f *forwarder) Close() error { return nil }

func (f *forwarder) String() string { return f.name }
