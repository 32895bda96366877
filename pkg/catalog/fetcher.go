package catalog

import "context"

// Fetcher reads the full event collection from an external source.
// There is no pagination or server-side filtering.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Event, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]Event, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context) ([]Event, error) {
	return f(ctx)
}

// Static returns a Fetcher that always yields a copy of events.
func Static(events ...Event) Fetcher {
	return FetcherFunc(func(context.Context) ([]Event, error) {
		out := make([]Event, len(events))
		copy(out, events)
		return out, nil
	})
}
