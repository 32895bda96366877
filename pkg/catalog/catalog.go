// Package catalog holds the event collection, its loading status and the
// categories derived from it, and refreshes the collection from a Fetcher.
//
// A Catalog is not safe for concurrent use. The store serializes access
// and calls Begin and Settle around a fetch it performs without holding
// its lock; Refresh bundles the three steps for single-goroutine callers.
package catalog

import (
	"context"
	"time"

	"github.com/agentstation/eventmap/pkg/errors"
)

// Policy decides which of several overlapping refreshes is authoritative.
type Policy int

const (
	// LatestIssued applies a response only if no newer refresh was issued
	// while it was in flight. Responses from superseded requests are dropped.
	LatestIssued Policy = iota

	// LatestCompleted applies every successful response in completion
	// order, so the last one to finish wins regardless of issue order.
	LatestCompleted
)

// String returns the policy's configuration name.
func (p Policy) String() string {
	switch p {
	case LatestCompleted:
		return "latest-completed"
	default:
		return "latest-issued"
	}
}

// ParsePolicy parses a policy configuration name.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "latest-issued":
		return LatestIssued, nil
	case "latest-completed":
		return LatestCompleted, nil
	default:
		return LatestIssued, errors.NewValidationError("refresh_policy", s, "must be latest-issued or latest-completed")
	}
}

// Ticket identifies one refresh between Begin and Settle.
type Ticket struct {
	Generation uint64
	StartedAt  time.Time
}

// Outcome reports what Settle did with a fetch result.
type Outcome struct {
	// Generation of the settled ticket.
	Generation uint64

	// Applied is true when the result replaced the catalog's events.
	Applied bool

	// Superseded is true when the result was dropped under LatestIssued.
	Superseded bool

	// First is true for the first refresh to settle in the catalog's lifetime.
	First bool

	// Err is the fetch failure, if any. Events are unchanged when set.
	Err error
}

// Catalog is the ordered event collection plus loading state.
type Catalog struct {
	source  string
	policy  Policy
	events  []*Event
	index   map[ID]*Event
	cats    []string
	loading bool

	issued   uint64
	inflight int
	settled  bool

	lastErr   error
	fetchedAt time.Time
}

// New creates an empty catalog. It starts in the loading state because no
// fetch has completed yet.
func New(source string, policy Policy) *Catalog {
	return &Catalog{
		source:  source,
		policy:  policy,
		index:   make(map[ID]*Event),
		loading: true,
	}
}

// Source names where the events come from, for logs and errors.
func (c *Catalog) Source() string {
	return c.source
}

// Policy returns the overlap policy.
func (c *Catalog) Policy() Policy {
	return c.policy
}

// Events returns the events in fetch-response order. The slice is a copy;
// the events themselves are shared and must not be modified.
func (c *Catalog) Events() []*Event {
	out := make([]*Event, len(c.events))
	copy(out, c.events)
	return out
}

// Len returns the number of events.
func (c *Catalog) Len() int {
	return len(c.events)
}

// Categories returns the distinct categories in first-occurrence order, as
// computed when the current events were installed.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.cats))
	copy(out, c.cats)
	return out
}

// Loading reports whether a refresh is in flight, or none has settled yet.
func (c *Catalog) Loading() bool {
	return c.loading
}

// Settled reports whether any refresh has settled.
func (c *Catalog) Settled() bool {
	return c.settled
}

// LastError returns the failure of the most recent settled refresh, or nil
// if it succeeded.
func (c *Catalog) LastError() error {
	return c.lastErr
}

// FetchedAt returns when events were last installed.
func (c *Catalog) FetchedAt() time.Time {
	return c.fetchedAt
}

// Find returns the event whose stringified id equals id.
func (c *Catalog) Find(id string) (*Event, bool) {
	e, ok := c.index[ID(id)]
	return e, ok
}

// Begin marks a refresh as started and returns its ticket.
func (c *Catalog) Begin() Ticket {
	c.issued++
	c.inflight++
	c.loading = true
	return Ticket{Generation: c.issued, StartedAt: time.Now()}
}

// Settle records the result of the fetch started by t. On success the
// events and categories are replaced wholesale, unless the policy says
// the result is stale. On failure the events are kept. Loading clears
// once no refresh is in flight.
func (c *Catalog) Settle(t Ticket, events []Event, fetchErr error) Outcome {
	out := Outcome{Generation: t.Generation, First: !c.settled}

	c.inflight--
	if c.inflight < 0 {
		c.inflight = 0
	}
	c.settled = true
	c.loading = c.inflight > 0

	if c.policy == LatestIssued && t.Generation != c.issued {
		out.Superseded = true
		out.Err = errors.WrapFetch(c.source, t.Generation, errors.ErrSuperseded)
		return out
	}

	if fetchErr != nil {
		out.Err = errors.WrapFetch(c.source, t.Generation, fetchErr)
		c.lastErr = out.Err
		return out
	}

	c.install(events)
	c.lastErr = nil
	out.Applied = true
	return out
}

// Refresh fetches and installs events in one step.
func (c *Catalog) Refresh(ctx context.Context, f Fetcher) Outcome {
	t := c.Begin()
	events, err := f.Fetch(ctx)
	return c.Settle(t, events, err)
}

// install replaces the events and recomputes categories.
func (c *Catalog) install(events []Event) {
	owned := make([]Event, len(events))
	copy(owned, events)

	c.events = make([]*Event, len(owned))
	c.index = make(map[ID]*Event, len(owned))
	for i := range owned {
		e := &owned[i]
		c.events[i] = e
		if _, dup := c.index[e.ID]; !dup {
			c.index[e.ID] = e
		}
	}
	c.cats = Categories(c.events)
	c.fetchedAt = time.Now()
}

// Categories returns the distinct categories of events in first-occurrence order.
func Categories(events []*Event) []string {
	seen := make(map[string]struct{}, len(events))
	cats := make([]string, 0)
	for _, e := range events {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		cats = append(cats, e.Category)
	}
	return cats
}
