package eventmap

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/errors"
	"github.com/agentstation/eventmap/pkg/filter"
	"github.com/agentstation/eventmap/pkg/logging"
	"github.com/agentstation/eventmap/pkg/route"
	"github.com/agentstation/eventmap/pkg/selection"
)

// Compile-time interface checks to ensure proper implementation.
var (
	_ View    = (*Store)(nil)
	_ Intents = (*Store)(nil)
	_ Hooks   = (*Store)(nil)
)

// View is the read side consumed by list and map renderers.
type View interface {
	// FilteredEvents returns the events passing the current criteria.
	FilteredEvents() []*catalog.Event

	// Loading reports whether a refresh is in flight or none has settled.
	Loading() bool

	// SelectedEvent returns the selected event, or nil.
	SelectedEvent() *catalog.Event

	// Categories returns the distinct categories for building filter UI.
	Categories() []string

	// Snapshot returns a consistent copy of the whole view state.
	Snapshot() Snapshot
}

// Intents are the user actions renderers forward to the store.
type Intents interface {
	SetSearch(text string)
	ToggleCategory(name string)
	ClearSearch()
	SelectEvent(e *catalog.Event) error
}

// Snapshot is a consistent copy of the store state.
type Snapshot struct {
	Events     []*catalog.Event
	Total      int
	Categories []string
	Criteria   filter.Criteria
	Selected   *catalog.Event
	Loading    bool
	Phase      route.Phase
	Route      route.State
	Err        error
	FetchedAt  time.Time
}

// Store owns the event catalog, the filter criteria and the selection, and
// keeps them in sync with a URL. It is safe for concurrent use. The
// filtered view is recomputed on every write, so readers never observe a
// stale result.
type Store struct {
	options *options
	logger  *zerolog.Logger
	hooks   *hooks

	mu       sync.Mutex
	catalog  *catalog.Catalog
	criteria filter.Criteria
	tracker  selection.Tracker
	sync     *route.Sync
	filtered []*catalog.Event
	closed   bool

	nav     route.Navigator
	unwatch func()

	// ctx is canceled by Close and bounds URL writes.
	ctx    context.Context
	cancel context.CancelFunc

	// auto refresh state
	refreshTicker *time.Ticker
	stopCh        chan struct{}
	refreshCancel context.CancelFunc
}

// New creates a store. The initial filter state is read from the
// navigator's current URL; an eventId there is held until the first
// refresh delivers events.
func New(opts ...Option) (*Store, error) {
	o := defaults().apply(opts...)
	if o.fetcher == nil {
		return nil, errors.NewConfigError("store", "a fetcher is required", nil)
	}

	nav := o.navigator
	if nav == nil {
		mem, err := route.NewMemoryNavigator("/")
		if err != nil {
			return nil, err
		}
		nav = mem
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		options: o,
		logger:  logging.OrNop(o.logger),
		hooks:   newHooks(),
		catalog: catalog.New(o.source, o.policy),
		sync:    route.NewSync(),
		nav:     nav,
		ctx:     ctx,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
	}

	s.mu.Lock()
	s.navigateLocked(nav.Query())
	s.mu.Unlock()

	if w, ok := nav.(route.Watcher); ok {
		s.unwatch = w.Watch(s.Navigate)
	}

	if o.autoRefreshInterval > 0 {
		if err := s.AutoRefreshOn(o.autoRefreshInterval); err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

// Close stops auto refresh and navigation watching. Refresh fails with
// errors.ErrClosed afterwards; reads and intents keep working.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	unwatch := s.unwatch
	s.unwatch = nil
	s.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
	err := s.AutoRefreshOff()
	s.cancel()
	return err
}

// OnChange registers a hook called after every state change.
func (s *Store) OnChange(fn ChangeHook) func() {
	return s.hooks.add(fn)
}

// FilteredEvents returns the events passing the current criteria, in
// catalog order.
func (s *Store) FilteredEvents() []*catalog.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*catalog.Event, len(s.filtered))
	copy(out, s.filtered)
	return out
}

// Events returns every event in the catalog.
func (s *Store) Events() []*catalog.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Events()
}

// Loading reports whether a refresh is in flight or none has settled yet.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Loading()
}

// SelectedEvent returns the selected event, or nil.
func (s *Store) SelectedEvent() *catalog.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Selected()
}

// Categories returns the distinct categories as of the last successful refresh.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Categories()
}

// Criteria returns a copy of the current filter criteria.
func (s *Store) Criteria() filter.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria.Clone()
}

// Route returns the route-visible state.
func (s *Store) Route() route.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routeLocked()
}

// Phase returns the route synchronization phase.
func (s *Store) Phase() route.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync.Phase()
}

// LastError returns the failure of the most recent settled refresh.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.LastError()
}

// Snapshot returns a consistent copy of the store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	events := make([]*catalog.Event, len(s.filtered))
	copy(events, s.filtered)
	return Snapshot{
		Events:     events,
		Total:      s.catalog.Len(),
		Categories: s.catalog.Categories(),
		Criteria:   s.criteria.Clone(),
		Selected:   s.tracker.Selected(),
		Loading:    s.catalog.Loading(),
		Phase:      s.sync.Phase(),
		Route:      s.routeLocked(),
		Err:        s.catalog.LastError(),
		FetchedAt:  s.catalog.FetchedAt(),
	}
}

func (s *Store) routeLocked() route.State {
	return route.State{
		Search:     s.criteria.Search(),
		Categories: s.criteria.Categories(),
		EventID:    s.tracker.ID(),
	}
}

// recomputeLocked re-derives the filtered view.
func (s *Store) recomputeLocked() {
	s.filtered = filter.Apply(s.catalog.Events(), s.criteria)
}

// commit runs fn under the lock, flushes any owed URL write, and then
// notifies hooks with the combined change.
func (s *Store) commit(fn func() ChangeKind) ChangeKind {
	s.mu.Lock()
	kind := fn()
	kind |= s.flushLocked()
	var snap Snapshot
	if kind != 0 {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	s.hooks.trigger(Change{Kind: kind, Snapshot: snap})
	return kind
}
