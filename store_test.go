package eventmap_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eventmap"
	"github.com/agentstation/eventmap/pkg/catalog"
	pkgerrors "github.com/agentstation/eventmap/pkg/errors"
	"github.com/agentstation/eventmap/pkg/logging"
	"github.com/agentstation/eventmap/pkg/route"
)

func jazzAndExpo() []catalog.Event {
	return []catalog.Event{
		{ID: "1", Title: "Jazz Concert", Description: "Live music", Category: "music", Coords: catalog.Coordinates{Lat: 48.85, Lng: 2.35}},
		{ID: "2", Title: "Art Expo", Description: "Modern painting", Category: "culture", Coords: catalog.Coordinates{Lat: 45.76, Lng: 4.83}},
	}
}

func newNavigator(t *testing.T, raw string) *route.MemoryNavigator {
	t.Helper()
	nav, err := route.NewMemoryNavigator(raw)
	require.NoError(t, err)
	return nav
}

func newStore(t *testing.T, f catalog.Fetcher, opts ...eventmap.Option) *eventmap.Store {
	t.Helper()
	s, err := eventmap.New(append([]eventmap.Option{eventmap.WithFetcher(f)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func selectedID(s *eventmap.Store) string {
	if e := s.SelectedEvent(); e != nil {
		return e.ID.String()
	}
	return ""
}

func filteredIDs(s *eventmap.Store) []string {
	var out []string
	for _, e := range s.FilteredEvents() {
		out = append(out, e.ID.String())
	}
	return out
}

// gate is a fetcher whose calls block until released, one channel per call.
type gate struct {
	mu    sync.Mutex
	calls int
	gates []chan []catalog.Event
}

func newGate(n int) *gate {
	g := &gate{}
	for range n {
		g.gates = append(g.gates, make(chan []catalog.Event, 1))
	}
	return g
}

func (g *gate) Fetch(ctx context.Context) ([]catalog.Event, error) {
	g.mu.Lock()
	ch := g.gates[g.calls]
	g.calls++
	g.mu.Unlock()
	select {
	case events := <-ch:
		return events, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gate) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *gate) release(i int, events []catalog.Event) {
	g.gates[i] <- events
}

func TestNewRequiresFetcher(t *testing.T) {
	_, err := eventmap.New()
	require.Error(t, err)
	var cfgErr *pkgerrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestInitialState(t *testing.T) {
	s := newStore(t, catalog.Static(jazzAndExpo()...))

	assert.True(t, s.Loading(), "loading until the first fetch settles")
	assert.Equal(t, route.Bootstrapping, s.Phase())
	assert.Empty(t, s.FilteredEvents())
	assert.Nil(t, s.SelectedEvent())
	assert.Empty(t, s.Categories())
}

func TestFilterScenario(t *testing.T) {
	s := newStore(t, catalog.Static(jazzAndExpo()...))
	require.NoError(t, s.Refresh(context.Background()))

	assert.False(t, s.Loading())
	assert.Equal(t, []string{"music", "culture"}, s.Categories())
	assert.Equal(t, []string{"1", "2"}, filteredIDs(s))

	s.SetSearch("jazz")
	assert.Equal(t, []string{"1"}, filteredIDs(s))

	s.ClearSearch()
	assert.Equal(t, []string{"1", "2"}, filteredIDs(s))

	s.ToggleCategory("culture")
	assert.Equal(t, []string{"2"}, filteredIDs(s))

	s.ToggleCategory("culture")
	assert.Equal(t, []string{"1", "2"}, filteredIDs(s), "toggling twice restores the list")
	assert.Empty(t, s.Criteria().Categories())
}

func TestDeepLinkedEventLatch(t *testing.T) {
	nav := newNavigator(t, "https://example.com/?eventId=2")
	s := newStore(t, catalog.Static(jazzAndExpo()...), eventmap.WithNavigator(nav))

	assert.Nil(t, s.SelectedEvent(), "not applied before events exist")

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, "2", selectedID(s))
	assert.Equal(t, "Art Expo", s.SelectedEvent().Title)
	assert.Equal(t, 0, nav.Replaces(), "URL already matches state")

	// The latch is spent: a later refresh must not reselect.
	s.ClearSelection()
	assert.Equal(t, "https://example.com/", nav.URL())
	require.NoError(t, s.Refresh(context.Background()))
	assert.Nil(t, s.SelectedEvent())
}

func TestDeepLinkedEventNotFound(t *testing.T) {
	nav := newNavigator(t, "/?eventId=99")
	s := newStore(t, catalog.Static(jazzAndExpo()...), eventmap.WithNavigator(nav))

	require.NoError(t, s.Refresh(context.Background()))
	assert.Nil(t, s.SelectedEvent())
	assert.Equal(t, "/?eventId=99", nav.URL(), "unresolved links are left alone")
}

func TestDeepLinkWaitsForNonEmptyCatalog(t *testing.T) {
	var calls atomic.Int32
	f := catalog.FetcherFunc(func(context.Context) ([]catalog.Event, error) {
		if calls.Add(1) == 1 {
			return nil, nil
		}
		return jazzAndExpo(), nil
	})
	nav := newNavigator(t, "/?eventId=1")
	s := newStore(t, f, eventmap.WithNavigator(nav))

	require.NoError(t, s.Refresh(context.Background()))
	assert.Nil(t, s.SelectedEvent())

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, "1", selectedID(s))
}

func TestBootstrapDoesNotClobberURL(t *testing.T) {
	nav := newNavigator(t, "/?search=jazz&categories=music")
	s := newStore(t, catalog.Static(jazzAndExpo()...), eventmap.WithNavigator(nav))

	crit := s.Criteria()
	assert.Equal(t, "jazz", crit.Search())
	assert.Equal(t, []string{"music"}, crit.Categories())
	assert.Equal(t, 0, nav.Replaces())

	// An intent before the first fetch is held back, then flushed.
	s.SetSearch("concert")
	assert.Equal(t, 0, nav.Replaces())
	assert.Equal(t, "jazz", nav.Query().Get("search"))

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, route.Ready, s.Phase())
	assert.Equal(t, 1, nav.Replaces())
	assert.Equal(t, "concert", nav.Query().Get("search"))
	assert.Equal(t, []string{"music"}, nav.Query()["categories"])
}

func TestURLWrittenOnIntent(t *testing.T) {
	nav := newNavigator(t, "/")
	s := newStore(t, catalog.Static(jazzAndExpo()...), eventmap.WithNavigator(nav))
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 0, nav.Replaces(), "nothing changed, nothing written")

	s.SetSearch("expo")
	s.ToggleCategory("culture")
	require.NoError(t, s.SelectEventByID("2"))

	assert.Equal(t, "categories=culture&eventId=2&search=expo", nav.Query().Encode())
	assert.Equal(t, 3, nav.Replaces())
	assert.Equal(t, 1, nav.Depth(), "writes replace, never push")

	s.SetSearch("expo ")
	assert.Equal(t, 3, nav.Replaces(), "trimmed search is unchanged")
}

func TestURLSuppressedWhileLoading(t *testing.T) {
	g := newGate(2)
	nav := newNavigator(t, "/")
	s := newStore(t, g, eventmap.WithNavigator(nav))

	go g.release(0, jazzAndExpo())
	require.NoError(t, s.Refresh(context.Background()))

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return g.Calls() == 2 }, time.Second, time.Millisecond)
	assert.True(t, s.Loading())

	s.SetSearch("jazz")
	assert.Equal(t, 0, nav.Replaces(), "no URL writes while loading")

	g.release(1, jazzAndExpo())
	require.NoError(t, <-done)
	assert.Equal(t, "search=jazz", nav.Query().Encode())
}

func TestSupersededRefreshDiscarded(t *testing.T) {
	g := newGate(2)
	s := newStore(t, g)

	first := make(chan error, 1)
	go func() { first <- s.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return g.Calls() == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- s.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return g.Calls() == 2 }, time.Second, time.Millisecond)

	g.release(1, []catalog.Event{{ID: "new", Title: "New", Category: "fresh"}})
	require.NoError(t, <-second)
	assert.True(t, s.Loading(), "the older refresh is still in flight")

	g.release(0, []catalog.Event{{ID: "old", Title: "Old", Category: "stale"}})
	err := <-first
	assert.True(t, pkgerrors.IsSuperseded(err))

	assert.False(t, s.Loading())
	assert.Equal(t, []string{"new"}, filteredIDs(s))
	assert.Equal(t, []string{"fresh"}, s.Categories())
	assert.NoError(t, s.LastError())
}

func TestLatestCompletedPolicy(t *testing.T) {
	g := newGate(2)
	s := newStore(t, g, eventmap.WithRefreshPolicy(catalog.LatestCompleted))

	first := make(chan error, 1)
	go func() { first <- s.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return g.Calls() == 1 }, time.Second, time.Millisecond)
	second := make(chan error, 1)
	go func() { second <- s.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return g.Calls() == 2 }, time.Second, time.Millisecond)

	g.release(1, []catalog.Event{{ID: "new", Category: "x"}})
	require.NoError(t, <-second)
	g.release(0, []catalog.Event{{ID: "old", Category: "y"}})
	require.NoError(t, <-first)

	assert.Equal(t, []string{"old"}, filteredIDs(s))
}

func TestStaleSelectionCleared(t *testing.T) {
	var calls atomic.Int32
	f := catalog.FetcherFunc(func(context.Context) ([]catalog.Event, error) {
		if calls.Add(1) == 1 {
			return jazzAndExpo(), nil
		}
		return jazzAndExpo()[1:], nil
	})
	nav := newNavigator(t, "/")
	s := newStore(t, f, eventmap.WithNavigator(nav))
	require.NoError(t, s.Refresh(context.Background()))

	require.NoError(t, s.SelectEventByID("1"))
	assert.Equal(t, "1", nav.Query().Get("eventId"))

	require.NoError(t, s.Refresh(context.Background()))
	assert.Nil(t, s.SelectedEvent())
	assert.Empty(t, nav.Query().Get("eventId"))
}

func TestSurvivingSelectionRepointed(t *testing.T) {
	var calls atomic.Int32
	f := catalog.FetcherFunc(func(context.Context) ([]catalog.Event, error) {
		events := jazzAndExpo()
		if calls.Add(1) > 1 {
			events[0].Title = "Jazz Concert (moved)"
		}
		return events, nil
	})
	s := newStore(t, f)
	require.NoError(t, s.Refresh(context.Background()))
	require.NoError(t, s.SelectEventByID("1"))

	require.NoError(t, s.Refresh(context.Background()))
	require.NotNil(t, s.SelectedEvent())
	assert.Equal(t, "Jazz Concert (moved)", s.SelectedEvent().Title)
}

func TestRefreshReportsSelectionOnlyWhenRecordDiffers(t *testing.T) {
	var calls atomic.Int32
	f := catalog.FetcherFunc(func(context.Context) ([]catalog.Event, error) {
		events := jazzAndExpo()
		if calls.Add(1) > 2 {
			events[0].Title = "Jazz Concert (moved)"
		}
		return events, nil
	})
	s := newStore(t, f)
	require.NoError(t, s.Refresh(context.Background()))
	require.NoError(t, s.SelectEventByID("1"))

	var last eventmap.ChangeKind
	s.OnChange(func(c eventmap.Change) { last = c.Kind })

	require.NoError(t, s.Refresh(context.Background()))
	assert.True(t, last.Has(eventmap.EventsChanged))
	assert.False(t, last.Has(eventmap.SelectionChanged), "same record under the same id")

	require.NoError(t, s.Refresh(context.Background()))
	assert.True(t, last.Has(eventmap.SelectionChanged))
	assert.Equal(t, "Jazz Concert (moved)", s.SelectedEvent().Title)
}

func TestFetchFailure(t *testing.T) {
	tl := logging.NewTestLogger(t)
	var calls atomic.Int32
	f := catalog.FetcherFunc(func(context.Context) ([]catalog.Event, error) {
		if calls.Add(1) == 1 {
			return jazzAndExpo(), nil
		}
		return nil, errors.New("connection refused")
	})
	s := newStore(t, f, eventmap.WithLogger(tl.Logger))
	require.NoError(t, s.Refresh(context.Background()))

	err := s.Refresh(context.Background())
	require.Error(t, err)
	var fetchErr *pkgerrors.FetchError
	assert.ErrorAs(t, err, &fetchErr)

	assert.False(t, s.Loading())
	assert.Len(t, s.FilteredEvents(), 2, "previous events are kept")
	assert.Equal(t, err, s.LastError())
	tl.AssertContains(t, "Catalog refresh failed")
	tl.AssertContains(t, "connection refused")

	// The store stays usable.
	s.SetSearch("expo")
	assert.Equal(t, []string{"2"}, filteredIDs(s))
}

func TestFirstFetchFailureEndsBootstrap(t *testing.T) {
	nav := newNavigator(t, "/?search=jazz")
	s := newStore(t, catalog.FetcherFunc(func(context.Context) ([]catalog.Event, error) {
		return nil, errors.New("offline")
	}), eventmap.WithNavigator(nav))

	require.Error(t, s.Refresh(context.Background()))
	assert.False(t, s.Loading())
	assert.Equal(t, route.Ready, s.Phase())

	s.SetSearch("rock")
	assert.Equal(t, "search=rock", nav.Query().Encode())
}

func TestInvalidPayloadRejected(t *testing.T) {
	s := newStore(t, catalog.Static(catalog.Event{ID: "1", Title: "No category"}))

	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidationError(err))
	assert.Empty(t, s.FilteredEvents())
	assert.False(t, s.Loading())
}

func TestSelectEvent(t *testing.T) {
	s := newStore(t, catalog.Static(jazzAndExpo()...))
	require.NoError(t, s.Refresh(context.Background()))

	// A copy of the record resolves to the catalog's own event.
	ev := jazzAndExpo()[0]
	require.NoError(t, s.SelectEvent(&ev))
	assert.Equal(t, "1", selectedID(s))

	err := s.SelectEvent(&catalog.Event{ID: "404"})
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Equal(t, "1", selectedID(s), "rejected selection leaves the old one")

	require.NoError(t, s.SelectEvent(nil))
	assert.Nil(t, s.SelectedEvent())
}

func TestNavigateExternal(t *testing.T) {
	nav := newNavigator(t, "/")
	s := newStore(t, catalog.Static(jazzAndExpo()...), eventmap.WithNavigator(nav))
	require.NoError(t, s.Refresh(context.Background()))
	require.NoError(t, s.SelectEventByID("1"))
	s.SetSearch("jazz")
	writes := nav.Replaces()

	nav.Push(url.Values{"categories": {"culture"}, "eventId": {"2"}})

	crit := s.Criteria()
	assert.Equal(t, "", crit.Search(), "absent search resets")
	assert.Equal(t, []string{"culture"}, crit.Categories())
	assert.Equal(t, "2", selectedID(s), "catalog is loaded so the link resolves at once")
	assert.Equal(t, writes, nav.Replaces(), "restoring does not write back")

	require.True(t, nav.Back())
	crit = s.Criteria()
	assert.Equal(t, "jazz", crit.Search())
	assert.Empty(t, crit.Categories())
	assert.Equal(t, "1", selectedID(s))
}

func TestNavigateWithoutEventClearsSelection(t *testing.T) {
	s := newStore(t, catalog.Static(jazzAndExpo()...))
	require.NoError(t, s.Refresh(context.Background()))
	require.NoError(t, s.SelectEventByID("2"))

	s.Navigate(url.Values{"search": {"art"}})
	assert.Nil(t, s.SelectedEvent())
	assert.Equal(t, []string{"2"}, filteredIDs(s))
}

func TestNavigateUnknownEventClearsSelection(t *testing.T) {
	nav := newNavigator(t, "/")
	s := newStore(t, catalog.Static(jazzAndExpo()...), eventmap.WithNavigator(nav))
	require.NoError(t, s.Refresh(context.Background()))
	require.NoError(t, s.SelectEventByID("1"))

	nav.Push(url.Values{"eventId": {"99"}})
	assert.Nil(t, s.SelectedEvent(), "a link to a missing event does not keep the old selection")
	assert.Equal(t, "99", nav.Query().Get("eventId"), "the URL is left as navigated")

	s.SetSearch("jazz")
	assert.Equal(t, url.Values{"search": {"jazz"}}, nav.Query())
}

func TestNavigateSameEventKeepsSelection(t *testing.T) {
	s := newStore(t, catalog.Static(jazzAndExpo()...))
	require.NoError(t, s.Refresh(context.Background()))
	require.NoError(t, s.SelectEventByID("1"))

	var kinds []eventmap.ChangeKind
	s.OnChange(func(c eventmap.Change) { kinds = append(kinds, c.Kind) })

	s.Navigate(url.Values{"search": {"jazz"}, "eventId": {"1"}})
	assert.Equal(t, "1", selectedID(s))
	require.Len(t, kinds, 1)
	assert.Zero(t, kinds[0]&eventmap.SelectionChanged)
}

func TestOnChange(t *testing.T) {
	s := newStore(t, catalog.Static(jazzAndExpo()...))

	var mu sync.Mutex
	var kinds []eventmap.ChangeKind
	remove := s.OnChange(func(c eventmap.Change) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, c.Kind)
	})

	require.NoError(t, s.Refresh(context.Background()))
	s.SetSearch("jazz")
	s.SetSearch("jazz")

	mu.Lock()
	require.Len(t, kinds, 2, "no change, no hook")
	assert.True(t, kinds[0].Has(eventmap.EventsChanged|eventmap.LoadingChanged))
	assert.True(t, kinds[1].Has(eventmap.CriteriaChanged))
	assert.True(t, kinds[1].Has(eventmap.RouteWritten))
	mu.Unlock()

	remove()
	s.ClearSearch()
	mu.Lock()
	assert.Len(t, kinds, 2)
	mu.Unlock()
}

func TestSnapshot(t *testing.T) {
	s := newStore(t, catalog.Static(jazzAndExpo()...))
	require.NoError(t, s.Refresh(context.Background()))
	s.SetSearch("expo")
	require.NoError(t, s.SelectEventByID("2"))

	snap := s.Snapshot()
	assert.Len(t, snap.Events, 1)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, "2", snap.Selected.ID.String())
	assert.Equal(t, route.State{Search: "expo", EventID: "2"}, snap.Route)
	assert.False(t, snap.Loading)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestCloseStopsRefresh(t *testing.T) {
	s, err := eventmap.New(eventmap.WithFetcher(catalog.Static(jazzAndExpo()...)))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Refresh(context.Background()), pkgerrors.ErrClosed)
}

func TestAutoRefresh(t *testing.T) {
	var calls atomic.Int32
	f := catalog.FetcherFunc(func(context.Context) ([]catalog.Event, error) {
		calls.Add(1)
		return jazzAndExpo(), nil
	})
	s := newStore(t, f, eventmap.WithAutoRefresh(5*time.Millisecond))

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)

	require.NoError(t, s.AutoRefreshOff())
	assert.Error(t, s.AutoRefreshOn(0))
}

func TestAutoRefreshOnConcurrentCallsLeaveOneLoop(t *testing.T) {
	var calls atomic.Int32
	f := catalog.FetcherFunc(func(context.Context) ([]catalog.Event, error) {
		calls.Add(1)
		return jazzAndExpo(), nil
	})
	s := newStore(t, f)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AutoRefreshOn(time.Millisecond))
		}()
	}
	wg.Wait()
	require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)

	require.NoError(t, s.AutoRefreshOff())
	time.Sleep(20 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, calls.Load(), "no refresh loop survives AutoRefreshOff")
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "none", eventmap.ChangeKind(0).String())
	assert.Equal(t, "events|loading", (eventmap.EventsChanged | eventmap.LoadingChanged).String())
}
