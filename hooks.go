package eventmap

import (
	"strings"
	"sync"
)

// ChangeKind is a bit set describing what a mutation changed.
type ChangeKind uint8

const (
	// EventsChanged means a refresh installed new events.
	EventsChanged ChangeKind = 1 << iota
	// CriteriaChanged means the search text or categories changed.
	CriteriaChanged
	// SelectionChanged means the selected record changed, including a
	// refresh dropping it or installing different data under its id.
	SelectionChanged
	// LoadingChanged means the loading flag flipped.
	LoadingChanged
	// RouteWritten means the URL was replaced.
	RouteWritten
)

var changeNames = []struct {
	kind ChangeKind
	name string
}{
	{EventsChanged, "events"},
	{CriteriaChanged, "criteria"},
	{SelectionChanged, "selection"},
	{LoadingChanged, "loading"},
	{RouteWritten, "route"},
}

// Has reports whether every bit of k is set.
func (c ChangeKind) Has(k ChangeKind) bool {
	return c&k == k
}

// String lists the set kinds, such as "events|loading".
func (c ChangeKind) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, n := range changeNames {
		if c.Has(n.kind) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Change is delivered to hooks after a mutation.
type Change struct {
	Kind     ChangeKind
	Snapshot Snapshot
}

// ChangeHook is called after the store state changed.
type ChangeHook func(Change)

// Hooks provides access to change callback registration.
type Hooks interface {
	// OnChange registers fn and returns a function that removes it.
	OnChange(fn ChangeHook) (remove func())
}

// hooks manages change callbacks. Callbacks run synchronously, in
// registration order, without the store lock held.
type hooks struct {
	mu       sync.RWMutex
	next     int
	ids      []int
	onChange map[int]ChangeHook
}

func newHooks() *hooks {
	return &hooks{onChange: make(map[int]ChangeHook)}
}

func (h *hooks) add(fn ChangeHook) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.ids = append(h.ids, id)
	h.onChange[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.onChange[id]; !ok {
			return
		}
		delete(h.onChange, id)
		for i, v := range h.ids {
			if v == id {
				h.ids = append(h.ids[:i], h.ids[i+1:]...)
				break
			}
		}
	}
}

func (h *hooks) trigger(c Change) {
	if c.Kind == 0 {
		return
	}
	h.mu.RLock()
	fns := make([]ChangeHook, 0, len(h.ids))
	for _, id := range h.ids {
		fns = append(fns, h.onChange[id])
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
