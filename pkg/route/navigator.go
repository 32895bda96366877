package route

import (
	"context"
	"net/url"
	"slices"
	"sync"

	"github.com/agentstation/eventmap/pkg/errors"
)

// Navigator is the external URL the store keeps in sync with its state.
type Navigator interface {
	// Query returns the current query parameters.
	Query() url.Values

	// Replace swaps the current query without adding a history entry.
	// Replace is called while the store holds its lock and must not call
	// back into the store.
	Replace(ctx context.Context, q url.Values) error
}

// Watcher is implemented by navigators that can report navigation the
// store did not cause, such as back/forward or a pasted link.
type Watcher interface {
	Watch(fn func(q url.Values)) (cancel func())
}

// MemoryNavigator is an in-process URL with a history stack.
// It is safe for concurrent use.
type MemoryNavigator struct {
	mu        sync.Mutex
	base      url.URL
	history   []string
	replaces  int
	listeners map[int]func(url.Values)
	nextID    int
}

// NewMemoryNavigator starts at rawURL, which may be a full URL or just a
// query string.
func NewMemoryNavigator(rawURL string) (*MemoryNavigator, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.NewParseError("url", "", "invalid navigator URL", err)
	}
	raw := u.RawQuery
	u.RawQuery = ""
	u.Fragment = ""
	return &MemoryNavigator{
		base:      *u,
		history:   []string{raw},
		listeners: make(map[int]func(url.Values)),
	}, nil
}

// Query implements Navigator.
func (n *MemoryNavigator) Query() url.Values {
	n.mu.Lock()
	defer n.mu.Unlock()
	q, _ := url.ParseQuery(n.history[len(n.history)-1])
	return q
}

// Replace implements Navigator. Listeners are not notified.
func (n *MemoryNavigator) Replace(ctx context.Context, q url.Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.history[len(n.history)-1] = q.Encode()
	n.replaces++
	return nil
}

// Push navigates to q as a new history entry and notifies listeners.
func (n *MemoryNavigator) Push(q url.Values) {
	n.mu.Lock()
	n.history = append(n.history, q.Encode())
	fns := n.snapshotListeners()
	n.mu.Unlock()
	notify(fns, q)
}

// Back returns to the previous history entry and notifies listeners.
// It reports false at the start of history.
func (n *MemoryNavigator) Back() bool {
	n.mu.Lock()
	if len(n.history) < 2 {
		n.mu.Unlock()
		return false
	}
	n.history = n.history[:len(n.history)-1]
	q, _ := url.ParseQuery(n.history[len(n.history)-1])
	fns := n.snapshotListeners()
	n.mu.Unlock()
	notify(fns, q)
	return true
}

// Watch implements Watcher.
func (n *MemoryNavigator) Watch(fn func(url.Values)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

// URL returns the current full URL.
func (n *MemoryNavigator) URL() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	u := n.base
	u.RawQuery = n.history[len(n.history)-1]
	return u.String()
}

// Replaces returns how many times Replace has succeeded.
func (n *MemoryNavigator) Replaces() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.replaces
}

// Depth returns the number of history entries.
func (n *MemoryNavigator) Depth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.history)
}

func (n *MemoryNavigator) snapshotListeners() []func(url.Values) {
	ids := make([]int, 0, len(n.listeners))
	for id := range n.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(url.Values), len(ids))
	for i, id := range ids {
		fns[i] = n.listeners[id]
	}
	return fns
}

func notify(fns []func(url.Values), q url.Values) {
	for _, fn := range fns {
		fn(q)
	}
}
