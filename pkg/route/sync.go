package route

import (
	"net/url"
)

// Phase gates state to URL writes.
type Phase int

const (
	// Bootstrapping is the phase before the first fetch settles. The URL
	// has been read but state has not been loaded, so it must not be
	// written back.
	Bootstrapping Phase = iota

	// Ready allows writes. It is never left once entered.
	Ready
)

// String returns the phase name.
func (p Phase) String() string {
	if p == Ready {
		return "ready"
	}
	return "bootstrapping"
}

// Sync tracks both directions of the route synchronization: the deferred
// eventId from the URL, the phase guard, and whether state has changed
// since the URL was last written. Sync is not safe for concurrent use.
type Sync struct {
	phase   Phase
	latch   string
	latched bool
	last    string
	dirty   bool
}

// NewSync returns a guard in the Bootstrapping phase.
func NewSync() *Sync {
	return &Sync{}
}

// Phase returns the current phase.
func (s *Sync) Phase() Phase {
	return s.phase
}

// Restore decodes an incoming URL query. A present eventId replaces the
// latch; an absent one drops it. The query becomes the last known route
// and any owed write is forgotten, so restoring alone never causes a write.
func (s *Sync) Restore(q url.Values) State {
	st := Decode(q)
	if st.EventID != "" {
		s.latch, s.latched = st.EventID, true
	} else {
		s.DropLatch()
	}
	s.last = q.Encode()
	s.dirty = false
	return st
}

// Latched returns the pending eventId, if any.
func (s *Sync) Latched() (string, bool) {
	return s.latch, s.latched
}

// ConsumeLatch returns the pending eventId and clears it. The latch is
// one-shot: it is cleared whether or not the caller finds the event.
func (s *Sync) ConsumeLatch() (string, bool) {
	id, ok := s.latch, s.latched
	s.DropLatch()
	return id, ok
}

// DropLatch discards the pending eventId.
func (s *Sync) DropLatch() {
	s.latch, s.latched = "", false
}

// MarkReady enters the Ready phase and reports whether this call did so.
func (s *Sync) MarkReady() bool {
	if s.phase == Ready {
		return false
	}
	s.phase = Ready
	return true
}

// MarkDirty records that route-visible state changed.
func (s *Sync) MarkDirty() {
	s.dirty = true
}

// Dirty reports whether a write is owed.
func (s *Sync) Dirty() bool {
	return s.dirty
}

// Suppressed reports whether writes are currently held back.
func (s *Sync) Suppressed(loading bool) bool {
	return s.phase != Ready || loading
}

// Next returns the query to write for st, if a write is owed and allowed.
// A write that would reproduce the last known route is skipped and the
// dirty flag is cleared.
func (s *Sync) Next(st State, loading bool) (url.Values, bool) {
	if !s.dirty || s.Suppressed(loading) {
		return nil, false
	}
	q := st.Encode()
	if q.Encode() == s.last {
		s.dirty = false
		return nil, false
	}
	return q, true
}

// Commit records that q was written to the URL.
func (s *Sync) Commit(q url.Values) {
	s.last = q.Encode()
	s.dirty = false
}

// Last returns the encoded last known route query.
func (s *Sync) Last() string {
	return s.last
}
