package eventmap

import (
	"net/url"
	"slices"
)

// Navigate applies an external URL change, such as a pasted link or
// history navigation. Absent search and categories reset those fields.
// A present eventId is held until the catalog has events to resolve it
// against, and the previous selection is dropped unless it has that id; an
// absent one clears the selection. Navigate never writes the URL itself.
func (s *Store) Navigate(q url.Values) {
	s.commit(func() ChangeKind {
		return s.navigateLocked(q)
	})
}

func (s *Store) navigateLocked(q url.Values) ChangeKind {
	st := s.sync.Restore(q)
	s.logger.Debug().
		Str("query", q.Encode()).
		Str("phase", s.sync.Phase().String()).
		Msg("Route restored")

	var kind ChangeKind
	if s.criteria.Search() != st.Search || !slices.Equal(s.criteria.Categories(), st.Categories) {
		s.criteria.SetSearch(st.Search)
		s.criteria.SetCategories(st.Categories...)
		s.recomputeLocked()
		kind |= CriteriaChanged
	}

	// The selection follows the URL: a different or absent eventId drops
	// it, and only the latch can select again.
	if s.tracker.ID() != st.EventID && s.tracker.Clear() {
		kind |= SelectionChanged
	}
	if st.EventID == "" {
		return kind
	}

	if s.catalogReadyLocked() {
		kind |= s.consumeLatchLocked()
	}
	return kind
}

// catalogReadyLocked reports whether a latched eventId can be resolved now.
func (s *Store) catalogReadyLocked() bool {
	return s.catalog.Settled() && !s.catalog.Loading() && s.catalog.Len() > 0
}

// consumeLatchLocked makes the one attempt to resolve a deep-linked event.
func (s *Store) consumeLatchLocked() ChangeKind {
	id, ok := s.sync.ConsumeLatch()
	if !ok {
		return 0
	}
	changed, found := s.tracker.SelectID(id, s.catalog)
	if !found {
		s.logger.Debug().Str("event_id", id).Msg("Deep-linked event not in catalog")
		return 0
	}
	s.logger.Debug().Str("event_id", id).Msg("Deep-linked event selected")
	if !changed {
		return 0
	}
	s.sync.MarkDirty()
	return SelectionChanged
}

// flushLocked writes owed state to the URL when writes are allowed.
func (s *Store) flushLocked() ChangeKind {
	q, ok := s.sync.Next(s.routeLocked(), s.catalog.Loading())
	if !ok {
		return 0
	}
	if err := s.nav.Replace(s.ctx, q); err != nil {
		s.logger.Warn().Err(err).Str("query", q.Encode()).Msg("Route write failed")
		return 0
	}
	s.sync.Commit(q)
	s.logger.Debug().Str("query", q.Encode()).Msg("Route written")
	return RouteWritten
}

// URL returns the canonical query for the current state, which is what the
// URL holds once writes are allowed.
func (s *Store) URL() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routeLocked().Encode()
}
