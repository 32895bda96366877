package eventmap

import (
	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/errors"
)

// SetSearch replaces the search text.
func (s *Store) SetSearch(text string) {
	s.commit(func() ChangeKind {
		before := s.criteria.Search()
		s.criteria.SetSearch(text)
		if s.criteria.Search() == before {
			return 0
		}
		return s.criteriaChangedLocked()
	})
}

// ClearSearch empties the search text.
func (s *Store) ClearSearch() {
	s.SetSearch("")
}

// ToggleCategory adds the category to the selection, or removes it if it
// is already selected.
func (s *Store) ToggleCategory(name string) {
	if name == "" {
		return
	}
	s.commit(func() ChangeKind {
		s.criteria.ToggleCategory(name)
		return s.criteriaChangedLocked()
	})
}

// SetCategories replaces the selected categories.
func (s *Store) SetCategories(names ...string) {
	s.commit(func() ChangeKind {
		before := s.criteria.Clone()
		s.criteria.SetCategories(names...)
		if s.criteria.Equal(&before) {
			return 0
		}
		return s.criteriaChangedLocked()
	})
}

func (s *Store) criteriaChangedLocked() ChangeKind {
	s.recomputeLocked()
	s.sync.MarkDirty()
	return CriteriaChanged
}

// SelectEvent selects the catalog's event with e's id. A nil event clears
// the selection. Events not in the catalog are rejected with a
// NotFoundError and leave the selection unchanged.
func (s *Store) SelectEvent(e *catalog.Event) error {
	if e == nil {
		s.ClearSelection()
		return nil
	}
	return s.SelectEventByID(e.ID.String())
}

// SelectEventByID selects the event whose stringified id is id.
func (s *Store) SelectEventByID(id string) error {
	var err error
	s.commit(func() ChangeKind {
		changed, ok := s.tracker.SelectID(id, s.catalog)
		if !ok {
			err = errors.NewNotFoundError("event", id)
			return 0
		}
		// an explicit choice overrides a deep link still waiting for data
		s.sync.DropLatch()
		if !changed {
			return 0
		}
		s.sync.MarkDirty()
		return SelectionChanged
	})
	return err
}

// ClearSelection deselects the current event.
func (s *Store) ClearSelection() {
	s.commit(func() ChangeKind {
		s.sync.DropLatch()
		if !s.tracker.Clear() {
			return 0
		}
		s.sync.MarkDirty()
		return SelectionChanged
	})
}
