// Package selection tracks the currently selected event.
package selection

import (
	"github.com/agentstation/eventmap/pkg/catalog"
)

// Lookup resolves an event id against the current catalog.
type Lookup interface {
	Find(id string) (*catalog.Event, bool)
}

// Tracker holds at most one selected event. A non-nil selection always
// points at a record present in the catalog it was last reconciled with.
type Tracker struct {
	selected *catalog.Event
}

// Selected returns the selected event, or nil.
func (t *Tracker) Selected() *catalog.Event {
	return t.selected
}

// ID returns the selected event's id, or "" when nothing is selected.
func (t *Tracker) ID() string {
	if t.selected == nil {
		return ""
	}
	return t.selected.ID.String()
}

// Select selects the catalog's record for e.ID. It reports whether the
// selection changed. Events the catalog does not hold are rejected.
func (t *Tracker) Select(e *catalog.Event, in Lookup) (changed bool, ok bool) {
	if e == nil {
		return t.Clear(), true
	}
	return t.SelectID(e.ID.String(), in)
}

// SelectID selects the event with the given stringified id.
func (t *Tracker) SelectID(id string, in Lookup) (changed bool, ok bool) {
	found, ok := in.Find(id)
	if !ok {
		return false, false
	}
	if t.selected == found {
		return false, true
	}
	t.selected = found
	return true, true
}

// Clear drops the selection and reports whether there was one.
func (t *Tracker) Clear() bool {
	if t.selected == nil {
		return false
	}
	t.selected = nil
	return true
}

// Reconcile re-resolves the selection after the catalog's events were
// replaced. A surviving id is re-pointed at the new record; a dropped id
// clears the selection. It reports whether the selected id was lost.
func (t *Tracker) Reconcile(in Lookup) (cleared bool) {
	if t.selected == nil {
		return false
	}
	found, ok := in.Find(t.selected.ID.String())
	if !ok {
		t.selected = nil
		return true
	}
	t.selected = found
	return false
}
