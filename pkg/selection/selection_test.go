package selection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/selection"
)

type lookup map[string]*catalog.Event

func (l lookup) Find(id string) (*catalog.Event, bool) {
	e, ok := l[id]
	return e, ok
}

func TestSelect(t *testing.T) {
	e1 := &catalog.Event{ID: "1", Title: "Jazz Concert", Category: "music"}
	in := lookup{"1": e1}

	var tr selection.Tracker
	assert.Nil(t, tr.Selected())
	assert.Equal(t, "", tr.ID())

	changed, ok := tr.Select(&catalog.Event{ID: "1"}, in)
	assert.True(t, ok)
	assert.True(t, changed)
	assert.Same(t, e1, tr.Selected(), "selection points at the catalog's record")

	changed, ok = tr.Select(e1, in)
	assert.True(t, ok)
	assert.False(t, changed, "reselecting is not a change")
}

func TestSelectUnknownRejected(t *testing.T) {
	var tr selection.Tracker
	_, ok := tr.SelectID("42", lookup{})
	assert.False(t, ok)
	assert.Nil(t, tr.Selected())
}

func TestSelectNilClears(t *testing.T) {
	e1 := &catalog.Event{ID: "1", Category: "x"}
	var tr selection.Tracker
	_, ok := tr.Select(e1, lookup{"1": e1})
	require.True(t, ok)

	changed, ok := tr.Select(nil, lookup{})
	assert.True(t, ok)
	assert.True(t, changed)
	assert.Nil(t, tr.Selected())
	assert.False(t, tr.Clear())
}

func TestReconcile(t *testing.T) {
	old := &catalog.Event{ID: "2", Title: "Art Expo", Category: "culture"}
	var tr selection.Tracker
	_, ok := tr.Select(old, lookup{"2": old})
	require.True(t, ok)

	fresh := &catalog.Event{ID: "2", Title: "Art Expo (updated)", Category: "culture"}
	assert.False(t, tr.Reconcile(lookup{"2": fresh}))
	assert.Same(t, fresh, tr.Selected())

	assert.True(t, tr.Reconcile(lookup{"1": &catalog.Event{ID: "1"}}))
	assert.Nil(t, tr.Selected())
	assert.False(t, tr.Reconcile(lookup{}))
}
