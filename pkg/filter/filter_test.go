package filter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/filter"
)

func twoEvents() []*catalog.Event {
	return []*catalog.Event{
		{ID: "1", Title: "Jazz Concert", Description: "Live music by the river", Category: "music"},
		{ID: "2", Title: "Art Expo", Description: "Modern painting", Category: "culture"},
	}
}

func ids(events []*catalog.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID.String()
	}
	return out
}

func TestApplyScenario(t *testing.T) {
	events := twoEvents()
	var c filter.Criteria

	assert.Equal(t, []string{"1", "2"}, ids(filter.Apply(events, c)))

	c.SetSearch("jazz")
	assert.Equal(t, []string{"1"}, ids(filter.Apply(events, c)))

	c.ClearSearch()
	c.SetCategories("culture")
	assert.Equal(t, []string{"2"}, ids(filter.Apply(events, c)))

	c.SetCategories()
	c.SetSearch("jazz")
	c.ClearSearch()
	assert.Equal(t, []string{"1", "2"}, ids(filter.Apply(events, c)), "clearing search restores the full list")
}

func TestApplySearch(t *testing.T) {
	events := twoEvents()

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"empty matches all", "", []string{"1", "2"}},
		{"case insensitive", "JAZZ", []string{"1"}},
		{"trimmed", "  expo  ", []string{"2"}},
		{"description", "painting", []string{"2"}},
		{"substring across both", "r", []string{"1", "2"}},
		{"no match", "opera", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := filter.New(tt.search)
			assert.Equal(t, tt.want, ids(filter.Apply(events, c)))
		})
	}
}

func TestApplyUnicodeLowerCase(t *testing.T) {
	events := []*catalog.Event{
		{ID: "1", Title: "Straße Fest", Category: "x"},
		{ID: "2", Title: "ÉTÉ musical", Category: "x"},
	}

	assert.Equal(t, []string{"2"}, ids(filter.Apply(events, filter.New("été"))))
	assert.Equal(t, []string{"1"}, ids(filter.Apply(events, filter.New("STRAßE"))))
	assert.Empty(t, ids(filter.Apply(events, filter.New("strasse"))), "lower-casing does not expand ß")
}

func TestApplyCategories(t *testing.T) {
	events := append(twoEvents(), &catalog.Event{ID: "3", Title: "Rock Night", Category: "music"})

	c := filter.New("", "music")
	got := filter.Apply(events, c)
	for _, e := range got {
		assert.Equal(t, "music", e.Category)
	}
	assert.Equal(t, []string{"1", "3"}, ids(got), "order is preserved")

	c = filter.New("", "music", "culture")
	assert.Len(t, filter.Apply(events, c), 3)

	c = filter.New("", "sport")
	assert.Empty(t, filter.Apply(events, c))
}

func TestApplySearchProperty(t *testing.T) {
	events := twoEvents()
	for _, q := range []string{"a", "e", "con", "MUSIC", "river"} {
		c := filter.New(q)
		for _, e := range filter.Apply(events, c) {
			haystack := strings.ToLower(e.Title + "\n" + e.Description)
			assert.Contains(t, haystack, strings.ToLower(q))
		}
	}
}

func TestApplySharesPointers(t *testing.T) {
	events := twoEvents()
	got := filter.Apply(events, filter.Criteria{})
	require.Len(t, got, 2)
	assert.Same(t, events[0], got[0])
}

func TestMatchesNil(t *testing.T) {
	assert.False(t, filter.Matches(nil, filter.Criteria{}))
}
