package filter

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/eventmap/pkg/catalog"
)

// Apply returns the events matching c, in their original order.
// The result shares the event pointers; it never copies records.
func Apply(events []*catalog.Event, c Criteria) []*catalog.Event {
	m := newMatcher(c)
	out := make([]*catalog.Event, 0, len(events))
	for _, e := range events {
		if m.match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Matches reports whether a single event passes c.
func Matches(e *catalog.Event, c Criteria) bool {
	return newMatcher(c).match(e)
}

// matcher holds the lower-cased query for one Apply call. A cases.Caser
// keeps state between calls and cannot be shared across goroutines.
type matcher struct {
	lower      cases.Caser
	query      string
	categories []string
}

func newMatcher(c Criteria) *matcher {
	m := &matcher{
		lower:      cases.Lower(language.Und),
		categories: c.categories,
	}
	if c.search != "" {
		m.query = m.lower.String(c.search)
	}
	return m
}

func (m *matcher) match(e *catalog.Event) bool {
	if e == nil {
		return false
	}
	if len(m.categories) > 0 && !slices.Contains(m.categories, e.Category) {
		return false
	}
	if m.query == "" {
		return true
	}
	return m.contains(e.Title) || m.contains(e.Description)
}

func (m *matcher) contains(field string) bool {
	if field == "" {
		return false
	}
	return strings.Contains(m.lower.String(field), m.query)
}
