// Package route serializes filter and selection state to a URL query and
// guards the two-way synchronization between that state and the URL.
package route

import (
	"net/url"
	"slices"
	"strings"

	"github.com/agentstation/eventmap/pkg/constants"
	"github.com/agentstation/eventmap/pkg/errors"
)

// State is the route-visible part of the store: search text, selected
// categories and the selected event id.
type State struct {
	Search     string   `json:"search,omitempty" yaml:"search,omitempty"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	EventID    string   `json:"eventId,omitempty" yaml:"eventId,omitempty"`
}

// IsZero reports whether the state encodes to an empty query.
func (s State) IsZero() bool {
	return s.Search == "" && len(s.Categories) == 0 && s.EventID == ""
}

// Equal compares two states. Category order is significant because it is
// visible in the URL.
func (s State) Equal(o State) bool {
	return s.Search == o.Search && s.EventID == o.EventID && slices.Equal(s.Categories, o.Categories)
}

// Encode returns the canonical query: only non-empty fields, one
// categories value per category.
func (s State) Encode() url.Values {
	q := url.Values{}
	if s.Search != "" {
		q.Set(constants.ParamSearch, s.Search)
	}
	for _, c := range s.Categories {
		if c != "" {
			q.Add(constants.ParamCategories, c)
		}
	}
	if s.EventID != "" {
		q.Set(constants.ParamEventID, s.EventID)
	}
	return q
}

// String returns the encoded canonical query without a leading '?'.
func (s State) String() string {
	return s.Encode().Encode()
}

// Decode reads state from a query. It never fails: a missing or unusable
// value decodes to that field's default. A repeated search keeps its first
// value; repeated categories are deduplicated in order.
func Decode(q url.Values) State {
	var s State
	if vs := q[constants.ParamSearch]; len(vs) > 0 {
		s.Search = strings.TrimSpace(vs[0])
	}
	for _, c := range q[constants.ParamCategories] {
		if c == "" || slices.Contains(s.Categories, c) {
			continue
		}
		s.Categories = append(s.Categories, c)
	}
	for _, id := range q[constants.ParamEventID] {
		if id = strings.TrimSpace(id); id != "" {
			s.EventID = id
			break
		}
	}
	return s
}

// DecodeString parses a raw query string, with or without a leading '?'.
// Malformed pairs are skipped; the returned error describes the first one
// and is meant for logging only.
func DecodeString(raw string) (State, error) {
	q, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		err = errors.NewParseError("query", "", "malformed route query", err)
	}
	return Decode(q), err
}

// DecodeURL extracts the state from a full URL, such as a shared deep link.
func DecodeURL(raw string) (State, *url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return State{}, nil, errors.NewParseError("url", "", "invalid route URL", err)
	}
	s, err := DecodeString(u.RawQuery)
	return s, u, err
}

// Canonical rewrites q into its canonical encoding.
func Canonical(q url.Values) string {
	return Decode(q).String()
}
