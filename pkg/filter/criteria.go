// Package filter holds the user-controlled filter criteria and the pure
// function that derives the visible subset of a catalog from them.
package filter

import (
	"slices"
	"strings"
)

// Criteria is the current search text and category selection.
// The zero value matches every event.
type Criteria struct {
	search     string
	categories []string
}

// New returns criteria with the given search text and categories.
func New(search string, categories ...string) Criteria {
	var c Criteria
	c.SetSearch(search)
	c.SetCategories(categories...)
	return c
}

// Search returns the trimmed search text.
func (c Criteria) Search() string {
	return c.search
}

// Categories returns the selected categories in selection order.
func (c Criteria) Categories() []string {
	return slices.Clone(c.categories)
}

// HasCategory reports whether name is selected.
func (c Criteria) HasCategory(name string) bool {
	return slices.Contains(c.categories, name)
}

// SetSearch replaces the search text. Surrounding whitespace is dropped.
func (c *Criteria) SetSearch(text string) {
	c.search = strings.TrimSpace(text)
}

// ClearSearch empties the search text.
func (c *Criteria) ClearSearch() {
	c.search = ""
}

// ToggleCategory adds name if absent and removes it if present.
func (c *Criteria) ToggleCategory(name string) {
	if name == "" {
		return
	}
	if i := slices.Index(c.categories, name); i >= 0 {
		c.categories = slices.Delete(c.categories, i, i+1)
		return
	}
	c.categories = append(c.categories, name)
}

// SetCategories replaces the category set. Duplicates and empty names are dropped.
func (c *Criteria) SetCategories(names ...string) {
	c.categories = nil
	for _, name := range names {
		if name == "" || slices.Contains(c.categories, name) {
			continue
		}
		c.categories = append(c.categories, name)
	}
}

// IsZero reports whether the criteria place no restriction.
func (c Criteria) IsZero() bool {
	return c.search == "" && len(c.categories) == 0
}

// Clone returns an independent copy.
func (c Criteria) Clone() Criteria {
	c.categories = slices.Clone(c.categories)
	return c
}

// Equal compares search text and category sets. Category order is ignored.
func (c *Criteria) Equal(o *Criteria) bool {
	if c.search != o.search || len(c.categories) != len(o.categories) {
		return false
	}
	for _, name := range c.categories {
		if !slices.Contains(o.categories, name) {
			return false
		}
	}
	return true
}
