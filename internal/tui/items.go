package tui

import (
	"fmt"

	"github.com/agentstation/eventmap/pkg/catalog"
)

// eventItem implements list.Item for one event row.
type eventItem struct {
	event    *catalog.Event
	selected bool
}

func (i eventItem) Title() string {
	marker := "  "
	if i.selected {
		marker = "● "
	}
	return marker + i.event.Title
}

func (i eventItem) Description() string {
	return fmt.Sprintf("%s · %s", i.event.Category, truncate(i.event.Description, 60))
}

func (i eventItem) FilterValue() string {
	return i.event.Title
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
