package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/route"
)

// EventList is the result of the list command.
type EventList struct {
	Events   []*catalog.Event `json:"events" yaml:"events"`
	Total    int              `json:"total" yaml:"total"`
	Selected *catalog.Event   `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// TableData implements Tabular.
func (l EventList) TableData(wide bool) Data {
	headers := []string{"ID", "Title", "Category"}
	align := []Align{AlignRight, AlignLeft, AlignLeft}
	if wide {
		headers = append(headers, "Description", "Lat", "Lng")
		align = append(align, AlignLeft, AlignRight, AlignRight)
	}

	caser := cases.Title(language.English)
	rows := make([][]string, 0, len(l.Events))
	for _, e := range l.Events {
		id := e.ID.String()
		if l.Selected != nil && l.Selected.ID == e.ID {
			id = "*" + id
		}
		row := []string{id, e.Title, caser.String(e.Category)}
		if wide {
			row = append(row,
				truncate(e.Description, 48),
				fmt.Sprintf("%.5f", e.Coords.Lat),
				fmt.Sprintf("%.5f", e.Coords.Lng),
			)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// RouteResult is the result of the url command: the state a deep link
// resolves to and the URL the store writes back.
type RouteResult struct {
	Input     string         `json:"input" yaml:"input"`
	State     route.State    `json:"state" yaml:"state"`
	Selected  *catalog.Event `json:"selected,omitempty" yaml:"selected,omitempty"`
	Matches   int            `json:"matches" yaml:"matches"`
	Total     int            `json:"total" yaml:"total"`
	Canonical string         `json:"canonical" yaml:"canonical"`
}

// TableData implements Tabular as a property/value table.
func (r RouteResult) TableData(bool) Data {
	selected := "-"
	if r.Selected != nil {
		selected = fmt.Sprintf("%s (%s)", r.Selected.Title, r.Selected.ID)
	}
	categories := "-"
	if len(r.State.Categories) > 0 {
		categories = strings.Join(r.State.Categories, ", ")
	}
	search := r.State.Search
	if search == "" {
		search = "-"
	}

	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Input", r.Input},
			{"Search", search},
			{"Categories", categories},
			{"Selected", selected},
			{"Matches", fmt.Sprintf("%d of %d", r.Matches, r.Total)},
			{"Canonical URL", r.Canonical},
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
