// Package tui is an interactive terminal list view over an eventmap store.
package tui

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agentstation/eventmap"
	"github.com/agentstation/eventmap/pkg/catalog"
)

// Store is the part of *eventmap.Store the view drives.
type Store interface {
	eventmap.View
	eventmap.Intents
	ClearSelection()
	URL() url.Values
	Refresh(ctx context.Context) error
	OnChange(fn eventmap.ChangeHook) func()
}

var _ Store = (*eventmap.Store)(nil)

// ChangeMsg tells the model the store changed outside of Update, such as
// when a refresh settles. The model re-reads the store on receipt.
type ChangeMsg struct{}

// refreshedMsg carries the result of a refresh started by the model.
type refreshedMsg struct {
	err error
}

// Model is the list view. Key bindings while browsing:
//
//	/        edit the search text (enter or esc to leave)
//	1-9      toggle the n-th category
//	enter    select the highlighted event
//	esc      clear the selection
//	c        clear the search text
//	r        refresh the catalog
//	q        quit
type Model struct {
	ctx    context.Context
	store  Store
	list   list.Model
	search textinput.Model
	snap   eventmap.Snapshot
	err    error
	width  int
	height int

	quitting bool
}

// New creates a list view over store.
func New(ctx context.Context, store Store) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(colorAccent).
		BorderForeground(colorAccent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(colorMuted)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Events"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = titleStyle

	search := textinput.New()
	search.Placeholder = "search title or description"
	search.Prompt = ""
	search.CharLimit = 100
	search.Width = 40

	m := Model{
		ctx:    ctx,
		store:  store,
		list:   l,
		search: search,
	}
	m.reload()
	m.search.SetValue(m.snap.Criteria.Search())
	return m
}

// Init starts the first refresh.
func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m Model) refresh() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		return refreshedMsg{err: store.Refresh(ctx)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-8, 3))
		return m, nil

	case ChangeMsg:
		m.reload()
		return m, nil

	case refreshedMsg:
		m.err = msg.err
		m.reload()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.snap.Criteria.Search() {
		m.store.SetSearch(m.search.Value())
		m.reload()
	}
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "/":
		m.search.Focus()
		return m, textinput.Blink

	case "enter":
		if item, ok := m.list.SelectedItem().(eventItem); ok {
			m.err = m.store.SelectEvent(item.event)
			m.reload()
		}
		return m, nil

	case "esc":
		m.store.ClearSelection()
		m.reload()
		return m, nil

	case "c":
		m.store.ClearSearch()
		m.search.SetValue("")
		m.reload()
		return m, nil

	case "r":
		return m, m.refresh()
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		if i := int(key[0] - '1'); i < len(m.snap.Categories) {
			m.store.ToggleCategory(m.snap.Categories[i])
			m.reload()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// reload re-reads the store and rebuilds the list, keeping the cursor on
// the selected event when it is visible.
func (m *Model) reload() {
	m.snap = m.store.Snapshot()

	items := make([]list.Item, len(m.snap.Events))
	cursor := -1
	for i, e := range m.snap.Events {
		selected := m.snap.Selected != nil && e.ID == m.snap.Selected.ID
		if selected {
			cursor = i
		}
		items[i] = eventItem{event: e, selected: selected}
	}
	m.list.SetItems(items)
	if cursor >= 0 {
		m.list.Select(cursor)
	}
}

// Selected returns the event the store has selected, for callers that
// run the model and want the outcome.
func (m Model) Selected() *catalog.Event {
	return m.snap.Selected
}

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderCategories())
	b.WriteString("\n")
	b.WriteString(searchLabelStyle.Render("Search: "))
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	switch {
	case m.snap.Loading && m.snap.Total == 0:
		b.WriteString(statusStyle.Render("Loading events…"))
		b.WriteString("\n")
	case len(m.snap.Events) == 0:
		b.WriteString(statusStyle.Render("No events match the current filters."))
		b.WriteString("\n")
	default:
		b.WriteString(m.list.View())
		b.WriteString("\n")
	}

	if e := m.snap.Selected; e != nil {
		b.WriteString(detailStyle.Render(fmt.Sprintf("%s\n%s\n%s  (%.4f, %.4f)",
			e.Title, e.Description, e.Category, e.Coords.Lat, e.Coords.Lng)))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) renderCategories() string {
	chips := make([]string, 0, len(m.snap.Categories))
	for i, c := range m.snap.Categories {
		label := c
		if i < 9 {
			label = fmt.Sprintf("%d:%s", i+1, c)
		}
		if m.snap.Criteria.HasCategory(c) {
			chips = append(chips, activeChipStyle.Render("["+label+"]"))
		} else {
			chips = append(chips, chipStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m Model) renderStatus() string {
	query := m.store.URL().Encode()
	if query != "" {
		query = "?" + query
	}
	return statusStyle.Render(fmt.Sprintf("%d/%d events  %s  url: /%s",
		len(m.snap.Events), m.snap.Total, m.snap.Phase, query))
}
