package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentstation/eventmap"
	"github.com/agentstation/eventmap/pkg/errors"
)

// Run starts the view on the terminal and blocks until the user quits or
// ctx is canceled. Store changes from background refreshes are forwarded
// to the program as ChangeMsg.
func Run(ctx context.Context, store Store, opts ...tea.ProgramOption) (*Model, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, store), opts...)

	// Send blocks until the event loop receives it, and hooks also fire
	// from inside Update.
	unhook := store.OnChange(func(eventmap.Change) {
		go p.Send(ChangeMsg{})
	})
	defer unhook()

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, err
	}
	if m, ok := final.(Model); ok {
		return &m, nil
	}
	return nil, nil
}
