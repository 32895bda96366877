// Package browse implements the interactive browse command.
package browse

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/eventmap"
	"github.com/agentstation/eventmap/cmd/application"
	"github.com/agentstation/eventmap/internal/tui"
	"github.com/agentstation/eventmap/pkg/route"
)

// NewCommand creates the browse command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "browse [link]",
		GroupID: "core",
		Short:   "Browse events in an interactive terminal view",
		Long: `Browse opens a list of events that stays in sync with a URL. Start it
from a shared link to restore its filters and selection.

Keys: / edits the search, 1-9 toggle categories, enter selects the
highlighted event, esc clears the selection, r refreshes, q quits.
The final URL is printed on exit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link := "/"
			if len(args) == 1 {
				link = args[0]
			}
			nav, err := route.NewMemoryNavigator(link)
			if err != nil {
				return err
			}

			store, err := app.NewStore(eventmap.WithNavigator(nav))
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := tui.Run(cmd.Context(), store); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), nav.URL())
			return err
		},
	}
}
