// Package list implements the list command.
package list

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/eventmap/cmd/application"
	"github.com/agentstation/eventmap/internal/cmd/cmdutil"
	"github.com/agentstation/eventmap/internal/cmd/output"
)

// NewCommand creates the list command.
func NewCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.FilterFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		GroupID: "core",
		Short:   "Print the events that pass the given filters",
		Long: `List loads the catalog from the configured source, applies the
search text and categories, and prints the matching events in catalog order.

Search is case-insensitive and matches the title or description. Several
--category flags keep events in any of them.`,
		Example: `  eventmap list --source ./events.yaml
  eventmap list --search jazz --category music -o json
  eventmap list --event 3 -o wide`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := cmdutil.LoadStore(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := flags.Apply(store); err != nil {
				return err
			}

			snap := store.Snapshot()
			app.Logger().Debug().
				Int("matches", len(snap.Events)).
				Int("total", snap.Total).
				Str("query", store.URL().Encode()).
				Msg("Listing events")

			return cmdutil.Print(cmd, app, output.EventList{
				Events:   snap.Events,
				Total:    snap.Total,
				Selected: snap.Selected,
			})
		},
	}

	flags = cmdutil.AddFilterFlags(cmd)
	_ = cmd.RegisterFlagCompletionFunc("category", cmdutil.CompleteCategories(app))
	return cmd
}
