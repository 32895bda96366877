// Package url implements the url command.
package url

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/eventmap"
	"github.com/agentstation/eventmap/cmd/application"
	"github.com/agentstation/eventmap/internal/cmd/cmdutil"
	"github.com/agentstation/eventmap/internal/cmd/output"
	"github.com/agentstation/eventmap/pkg/route"
)

// NewCommand creates the url command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "url <link>",
		GroupID: "core",
		Short:   "Resolve a deep link against the catalog",
		Long: `Url reads the search text, categories and selected event from a shared
link, loads the catalog, and prints the state the link resolves to along
with the canonical URL written back once the catalog is ready.

An eventId that names no event is dropped from the canonical URL.`,
		Example: `  eventmap url "https://example.com/?search=jazz&categories=music&eventId=3"
  eventmap url "/?eventId=42" -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link := args[0]
			_, u, err := route.DecodeURL(link)
			if u == nil {
				return err
			}
			if err != nil {
				app.Logger().Warn().Err(err).Str("url", link).Msg("Link has malformed parts; they are ignored")
			}

			nav, err := route.NewMemoryNavigator(link)
			if err != nil {
				return err
			}

			store, err := cmdutil.LoadStore(cmd.Context(), app, eventmap.WithNavigator(nav))
			if err != nil {
				return err
			}
			defer store.Close()

			snap := store.Snapshot()
			canonical := *u
			canonical.RawQuery = store.URL().Encode()
			canonical.Fragment = ""

			return cmdutil.Print(cmd, app, output.RouteResult{
				Input:     link,
				State:     snap.Route,
				Selected:  snap.Selected,
				Matches:   len(snap.Events),
				Total:     snap.Total,
				Canonical: canonical.String(),
			})
		},
	}
}
