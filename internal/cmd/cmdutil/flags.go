// Package cmdutil holds flags and helpers shared by eventmap commands.
package cmdutil

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/eventmap"
	"github.com/agentstation/eventmap/cmd/application"
	"github.com/agentstation/eventmap/internal/cmd/output"
	"github.com/agentstation/eventmap/pkg/constants"
)

// FilterFlags holds the filter and selection flags of commands that
// print events.
type FilterFlags struct {
	Search     string
	Categories []string
	EventID    string
}

// AddFilterFlags adds --search, --category and --event to cmd.
func AddFilterFlags(cmd *cobra.Command) *FilterFlags {
	flags := &FilterFlags{}

	cmd.Flags().StringVarP(&flags.Search, "search", "s", "",
		"Case-insensitive text matched against title and description")
	cmd.Flags().StringArrayVarP(&flags.Categories, "category", "c", nil,
		"Only show events in this category (repeatable)")
	cmd.Flags().StringVar(&flags.EventID, "event", "",
		"Select the event with this id")

	return flags
}

// Apply forwards the flags to the store as intents.
func (f *FilterFlags) Apply(store *eventmap.Store) error {
	if f.Search != "" {
		store.SetSearch(f.Search)
	}
	if len(f.Categories) > 0 {
		store.SetCategories(f.Categories...)
	}
	if f.EventID != "" {
		return store.SelectEventByID(f.EventID)
	}
	return nil
}

// LoadStore creates a store and waits for its first refresh. The store
// is closed when the refresh fails.
func LoadStore(ctx context.Context, app application.Application, opts ...eventmap.Option) (*eventmap.Store, error) {
	store, err := app.NewStore(opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RefreshTimeout)
	defer cancel()

	if err := store.Refresh(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// Print writes data to the command's stdout in the configured format.
func Print(cmd *cobra.Command, app application.Application, data any) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	format = output.DetectFormat(string(format))
	return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
}

// CompleteCategories completes --category values from the catalog. A
// source that cannot be loaded completes nothing.
func CompleteCategories(app application.Application) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		store, err := LoadStore(cmd.Context(), app)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		defer store.Close()

		var out []string
		for _, c := range store.Categories() {
			if strings.HasPrefix(strings.ToLower(c), strings.ToLower(toComplete)) {
				out = append(out, c)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
