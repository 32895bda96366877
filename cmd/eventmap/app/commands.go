package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/eventmap/cmd/eventmap/cmd/browse"
	"github.com/agentstation/eventmap/cmd/eventmap/cmd/list"
	"github.com/agentstation/eventmap/cmd/eventmap/cmd/serve"
	"github.com/agentstation/eventmap/cmd/eventmap/cmd/url"
)

func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(list.NewCommand(a))
	rootCmd.AddCommand(url.NewCommand(a))
	rootCmd.AddCommand(browse.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))
	rootCmd.AddCommand(a.newVersionCommand())
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "eventmap %s\n", a.version)
			if a.config.Verbose {
				fmt.Fprintf(out, "  commit: %s\n", a.commit)
				fmt.Fprintf(out, "  built:  %s\n", a.date)
			}
		},
	}
}
