package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	var (
		flags      Flags
		configFile string
	)

	rootCmd := &cobra.Command{
		Use:     "eventmap",
		Short:   "Filter, select and share events from an event catalog",
		Version: a.version,
		Long: `Eventmap loads an event catalog from a remote source or a local file
and keeps search text, category filters and the selected event in sync
with a shareable URL.

Use it to list and filter events, resolve deep links, browse the catalog
interactively, or serve it over HTTP with live reload.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupCommand(configFile, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default is ./.eventmap.yaml or $HOME/.eventmap.yaml)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.BoolVar(&flags.NoColor, "no-color", false, "disable colored output")
	pf.StringVarP(&flags.Format, "format", "o", "", "output format: table, wide, json, yaml")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	pf.StringVar(&flags.Source, "source", "", "event source URL or catalog file")
	pf.StringVar(&flags.File, "file", "", "catalog file (JSON or YAML)")
	rootCmd.MarkFlagsMutuallyExclusive("source", "file")

	rootCmd.SetVersionTemplate("eventmap {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand applies flags on top of the loaded configuration and
// rebuilds the logger.
func (a *App) setupCommand(configFile string, flags Flags) error {
	if configFile != "" {
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return err
		}
		a.config = cfg
	}
	a.config.UpdateFromFlags(flags)

	logger := NewLogger(a.config)
	a.logger = &logger

	a.mu.Lock()
	a.fetcher = nil
	a.mu.Unlock()

	a.logger.Debug().
		Str("config_file", a.config.ConfigFile).
		Str("source", a.config.Source()).
		Msg("Configuration loaded")
	return nil
}

// ExitOnError prints err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
