package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dynastyglobe/config"
	"dynastyglobe/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global flags.
type rootOptions struct {
	ConfigPath string
	LogLevel   string
}

type settingsKey struct{}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "globe",
		Short:   "Dynasty territory globe",
		Long:    "globe draws a rotating earth and overlays the territory of a selected\nChinese dynasty as glowing extruded patches.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./globe.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newViewCommand(),
		newServeCommand(),
		newDynastiesCommand(),
		newProjectCommand(),
	)
	return cmd
}

// persistentPreRun loads settings, applies flag overrides and initialises
// logging before any subcommand runs.
func persistentPreRun(cmd *cobra.Command, opts *rootOptions) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	if opts.LogLevel != "" {
		settings.Logging.Level = opts.LogLevel
	}
	logging.Init(settings.Logging)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, settingsKey{}, settings))
	return nil
}

// settingsFrom returns the settings stored by persistentPreRun, or the
// defaults when the command was run without it.
func settingsFrom(cmd *cobra.Command) *config.Settings {
	if ctx := cmd.Context(); ctx != nil {
		if s, ok := ctx.Value(settingsKey{}).(*config.Settings); ok {
			return s
		}
	}
	return config.Default()
}
