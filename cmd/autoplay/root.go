package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/autoplay/internal/config"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:   "autoplay",
		Short: "Record and replay keyboard sessions",
		Long: `autoplay records the keys you press into a session file and plays
them back later with the original timing.

Sessions are stored as .gsi files. They can be dumped to YAML, edited,
imported back, or composed from Lua scripts.`,
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the interactive host.
			return runHost(cmd, g, hostOptions{})
		},
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to configuration file (TOML or YAML)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(g),
		newPlayCmd(g),
		newInspectCmd(),
		newDumpCmd(),
		newImportCmd(),
		newComposeCmd(),
	)
	return root
}

// loadConfig loads the configuration named by --config and applies the
// flag overrides.
func (g *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	return cfg, nil
}
