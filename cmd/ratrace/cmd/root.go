package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/ratrace/config"
)

var rootCmd = &cobra.Command{
	Use:   "ratrace",
	Short: "A turn-based personal finance board game",
	Long: `Ratrace is a board game about escaping the rat race: build passive
income from deals until it covers your monthly expenses.

It provides tools for:
  - Playing headless games with automated and human seats
  - Generating and validating game configuration files
  - Browsing the professions players are dealt
  - Querying the SQLite narration journal

Settings come from a YAML or JSON config file, then RATRACE_* environment
variables, then command-line flags.`,
	SilenceUsage: true,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults are used when empty")
}

// loadConfig reads the config file if one was given, then applies the
// environment. Callers validate after their own flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
