// Package cli implements the CartQuest command-line interface using Cobra.
// Each subcommand maps to one rewards-engine capability (trip, shop,
// lootbox, leaderboard, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cartquest/cartquest/internal/api"
	"github.com/cartquest/cartquest/internal/daemon"
)

var rootCmd = &cobra.Command{
	Use:   "cartquest",
	Short: "CartQuest — turn grocery savings into XP",
	Long: `CartQuest tracks what you spend on groceries against a budget and
turns the savings into XP, levels, streaks and cosmetic rewards.

Set a budget, log a trip, and watch the streak grow.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version
	api.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDaemon loads the config and wires the services for a one-shot
// command. Informational logs are suppressed unless a log file is set.
func openDaemon() (*daemon.Daemon, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Logging.File == "" {
		cfg.Logging.Level = "warn"
	}
	return daemon.NewWithConfig(cfg)
}
