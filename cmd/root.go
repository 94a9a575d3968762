// Package cmd provides the CLI commands for vayazh.
//
// Commands:
//   - serve: HTTP API server (also the default when run without arguments)
//   - version: version and configuration information
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/team-sapphire/vayazh/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "vayazh",
	Short: "VAYAZH - personalized agriculture answering engine",
	Long: `VAYAZH answers a farmer's questions from an indexed agricultural corpus,
personalized with the saved farm profile and current weather.

Running vayazh without a subcommand starts the HTTP API server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger. DEBUG in the environment lowers
// the level; VAYAZH_LOG_JSON switches to JSON output for log shippers.
func newLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	if os.Getenv("VAYAZH_LOG_JSON") != "" {
		cfg.JSON = true
	}
	return log.New(cfg)
}
