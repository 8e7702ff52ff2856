package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/tourney/internal/factory"
)

var (
	cfg *Config
	app *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var envErr error
	cfg, envErr = DefaultConfig()
	if envErr != nil {
		cfg = envConfig()
	}

	rootCmd := &cobra.Command{
		Use:   "tourney",
		Short: "Run and inspect rated tournaments",
		Long: `tourney runs Swiss, double-elimination and hybrid tournaments.

It can simulate complete tournaments with rating-weighted results and
show the rating history recorded for a player.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			logger, err := cfg.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fc, err := cfg.FactoryConfig(logger)
			if err != nil {
				return err
			}
			app, err = factory.New(fc)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.Storage, "storage", cfg.Storage, "Storage backend: memory, redis, sqlite (env: TOURNEY_STORAGE)")
	rootCmd.PersistentFlags().StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL (env: TOURNEY_REDIS_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file (env: TOURNEY_SQLITE_PATH)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error (env: TOURNEY_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: TOURNEY_OUTPUT)")

	// Add subcommands
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newRankingCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
