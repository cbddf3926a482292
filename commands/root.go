package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cattle-metrics-scraper/config"
	"cattle-metrics-scraper/utils"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "cattle-metrics",
	Short:         "Scrapes the cattle market Power BI table into metrics.json.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error).")
}

// ExecuteContext runs the CLI and exits non-zero on any error.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads and validates configuration and builds the logger.
func setup() (*config.Config, *utils.Logger, error) {
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger := utils.NewLogger()
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
