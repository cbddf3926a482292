package commands

import (
	"context"

	"github.com/spf13/cobra"

	"cattle-metrics-scraper/scheduler"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scrapes every SCRAPE_INTERVAL until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		runner, closeAll, err := buildRunner(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeAll()

		logger.Info("=== Watching %s every %v ===", cfg.PageURL, cfg.ScrapeInterval)
		job := func(ctx context.Context) error {
			res, err := runner.Run(ctx)
			if err != nil {
				return err
			}
			logger.Info("[watch] changed=%t written=%t", res.Changed, res.Written)
			return nil
		}

		scheduler.New(cfg.ScrapeInterval, 0, job, logger).Run(cmd.Context())
		return nil
	},
}
