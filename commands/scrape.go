package commands

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"cattle-metrics-scraper/config"
	"cattle-metrics-scraper/pipeline"
	"cattle-metrics-scraper/scraper/powerbi"
	"cattle-metrics-scraper/services"
	"cattle-metrics-scraper/storage"
	"cattle-metrics-scraper/utils"
)

var quiet bool

func init() {
	scrapeCmd.Flags().BoolVar(&quiet, "quiet", false, "Do not print the metrics summary.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Runs one scrape and writes the snapshot; exits 1 on any failure.",
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

		logger.Info("=== Cattle metrics scrape starting ===")
		res, err := runner.Run(cmd.Context())
		if err != nil {
			logger.Error("Scrape failed: %v", err)
			return err
		}

		if !quiet {
			printRunSummary(cmd.OutOrStdout(), res, logger)
		}
		logger.Info("Scrape completed successfully (changed=%t, written=%t)", res.Changed, res.Written)
		return nil
	},
}

func printRunSummary(w io.Writer, res *pipeline.Result, logger *utils.Logger) {
	summary := services.NewSummaryService(logger)
	summary.Print(w, summary.Compare(res.Previous, res.Snapshot))
}

// buildRunner wires the configured source, extractor, snapshot store and
// history sinks. The returned func closes every sink that was opened.
func buildRunner(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*pipeline.Runner, func(), error) {
	extractor, err := services.NewExtractor(cfg.ExtractMode, cfg.Marker)
	if err != nil {
		return nil, nil, err
	}

	var sinks []storage.HistoryWriter
	closeAll := func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				logger.Warn("[store] Close failed: %v", err)
			}
		}
	}
	fail := func(err error) (*pipeline.Runner, func(), error) {
		closeAll()
		return nil, nil, err
	}

	if cfg.HistoryCSVPath != "" {
		csvHistory, err := storage.NewCSVHistory(cfg.HistoryCSVPath)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, csvHistory)
		logger.Info("[store] Appending history to %s", cfg.HistoryCSVPath)
	}
	if cfg.SQLitePath != "" {
		sqliteHistory, err := storage.NewSQLiteHistory(ctx, cfg.SQLitePath)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, sqliteHistory)
		logger.Info("[store] Archiving snapshots in SQLite at %s", cfg.SQLitePath)
	}
	if cfg.PostgresEnabled() {
		pgHistory, err := storage.NewPostgresHistory(ctx, cfg.DSN())
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, pgHistory)
		logger.Info("[store] Archiving snapshots in PostgreSQL (table: metric_snapshots)")
	}

	runner := pipeline.NewRunner(
		powerbi.New(cfg, logger),
		services.NewMetricsService(extractor, logger),
		storage.NewSnapshotStore(cfg.OutputPath),
		cfg.WritePolicy,
		logger,
		sinks...,
	)
	return runner, closeAll, nil
}

// openHistoryReader returns the first configured SQL history backend.
func openHistoryReader(ctx context.Context, cfg *config.Config) (storage.HistoryReader, func() error, error) {
	switch {
	case cfg.SQLitePath != "":
		h, err := storage.NewSQLiteHistory(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return h, h.Close, nil
	case cfg.PostgresEnabled():
		h, err := storage.NewPostgresHistory(ctx, cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		return h, h.Close, nil
	default:
		return nil, nil, errors.New("no history database configured (set SQLITE_PATH or POSTGRES_HOST)")
	}
}
