package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cattle-metrics-scraper/config"
	"cattle-metrics-scraper/models"
	"cattle-metrics-scraper/scraper/powerbi"
	"cattle-metrics-scraper/services"
	"cattle-metrics-scraper/storage"
	"cattle-metrics-scraper/utils"
)

var (
	parseMode     string
	parseMarker   string
	parsePrevious string
	parseSummary  bool
)

func init() {
	parseCmd.Flags().StringVar(&parseMode, "mode", config.ModeText, "Input kind: text (innerText dump) or grid (saved report HTML).")
	parseCmd.Flags().StringVar(&parseMarker, "marker", "Select Row", "Line that opens each row block in text mode.")
	parseCmd.Flags().StringVar(&parsePrevious, "previous", "", "Snapshot file to compare against.")
	parseCmd.Flags().BoolVar(&parseSummary, "summary", false, "Print the change summary to stderr.")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parses a saved report dump (or stdin) and prints the snapshot JSON.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level := utils.LevelWarn
		if logLevel != "" {
			level = utils.ParseLevel(logLevel)
		}
		logger := utils.NewLoggerTo(os.Stderr, os.Stderr, level)

		input, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		view, err := toView(parseMode, input)
		if err != nil {
			return err
		}

		var previous *models.Snapshot
		if parsePrevious != "" {
			if previous, err = storage.NewSnapshotStore(parsePrevious).Load(); err != nil {
				return err
			}
		}

		extractor, err := services.NewExtractor(parseMode, parseMarker)
		if err != nil {
			return err
		}
		snap, changed, err := services.NewMetricsService(extractor, logger).Build(view, previous)
		if err != nil {
			return err
		}

		data, err := storage.Marshal(snap)
		if err != nil {
			return err
		}
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return err
		}

		if parseSummary {
			summary := services.NewSummaryService(logger)
			summary.Print(cmd.ErrOrStderr(), summary.Compare(previous, snap))
		}
		if parsePrevious != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "changed=%t\n", changed)
		}
		return nil
	},
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %q: %w", args[0], err)
	}
	return string(data), nil
}

func toView(mode, input string) (*models.RawView, error) {
	switch mode {
	case config.ModeText:
		return &models.RawView{Lines: powerbi.SplitLines(input)}, nil
	case config.ModeGrid:
		grid, err := powerbi.ParseGrid(input)
		if err != nil {
			return nil, err
		}
		return &models.RawView{Grid: grid}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}
