package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cattle-metrics-scraper/models"
)

var csvHeader = []string{
	"run_id", "updated_at", "period", "index",
	"total_head", "clearance_rate", "amount_over_reserve", "ayci_dw",
	"ayci_change", "total_head_change", "clearance_rate_change", "vor_change",
}

// CSVHistory appends one row per reporting period to a CSV file on every
// run. It is safe for concurrent use.
type CSVHistory struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVHistory opens (or creates) the CSV file at path for appending and
// writes the header row when the file is new. Intermediate directories are
// created automatically.
func NewCSVHistory(path string) (*CSVHistory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("csv: open file %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: stat %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
		w.Flush()
	}

	return &CSVHistory{file: f, writer: w}, nil
}

// WriteSnapshot implements HistoryWriter.
func (c *CSVHistory) WriteSnapshot(_ context.Context, runID string, snap *models.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := snapshotTime(snap).Format(time.RFC3339)
	for i, rec := range snap.Records() {
		row := []string{runID, ts, string(models.Periods[i])}
		for _, f := range rec.Fields() {
			row = append(row, f.Value)
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVHistory) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
