package storage

import (
	"context"
	"time"

	"cattle-metrics-scraper/models"
)

// HistoryWriter is the interface any snapshot history backend must satisfy.
// Every row written for one run shares the same runID.
type HistoryWriter interface {
	WriteSnapshot(ctx context.Context, runID string, snap *models.Snapshot) error
	Close() error
}

// HistoryReader reads back the most recent history rows, newest first.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]HistoryRow, error)
}

// HistoryRow is one reporting period of one archived snapshot.
type HistoryRow struct {
	RunID     string
	UpdatedAt time.Time
	Period    models.Period
	Record    models.WeekRecord
}

// snapshotTime returns the snapshot's timestamp, or now when it has none.
func snapshotTime(snap *models.Snapshot) time.Time {
	if snap.UpdatedAt != nil {
		return snap.UpdatedAt.UTC()
	}
	return time.Now().UTC()
}
