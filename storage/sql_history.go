package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cattle-metrics-scraper/models"
)

const historyColumns = "run_id, updated_at, period, row_index, total_head, clearance_rate, " +
	"amount_over_reserve, ayci_dw, ayci_change, total_head_change, clearance_rate_change, vor_change"

// dialect captures the few differences between the SQL backends.
type dialect struct {
	name        string
	schema      []string
	placeholder func(n int) string
	encodeTime  func(t time.Time) any
}

// sqlHistory stores snapshot history in a metric_snapshots table.
type sqlHistory struct {
	db      *sql.DB
	dialect dialect
}

func (h *sqlHistory) migrate(ctx context.Context) error {
	for _, stmt := range h.dialect.schema {
		if _, err := h.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: migrate: %w", h.dialect.name, err)
		}
	}
	return nil
}

// WriteSnapshot inserts the four period rows of snap in one statement.
func (h *sqlHistory) WriteSnapshot(ctx context.Context, runID string, snap *models.Snapshot) error {
	const cols = 12
	records := snap.Records()
	valueStrings := make([]string, 0, len(records))
	valueArgs := make([]any, 0, len(records)*cols)
	ts := h.dialect.encodeTime(snapshotTime(snap))

	for idx, rec := range records {
		base := idx * cols
		ph := make([]string, cols)
		for i := range ph {
			ph[i] = h.dialect.placeholder(base + i + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			runID, ts, string(models.Periods[idx]), rec.Index,
			rec.TotalHead, rec.ClearanceRate, rec.AmountOverReserve, rec.AYCIDW,
			rec.AYCIChange, rec.TotalHeadChange, rec.ClearanceRateChange, rec.VORChange)
	}

	query := fmt.Sprintf(`INSERT INTO metric_snapshots (%s) VALUES %s`,
		historyColumns, strings.Join(valueStrings, ","))

	if _, err := h.db.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("%s: insert snapshot: %w", h.dialect.name, err)
	}
	return nil
}

// Recent returns up to limit rows, newest first.
func (h *sqlHistory) Recent(ctx context.Context, limit int) ([]HistoryRow, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM metric_snapshots
		ORDER BY id DESC
		LIMIT %s`, historyColumns, h.dialect.placeholder(1))

	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch recent: %w", h.dialect.name, err)
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var r HistoryRow
		var ts any
		var period string
		rec := &r.Record
		if err := rows.Scan(
			&r.RunID, &ts, &period, &rec.Index,
			&rec.TotalHead, &rec.ClearanceRate, &rec.AmountOverReserve, &rec.AYCIDW,
			&rec.AYCIChange, &rec.TotalHeadChange, &rec.ClearanceRateChange, &rec.VORChange,
		); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", h.dialect.name, err)
		}
		if r.UpdatedAt, err = decodeTime(ts); err != nil {
			return nil, fmt.Errorf("%s: %w", h.dialect.name, err)
		}
		r.Period = models.Period(period)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (h *sqlHistory) Close() error {
	return h.db.Close()
}

func decodeTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected updated_at type %T", v)
	}
}
