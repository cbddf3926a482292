package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteHistory archives every snapshot in an embedded SQLite database.
type SQLiteHistory struct {
	sqlHistory
}

// NewSQLiteHistory opens (creating if needed) the database at path.
func NewSQLiteHistory(ctx context.Context, path string) (*SQLiteHistory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	sh := &SQLiteHistory{sqlHistory{db: db, dialect: sqliteDialect}}
	if err := sh.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sh, nil
}

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{`
		CREATE TABLE IF NOT EXISTS metric_snapshots (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id                TEXT NOT NULL,
			updated_at            TEXT NOT NULL,
			period                TEXT NOT NULL,
			row_index             TEXT NOT NULL DEFAULT '',
			total_head            TEXT NOT NULL,
			clearance_rate        TEXT NOT NULL,
			amount_over_reserve   TEXT NOT NULL,
			ayci_dw               TEXT NOT NULL,
			ayci_change           TEXT NOT NULL DEFAULT '',
			total_head_change     TEXT NOT NULL DEFAULT '',
			clearance_rate_change TEXT NOT NULL DEFAULT '',
			vor_change            TEXT NOT NULL DEFAULT '',
			UNIQUE (run_id, period)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metric_snapshots_updated_at ON metric_snapshots(updated_at)`,
	},
	placeholder: func(int) string { return "?" },
	encodeTime:  func(t time.Time) any { return t.UTC().Format(time.RFC3339Nano) },
}
