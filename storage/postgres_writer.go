package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresHistory archives every snapshot in PostgreSQL.
type PostgresHistory struct {
	sqlHistory
}

// NewPostgresHistory opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresHistory.
func NewPostgresHistory(ctx context.Context, dsn string) (*PostgresHistory, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ph := &PostgresHistory{sqlHistory{db: db, dialect: postgresDialect}}
	if err := ph.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ph, nil
}

var postgresDialect = dialect{
	name: "postgres",
	schema: []string{`
		CREATE TABLE IF NOT EXISTS metric_snapshots (
			id                    SERIAL PRIMARY KEY,
			run_id                UUID        NOT NULL,
			updated_at            TIMESTAMPTZ NOT NULL,
			period                VARCHAR(20) NOT NULL,
			row_index             TEXT        NOT NULL DEFAULT '',
			total_head            TEXT        NOT NULL,
			clearance_rate        TEXT        NOT NULL,
			amount_over_reserve   TEXT        NOT NULL,
			ayci_dw               TEXT        NOT NULL,
			ayci_change           TEXT        NOT NULL DEFAULT '',
			total_head_change     TEXT        NOT NULL DEFAULT '',
			clearance_rate_change TEXT        NOT NULL DEFAULT '',
			vor_change            TEXT        NOT NULL DEFAULT '',
			UNIQUE (run_id, period)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metric_snapshots_updated_at ON metric_snapshots(updated_at)`,
	},
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	encodeTime:  func(t time.Time) any { return t },
}
