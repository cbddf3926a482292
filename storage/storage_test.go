package storage

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"cattle-metrics-scraper/models"
)

func sampleSnapshot(head string) *models.Snapshot {
	ts := time.Date(2026, 10, 15, 6, 30, 0, 0, time.UTC)
	return &models.Snapshot{
		UpdatedAt:     &ts,
		ThisWeek:      models.WeekRecord{Index: "1", TotalHead: head, ClearanceRate: "72", AmountOverReserve: "150", AYCIDW: "412", AYCIChange: "2", TotalHeadChange: "-1", ClearanceRateChange: "3", VORChange: "-50"},
		LastWeek:      models.WeekRecord{Index: "2", TotalHead: "9876", ClearanceRate: "68", AmountOverReserve: "-20", AYCIDW: "410"},
		TwoWeeksAgo:   models.WeekRecord{Index: "3", TotalHead: "11002", ClearanceRate: "70", AmountOverReserve: "35", AYCIDW: "414"},
		ThreeWeeksAgo: models.WeekRecord{Index: "4", TotalHead: "10650", ClearanceRate: "68", AmountOverReserve: "30", AYCIDW: "413"},
	}
}

func TestSnapshotStoreLoadMissing(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "metrics.json"))
	snap, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, snap)
}

func TestSnapshotStoreSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "metrics.json")
	store := NewSnapshotStore(path)

	want := sampleSnapshot("12400")
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, want.ThisWeek, got.ThisWeek)
	require.Equal(t, want.ThreeWeeksAgo, got.ThreeWeeksAgo)
	require.True(t, want.UpdatedAt.Equal(*got.UpdatedAt))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "\n  \"this_week\": {\n    \"index\": \"1\",")
	require.Contains(t, text, `"updated_at": "2026-10-15T06:30:00Z"`)
	require.NotContains(t, text, `"ayci_change": ""`, "empty optional fields are omitted")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSnapshotStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewSnapshotStore(path).Load()
	require.Error(t, err)
}

func TestSnapshotStoreRejectsNil(t *testing.T) {
	require.Error(t, NewSnapshotStore(filepath.Join(t.TempDir(), "m.json")).Save(nil))
}

func TestCSVHistoryAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	ctx := context.Background()

	for _, head := range []string{"12400", "13050"} {
		h, err := NewCSVHistory(path)
		require.NoError(t, err)
		require.NoError(t, h.WriteSnapshot(ctx, uuid.NewString(), sampleSnapshot(head)))
		require.NoError(t, h.Close())
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+2*models.PeriodCount, "one header and four rows per run")
	require.Equal(t, csvHeader, records[0])
	require.Equal(t, "this_week", records[1][2])
	require.Equal(t, "12400", records[1][4])
	require.Equal(t, "13050", records[5][4])
	require.Equal(t, "-50", records[1][11])
}

func TestSQLiteHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	h, err := NewSQLiteHistory(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer h.Close()

	first, second := uuid.NewString(), uuid.NewString()
	require.NoError(t, h.WriteSnapshot(ctx, first, sampleSnapshot("12400")))
	require.NoError(t, h.WriteSnapshot(ctx, second, sampleSnapshot("13050")))

	rows, err := h.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	require.Equal(t, second, rows[0].RunID)
	require.Equal(t, models.PeriodThreeWeeksAgo, rows[0].Period)
	require.Equal(t, models.PeriodThisWeek, rows[3].Period)
	require.Equal(t, "13050", rows[3].Record.TotalHead)
	require.Equal(t, first, rows[4].RunID)
	require.True(t, rows[0].UpdatedAt.Equal(time.Date(2026, 10, 15, 6, 30, 0, 0, time.UTC)))

	err = h.WriteSnapshot(ctx, second, sampleSnapshot("1"))
	require.Error(t, err, "a run may only be archived once")
}

func TestPostgresHistory(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	h, err := NewPostgresHistory(ctx, dsn)
	require.NoError(t, err)
	defer h.Close()

	runID := uuid.NewString()
	require.NoError(t, h.WriteSnapshot(ctx, runID, sampleSnapshot("12400")))

	rows, err := h.Recent(ctx, 4)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, r := range rows {
		require.True(t, strings.EqualFold(runID, r.RunID))
	}
}
