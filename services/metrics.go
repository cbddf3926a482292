package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"cattle-metrics-scraper/models"
	"cattle-metrics-scraper/utils"
)

// ignoreTimestamp excludes updated_at from snapshot comparisons.
var ignoreTimestamp = cmpopts.IgnoreFields(models.Snapshot{}, "UpdatedAt")

// MetricsService turns a rendered view into a validated snapshot and
// decides whether it differs from the previous one.
type MetricsService struct {
	extractor Extractor
	logger    *utils.Logger
	now       func() time.Time
}

// NewMetricsService creates a MetricsService using the given extractor.
func NewMetricsService(extractor Extractor, logger *utils.Logger) *MetricsService {
	return &MetricsService{extractor: extractor, logger: logger, now: time.Now}
}

// WithClock overrides the clock used for updated_at.
func (s *MetricsService) WithClock(now func() time.Time) *MetricsService {
	s.now = now
	return s
}

// Build extracts the four reporting periods from view and compares the
// result against previous, which may be nil. It never returns a partial
// snapshot: any error leaves the snapshot nil.
func (s *MetricsService) Build(view *models.RawView, previous *models.Snapshot) (*models.Snapshot, bool, error) {
	if view.Empty() {
		return nil, false, fmt.Errorf("metrics: empty view: %w", ErrFrameUnavailable)
	}

	rows, err := s.extractor.Extract(view)
	if err != nil && !errors.Is(err, ErrFieldMissing) {
		return nil, false, fmt.Errorf("metrics: extract: %w", err)
	}

	if len(rows) != models.PeriodCount {
		s.logger.Error("[metrics] Expected %d rows but found %d", models.PeriodCount, len(rows))
		for i, r := range rows {
			s.logger.Error("[metrics]   row %d: %+v", i+1, r)
		}
		return nil, false, &RowCountError{Count: len(rows), Rows: rows}
	}
	if err != nil {
		return nil, false, fmt.Errorf("metrics: %w", err)
	}

	snap := models.NewSnapshot(rows, s.now())
	changed := Changed(previous, snap)

	if previous == nil {
		s.logger.Info("[metrics] No previous snapshot; treating as changed")
	} else if changed {
		s.logger.Info("[metrics] Metric value changes detected")
	} else {
		s.logger.Info("[metrics] No metric value changes detected")
	}

	return snap, changed, nil
}

// Changed reports whether next differs from previous in any field other
// than updated_at. A missing previous snapshot counts as a change.
func Changed(previous, next *models.Snapshot) bool {
	if previous == nil || next == nil {
		return previous != next
	}
	return !cmp.Equal(*previous, *next, ignoreTimestamp)
}
