package services

import (
	"errors"
	"fmt"

	"cattle-metrics-scraper/models"
)

var (
	// ErrRowCountMismatch is returned when the parsed row count is not four.
	ErrRowCountMismatch = errors.New("row count mismatch")
	// ErrFieldMissing is returned when a required field has no value.
	ErrFieldMissing = errors.New("field missing")
	// ErrFrameUnavailable is returned when the rendering side hands back no
	// usable content.
	ErrFrameUnavailable = errors.New("frame unavailable")
)

// RowCountError carries the rows that were parsed when validation failed.
type RowCountError struct {
	Count int
	Rows  []models.WeekRecord
}

func (e *RowCountError) Error() string {
	return fmt.Sprintf("expected %d rows but found %d", models.PeriodCount, e.Count)
}

func (e *RowCountError) Unwrap() error { return ErrRowCountMismatch }

// FieldMissingError names the row and field that could not be read.
type FieldMissingError struct {
	Row   int
	Field string
	Raw   string
}

func (e *FieldMissingError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("row %d: field %s has no numeric value in %q", e.Row, e.Field, e.Raw)
	}
	return fmt.Sprintf("row %d: field %s not present", e.Row, e.Field)
}

func (e *FieldMissingError) Unwrap() error { return ErrFieldMissing }
