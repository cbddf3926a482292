package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cattle-metrics-scraper/models"
)

// Extractor maps a rendered view to week records in page order.
// Rows parsed so far are returned alongside a FieldMissingError so callers
// can report them; a nil view or the wrong kind of view is an error.
type Extractor interface {
	Extract(view *models.RawView) ([]models.WeekRecord, error)
}

// FieldOffset binds a record field to its line offset from the marker.
// A block too short to reach Offset is always an error; an empty value is
// only an error when Required is set.
type FieldOffset struct {
	Offset   int
	Field    string
	Clean    bool
	Required bool
	set      func(*models.WeekRecord, string)
}

// BlockLayout describes a marker block on the rendered table.
type BlockLayout struct {
	Marker string
	Width  int
	Fields []FieldOffset
}

// DefaultBlockLayout is the layout of the cattle market table: each row
// starts with a "Select Row" line and spans eleven lines.
func DefaultBlockLayout() BlockLayout {
	return BlockLayout{
		Marker: "Select Row",
		Width:  11,
		Fields: []FieldOffset{
			{1, "index", false, true, func(r *models.WeekRecord, v string) { r.Index = v }},
			{2, "total_head", true, true, func(r *models.WeekRecord, v string) { r.TotalHead = v }},
			{3, "clearance_rate", true, true, func(r *models.WeekRecord, v string) { r.ClearanceRate = v }},
			{4, "amount_over_reserve", true, true, func(r *models.WeekRecord, v string) { r.AmountOverReserve = v }},
			{5, "ayci_dw", true, true, func(r *models.WeekRecord, v string) { r.AYCIDW = v }},
			{6, "ayci_change", true, false, func(r *models.WeekRecord, v string) { r.AYCIChange = v }},
			{7, "total_head_change", true, false, func(r *models.WeekRecord, v string) { r.TotalHeadChange = v }},
			{8, "clearance_rate_change", true, false, func(r *models.WeekRecord, v string) { r.ClearanceRateChange = v }},
			{9, "vor_change", true, false, func(r *models.WeekRecord, v string) { r.VORChange = v }},
		},
	}
}

// TextExtractor slices the visible frame text into marker blocks and reads
// each field at its fixed offset.
type TextExtractor struct {
	layout BlockLayout
}

// NewTextExtractor creates a TextExtractor. An empty marker keeps the default.
func NewTextExtractor(marker string) *TextExtractor {
	layout := DefaultBlockLayout()
	if marker != "" {
		layout.Marker = marker
	}
	return &TextExtractor{layout: layout}
}

// Extract implements Extractor.
func (e *TextExtractor) Extract(view *models.RawView) ([]models.WeekRecord, error) {
	if view == nil || len(view.Lines) == 0 {
		return nil, fmt.Errorf("text extractor: no lines to parse")
	}

	var rows []models.WeekRecord
	var firstErr error

	lines := view.Lines
	for i := 0; i < len(lines); i++ {
		if lines[i] != e.layout.Marker {
			continue
		}
		end := i + e.layout.Width
		if end > len(lines) {
			end = len(lines)
		}
		row, err := e.parseBlock(lines[i:end], len(rows)+1)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		rows = append(rows, row)
	}

	return rows, firstErr
}

func (e *TextExtractor) parseBlock(block []string, rowNum int) (models.WeekRecord, error) {
	var rec models.WeekRecord
	for _, f := range e.layout.Fields {
		if f.Offset >= len(block) {
			return rec, &FieldMissingError{Row: rowNum, Field: f.Field}
		}
		raw := strings.TrimSpace(block[f.Offset])
		v := raw
		if f.Clean {
			v = CleanValue(raw)
		}
		if v == "" && f.Required {
			return rec, &FieldMissingError{Row: rowNum, Field: f.Field, Raw: raw}
		}
		f.set(&rec, v)
	}
	return rec, nil
}

// GridColumn binds a record field to a grid column.
type GridColumn struct {
	Column int
	Field  string
	set    func(*models.WeekRecord, string)
}

// DefaultGridColumns is the column order of the four base metrics.
func DefaultGridColumns() []GridColumn {
	return []GridColumn{
		{1, "total_head", func(r *models.WeekRecord, v string) { r.TotalHead = v }},
		{2, "clearance_rate", func(r *models.WeekRecord, v string) { r.ClearanceRate = v }},
		{3, "amount_over_reserve", func(r *models.WeekRecord, v string) { r.AmountOverReserve = v }},
		{4, "ayci_dw", func(r *models.WeekRecord, v string) { r.AYCIDW = v }},
	}
}

// GridExtractor reads records from a coordinate-addressed cell map.
type GridExtractor struct {
	columns []GridColumn
}

func NewGridExtractor() *GridExtractor {
	return &GridExtractor{columns: DefaultGridColumns()}
}

// Extract implements Extractor. Rows 1..PeriodCount are looked up by
// coordinate; a missing row or cell is a FieldMissingError. A grid with the
// wrong number of rows is returned in ascending row order so the caller can
// report the mismatch.
func (e *GridExtractor) Extract(view *models.RawView) ([]models.WeekRecord, error) {
	if view == nil || len(view.Grid) == 0 {
		return nil, fmt.Errorf("grid extractor: no cells to parse")
	}

	rowNums := make([]int, 0, models.PeriodCount)
	if len(view.Grid) == models.PeriodCount {
		for r := 1; r <= models.PeriodCount; r++ {
			rowNums = append(rowNums, r)
		}
	} else {
		for r := range view.Grid {
			rowNums = append(rowNums, r)
		}
		sort.Ints(rowNums)
	}

	var rows []models.WeekRecord
	var firstErr error

	for _, r := range rowNums {
		rec := models.WeekRecord{Index: strconv.Itoa(r)}
		if _, ok := view.Grid[r]; !ok && firstErr == nil {
			firstErr = &FieldMissingError{Row: r, Field: "row"}
		}
		for _, c := range e.columns {
			raw, ok := view.Grid.Cell(r, c.Column)
			v := CleanValue(raw)
			if (!ok || v == "") && firstErr == nil {
				firstErr = &FieldMissingError{Row: r, Field: c.Field, Raw: strings.TrimSpace(raw)}
			}
			c.set(&rec, v)
		}
		rows = append(rows, rec)
	}

	return rows, firstErr
}

// NewExtractor returns the extractor for the configured mode.
func NewExtractor(mode, marker string) (Extractor, error) {
	switch mode {
	case "text":
		return NewTextExtractor(marker), nil
	case "grid":
		return NewGridExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown extract mode %q", mode)
	}
}
