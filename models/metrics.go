package models

import "time"

// WeekRecord holds one reporting period's metrics as scraped from the
// Power BI table. Values are cleaned strings: digits with an optional
// leading minus sign. The change columns are only present in text mode.
type WeekRecord struct {
	Index               string `json:"index,omitempty"`
	TotalHead           string `json:"total_head"`
	ClearanceRate       string `json:"clearance_rate"`
	AmountOverReserve   string `json:"amount_over_reserve"`
	AYCIDW              string `json:"ayci_dw"`
	AYCIChange          string `json:"ayci_change,omitempty"`
	TotalHeadChange     string `json:"total_head_change,omitempty"`
	ClearanceRateChange string `json:"clearance_rate_change,omitempty"`
	VORChange           string `json:"vor_change,omitempty"`
}

// Snapshot is the full output unit written to metrics.json.
type Snapshot struct {
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	ThisWeek      WeekRecord `json:"this_week"`
	LastWeek      WeekRecord `json:"last_week"`
	TwoWeeksAgo   WeekRecord `json:"two_weeks_ago"`
	ThreeWeeksAgo WeekRecord `json:"three_weeks_ago"`
}

// Period names one of the four reporting buckets, in table order.
type Period string

const (
	PeriodThisWeek      Period = "this_week"
	PeriodLastWeek      Period = "last_week"
	PeriodTwoWeeksAgo   Period = "two_weeks_ago"
	PeriodThreeWeeksAgo Period = "three_weeks_ago"
)

// Periods lists the reporting periods in the order rows appear on the page.
var Periods = []Period{PeriodThisWeek, PeriodLastWeek, PeriodTwoWeeksAgo, PeriodThreeWeeksAgo}

// PeriodCount is the number of rows a valid snapshot must contain.
const PeriodCount = 4

// NewSnapshot maps rows positionally onto the reporting periods.
// The caller must have validated len(rows) == PeriodCount.
func NewSnapshot(rows []WeekRecord, updatedAt time.Time) *Snapshot {
	ts := updatedAt.UTC()
	return &Snapshot{
		UpdatedAt:     &ts,
		ThisWeek:      rows[0],
		LastWeek:      rows[1],
		TwoWeeksAgo:   rows[2],
		ThreeWeeksAgo: rows[3],
	}
}

// Records returns the snapshot's rows in period order.
func (s *Snapshot) Records() []WeekRecord {
	return []WeekRecord{s.ThisWeek, s.LastWeek, s.TwoWeeksAgo, s.ThreeWeeksAgo}
}

// Fields returns the record's values keyed by JSON field name, in column
// order. Empty optional values are included.
func (r WeekRecord) Fields() []FieldValue {
	return []FieldValue{
		{"index", r.Index},
		{"total_head", r.TotalHead},
		{"clearance_rate", r.ClearanceRate},
		{"amount_over_reserve", r.AmountOverReserve},
		{"ayci_dw", r.AYCIDW},
		{"ayci_change", r.AYCIChange},
		{"total_head_change", r.TotalHeadChange},
		{"clearance_rate_change", r.ClearanceRateChange},
		{"vor_change", r.VORChange},
	}
}

// FieldValue is a single named metric value.
type FieldValue struct {
	Name  string
	Value string
}
