package services

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"

	"cattle-metrics-scraper/models"
	"cattle-metrics-scraper/utils"
)

type SummaryService struct {
	logger *utils.Logger
}

func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Compare lists every field whose value differs between previous and next.
func (s *SummaryService) Compare(previous, next *models.Snapshot) *models.ChangeReport {
	report := &models.ChangeReport{Current: next}
	if next == nil {
		return report
	}
	if previous == nil {
		report.FirstRun = true
		report.Changed = true
		return report
	}

	var diffs fieldDiffReporter
	report.Changed = !cmp.Equal(*previous, *next, ignoreTimestamp, cmp.Reporter(&diffs))
	report.Changes = diffs.changes

	s.logger.Debug("[summary] %d field(s) changed", len(report.Changes))
	return report
}

// fieldDiffReporter records every snapshot leaf cmp finds unequal as a
// FieldChange named by the period and field JSON tags.
type fieldDiffReporter struct {
	path    cmp.Path
	changes []models.FieldChange
}

func (r *fieldDiffReporter) PushStep(ps cmp.PathStep) { r.path = append(r.path, ps) }

func (r *fieldDiffReporter) PopStep() { r.path = r.path[:len(r.path)-1] }

func (r *fieldDiffReporter) Report(rs cmp.Result) {
	// Snapshot -> period record -> field.
	if rs.Equal() || len(r.path) != 3 {
		return
	}
	period := jsonName(r.path[0].Type(), r.path[1])
	field := jsonName(r.path[1].Type(), r.path[2])
	if period == "" || field == "" {
		return
	}
	vx, vy := r.path.Last().Values()
	r.changes = append(r.changes, models.FieldChange{
		Period: models.Period(period),
		Field:  field,
		Old:    vx.String(),
		New:    vy.String(),
	})
}

func jsonName(parent reflect.Type, step cmp.PathStep) string {
	sf, ok := step.(cmp.StructField)
	if !ok || parent.Kind() != reflect.Struct {
		return ""
	}
	name, _, _ := strings.Cut(parent.Field(sf.Index()).Tag.Get("json"), ",")
	return name
}

// Print renders the report as a console table.
func (s *SummaryService) Print(w io.Writer, r *models.ChangeReport) {
	sep := strings.Repeat("═", 62)
	thin := strings.Repeat("─", 62)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  CATTLE MARKET METRICS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	if r.Current != nil {
		if r.Current.UpdatedAt != nil {
			fmt.Fprintf(w, "  Updated at : %s\n\n", r.Current.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
		}
		fmt.Fprintf(w, "  %-16s %10s %10s %12s %10s\n", "Period", "Head", "Clear %", "Over res.", "AYCI")
		fmt.Fprintf(w, "  %s\n", thin)
		for i, rec := range r.Current.Records() {
			fmt.Fprintf(w, "  %-16s %10s %10s %12s %10s\n",
				models.Periods[i], rec.TotalHead, rec.ClearanceRate, rec.AmountOverReserve, rec.AYCIDW)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Changes since last snapshot\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	switch {
	case r.FirstRun:
		fmt.Fprintf(w, "  No previous snapshot\n")
	case !r.Changed:
		fmt.Fprintf(w, "  No metric value changes\n")
	default:
		for _, c := range r.Changes {
			fmt.Fprintf(w, "  %-16s %-22s %8s → \033[1m%s\033[0m\n", c.Period, c.Field, c.Old, c.New)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}
