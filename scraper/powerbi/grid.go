package powerbi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cattle-metrics-scraper/models"
)

// SplitLines turns innerText into trimmed, non-empty lines.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

type gridRow struct {
	order int
	cells []gridCell
}

type gridCell struct {
	order int
	text  string
}

// ParseGrid reads the ARIA grid that Power BI renders for table visuals.
// Header rows (any role=columnheader) and rows without gridcells are
// skipped. Remaining rows and their cells are numbered from 1, ordered by
// aria-rowindex / aria-colindex when present and by document order otherwise.
func ParseGrid(html string) (models.Grid, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("powerbi: parse grid html: %w", err)
	}

	var rows []gridRow
	doc.Find(`[role="row"]`).Each(func(i int, row *goquery.Selection) {
		if row.Find(`[role="columnheader"]`).Length() > 0 {
			return
		}
		r := gridRow{order: ariaIndex(row, "aria-rowindex", i)}
		row.Find(`[role="gridcell"]`).Each(func(j int, cell *goquery.Selection) {
			r.cells = append(r.cells, gridCell{
				order: ariaIndex(cell, "aria-colindex", j),
				text:  strings.TrimSpace(cell.Text()),
			})
		})
		if len(r.cells) > 0 {
			rows = append(rows, r)
		}
	})

	sort.SliceStable(rows, func(a, b int) bool { return rows[a].order < rows[b].order })

	grid := models.Grid{}
	for ri, r := range rows {
		sort.SliceStable(r.cells, func(a, b int) bool { return r.cells[a].order < r.cells[b].order })
		for ci, c := range r.cells {
			grid.Set(ri+1, ci+1, c.text)
		}
	}
	return grid, nil
}

func ariaIndex(s *goquery.Selection, attr string, fallback int) int {
	if v, ok := s.Attr(attr); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
