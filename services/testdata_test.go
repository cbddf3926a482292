package services

import (
	"bytes"

	"cattle-metrics-scraper/models"
	"cattle-metrics-scraper/utils"
)

func newTestLogger() *utils.Logger {
	return utils.NewLoggerTo(&bytes.Buffer{}, &bytes.Buffer{}, utils.LevelError)
}

// block builds one rendered table row as it appears in the frame text.
func block(index, head, clearance, overReserve, ayci, ayciChg, headChg, clrChg, vorChg string) []string {
	return []string{"Select Row", index, head, clearance, overReserve, ayci, ayciChg, headChg, clrChg, vorChg}
}

// pageLines returns frame text containing the given rows between the
// table header and footer noise that surrounds them on the page.
func pageLines(rows ...[]string) []string {
	lines := []string{"Week", "Total Head", "Clearance", "VOR", "AYCI c/kg dw"}
	for _, r := range rows {
		lines = append(lines, r...)
	}
	return append(lines, "Total", "Data refreshed daily")
}

func fourWeekLines(thisWeekHead string) []string {
	return pageLines(
		block("1", thisWeekHead, "72%", "$150", "412", "+2c", "-1%", "+3pp", "-$50"),
		block("2", "9,876", "68%", "-$20", "410", "-4c", "+12%", "-1pp", "$10"),
		block("3", "11,002", "70%", "$35", "414", "+1c", "+3%", "+2pp", "$5"),
		block("4", "10,650", "68%", "$30", "413", "0c", "-2%", "0pp", "-$5"),
	)
}

func sampleGrid() models.Grid {
	g := models.Grid{}
	rows := [][]string{
		{"1,234", "55%", "$200", "410"},
		{"2,345", "60%", "-$15", "405"},
		{"3,456", "58%", "$0", "400"},
		{"4,567", "61%", "$25", "398"},
	}
	for r, cells := range rows {
		for c, v := range cells {
			g.Set(r+1, c+1, v)
		}
	}
	return g
}
