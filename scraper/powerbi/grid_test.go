package powerbi

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"cattle-metrics-scraper/models"
)

func TestSplitLines(t *testing.T) {
	text := "  Select Row \r\n\n3\n\t1,234\n   \n55%\n"
	want := []string{"Select Row", "3", "1,234", "55%"}
	if diff := cmp.Diff(want, SplitLines(text)); diff != "" {
		t.Errorf("SplitLines mismatch (-want +got):\n%s", diff)
	}
	if got := SplitLines(" \n \n"); len(got) != 0 {
		t.Errorf("blank text should give no lines, got %q", got)
	}
}

const renderedTable = `
<div class="tableEx">
  <div role="grid">
    <div role="row" aria-rowindex="1">
      <div role="columnheader">Total Head</div>
      <div role="columnheader">Clearance</div>
      <div role="columnheader">VOR</div>
      <div role="columnheader">AYCI</div>
    </div>
    <div role="row" aria-rowindex="3">
      <div role="rowheader">Select Row</div>
      <div role="gridcell" aria-colindex="3">2,345</div>
      <div role="gridcell" aria-colindex="4">60%</div>
      <div role="gridcell" aria-colindex="5">-$15</div>
      <div role="gridcell" aria-colindex="6">405</div>
    </div>
    <div role="row" aria-rowindex="2">
      <div role="rowheader">Select Row</div>
      <div role="gridcell" aria-colindex="4">55%</div>
      <div role="gridcell" aria-colindex="3"> 1,234 </div>
      <div role="gridcell" aria-colindex="6">410</div>
      <div role="gridcell" aria-colindex="5">$200</div>
    </div>
    <div role="row" aria-rowindex="4">
      <div role="gridcell">3,456</div>
      <div role="gridcell">58%</div>
      <div role="gridcell">$0</div>
      <div role="gridcell">400</div>
    </div>
    <div role="row" aria-rowindex="5"><div role="rowheader">Total</div></div>
  </div>
</div>`

func TestParseGridOrdersByAriaIndex(t *testing.T) {
	grid, err := ParseGrid(renderedTable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := models.Grid{
		1: {1: "1,234", 2: "55%", 3: "$200", 4: "410"},
		2: {1: "2,345", 2: "60%", 3: "-$15", 4: "405"},
		3: {1: "3,456", 2: "58%", 3: "$0", 4: "400"},
	}
	if diff := cmp.Diff(want, grid); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
}

func TestParseGridNoCells(t *testing.T) {
	grid, err := ParseGrid(`<html><body><p>Loading report…</p></body></html>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid) != 0 {
		t.Errorf("expected empty grid, got %v", grid)
	}
}
