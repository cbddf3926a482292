package powerbi

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"cattle-metrics-scraper/config"
	"cattle-metrics-scraper/services"
	"cattle-metrics-scraper/utils"
)

func newTestScraper(mode string) *Scraper {
	cfg := &config.Config{Marker: `Select "Row"`, ExtractMode: mode, MaxRetries: 1}
	return New(cfg, utils.NewLoggerTo(&bytes.Buffer{}, &bytes.Buffer{}, utils.LevelError))
}

func TestRenderExpressionQuotesMarker(t *testing.T) {
	expr, err := newTestScraper(config.ModeText).renderExpression()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(expr, `t.includes("Select \"Row\"")`) {
		t.Errorf("marker not safely quoted: %s", expr)
	}

	expr, err = newTestScraper(config.ModeGrid).renderExpression()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(expr, `[role="gridcell"]`) {
		t.Errorf("grid expression should wait for gridcells: %s", expr)
	}
}

func TestToViewText(t *testing.T) {
	view, err := newTestScraper(config.ModeText).toView("Select Row\n 1 \n\n1,234\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Lines) != 3 || view.Lines[1] != "1" {
		t.Errorf("unexpected lines: %q", view.Lines)
	}
}

func TestToViewEmptyIsFrameUnavailable(t *testing.T) {
	if _, err := newTestScraper(config.ModeText).toView("  \n\n"); !errors.Is(err, services.ErrFrameUnavailable) {
		t.Errorf("text: expected ErrFrameUnavailable, got %v", err)
	}
	if _, err := newTestScraper(config.ModeGrid).toView("<div></div>"); !errors.Is(err, services.ErrFrameUnavailable) {
		t.Errorf("grid: expected ErrFrameUnavailable, got %v", err)
	}
}

func TestToViewGrid(t *testing.T) {
	view, err := newTestScraper(config.ModeGrid).toView(renderedTable)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := view.Grid.Cell(1, 1); !ok || v != "1,234" {
		t.Errorf("cell (1,1): got %q, %v", v, ok)
	}
}
