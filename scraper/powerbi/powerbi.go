package powerbi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"cattle-metrics-scraper/config"
	"cattle-metrics-scraper/models"
	"cattle-metrics-scraper/services"
	"cattle-metrics-scraper/utils"
)

// Scraper renders the page hosting the Power BI embed and captures the
// report's visible text or grid HTML.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Power BI Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Fetch launches a headless browser, waits for the report to render and
// returns its content as lines (text mode) or a grid (grid mode).
func (s *Scraper) Fetch(ctx context.Context) (*models.RawView, error) {
	chromeBin := s.cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	s.logger.Info("[powerbi] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var view *models.RawView
	err := s.retry.Do(ctx, "powerbi-fetch", func(context.Context) error {
		v, err := s.fetchOnce(browserCtx)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *Scraper) fetchOnce(browserCtx context.Context) (*models.RawView, error) {
	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()

	navCtx, cancelNav := context.WithTimeout(tabCtx, s.cfg.NavTimeout)
	defer cancelNav()

	s.logger.Info("[powerbi] Loading %s", s.cfg.PageURL)
	if err := chromedp.Run(navCtx,
		network.Enable(),
		network.SetCacheDisabled(true),
		chromedp.Navigate(s.cfg.PageURL),
	); err != nil {
		return nil, fmt.Errorf("powerbi: navigate: %w", err)
	}

	var frames []*cdp.Node
	var src string
	var hasSrc bool
	frameCtx, cancelFrame := context.WithTimeout(tabCtx, s.cfg.FrameTimeout)
	defer cancelFrame()
	if err := chromedp.Run(frameCtx,
		chromedp.Nodes(s.cfg.FrameSelector, &frames, chromedp.ByQuery),
		chromedp.AttributeValue(s.cfg.FrameSelector, "src", &src, &hasSrc, chromedp.ByQuery),
	); err != nil || len(frames) == 0 {
		return nil, fmt.Errorf("powerbi: waiting for %s: %w", s.cfg.FrameSelector, errors.Join(services.ErrFrameUnavailable, err))
	}

	content, err := s.pollContent(tabCtx, frames[0])
	if err != nil && hasSrc && src != "" && tabCtx.Err() == nil {
		// Cross-origin frames may not expose their document; load the
		// report directly instead.
		s.logger.Warn("[powerbi] Frame content not reachable (%v), following iframe src", err)
		followCtx, cancelFollow := context.WithTimeout(tabCtx, s.cfg.NavTimeout)
		defer cancelFollow()
		if navErr := chromedp.Run(followCtx, chromedp.Navigate(src)); navErr != nil {
			return nil, fmt.Errorf("powerbi: navigate to frame src: %w", navErr)
		}
		content, err = s.pollContent(tabCtx, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("powerbi: waiting for report render: %w", errors.Join(services.ErrFrameUnavailable, err))
	}

	return s.toView(content)
}

// pollContent waits inside frame (or the top document when frame is nil)
// until the report has rendered, and returns its text or HTML.
func (s *Scraper) pollContent(tabCtx context.Context, frame *cdp.Node) (string, error) {
	expr, err := s.renderExpression()
	if err != nil {
		return "", err
	}

	pollOpts := []chromedp.PollOption{
		chromedp.WithPollingTimeout(s.cfg.RenderTimeout),
		chromedp.WithPollingInterval(500 * time.Millisecond),
	}
	if frame != nil {
		pollOpts = append(pollOpts, chromedp.WithPollingInFrame(frame))
	}

	ctx, cancel := context.WithTimeout(tabCtx, s.cfg.RenderTimeout+5*time.Second)
	defer cancel()

	var content string
	if err := chromedp.Run(ctx, chromedp.Poll(expr, &content, pollOpts...)); err != nil {
		return "", err
	}
	return content, nil
}

func (s *Scraper) renderExpression() (string, error) {
	if s.cfg.ExtractMode == config.ModeGrid {
		return `(() => document.querySelector('[role="gridcell"]') ? document.body.outerHTML : false)()`, nil
	}
	marker, err := json.Marshal(s.cfg.Marker)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
		const t = document.body && document.body.innerText;
		return t && t.includes(%s) ? t : false;
	})()`, marker), nil
}

func (s *Scraper) toView(content string) (*models.RawView, error) {
	if s.cfg.ExtractMode == config.ModeGrid {
		grid, err := ParseGrid(content)
		if err != nil {
			return nil, err
		}
		if len(grid) == 0 {
			return nil, fmt.Errorf("powerbi: no grid rows rendered: %w", services.ErrFrameUnavailable)
		}
		s.logger.Debug("[powerbi] Captured grid with %d rows", len(grid))
		return &models.RawView{Grid: grid}, nil
	}

	s.logger.Debug("=== RAW SCRAPE START ===\n%s\n=== RAW SCRAPE END ===", content)
	lines := SplitLines(content)
	if len(lines) == 0 {
		return nil, fmt.Errorf("powerbi: frame text is empty: %w", services.ErrFrameUnavailable)
	}
	s.logger.Debug("[powerbi] Captured %d text lines", len(lines))
	return &models.RawView{Lines: lines}, nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
