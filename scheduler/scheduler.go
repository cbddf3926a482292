package scheduler

import (
	"context"
	"time"

	"cattle-metrics-scraper/utils"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs a job immediately and then once per interval until its
// context is cancelled. A failing tick is logged; the next tick still runs.
type Scheduler struct {
	interval time.Duration
	timeout  time.Duration
	job      Job
	logger   *utils.Logger
}

// New creates a Scheduler. Each tick gets at most timeout to finish; zero
// means the interval.
func New(interval, timeout time.Duration, job Job, logger *utils.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = interval
	}
	return &Scheduler{interval: interval, timeout: timeout, job: job, logger: logger}
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.runTick(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info("[scheduler] Stopping")
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	tickCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.job(tickCtx); err != nil {
		s.logger.Error("[scheduler] Run failed after %v: %v", time.Since(start).Round(time.Millisecond), err)
		return
	}
	s.logger.Info("[scheduler] Run finished in %v; next in %v", time.Since(start).Round(time.Millisecond), s.interval)
}
