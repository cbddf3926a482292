// Package pipeline runs one scrape: fetch the rendered report, build and
// validate a snapshot, then persist it according to the write policy.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cattle-metrics-scraper/config"
	"cattle-metrics-scraper/models"
	"cattle-metrics-scraper/services"
	"cattle-metrics-scraper/storage"
	"cattle-metrics-scraper/utils"
)

// Source hands back the rendered report content.
type Source interface {
	Fetch(ctx context.Context) (*models.RawView, error)
}

// Result describes a successful run.
type Result struct {
	RunID    string
	Snapshot *models.Snapshot
	Previous *models.Snapshot
	Changed  bool
	Written  bool
}

// Runner wires a Source to the metrics service and the stores.
type Runner struct {
	source  Source
	metrics *services.MetricsService
	store   *storage.SnapshotStore
	history []storage.HistoryWriter
	policy  string
	logger  *utils.Logger
}

func NewRunner(source Source, metrics *services.MetricsService, store *storage.SnapshotStore,
	policy string, logger *utils.Logger, history ...storage.HistoryWriter) *Runner {
	return &Runner{
		source:  source,
		metrics: metrics,
		store:   store,
		history: history,
		policy:  policy,
		logger:  logger,
	}
}

// Run performs one scrape. On any error nothing is persisted and the
// existing snapshot file is left as it was.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	previous, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	if previous != nil {
		r.logger.Info("[pipeline] Loaded previous metrics from %s", r.store.Path())
	} else {
		r.logger.Info("[pipeline] No previous metrics file found; full write will occur")
	}

	view, err := r.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if view.Empty() {
		return nil, fmt.Errorf("fetch: empty content: %w", services.ErrFrameUnavailable)
	}

	snap, changed, err := r.metrics.Build(view, previous)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.NewString(), Snapshot: snap, Previous: previous, Changed: changed}

	if r.policy == config.WriteChanged && !changed {
		r.logger.Info("[pipeline] Snapshot unchanged; leaving %s untouched", r.store.Path())
		return res, nil
	}

	if err := r.store.Save(snap); err != nil {
		return nil, err
	}
	res.Written = true
	r.logger.Info("[pipeline] %s written successfully", r.store.Path())

	var histErr error
	for _, h := range r.history {
		if err := h.WriteSnapshot(ctx, res.RunID, snap); err != nil {
			histErr = errors.Join(histErr, err)
		}
	}
	if histErr != nil {
		return res, fmt.Errorf("history: %w", histErr)
	}
	return res, nil
}
