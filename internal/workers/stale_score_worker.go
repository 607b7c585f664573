package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/selivandex/catalog-ranker/internal/scoring"
	"github.com/selivandex/catalog-ranker/pkg/logger"
	"github.com/selivandex/catalog-ranker/pkg/metrics"
)

// StaleItemLister finds items whose score is missing or older than cutoff
type StaleItemLister interface {
	ListStaleItems(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)
}

// ScoreSweeper recomputes one item if it is still stale
type ScoreSweeper interface {
	Sweep(ctx context.Context, itemID int64) scoring.Result
	Window() time.Duration
}

// StaleScoreWorker refreshes stale scores in batches so that lookups
// rarely pay for a recomputation
type StaleScoreWorker struct {
	lister    StaleItemLister
	cache     ScoreSweeper
	clock     clockwork.Clock
	batchSize int
}

// NewStaleScoreWorker creates new stale score worker
func NewStaleScoreWorker(lister StaleItemLister, cache ScoreSweeper, clock clockwork.Clock, batchSize int) *StaleScoreWorker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &StaleScoreWorker{
		lister:    lister,
		cache:     cache,
		clock:     clock,
		batchSize: batchSize,
	}
}

// Name implements worker.Worker
func (w *StaleScoreWorker) Name() string {
	return "stale_score_sweeper"
}

// Run refreshes one batch of stale items
func (w *StaleScoreWorker) Run(ctx context.Context) error {
	cutoff := w.clock.Now().Add(-w.cache.Window())

	ids, err := w.lister.ListStaleItems(ctx, cutoff, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list stale items: %w", err)
	}
	if len(ids) == 0 {
		logger.Debug("no stale scores")
		return nil
	}

	refreshed, degraded := 0, 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		res := w.cache.Sweep(ctx, id)
		if res.IsDegraded() {
			degraded++
			continue
		}
		refreshed++
	}
	metrics.StaleSweepItems.Add(float64(refreshed))

	logger.Info("stale scores refreshed",
		zap.Int("candidates", len(ids)),
		zap.Int("refreshed", refreshed),
		zap.Int("degraded", degraded),
	)

	return nil
}
