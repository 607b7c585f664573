package scoring

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/selivandex/catalog-ranker/internal/adapters/redis"
	"github.com/selivandex/catalog-ranker/pkg/logger"
	"github.com/selivandex/catalog-ranker/pkg/metrics"
	"github.com/selivandex/catalog-ranker/pkg/models"
)

// DefaultFreshnessWindow is how long a stored score is served unchanged
const DefaultFreshnessWindow = time.Hour

// Recompute triggers, used as metric labels
const (
	triggerLookup = "lookup"
	triggerForced = "forced"
	triggerSweep  = "sweep"
)

// Cache serves stored item scores while they are fresh and recomputes them
// otherwise. Concurrent misses for one item share a single computation.
type Cache struct {
	store    Store
	clock    clockwork.Clock
	window   time.Duration
	locks    redis.LockFactory
	recorder metrics.Recorder
	group    singleflight.Group

	refreshMu sync.Mutex
	refreshes map[int64]*refreshLock
}

type refreshLock struct {
	mu   sync.Mutex
	refs int
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithClock replaces the wall clock
func WithClock(clock clockwork.Clock) CacheOption {
	return func(c *Cache) { c.clock = clock }
}

// WithFreshnessWindow sets how long a record stays fresh
func WithFreshnessWindow(window time.Duration) CacheOption {
	return func(c *Cache) {
		if window > 0 {
			c.window = window
		}
	}
}

// WithLockFactory guards recomputation across processes
func WithLockFactory(locks redis.LockFactory) CacheOption {
	return func(c *Cache) { c.locks = locks }
}

// WithRecorder sends every computation to the score history
func WithRecorder(recorder metrics.Recorder) CacheOption {
	return func(c *Cache) { c.recorder = recorder }
}

// NewCache creates a score cache over store
func NewCache(store Store, opts ...CacheOption) *Cache {
	c := &Cache{
		store:     store,
		clock:     clockwork.NewRealClock(),
		window:    DefaultFreshnessWindow,
		locks:     redis.NewLocalLockFactory(),
		recorder:  metrics.NopRecorder{},
		refreshes: make(map[int64]*refreshLock),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window returns the freshness window
func (c *Cache) Window() time.Duration {
	return c.window
}

// IsFresh reports whether rec may be served at now
func (c *Cache) IsFresh(rec *models.ScoreRecord, now time.Time) bool {
	return rec != nil && rec.Age(now) <= c.window
}

// GetOrCompute returns the stored score when fresh, otherwise computes and
// stores a new one
func (c *Cache) GetOrCompute(ctx context.Context, itemID int64) Result {
	return c.lookup(ctx, itemID, triggerLookup)
}

// Sweep is GetOrCompute for the background sweeper
func (c *Cache) Sweep(ctx context.Context, itemID int64) Result {
	return c.lookup(ctx, itemID, triggerSweep)
}

// Refresh recomputes and stores the score regardless of freshness. Refreshes
// of one item run one after another and each reads stats after it was
// called, so a refresh requested after a new review always sees it.
func (c *Cache) Refresh(ctx context.Context, itemID int64) Result {
	unlock := c.lockRefresh(itemID)
	defer unlock()

	return c.compute(ctx, itemID, triggerForced)
}

// lockRefresh serializes refreshes per item and drops idle entries
func (c *Cache) lockRefresh(itemID int64) func() {
	c.refreshMu.Lock()
	rl, ok := c.refreshes[itemID]
	if !ok {
		rl = &refreshLock{}
		c.refreshes[itemID] = rl
	}
	rl.refs++
	c.refreshMu.Unlock()

	rl.mu.Lock()

	return func() {
		rl.mu.Unlock()

		c.refreshMu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(c.refreshes, itemID)
		}
		c.refreshMu.Unlock()
	}
}

// Cached returns the stored score without computing. ok is false when the
// item has no record.
func (c *Cache) Cached(ctx context.Context, itemID int64) (score float64, ok bool, err error) {
	rec, err := c.store.FetchScoreRecord(ctx, itemID)
	if err != nil || rec == nil {
		return 0, false, err
	}
	return rec.Score, true, nil
}

func (c *Cache) lookup(ctx context.Context, itemID int64, trigger string) Result {
	rec, readErr := c.store.FetchScoreRecord(ctx, itemID)
	if readErr != nil {
		logger.Warn("score cache read failed, recomputing",
			zap.Int64("item_id", itemID),
			zap.Error(readErr),
		)
		rec = nil
	}

	if c.IsFresh(rec, c.clock.Now()) {
		metrics.ScoreCacheHits.Inc()
		return Result{Value: rec.Score, Source: SourceCache}
	}

	cause := "absent"
	if rec != nil {
		cause = "stale"
	}
	metrics.ScoreCacheMisses.WithLabelValues(cause).Inc()

	v, _, _ := c.group.Do(strconv.FormatInt(itemID, 10), func() (interface{}, error) {
		return c.computeGuarded(ctx, itemID, rec, trigger), nil
	})
	res := v.(Result)

	if readErr != nil && !res.IsDegraded() {
		res.Degraded = DegradedCacheRead
		res.Err = readErr
		metrics.ScoreDegraded.WithLabelValues(string(DegradedCacheRead)).Inc()
	}
	return res
}

// computeGuarded takes the cross-process item lock before computing. When
// another process holds it the stale record is served if there is one.
func (c *Cache) computeGuarded(ctx context.Context, itemID int64, stale *models.ScoreRecord, trigger string) Result {
	lock := c.locks.ItemLock(itemID)

	acquired, err := lock.TryAcquire(ctx)
	if err != nil {
		logger.Warn("score lock unavailable, computing without it",
			zap.Int64("item_id", itemID),
			zap.String("lock", lock.Key()),
			zap.Error(err),
		)
		return c.compute(ctx, itemID, trigger)
	}

	if !acquired {
		if stale != nil {
			logger.Debug("score being recomputed elsewhere, serving stale record",
				zap.Int64("item_id", itemID),
				zap.Duration("age", stale.Age(c.clock.Now())),
			)
			return Result{Value: stale.Score, Source: SourceStale}
		}
		return c.compute(ctx, itemID, trigger)
	}

	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to release score lock", zap.String("lock", lock.Key()), zap.Error(err))
		}
	}()

	return c.compute(ctx, itemID, trigger)
}

// compute reads stats, scores the item and persists the record. Read
// failures return 0 without touching the stored record.
func (c *Cache) compute(ctx context.Context, itemID int64, trigger string) Result {
	start := c.clock.Now()
	defer func() {
		metrics.ScoreComputeDuration.Observe(c.clock.Since(start).Seconds())
	}()
	metrics.ScoreRecomputations.WithLabelValues(trigger).Inc()

	stats, err := c.store.FetchReviewStats(ctx, itemID)
	if err != nil {
		return c.degraded(itemID, DegradedStats, err)
	}

	var engagement models.EngagementStats
	if stats.HasReviews() {
		engagement, err = c.store.FetchEngagementStats(ctx, itemID)
		if err != nil {
			return c.degraded(itemID, DegradedEngagement, err)
		}
	}

	now := c.clock.Now()
	score := Compute(stats, engagement, now)
	res := Result{Value: score, Source: SourceComputed}

	if err := c.store.UpsertScore(ctx, itemID, score, now); err != nil {
		logger.Error("failed to store score",
			zap.Int64("item_id", itemID),
			zap.Float64("score", score),
			zap.Error(err),
		)
		metrics.ScoreDegraded.WithLabelValues(string(DegradedCacheWrite)).Inc()
		res.Degraded = DegradedCacheWrite
		res.Err = err
	}

	logger.Debug("score computed",
		zap.Int64("item_id", itemID),
		zap.Float64("score", score),
		zap.Int("reviews", stats.ReviewCount),
		zap.String("trigger", trigger),
	)

	c.record(&metrics.ScoreComputedMetric{
		Timestamp:    now,
		ItemID:       itemID,
		Score:        score,
		ReviewCount:  stats.ReviewCount,
		AvgRating:    stats.AvgRating,
		AvgSentiment: stats.AvgSentiment,
		Engagement:   engagement.Net(),
		Forced:       trigger == triggerForced,
		Degraded:     string(res.Degraded),
	})

	return res
}

func (c *Cache) degraded(itemID int64, reason DegradeReason, err error) Result {
	logger.Error("score computation failed, returning 0",
		zap.Int64("item_id", itemID),
		zap.String("reason", string(reason)),
		zap.Error(err),
	)
	metrics.ScoreDegraded.WithLabelValues(string(reason)).Inc()
	return Result{Value: 0, Source: SourceComputed, Degraded: reason, Err: err}
}

func (c *Cache) record(m *metrics.ScoreComputedMetric) {
	if err := c.recorder.Add(m); err != nil {
		logger.Warn("failed to record score history", zap.Int64("item_id", m.ItemID), zap.Error(err))
	}
}
