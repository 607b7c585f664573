// Package ranker is the entry point other parts of the catalog call into:
// sentiment for new text, scores for items and community insights for
// products.
package ranker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/selivandex/catalog-ranker/internal/insights"
	"github.com/selivandex/catalog-ranker/internal/keywords"
	"github.com/selivandex/catalog-ranker/internal/scoring"
	"github.com/selivandex/catalog-ranker/internal/sentiment"
	"github.com/selivandex/catalog-ranker/pkg/logger"
	"github.com/selivandex/catalog-ranker/pkg/models"
)

// highlightsPerSide is how many review excerpts a comparison shows as pros and as cons
const highlightsPerSide = 3

var (
	ErrInvalidItemID = errors.New("item id must be positive")
	ErrSameItem      = errors.New("cannot compare an item with itself")
	ErrItemNotFound  = errors.New("item not found")
)

// Catalog is the read side of the item store
type Catalog interface {
	scoring.StatsReader
	// FetchItem returns nil without error when the item does not exist
	FetchItem(ctx context.Context, itemID int64) (*models.Item, error)
	FetchReviewHighlights(ctx context.Context, itemID int64, positive bool, limit int) ([]string, error)
	ListRanked(ctx context.Context, opts scoring.RankOptions) ([]models.RankedItem, error)
}

// InsightReader loads stored community insights
type InsightReader interface {
	FetchCommunityInsight(ctx context.Context, productName string) (*models.CommunityInsight, error)
}

// Service combines the analyzer, the score cache and the insight aggregator
type Service struct {
	analyzer   *sentiment.Analyzer
	extractor  *keywords.Extractor
	cache      *scoring.Cache
	aggregator *insights.Aggregator
	catalog    Catalog
	insights   InsightReader
}

// NewService creates new ranker service
func NewService(
	analyzer *sentiment.Analyzer,
	extractor *keywords.Extractor,
	cache *scoring.Cache,
	aggregator *insights.Aggregator,
	catalog Catalog,
	insightReader InsightReader,
) *Service {
	return &Service{
		analyzer:   analyzer,
		extractor:  extractor,
		cache:      cache,
		aggregator: aggregator,
		catalog:    catalog,
		insights:   insightReader,
	}
}

// AnalyzeSentiment scores text in [-1, 1]
func (s *Service) AnalyzeSentiment(text string) float64 {
	return s.analyzer.AnalyzeSentiment(text)
}

// ExtractKeywords returns the most frequent meaningful words of text
func (s *Service) ExtractKeywords(text string) []string {
	return s.extractor.Extract(text)
}

// GetOrComputeScore returns the item's score, recomputing it when the
// stored one is missing or stale
func (s *Service) GetOrComputeScore(ctx context.Context, itemID int64) scoring.Result {
	if itemID <= 0 {
		return invalidItem(itemID)
	}
	return s.cache.GetOrCompute(ctx, itemID)
}

// RecomputeScore recomputes and stores the item's score unconditionally
func (s *Service) RecomputeScore(ctx context.Context, itemID int64) scoring.Result {
	if itemID <= 0 {
		return invalidItem(itemID)
	}
	return s.cache.Refresh(ctx, itemID)
}

// AfterReviewInserted refreshes the score once a new review is stored.
// Callers analyze the review text with AnalyzeSentiment before inserting it.
func (s *Service) AfterReviewInserted(ctx context.Context, itemID int64) scoring.Result {
	res := s.RecomputeScore(ctx, itemID)
	if res.IsDegraded() {
		logger.Warn("score refresh after review degraded",
			zap.Int64("item_id", itemID),
			zap.String("reason", string(res.Degraded)),
			zap.Error(res.Err),
		)
	}
	return res
}

// CachedScore returns the stored score without recomputing, 0 when the
// item has none or the store fails
func (s *Service) CachedScore(ctx context.Context, itemID int64) float64 {
	score, _, err := s.cache.Cached(ctx, itemID)
	if err != nil {
		logger.Error("failed to read cached score", zap.Int64("item_id", itemID), zap.Error(err))
		return 0
	}
	return score
}

// UpdateInsights merges text keywords into the product's insight. Failures
// are logged and do not reach the caller.
func (s *Service) UpdateInsights(ctx context.Context, productName, text string, sentimentScore float64) {
	if _, err := s.aggregator.Merge(ctx, productName, text, sentimentScore); err != nil {
		logger.Error("failed to update community insights",
			zap.String("product", productName),
			zap.Float64("sentiment", sentimentScore),
			zap.Error(err),
		)
	}
}

// AfterPostCreated analyzes a community post and folds it into the
// product's insight, returning the post sentiment
func (s *Service) AfterPostCreated(ctx context.Context, productName, text string) float64 {
	score := s.AnalyzeSentiment(text)
	s.UpdateInsights(ctx, productName, text, score)
	return score
}

// GetInsight returns the product's insight, nil when none exists yet
func (s *Service) GetInsight(ctx context.Context, productName string) (*models.CommunityInsight, error) {
	insight, err := s.insights.FetchCommunityInsight(ctx, productName)
	if err != nil {
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}
	return insight, nil
}

// RankItems lists items by stored score
func (s *Service) RankItems(ctx context.Context, opts scoring.RankOptions) ([]models.RankedItem, error) {
	items, err := s.catalog.ListRanked(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to rank items: %w", err)
	}
	return items, nil
}

// CompareItems builds a side-by-side view of two different items
func (s *Service) CompareItems(ctx context.Context, a, b int64) ([2]models.ItemComparison, error) {
	var out [2]models.ItemComparison

	if a <= 0 || b <= 0 {
		return out, ErrInvalidItemID
	}
	if a == b {
		return out, ErrSameItem
	}

	for i, id := range [2]int64{a, b} {
		cmp, err := s.compareOne(ctx, id)
		if err != nil {
			return out, err
		}
		out[i] = cmp
	}
	return out, nil
}

func (s *Service) compareOne(ctx context.Context, itemID int64) (models.ItemComparison, error) {
	item, err := s.catalog.FetchItem(ctx, itemID)
	if err != nil {
		return models.ItemComparison{}, fmt.Errorf("failed to load item for comparison: %w", err)
	}
	if item == nil {
		return models.ItemComparison{}, fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}

	res := s.cache.GetOrCompute(ctx, itemID)

	cmp := models.ItemComparison{
		ItemID:   itemID,
		Title:    item.Title,
		Score:    res.Float(),
		Degraded: string(res.Degraded),
		Pros:     []string{},
		Cons:     []string{},
	}

	stats, err := s.catalog.FetchReviewStats(ctx, itemID)
	if err != nil {
		logger.Warn("review stats unavailable for comparison", zap.Int64("item_id", itemID), zap.Error(err))
		if cmp.Degraded == "" {
			cmp.Degraded = string(scoring.DegradedStats)
		}
	} else {
		cmp.ReviewCount = stats.ReviewCount
		cmp.AvgRating = models.RoundRating(stats.AvgRating)
		cmp.AvgSentiment = models.RoundScore(stats.AvgSentiment)
	}

	if pros, err := s.catalog.FetchReviewHighlights(ctx, itemID, true, highlightsPerSide); err == nil {
		cmp.Pros = pros
	} else {
		logger.Warn("failed to load pros", zap.Int64("item_id", itemID), zap.Error(err))
	}
	if cons, err := s.catalog.FetchReviewHighlights(ctx, itemID, false, highlightsPerSide); err == nil {
		cmp.Cons = cons
	} else {
		logger.Warn("failed to load cons", zap.Int64("item_id", itemID), zap.Error(err))
	}

	return cmp, nil
}

func invalidItem(itemID int64) scoring.Result {
	return scoring.Result{
		Source:   scoring.SourceComputed,
		Degraded: scoring.DegradedInvalidArgument,
		Err:      fmt.Errorf("%w: %d", ErrInvalidItemID, itemID),
	}
}
