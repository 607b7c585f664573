package insights

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/selivandex/catalog-ranker/internal/keywords"
	"github.com/selivandex/catalog-ranker/pkg/logger"
	"github.com/selivandex/catalog-ranker/pkg/metrics"
	"github.com/selivandex/catalog-ranker/pkg/models"
)

// Side is the keyword list a post contributes to
type Side string

const (
	SidePositive Side = "positive"
	SideNegative Side = "negative"
	SideNone     Side = "none"
)

// SideFor picks the list for a sentiment score. Scores within the neutral
// band touch neither list.
func SideFor(sentiment float64) Side {
	switch models.LabelFor(sentiment) {
	case models.SentimentPositive:
		return SidePositive
	case models.SentimentNegative:
		return SideNegative
	default:
		return SideNone
	}
}

// summaryKeywords is how many leading keywords make up praise/complaints
const summaryKeywords = 3

// Store persists community insights
type Store interface {
	// FetchCommunityInsight returns nil without error when none exists
	FetchCommunityInsight(ctx context.Context, productName string) (*models.CommunityInsight, error)
	UpsertCommunityInsight(ctx context.Context, insight *models.CommunityInsight) error
}

// Aggregator folds post keywords into per-product insights
type Aggregator struct {
	store     Store
	extractor *keywords.Extractor
	clock     clockwork.Clock
	recorder  metrics.Recorder

	mu    sync.Mutex
	locks map[string]*productLock
}

type productLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithClock replaces the wall clock
func WithClock(clock clockwork.Clock) Option {
	return func(a *Aggregator) { a.clock = clock }
}

// WithRecorder sends merges to the analytics history
func WithRecorder(recorder metrics.Recorder) Option {
	return func(a *Aggregator) { a.recorder = recorder }
}

// NewAggregator creates new insight aggregator
func NewAggregator(store Store, extractor *keywords.Extractor, opts ...Option) *Aggregator {
	if extractor == nil {
		extractor = keywords.NewExtractor()
	}

	a := &Aggregator{
		store:     store,
		extractor: extractor,
		clock:     clockwork.NewRealClock(),
		recorder:  metrics.NopRecorder{},
		locks:     make(map[string]*productLock),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Merge extracts keywords from text and merges them into the product's
// list chosen by sentiment. The first post for a product creates its row.
// Merges for one product are serialized.
func (a *Aggregator) Merge(ctx context.Context, productName, text string, sentiment float64) (*models.CommunityInsight, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, fmt.Errorf("product name is empty")
	}

	unlock := a.lock(productName)
	defer unlock()

	side := SideFor(sentiment)
	var words []string
	if side != SideNone {
		words = a.extractor.Extract(text)
	}

	insight, err := a.store.FetchCommunityInsight(ctx, productName)
	if err != nil {
		metrics.InsightFailures.Inc()
		return nil, fmt.Errorf("failed to load insight for %q: %w", productName, err)
	}
	if insight == nil {
		insight = &models.CommunityInsight{
			ProductName:      productName,
			PositiveKeywords: []string{},
			NegativeKeywords: []string{},
		}
	}

	switch side {
	case SidePositive:
		insight.PositiveKeywords = MergeKeywords(words, insight.PositiveKeywords, models.MaxInsightKeywords)
	case SideNegative:
		insight.NegativeKeywords = MergeKeywords(words, insight.NegativeKeywords, models.MaxInsightKeywords)
	}

	insight.CommonPraise = summarize(insight.PositiveKeywords)
	insight.CommonComplaints = summarize(insight.NegativeKeywords)
	insight.LastUpdated = a.clock.Now()

	if err := a.store.UpsertCommunityInsight(ctx, insight); err != nil {
		metrics.InsightFailures.Inc()
		return nil, fmt.Errorf("failed to save insight for %q: %w", productName, err)
	}

	metrics.InsightMerges.WithLabelValues(string(side)).Inc()
	if err := a.recorder.Add(&metrics.InsightMergedMetric{
		Timestamp:   insight.LastUpdated,
		ProductName: productName,
		Side:        string(side),
		Sentiment:   sentiment,
		Keywords:    words,
	}); err != nil {
		logger.Warn("failed to record insight merge", zap.String("product", productName), zap.Error(err))
	}

	logger.Debug("community insight merged",
		zap.String("product", productName),
		zap.String("side", string(side)),
		zap.Strings("keywords", words),
	)

	return insight, nil
}

// MergeKeywords puts fresh keywords ahead of existing ones, drops repeats
// keeping the first occurrence and truncates to limit
func MergeKeywords(fresh, existing []string, limit int) []string {
	merged := make([]string, 0, min(len(fresh)+len(existing), limit))
	seen := make(map[string]struct{}, len(fresh)+len(existing))

	for _, list := range [][]string{fresh, existing} {
		for _, w := range list {
			if len(merged) == limit {
				return merged
			}
			if _, dup := seen[w]; dup || w == "" {
				continue
			}
			seen[w] = struct{}{}
			merged = append(merged, w)
		}
	}
	return merged
}

func summarize(words []string) *string {
	if len(words) == 0 {
		return nil
	}
	s := strings.Join(words[:min(len(words), summaryKeywords)], ", ")
	return &s
}

// lock serializes merges per product and drops idle entries
func (a *Aggregator) lock(productName string) func() {
	a.mu.Lock()
	pl, ok := a.locks[productName]
	if !ok {
		pl = &productLock{}
		a.locks[productName] = pl
	}
	pl.refs++
	a.mu.Unlock()

	pl.mu.Lock()

	return func() {
		pl.mu.Unlock()

		a.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(a.locks, productName)
		}
		a.mu.Unlock()
	}
}
