package scoring

import (
	"context"
	"time"

	"github.com/selivandex/catalog-ranker/pkg/models"
)

// StatsReader reads aggregate review statistics for an item
type StatsReader interface {
	FetchReviewStats(ctx context.Context, itemID int64) (models.ReviewStats, error)
}

// EngagementReader reads likes, dislikes and comments for an item's reviews
type EngagementReader interface {
	FetchEngagementStats(ctx context.Context, itemID int64) (models.EngagementStats, error)
}

// ScoreStore persists score records
type ScoreStore interface {
	// FetchScoreRecord returns nil without error when no record exists
	FetchScoreRecord(ctx context.Context, itemID int64) (*models.ScoreRecord, error)
	UpsertScore(ctx context.Context, itemID int64, score float64, at time.Time) error
}

// Store is everything the score cache needs from the data store
type Store interface {
	StatsReader
	EngagementReader
	ScoreStore
}
