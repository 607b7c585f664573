package scoring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/selivandex/catalog-ranker/pkg/models"
)

// Repository reads review aggregates and persists scores.
// Queries use '?' placeholders rebound for the connection's driver.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new scoring repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// FetchReviewStats returns count, averages and latest review time.
// An item without reviews yields zero stats.
func (r *Repository) FetchReviewStats(ctx context.Context, itemID int64) (models.ReviewStats, error) {
	var agg struct {
		ReviewCount  int             `db:"review_count"`
		AvgRating    sql.NullFloat64 `db:"avg_rating"`
		AvgSentiment sql.NullFloat64 `db:"avg_sentiment"`
	}

	err := r.db.GetContext(ctx, &agg, r.db.Rebind(`
		SELECT COUNT(*) AS review_count,
		       AVG(rating) AS avg_rating,
		       AVG(sentiment_score) AS avg_sentiment
		FROM reviews
		WHERE item_id = ?
	`), itemID)
	if err != nil {
		return models.ReviewStats{}, fmt.Errorf("failed to fetch review stats for item %d: %w", itemID, err)
	}

	stats := models.ReviewStats{
		ReviewCount:  agg.ReviewCount,
		AvgRating:    agg.AvgRating.Float64,
		AvgSentiment: agg.AvgSentiment.Float64,
	}
	if !stats.HasReviews() {
		return stats, nil
	}

	// Selected as a plain column so the driver keeps the timestamp type
	err = r.db.GetContext(ctx, &stats.LatestReviewAt, r.db.Rebind(`
		SELECT created_at
		FROM reviews
		WHERE item_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`), itemID)
	if err != nil {
		return models.ReviewStats{}, fmt.Errorf("failed to fetch latest review for item %d: %w", itemID, err)
	}

	return stats, nil
}

// FetchEngagementStats counts likes and dislikes on the item's reviews and
// the comments left under them
func (r *Repository) FetchEngagementStats(ctx context.Context, itemID int64) (models.EngagementStats, error) {
	var stats models.EngagementStats

	err := r.db.GetContext(ctx, &stats, r.db.Rebind(`
		SELECT COALESCE(SUM(CASE WHEN l.like_type = 1 THEN 1 ELSE 0 END), 0) AS likes,
		       COALESCE(SUM(CASE WHEN l.like_type = -1 THEN 1 ELSE 0 END), 0) AS dislikes,
		       (SELECT COUNT(*)
		        FROM comments c
		        JOIN reviews cr ON cr.id = c.review_id
		        WHERE cr.item_id = ?) AS comment_count
		FROM likes l
		JOIN reviews r ON r.id = l.review_id
		WHERE r.item_id = ?
	`), itemID, itemID)
	if err != nil {
		return models.EngagementStats{}, fmt.Errorf("failed to fetch engagement for item %d: %w", itemID, err)
	}

	return stats, nil
}

// FetchScoreRecord returns the stored score or nil when there is none
func (r *Repository) FetchScoreRecord(ctx context.Context, itemID int64) (*models.ScoreRecord, error) {
	var rec models.ScoreRecord

	err := r.db.GetContext(ctx, &rec, r.db.Rebind(`
		SELECT item_id, score_value, last_updated
		FROM scores
		WHERE item_id = ?
	`), itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch score for item %d: %w", itemID, err)
	}

	return &rec, nil
}

// UpsertScore creates or overwrites the item's score record
func (r *Repository) UpsertScore(ctx context.Context, itemID int64, score float64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO scores (item_id, score_value, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT (item_id) DO UPDATE SET
			score_value = excluded.score_value,
			last_updated = excluded.last_updated
	`), itemID, score, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert score for item %d: %w", itemID, err)
	}
	return nil
}

// ListStaleItems returns ids of reviewed items whose score is missing or
// was written before cutoff, oldest first
func (r *Repository) ListStaleItems(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	var ids []int64

	err := r.db.SelectContext(ctx, &ids, r.db.Rebind(`
		SELECT i.id
		FROM items i
		LEFT JOIN scores s ON s.item_id = i.id
		WHERE EXISTS (SELECT 1 FROM reviews rv WHERE rv.item_id = i.id)
		  AND (s.item_id IS NULL OR s.last_updated < ?)
		ORDER BY CASE WHEN s.item_id IS NULL THEN 0 ELSE 1 END, s.last_updated, i.id
		LIMIT ?
	`), cutoff.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale items: %w", err)
	}

	return ids, nil
}

// highlightLength is how much review text a highlight keeps
const highlightLength = 100

// FetchItem returns the item or nil when it does not exist
func (r *Repository) FetchItem(ctx context.Context, itemID int64) (*models.Item, error) {
	var item models.Item

	err := r.db.GetContext(ctx, &item, r.db.Rebind(`
		SELECT id, title, description
		FROM items
		WHERE id = ?
	`), itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item %d: %w", itemID, err)
	}

	return &item, nil
}

// FetchReviewHighlights returns excerpts of the most positive (rating >= 4)
// or most negative (rating <= 2) reviews of an item
func (r *Repository) FetchReviewHighlights(ctx context.Context, itemID int64, positive bool, limit int) ([]string, error) {
	query := `
		SELECT review_text
		FROM reviews
		WHERE item_id = ? AND rating >= 4 AND review_text <> ''
		ORDER BY sentiment_score DESC, rating DESC, id
		LIMIT ?`
	if !positive {
		query = `
		SELECT review_text
		FROM reviews
		WHERE item_id = ? AND rating <= 2 AND review_text <> ''
		ORDER BY sentiment_score ASC, rating ASC, id
		LIMIT ?`
	}

	var texts []string
	if err := r.db.SelectContext(ctx, &texts, r.db.Rebind(query), itemID, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch review highlights for item %d: %w", itemID, err)
	}

	highlights := make([]string, len(texts))
	for i, text := range texts {
		highlights[i] = excerpt(text, highlightLength)
	}
	return highlights, nil
}

// excerpt cuts text to n runes, marking the cut with "..."
func excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
