package scoring

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/selivandex/catalog-ranker/pkg/models"
)

// DefaultRankLimit is the listing size when none is requested
const DefaultRankLimit = 5

// RankOptions filters a score-ordered item listing
type RankOptions struct {
	Query    string  // substring of title or description, empty for all
	MinScore float64 // drop items scoring below this
	Limit    int
}

// ListRanked returns items ordered by stored score, then average rating.
// Items never scored rank as 0.
func (r *Repository) ListRanked(ctx context.Context, opts RankOptions) ([]models.RankedItem, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultRankLimit
	}

	postgres := r.db.DriverName() == "postgres"
	var placeholder sq.PlaceholderFormat = sq.Question
	if postgres {
		placeholder = sq.Dollar
	}

	builder := sq.Select(
		"i.id AS item_id",
		"i.title",
		"COALESCE(s.score_value, 0) AS score",
		"COALESCE(AVG(rv.rating), 0) AS avg_rating",
		"COUNT(rv.id) AS review_count",
	).
		From("items i").
		LeftJoin("reviews rv ON rv.item_id = i.id").
		LeftJoin("scores s ON s.item_id = i.id").
		GroupBy("i.id", "i.title", "s.score_value").
		OrderBy("score DESC", "avg_rating DESC", "i.id").
		Limit(uint64(limit)).
		PlaceholderFormat(placeholder)

	if opts.Query != "" {
		pattern := "%" + opts.Query + "%"
		// SQLite LIKE already ignores ASCII case
		if postgres {
			builder = builder.Where(sq.Or{sq.ILike{"i.title": pattern}, sq.ILike{"i.description": pattern}})
		} else {
			builder = builder.Where(sq.Or{sq.Like{"i.title": pattern}, sq.Like{"i.description": pattern}})
		}
	}
	if opts.MinScore > 0 {
		builder = builder.Where(sq.GtOrEq{"COALESCE(s.score_value, 0)": opts.MinScore})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ranking query: %w", err)
	}

	var items []models.RankedItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list ranked items: %w", err)
	}

	for i := range items {
		items[i].Score = models.RoundScore(items[i].Score)
		items[i].AvgRating = models.RoundRating(items[i].AvgRating)
	}

	return items, nil
}
