package insights

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/selivandex/catalog-ranker/pkg/models"
)

// Repository stores community insights with keyword lists as JSON text
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new insight repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// FetchCommunityInsight returns the product's insight or nil
func (r *Repository) FetchCommunityInsight(ctx context.Context, productName string) (*models.CommunityInsight, error) {
	var insight models.CommunityInsight

	err := r.db.GetContext(ctx, &insight, r.db.Rebind(`
		SELECT product_name, positive_keywords, negative_keywords,
		       common_praise, common_complaints, last_updated
		FROM community_insights
		WHERE product_name = ?
	`), productName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch insight for %q: %w", productName, err)
	}

	insight.DecodeKeywords()
	return &insight, nil
}

// UpsertCommunityInsight creates the product row or overwrites its lists
func (r *Repository) UpsertCommunityInsight(ctx context.Context, insight *models.CommunityInsight) error {
	if err := insight.EncodeKeywords(); err != nil {
		return fmt.Errorf("failed to encode keywords for %q: %w", insight.ProductName, err)
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO community_insights
			(product_name, positive_keywords, negative_keywords, common_praise, common_complaints, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (product_name) DO UPDATE SET
			positive_keywords = excluded.positive_keywords,
			negative_keywords = excluded.negative_keywords,
			common_praise = excluded.common_praise,
			common_complaints = excluded.common_complaints,
			last_updated = excluded.last_updated
	`), insight.ProductName, insight.PositiveJSON, insight.NegativeJSON,
		insight.CommonPraise, insight.CommonComplaints, insight.LastUpdated.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert insight for %q: %w", insight.ProductName, err)
	}

	return nil
}
