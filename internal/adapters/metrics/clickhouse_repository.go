package metrics

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/selivandex/catalog-ranker/internal/adapters/config"
	"github.com/selivandex/catalog-ranker/pkg/logger"
)

// analyticsSchema holds the history tables fed by the metrics buffer
var analyticsSchema = []string{
	`CREATE TABLE IF NOT EXISTS score_history (
		timestamp     DateTime64(3),
		item_id       Int64,
		score         Float64,
		review_count  Int32,
		avg_rating    Float64,
		avg_sentiment Float64,
		engagement    Int64,
		forced        Bool,
		degraded      LowCardinality(String)
	) ENGINE = MergeTree()
	ORDER BY (item_id, timestamp)`,
	`CREATE TABLE IF NOT EXISTS insight_merges (
		timestamp    DateTime64(3),
		product_name String,
		side         LowCardinality(String),
		sentiment    Float64,
		keywords     Array(String)
	) ENGINE = MergeTree()
	ORDER BY (product_name, timestamp)`,
}

// ClickHouseRepository implements Repository for ClickHouse
type ClickHouseRepository struct {
	db *sqlx.DB
}

// NewClickHouseRepository wraps an existing ClickHouse connection
func NewClickHouseRepository(db *sqlx.DB) *ClickHouseRepository {
	return &ClickHouseRepository{db: db}
}

// OpenClickHouse connects to ClickHouse and creates the history tables
func OpenClickHouse(ctx context.Context, cfg *config.ClickHouseConfig) (*ClickHouseRepository, error) {
	db, err := sqlx.Open("clickhouse", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	for _, ddl := range analyticsSchema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create analytics table: %w", err)
		}
	}

	logger.Info("clickhouse connection established",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	return &ClickHouseRepository{db: db}, nil
}

// InsertBatch inserts rows inside one transaction so the driver sends a
// single block
func (r *ClickHouseRepository) InsertBatch(ctx context.Context, tableName string, columns []string, values [][]interface{}) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, insertStatement(tableName, columns))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range values {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert row %d into %s: %w", i, tableName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s batch: %w", tableName, err)
	}

	logger.Debug("clickhouse batch insert successful",
		zap.String("table", tableName),
		zap.Int("rows", len(values)),
	)

	return nil
}

// Health pings ClickHouse
func (r *ClickHouseRepository) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the ClickHouse connection
func (r *ClickHouseRepository) Close() error {
	return r.db.Close()
}

func insertStatement(tableName string, columns []string) string {
	if len(columns) == 0 {
		return fmt.Sprintf("INSERT INTO %s", tableName)
	}
	return fmt.Sprintf("INSERT INTO %s (%s)", tableName, strings.Join(columns, ", "))
}
