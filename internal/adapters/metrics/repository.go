package metrics

import (
	"context"
	"fmt"

	"github.com/selivandex/catalog-ranker/pkg/metrics"
)

// Repository stores row batches in an analytics table
type Repository interface {
	InsertBatch(ctx context.Context, tableName string, columns []string, values [][]interface{}) error
	Close() error
}

// Writer adapts a Repository to metrics.Writer
type Writer struct {
	repo Repository
}

// NewWriter creates new metrics writer with repository
func NewWriter(repo Repository) *Writer {
	return &Writer{repo: repo}
}

// Write converts rows to values and inserts them as one batch
func (w *Writer) Write(ctx context.Context, tableName string, columns []string, rows []metrics.Metric) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = row.Values()
		if len(columns) > 0 && len(values[i]) != len(columns) {
			return fmt.Errorf("row %d of %s has %d values for %d columns", i, tableName, len(values[i]), len(columns))
		}
	}

	return w.repo.InsertBatch(ctx, tableName, columns, values)
}

// Close closes writer
func (w *Writer) Close() error {
	if w.repo != nil {
		return w.repo.Close()
	}
	return nil
}
