package metrics

import "context"

// Metric is a single analytics row
type Metric interface {
	// TableName returns the analytics table the row belongs to
	TableName() string
	// Columns returns column names in the order of Values
	Columns() []string
	// Values returns the row values
	Values() []interface{}
}

// Writer persists batches of rows to an analytics store
type Writer interface {
	Write(ctx context.Context, tableName string, columns []string, rows []Metric) error
	Close() error
}

// Recorder accepts rows for asynchronous delivery
type Recorder interface {
	Add(metric Metric) error
}

// NopRecorder drops every row. Used when analytics are disabled.
type NopRecorder struct{}

// Add implements Recorder
func (NopRecorder) Add(Metric) error { return nil }
