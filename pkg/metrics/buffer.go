package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/selivandex/catalog-ranker/pkg/logger"
)

// ErrBufferClosed is returned by Add once Close has started
var ErrBufferClosed = errors.New("metrics buffer closed")

// BufferedMetrics batches rows per table and flushes them on size or interval
type BufferedMetrics struct {
	writer    Writer
	clock     clockwork.Clock
	ticker    clockwork.Ticker
	buffer    map[string][]Metric
	columns   map[string][]string
	stopCh    chan struct{}
	wg        sync.WaitGroup
	batchSize int
	maxSize   int
	dropped   int
	closed    bool
	mu        sync.Mutex
	closeOnce sync.Once
}

// BufferConfig configures metrics buffer
type BufferConfig struct {
	Writer        Writer
	Clock         clockwork.Clock
	BatchSize     int           // flush when a table reaches this size
	FlushInterval time.Duration // periodic flush
	MaxBufferSize int           // rows kept per table before the oldest are dropped (0 = unlimited)
}

// NewBufferedMetrics creates the buffer and starts the periodic flush
func NewBufferedMetrics(cfg BufferConfig) *BufferedMetrics {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 10 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	bm := &BufferedMetrics{
		writer:    cfg.Writer,
		clock:     cfg.Clock,
		ticker:    cfg.Clock.NewTicker(cfg.FlushInterval),
		buffer:    make(map[string][]Metric),
		columns:   make(map[string][]string),
		stopCh:    make(chan struct{}),
		batchSize: cfg.BatchSize,
		maxSize:   cfg.MaxBufferSize,
	}

	bm.wg.Add(1)
	go bm.autoFlush()

	logger.Info("metrics buffer initialized",
		zap.Int("batch_size", cfg.BatchSize),
		zap.Duration("flush_interval", cfg.FlushInterval),
	)

	return bm
}

// Add queues a row. Reaching the batch size triggers a background flush.
func (bm *BufferedMetrics) Add(metric Metric) error {
	if metric == nil {
		return fmt.Errorf("metric is nil")
	}

	table := metric.TableName()
	if table == "" {
		return fmt.Errorf("metric table name is empty")
	}

	bm.mu.Lock()
	if bm.closed {
		bm.mu.Unlock()
		return ErrBufferClosed
	}
	rows := append(bm.buffer[table], metric)
	if bm.maxSize > 0 && len(rows) > bm.maxSize {
		bm.dropped += len(rows) - bm.maxSize
		rows = rows[len(rows)-bm.maxSize:]
	}
	bm.buffer[table] = rows
	if _, ok := bm.columns[table]; !ok {
		bm.columns[table] = metric.Columns()
	}
	full := len(rows) >= bm.batchSize
	if full {
		// counted under mu: Close marks the buffer closed before it waits
		bm.wg.Add(1)
	}
	bm.mu.Unlock()

	if full {
		logger.Debug("batch size reached, flushing", zap.String("table", table))
		go func() {
			defer bm.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := bm.Flush(ctx); err != nil {
				logger.Error("auto-flush failed", zap.Error(err))
			}
		}()
	}

	return nil
}

// Flush writes all buffered rows. Rows of a failed table are discarded.
func (bm *BufferedMetrics) Flush(ctx context.Context) error {
	bm.mu.Lock()
	pending := make(map[string][]Metric, len(bm.buffer))
	for table, rows := range bm.buffer {
		if len(rows) > 0 {
			pending[table] = rows
			bm.buffer[table] = nil
		}
	}
	bm.mu.Unlock()

	var errs []error
	for table, rows := range pending {
		bm.mu.Lock()
		columns := bm.columns[table]
		bm.mu.Unlock()

		if err := bm.writer.Write(ctx, table, columns, rows); err != nil {
			logger.Error("failed to flush metrics",
				zap.String("table", table),
				zap.Int("count", len(rows)),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("table %s: %w", table, err))
			continue
		}
		logger.Debug("metrics flushed",
			zap.String("table", table),
			zap.Int("count", len(rows)),
		)
	}

	return errors.Join(errs...)
}

// Size returns the number of buffered rows across tables
func (bm *BufferedMetrics) Size() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	total := 0
	for _, rows := range bm.buffer {
		total += len(rows)
	}
	return total
}

// Dropped returns how many rows were discarded by the size cap
func (bm *BufferedMetrics) Dropped() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.dropped
}

// Close rejects further rows, stops the periodic flush, flushes what is left
// and closes the writer
func (bm *BufferedMetrics) Close(ctx context.Context) error {
	var err error
	bm.closeOnce.Do(func() {
		bm.mu.Lock()
		bm.closed = true
		bm.mu.Unlock()

		close(bm.stopCh)
		bm.ticker.Stop()
		bm.wg.Wait()

		if flushErr := bm.Flush(ctx); flushErr != nil {
			err = flushErr
		}
		if closeErr := bm.writer.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		logger.Info("metrics buffer closed", zap.Error(err))
	})
	return err
}

func (bm *BufferedMetrics) autoFlush() {
	defer bm.wg.Done()

	for {
		select {
		case <-bm.ticker.Chan():
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := bm.Flush(ctx); err != nil {
				logger.Warn("periodic flush failed", zap.Error(err))
			}
			cancel()

		case <-bm.stopCh:
			return
		}
	}
}
