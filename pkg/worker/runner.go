package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/selivandex/catalog-ranker/pkg/logger"
)

// Worker is one unit of periodic background work
type Worker interface {
	// Name returns worker name for logging
	Name() string
	// Run executes one iteration of work
	Run(ctx context.Context) error
}

// PeriodicWorker runs a Worker on start and then every interval
type PeriodicWorker struct {
	worker   Worker
	interval time.Duration
	clock    clockwork.Clock
	wg       sync.WaitGroup
	name     string
}

// NewPeriodicWorker creates new periodic worker
func NewPeriodicWorker(worker Worker, interval time.Duration, clock clockwork.Clock) *PeriodicWorker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PeriodicWorker{
		worker:   worker,
		interval: interval,
		clock:    clock,
		name:     worker.Name(),
	}
}

// Start runs the worker in the background until ctx is cancelled
func (pw *PeriodicWorker) Start(ctx context.Context) {
	pw.wg.Add(1)
	go pw.run(ctx)
}

// Wait blocks until the worker exits or timeout passes. It reports whether
// the worker stopped in time.
func (pw *PeriodicWorker) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		pw.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("worker stopped", zap.String("worker", pw.name))
		return true
	case <-time.After(timeout):
		logger.Warn("worker stop timeout", zap.String("worker", pw.name))
		return false
	}
}

func (pw *PeriodicWorker) run(ctx context.Context) {
	defer pw.wg.Done()

	logger.Info("worker started",
		zap.String("worker", pw.name),
		zap.Duration("interval", pw.interval),
	)

	pw.runOnce(ctx)

	ticker := pw.clock.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopping", zap.String("worker", pw.name))
			return

		case <-ticker.Chan():
			pw.runOnce(ctx)
		}
	}
}

// runOnce logs failures and keeps the loop alive
func (pw *PeriodicWorker) runOnce(ctx context.Context) {
	if err := pw.worker.Run(ctx); err != nil {
		logger.Error("worker execution failed",
			zap.String("worker", pw.name),
			zap.Error(err),
		)
	}
}

// Group starts and stops several periodic workers together
type Group struct {
	workers []*PeriodicWorker
	clock   clockwork.Clock
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// NewGroup creates a worker group bound to ctx
func NewGroup(ctx context.Context, clock clockwork.Clock) *Group {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{ctx: ctx, cancel: cancel, clock: clock}
}

// Add registers a worker; it starts with the group
func (g *Group) Add(worker Worker, interval time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.workers = append(g.workers, NewPeriodicWorker(worker, interval, g.clock))
}

// Start starts all workers
func (g *Group) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, w := range g.workers {
		w.Start(g.ctx)
	}

	logger.Info("worker group started", zap.Int("workers", len(g.workers)))
}

// Stop cancels the group and waits for every worker
func (g *Group) Stop(timeout time.Duration) {
	g.cancel()

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, w := range g.workers {
		w.Wait(timeout)
	}

	logger.Info("worker group stopped", zap.Int("workers", len(g.workers)))
}
