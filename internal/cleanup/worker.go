package cleanup

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/appointly/appointment-backend/internal/reservation"
)

const (
	DefaultSweepSpec = "*/5 * * * *"
	DefaultStatsSpec = "@hourly"
)

// Store is the slice of the reservation service the worker needs.
type Store interface {
	ExpireStale(ctx context.Context) (int, []string, error)
	Stats(ctx context.Context) (reservation.Stats, error)
}

// SweepResult reports one cleanup pass.
type SweepResult struct {
	ExpiredCount int
	OrderIDs     []string
}

// Worker periodically expires overdue reservation holds and reports store
// statistics. Sweeps are serialized: a tick that fires while the previous
// sweep is still running is skipped, not queued.
type Worker struct {
	log       *zap.Logger
	store     Store
	sweepSpec string
	statsSpec string

	mu     sync.Mutex
	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
}

func NewWorker(log *zap.Logger, store Store, sweepSpec, statsSpec string) *Worker {
	if sweepSpec == "" {
		sweepSpec = DefaultSweepSpec
	}
	if statsSpec == "" {
		statsSpec = DefaultStatsSpec
	}
	return &Worker{log: log, store: store, sweepSpec: sweepSpec, statsSpec: statsSpec}
}

// Start begins the periodic loop. Invalid specs fall back to the defaults
// rather than failing startup.
func (w *Worker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)

	c := cron.New()
	if _, err := c.AddFunc(w.sweepSpec, func() { w.sweep(w.runCtx) }); err != nil {
		w.log.Warn("cleanup.worker: invalid sweep cron spec; falling back to default",
			zap.String("spec", w.sweepSpec), zap.Error(err))
		_, _ = c.AddFunc(DefaultSweepSpec, func() { w.sweep(w.runCtx) })
	}
	if _, err := c.AddFunc(w.statsSpec, func() { w.reportStats(w.runCtx) }); err != nil {
		w.log.Warn("cleanup.worker: invalid stats cron spec; falling back to default",
			zap.String("spec", w.statsSpec), zap.Error(err))
		_, _ = c.AddFunc(DefaultStatsSpec, func() { w.reportStats(w.runCtx) })
	}
	c.Start()
	w.cron = c
}

// Stop cancels in-flight sweeps and waits for running jobs to finish.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		ctx := w.cron.Stop()
		<-ctx.Done()
	}
}

// RunNow triggers one sweep outside the schedule. Unlike the cron path it
// waits for a concurrent sweep to finish and reports the outcome.
func (w *Worker) RunNow(ctx context.Context) (*SweepResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	count, ids, err := w.store.ExpireStale(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		w.log.Info("cleanup.worker: manual sweep expired holds",
			zap.Int("expired", count), zap.Strings("order_ids", ids))
	}
	return &SweepResult{ExpiredCount: count, OrderIDs: ids}, nil
}

func (w *Worker) sweep(ctx context.Context) {
	if !w.mu.TryLock() {
		w.log.Info("cleanup.worker: previous sweep still running; skipping tick")
		return
	}
	defer w.mu.Unlock()

	count, ids, err := w.store.ExpireStale(ctx)
	if err != nil {
		// The next tick retries; a failed sweep never takes the worker down.
		w.log.Error("cleanup.worker: sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("cleanup.worker: expired stale holds",
			zap.Int("expired", count), zap.Strings("order_ids", ids))
	}
}

func (w *Worker) reportStats(ctx context.Context) {
	stats, err := w.store.Stats(ctx)
	if err != nil {
		w.log.Error("cleanup.worker: stats query failed", zap.Error(err))
		return
	}
	w.log.Info("cleanup.worker: reservation store stats",
		zap.Int("total", stats.Total),
		zap.Int("reserved", stats.Reserved),
		zap.Int("confirmed", stats.Confirmed),
		zap.Int("expired", stats.Expired),
	)
}
