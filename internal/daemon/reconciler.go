package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/viewwall/internal/orchestrator"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

// Reconciler periodically checks for state drift and corrects it.
type Reconciler struct {
	interval time.Duration
	loop     *Loop
	logger   *slog.Logger
	now      func() time.Time
}

// NewReconciler creates a new reconciler that repairs the controller owned
// by loop.
func NewReconciler(cfg ReconcilerConfig, loop *Loop) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Reconciler{
		interval: interval,
		loop:     loop,
		logger:   logger,
		now:      now,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	rep, err := r.ReconcileNow(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("reconciler: pass failed", "error", err)
		}
		return
	}

	if rep.Forced > 0 || rep.StaleDarkeners > 0 {
		r.logger.Info("reconciliation complete",
			"forced", rep.Forced,
			"stale_darkeners", rep.StaleDarkeners,
			"live", rep.Live)
	} else {
		r.logger.Debug("reconciliation complete: no drift", "live", rep.Live)
	}
}

// ReconcileNow runs one pass on the loop goroutine and returns its report.
func (r *Reconciler) ReconcileNow(ctx context.Context) (orchestrator.ReconcileReport, error) {
	return Query(ctx, r.loop, func(c *orchestrator.Controller) orchestrator.ReconcileReport {
		return c.Reconcile(r.now())
	})
}
