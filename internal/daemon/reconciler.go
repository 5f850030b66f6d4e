package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/underlay/internal/platform"
)

// Pruner drops relocation records of windows that no longer exist.
type Pruner interface {
	Prune() []platform.WindowID
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically forgets windows that were destroyed while relocated.
type Reconciler struct {
	interval time.Duration
	pruner   Pruner
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, pruner Pruner) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		pruner:   pruner,
		logger:   logger,
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
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() (gone []platform.WindowID) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	gone = r.pruner.Prune()
	for _, id := range gone {
		r.logger.Info("reconciler: relocated window no longer exists", "window_id", id)
	}
	return gone
}

// ReconcileNow triggers an immediate reconciliation pass and returns the
// windows whose records were dropped.
func (r *Reconciler) ReconcileNow() []platform.WindowID {
	return r.reconcile()
}
