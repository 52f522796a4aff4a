package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/platform"
)

// ViewportNotifier is told when the viewport size drifts.
type ViewportNotifier interface {
	ViewportChanged()
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically re-reads a viewport whose size is owned by the
// display server and publishes a snapshot when it changes.
type Reconciler struct {
	interval time.Duration
	viewport platform.Viewport
	notify   ViewportNotifier
	logger   *slog.Logger

	mu   sync.Mutex
	last geom.Size
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, viewport platform.Viewport, notify ViewportNotifier) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		viewport: viewport,
		notify:   notify,
		logger:   logger,
		last:     viewport.Size(),
	}
}

func (r *Reconciler) String() string { return "viewport-reconciler" }

// Serve runs the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return ctx.Err()
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	size := r.viewport.Size()

	r.mu.Lock()
	prev := r.last
	r.last = size
	r.mu.Unlock()

	if size == prev {
		return
	}
	r.logger.Info("viewport changed", "from", prev, "to", size)
	r.notify.ViewportChanged()
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
