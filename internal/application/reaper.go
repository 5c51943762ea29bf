package application

import (
	"context"
	"log/slog"
	"time"
)

const defaultReapInterval = 30 * time.Second

// ExpiredHoldReaper removes holds past their expiry.
type ExpiredHoldReaper interface {
	ReapExpired(ctx context.Context) (int, error)
}

// HoldReaper sweeps expired holds on a fixed interval.
type HoldReaper struct {
	holds    ExpiredHoldReaper
	interval time.Duration
	logger   *slog.Logger
}

// NewHoldReaper constructs a reaper. A non-positive interval uses 30 seconds.
func NewHoldReaper(holds ExpiredHoldReaper, interval time.Duration, logger *slog.Logger) *HoldReaper {
	if interval <= 0 {
		interval = defaultReapInterval
	}
	return &HoldReaper{holds: holds, interval: interval, logger: defaultLogger(logger)}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
// Sweep failures are logged and retried on the next tick.
func (r *HoldReaper) Run(ctx context.Context) {
	logger := r.logger.With("component", "HoldReaper", "interval", r.interval)
	logger.InfoContext(ctx, "hold reaper started")
	defer logger.InfoContext(context.WithoutCancel(ctx), "hold reaper stopped")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.sweep(ctx, logger)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *HoldReaper) sweep(ctx context.Context, logger *slog.Logger) {
	removed, err := r.holds.ReapExpired(ctx)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return
		}
		logger.ErrorContext(ctx, "failed to reap expired holds", "error", err, "error_kind", ErrorKind(err))
	case removed > 0:
		logger.InfoContext(ctx, "expired holds reaped", "removed", removed)
	default:
		logger.DebugContext(ctx, "no expired holds")
	}
}
