package session

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is used when the configured interval is not positive.
const DefaultSweepInterval = 10 * time.Minute

// Sweeper periodically expires idle sessions.
type Sweeper struct {
	store    *Store
	interval time.Duration
	log      *slog.Logger
}

// NewSweeper creates a Sweeper for store.
func NewSweeper(store *Store, interval time.Duration, log *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		log:      log.With("component", "session_sweeper"),
	}
}

// Run sweeps on every tick until ctx is cancelled. It always returns nil so
// it can sit in an errgroup next to the intake loop.
func (w *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("session sweeper started", slog.Duration("interval", w.interval), slog.Duration("ttl", w.store.ttl))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("session sweeper stopped")
			return nil
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single sweep and returns the number of expired sessions.
func (w *Sweeper) RunOnce() int {
	removed := w.store.Sweep()
	if removed > 0 {
		w.log.Info("expired idle sessions", slog.Int("removed", removed), slog.Int("remaining", w.store.Len()))
	}
	return removed
}
