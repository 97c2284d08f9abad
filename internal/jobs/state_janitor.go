package jobs

import (
	"context"
	"log/slog"
	"time"
)

// StateSweeper deletes conversation states whose TTL has passed.
type StateSweeper interface {
	DeleteExpiredStates(ctx context.Context) (int64, error)
}

// StateJanitor periodically removes expired conversation states from stores
// that do not expire keys on their own.
type StateJanitor struct {
	states   StateSweeper
	interval time.Duration
}

// NewStateJanitor creates a new janitor.
func NewStateJanitor(states StateSweeper, interval time.Duration) *StateJanitor {
	return &StateJanitor{states: states, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled.
func (j *StateJanitor) Start(ctx context.Context) {
	slog.Info("state janitor started", "interval", j.interval)

	// Run immediately on start
	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("state janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *StateJanitor) sweep(ctx context.Context) {
	n, err := j.states.DeleteExpiredStates(ctx)
	if err != nil {
		slog.Error("failed to delete expired conversation states", "error", err)
		return
	}
	if n > 0 {
		slog.Debug("deleted expired conversation states", "count", n)
	}
}
