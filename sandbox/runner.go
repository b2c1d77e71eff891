package sandbox

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Runner steps a World on a ticker and serializes every other access to
// it with one mutex.
type Runner struct {
	mu       sync.Mutex
	w        *World
	interval time.Duration
	log      *zap.Logger
}

// NewRunner steps w every interval. A zero interval uses the world's tick
// rate.
func NewRunner(w *World, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Duration(w.dt * float64(time.Second))
	}
	return &Runner{w: w, interval: interval, log: w.log.Named("runner")}
}

// Do runs fn with exclusive access to the world.
func (r *Runner) Do(fn func(w *World) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.w)
}

// Run ticks until ctx is done or maxTicks ticks have run (0 = no limit).
// A cancelled context is a clean stop; tick errors are returned.
func (r *Runner) Run(ctx context.Context, maxTicks uint64) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var n uint64
	for {
		select {
		case <-ctx.Done():
			r.log.Debug("runner stopped", zap.Uint64("ticks", n))
			return nil
		case <-ticker.C:
			if err := r.Do(func(w *World) error { return w.Tick() }); err != nil {
				r.log.Error("tick failed", zap.Uint64("tick", n), zap.Error(err))
				return err
			}
			n++
			if maxTicks > 0 && n >= maxTicks {
				return nil
			}
		}
	}
}
