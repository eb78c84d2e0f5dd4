package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// GoroutineCount returns a liveness check that fails when the goroutine count
// exceeds limit, which usually indicates a leak.
func GoroutineCount(limit int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("%d goroutines exceed limit %d", n, limit)
		}
		return nil
	}
}

// GCMaxPause returns a liveness check that fails when the worst observed GC
// pause exceeds limit, which points at memory pressure.
func GCMaxPause(limit time.Duration) CheckFunc {
	return func(context.Context) error {
		var stats debug.GCStats
		debug.ReadGCStats(&stats)
		for _, pause := range stats.Pause {
			if pause > limit {
				return errors.Errorf("GC pause %s exceeds limit %s", pause, limit)
			}
		}
		return nil
	}
}

// Pinger is satisfied by database pools and similar connection holders.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping returns a readiness check backed by p.Ping.
func Ping(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return errors.Wrap(err, "ping")
		}
		return nil
	}
}
