// Package budget tracks elapsed wall-clock time against execution ceilings.
//
// The orchestration margin is set below the deployment's own hard limit so
// runs fail with a clear reason instead of being killed mid-call.
package budget

import (
	"context"
	"time"
)

// Remaining returns how much of the margin is left since start.
// It never returns a negative duration.
func Remaining(start time.Time, margin time.Duration) time.Duration {
	left := margin - time.Since(start)
	if left < 0 {
		return 0
	}
	return left
}

// Exceeded reports whether the margin has been spent since start.
func Exceeded(start time.Time, margin time.Duration) bool {
	return time.Since(start) > margin
}

// Sleep blocks for d unless the context is cancelled first.
// All of the engine's suspension points go through here.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
