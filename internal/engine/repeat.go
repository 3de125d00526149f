package engine

import (
	"context"
	"time"
)

// Repeat calls fn every interval until ctx is cancelled. Cancellation stops
// the next call from being scheduled; a call in progress runs to completion.
func Repeat(ctx context.Context, interval time.Duration, fn func()) error {
	if interval <= 0 {
		interval = time.Second / 60
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn()
		}
	}
}

// TickInterval converts a rate in Hz to a ticker interval.
func TickInterval(rate float64) time.Duration {
	if rate <= 0 {
		return time.Second / 60
	}
	return time.Duration(float64(time.Second) / rate)
}
