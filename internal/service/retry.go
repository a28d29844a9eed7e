package service

import (
	"context"
	"math/rand"
	"time"
)

const maxBackoffShift = 16

// conflictBackoff computes base*2^attempt plus uniform jitter in [0, jitter).
func conflictBackoff(attempt int, base, jitter time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	delay := base << uint(attempt)
	if jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(jitter))) //nolint:gosec // non-crypto backoff jitter
	}
	return delay
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
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
