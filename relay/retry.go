package relay

import (
	"context"
	"log/slog"
	"time"
)

// sleepFunc pauses for d or until ctx is cancelled. Replaceable in tests.
var sleepFunc = func(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// backoffDelay returns the pause before retry k (1-indexed): 1s, 2s, 4s, …
func backoffDelay(retry int) time.Duration {
	return time.Duration(1<<(retry-1)) * time.Second
}

// attemptWithBackoff runs fn up to attempts times with exponential backoff
// between attempts — never before the first. It stops at the first success
// or when ctx is cancelled, and returns the last failure otherwise.
func attemptWithBackoff(ctx context.Context, log *slog.Logger, attempts int, fn func() error) error {
	var err error
	for retry := 0; retry < attempts; retry++ {
		if retry > 0 {
			log.Info("retrying", "retry", retry, "max", attempts)
			sleepFunc(ctx, backoffDelay(retry))
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}
