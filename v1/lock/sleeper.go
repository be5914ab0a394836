package lock

import (
	"context"
	"time"
)

// Sleeper abstracts how the acquisition loop suspends between polls. The
// loop and its state machine are identical for every implementation; only
// the waiting mechanism differs.
type Sleeper interface {
	// Sleep waits for d. Implementations that support cancellation return
	// ctx.Err() as soon as ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// ContextSleeper suspends cooperatively: the wait yields the goroutine to
// the scheduler and ends early when ctx is cancelled. This is the default.
type ContextSleeper struct{}

// Sleep implements Sleeper.
func (ContextSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BlockingSleeper suspends by blocking for the full interval. Cancellation
// is only observed once the sleep returns, so a pending acquisition may
// overrun its context by up to one poll interval.
type BlockingSleeper struct{}

// Sleep implements Sleeper.
func (BlockingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	time.Sleep(d)
	return ctx.Err()
}
