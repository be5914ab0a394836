package lock

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Guard binds an acquired lock to its token and guarantees the release runs
// at most once. A Guard never holds more than one token: it is created bound
// and Release unbinds it whatever the outcome.
type Guard struct {
	locker *Locker
	key    string

	mu    sync.Mutex
	token string
}

// Acquire obtains the lock for key and returns a Guard holding the token.
// Acquisition failures (ErrLockBusy, ErrAcquireTimeout, store errors, ctx
// cancellation) are returned as-is and no Guard is created, so there is
// never anything to release after a failed entry.
func (l *Locker) Acquire(ctx context.Context, key string, opts ...LockOption) (*Guard, error) {
	token, err := l.Lock(ctx, key, opts...)
	if err != nil {
		return nil, err
	}
	return &Guard{locker: l, key: key, token: token}, nil
}

// Key returns the guarded lock key.
func (g *Guard) Key() string { return g.key }

// Token returns the bound ownership token, or "" once released.
func (g *Guard) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

// Release unlocks the guarded key using the bound token and unbinds the
// token regardless of outcome. Calling Release again is a no-op returning
// (false, nil). A false result with a nil error means the lock had already
// expired or was taken over by another owner.
func (g *Guard) Release(ctx context.Context) (bool, error) {
	g.mu.Lock()
	token := g.token
	g.token = ""
	g.mu.Unlock()
	if token == "" {
		return false, nil
	}
	return g.locker.Unlock(ctx, g.key, token)
}

// Do runs fn while holding the lock for key. fn never runs if acquisition
// fails. The lock is released on every exit path, including a panicking fn
// and a cancelled ctx. A release failure is logged when the Locker has a
// logger and joined with fn's error rather than replacing it.
func (l *Locker) Do(ctx context.Context, key string, fn func(ctx context.Context) error, opts ...LockOption) (err error) {
	g, aerr := l.Acquire(ctx, key, opts...)
	if aerr != nil {
		return aerr
	}
	defer func() {
		// Release must still reach the store when ctx died inside fn.
		if _, rerr := g.Release(context.WithoutCancel(ctx)); rerr != nil {
			if l.logger != nil {
				l.logger.Error("lock release failed",
					zap.String("key", key), zap.Error(rerr))
			}
			err = errors.Join(err, rerr)
		}
	}()
	return fn(ctx)
}
