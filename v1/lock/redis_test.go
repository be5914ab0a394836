package lock

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/mirkobrombin/go-dislock/v1/store"
)

func newRedisLocker(t *testing.T) (*Locker, *miniredis.Miniredis, context.Context) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(store.NewRedis(client)), mr, context.Background()
}

func TestRedisLockUnlock(t *testing.T) {
	l, mr, ctx := newRedisLocker(t)
	token, err := l.Lock(ctx, "k", WithTTL(time.Second))
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if got, _ := mr.Get("k"); got != token {
		t.Fatalf("store holds %q, want the token", got)
	}
	released, err := l.Unlock(ctx, "k", token)
	if err != nil || !released {
		t.Fatalf("unlock: %v released %v", err, released)
	}
	if mr.Exists("k") {
		t.Fatal("record still present after unlock")
	}
}

func TestRedisConcurrentClaimSingleWinner(t *testing.T) {
	l, _, ctx := newRedisLocker(t)
	var wins atomic.Int64
	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			_, ok, err := l.TryLock(ctx, "k", time.Minute)
			if err != nil {
				return err
			}
			if ok {
				wins.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if n := wins.Load(); n != 1 {
		t.Fatalf("expected exactly one winner, got %d", n)
	}
}

func TestRedisStaleTokenUnlock(t *testing.T) {
	l, mr, ctx := newRedisLocker(t)
	token, err := l.Lock(ctx, "k", WithTTL(time.Minute))
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	released, err := l.Unlock(ctx, "k", newToken("k"))
	if err != nil || released {
		t.Fatalf("foreign token must not release, released %v err %v", released, err)
	}
	if got, _ := mr.Get("k"); got != token {
		t.Fatalf("record changed by a foreign release, got %q", got)
	}
}

func TestRedisExpirySteal(t *testing.T) {
	l, mr, ctx := newRedisLocker(t)
	stale, err := l.Lock(ctx, "k", WithTTL(time.Second))
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	// Simulated crash: no unlock, the ttl does the cleanup.
	mr.FastForward(500 * time.Millisecond)
	if _, ok, err := l.TryLock(ctx, "k", time.Second); err != nil || ok {
		t.Fatalf("claim before expiry must fail, ok %v err %v", ok, err)
	}
	mr.FastForward(700 * time.Millisecond)
	token, ok, err := l.TryLock(ctx, "k", time.Minute)
	if err != nil || !ok {
		t.Fatalf("claim after expiry: ok %v err %v", ok, err)
	}
	// The crashed owner's token no longer releases anything.
	if released, err := l.Unlock(ctx, "k", stale); err != nil || released {
		t.Fatalf("stale unlock must be a miss, released %v err %v", released, err)
	}
	if got, _ := mr.Get("k"); got != token {
		t.Fatalf("new owner's record gone, got %q", got)
	}
}

func TestRedisUnavailableIsNotBusy(t *testing.T) {
	l, mr, ctx := newRedisLocker(t)
	mr.Close()
	_, err := l.Lock(ctx, "k", WithTTL(time.Second))
	if err == nil {
		t.Fatal("expected store error")
	}
	if errors.Is(err, ErrLockBusy) || errors.Is(err, ErrAcquireTimeout) {
		t.Fatalf("store error conflated with a negative result: %v", err)
	}
}
