package lock

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mirkobrombin/go-dislock/v1/metrics"
	"github.com/mirkobrombin/go-dislock/v1/store"
)

var tracer = otel.Tracer("github.com/mirkobrombin/go-dislock/v1/lock")

// DefaultInterval is the default poll interval of a blocking acquisition.
const DefaultInterval = 250 * time.Millisecond

// Locker coordinates "one owner at a time" access to named resources through
// a shared Store. All serialization lives in the store: the Locker keeps no
// lock state between calls and there is no in-process fast path, so lockers
// in one process and in many processes behave identically.
type Locker struct {
	store        store.Store
	ttl          time.Duration
	interval     time.Duration
	block        bool
	sleeper      Sleeper
	logger       *zap.Logger
	traceEnabled bool
}

// Option configures a Locker.
type Option func(*Locker)

// WithDefaultTTL sets the TTL used when a call does not pass its own. There
// is no built-in default: without this option every call must provide a TTL.
func WithDefaultTTL(d time.Duration) Option {
	return func(l *Locker) { l.ttl = d }
}

// WithPollInterval sets the default interval at which a blocking acquisition
// re-polls the store.
func WithPollInterval(d time.Duration) Option {
	return func(l *Locker) { l.interval = d }
}

// WithDefaultBlock sets whether acquisitions block by default.
func WithDefaultBlock(block bool) Option {
	return func(l *Locker) { l.block = block }
}

// WithSleeper selects how the acquisition loop suspends between polls.
func WithSleeper(s Sleeper) Option {
	return func(l *Locker) { l.sleeper = s }
}

// WithLogger sets the logger used to report release failures on scoped
// exits. Without it the locker stays silent.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Locker) { l.logger = logger }
}

// WithTracing enables OpenTelemetry spans for lock operations.
func WithTracing() Option {
	return func(l *Locker) { l.traceEnabled = true }
}

// New returns a Locker backed by s. Acquisitions block by default and poll
// every DefaultInterval; suspension is cooperative (ContextSleeper).
func New(s store.Store, opts ...Option) *Locker {
	l := &Locker{
		store:    s,
		interval: DefaultInterval,
		block:    true,
		sleeper:  ContextSleeper{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type lockConfig struct {
	ttl      time.Duration
	interval time.Duration
	block    bool
	maxWait  time.Duration
}

// LockOption overrides the Locker defaults for a single call.
type LockOption func(*lockConfig)

// WithTTL sets the TTL for this acquisition.
func WithTTL(d time.Duration) LockOption {
	return func(c *lockConfig) { c.ttl = d }
}

// WithInterval sets the poll interval for this acquisition.
func WithInterval(d time.Duration) LockOption {
	return func(c *lockConfig) { c.interval = d }
}

// WithBlock sets whether this acquisition blocks.
func WithBlock(block bool) LockOption {
	return func(c *lockConfig) { c.block = block }
}

// WithMaxWait sets the wait budget of this blocking acquisition. When unset
// the budget defaults to the TTL.
func WithMaxWait(d time.Duration) LockOption {
	return func(c *lockConfig) { c.maxWait = d }
}

func (l *Locker) config(opts []LockOption) lockConfig {
	c := lockConfig{
		ttl:      l.ttl,
		interval: l.interval,
		block:    l.block,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Arguments are rejected before any store call.
func (c lockConfig) validate(key string) error {
	switch {
	case key == "":
		return ErrInvalidKey
	case c.ttl <= 0:
		return ErrInvalidTTL
	case c.interval <= 0:
		return ErrInvalidInterval
	case c.maxWait < 0:
		return ErrInvalidWait
	}
	return nil
}

// TryLock makes exactly one claim attempt for key with the given ttl. On
// success it returns the ownership token and true. False with a nil error
// means another valid owner holds the key; a non-nil error means the store
// could not be reached and says nothing about who holds the lock.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}
	if ttl <= 0 {
		return "", false, ErrInvalidTTL
	}
	ctx, span := l.startSpan(ctx, "Locker.TryLock", key)
	token, ok, err := l.claim(ctx, key, ttl)
	l.endSpan(span, ok, err)
	return token, ok, err
}

// claim is one iteration of the acquisition protocol: mint a fresh token and
// try to bind it atomically. A fresh token per attempt keeps a lost earlier
// attempt from ever being mistaken for this one.
func (l *Locker) claim(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := newToken(key)
	ok, err := l.store.SetIfAbsent(ctx, key, token, ttl)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	metrics.AcquireCounter.Inc()
	return token, true, nil
}

// Lock acquires the lock for key and returns the ownership token. When
// blocking, it re-polls the store on the configured interval until the lock
// is obtained, the wait budget elapses (ErrAcquireTimeout) or ctx is done.
// A non-blocking miss returns ErrLockBusy immediately. Store failures abort
// the loop and are returned as-is; they are never reported as a busy lock.
func (l *Locker) Lock(ctx context.Context, key string, opts ...LockOption) (string, error) {
	cfg := l.config(opts)
	if err := cfg.validate(key); err != nil {
		return "", err
	}
	ctx, span := l.startSpan(ctx, "Locker.Lock", key)
	token, err := l.acquire(ctx, key, cfg)
	l.endSpan(span, err == nil, err)
	return token, err
}

func (l *Locker) acquire(ctx context.Context, key string, cfg lockConfig) (string, error) {
	if !cfg.block {
		token, ok, err := l.claim(ctx, key, cfg.ttl)
		if err != nil {
			return "", err
		}
		if !ok {
			metrics.BusyCounter.Inc()
			return "", ErrLockBusy
		}
		return token, nil
	}

	maxWait := cfg.maxWait
	if maxWait == 0 {
		maxWait = cfg.ttl
	}
	start := time.Now()
	deadline := start.Add(maxWait)
	for {
		// The claim runs before the deadline check so that a budget shorter
		// than one poll interval still gets one attempt.
		token, ok, err := l.claim(ctx, key, cfg.ttl)
		if err != nil {
			return "", err
		}
		if ok {
			metrics.WaitHistogram.Observe(time.Since(start).Seconds())
			return token, nil
		}
		if !time.Now().Before(deadline) {
			metrics.TimeoutCounter.Inc()
			return "", ErrAcquireTimeout
		}
		if err := l.sleeper.Sleep(ctx, cfg.interval); err != nil {
			return "", err
		}
	}
}

// Unlock releases the lock for key if token still owns it. The released
// result reports whether the record was removed; false with a nil error
// means the lock had already expired or was re-claimed by another owner. On
// a store failure the ownership state is genuinely unknown: the caller may
// neither assume the lock was released nor that it is still held.
func (l *Locker) Unlock(ctx context.Context, key, token string) (bool, error) {
	if key == "" {
		return false, ErrInvalidKey
	}
	ctx, span := l.startSpan(ctx, "Locker.Unlock", key)
	released, err := l.store.DeleteIfMatch(ctx, key, token)
	l.endSpan(span, released, err)
	if err != nil {
		return false, err
	}
	if released {
		metrics.ReleaseCounter.Inc()
	} else {
		metrics.LostReleaseCounter.Inc()
	}
	return released, nil
}

func (l *Locker) startSpan(ctx context.Context, name, key string) (context.Context, trace.Span) {
	if !l.traceEnabled {
		return ctx, nil
	}
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("dislock.key", key))
	return ctx, span
}

func (l *Locker) endSpan(span trace.Span, ok bool, err error) {
	if span == nil {
		return
	}
	switch {
	case err != nil:
		span.SetAttributes(attribute.String("dislock.result", "error"))
	case ok:
		span.SetAttributes(attribute.String("dislock.result", "ok"))
	default:
		span.SetAttributes(attribute.String("dislock.result", "miss"))
	}
	span.End()
}
