package lock

import "errors"

var (
	// ErrLockBusy is returned by a non-blocking acquisition when another
	// owner holds the key. It is a normal negative result, never a stand-in
	// for a store failure.
	ErrLockBusy = errors.New("dislock: lock busy")

	// ErrAcquireTimeout is returned by a blocking acquisition when the wait
	// budget elapsed without obtaining the lock.
	ErrAcquireTimeout = errors.New("dislock: acquire timeout")

	// ErrInvalidKey is returned when an empty lock key is provided.
	ErrInvalidKey = errors.New("dislock: key must not be empty")
	// ErrInvalidTTL is returned when a non-positive TTL is provided.
	ErrInvalidTTL = errors.New("dislock: ttl must be positive")
	// ErrInvalidInterval is returned when a non-positive poll interval is
	// provided.
	ErrInvalidInterval = errors.New("dislock: interval must be positive")
	// ErrInvalidWait is returned when a non-positive wait budget is provided.
	ErrInvalidWait = errors.New("dislock: max wait must be positive")
)
