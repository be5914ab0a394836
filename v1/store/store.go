package store

import (
	"context"
	"time"
)

// Store is the contract a backing key-value store must satisfy for
// distributed locking. Both operations must be atomic on the store side:
// no caller may ever observe a partial claim or a partial release.
type Store interface {
	// SetIfAbsent sets key to value with the given ttl, only if the key
	// currently holds no value, all in a single atomic step. It reports
	// whether the write happened. A non-nil error means the store could not
	// be reached or failed; it never means "key already set".
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// DeleteIfMatch deletes key only if its current value equals value, as
	// one atomic unit. It reports whether the delete happened. A separate
	// get followed by a delete is not an acceptable implementation: the key
	// could expire and be re-claimed by another owner in between.
	DeleteIfMatch(ctx context.Context, key, value string) (bool, error)
}
