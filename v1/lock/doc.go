// Package lock implements a distributed mutual-exclusion primitive on top of
// a shared key-value store with atomic compare-and-set and expiry. Ownership
// is purely token-based: a successful acquisition returns a secret token and
// only that token can release the lock. Locks carry a TTL so a crashed owner
// cannot wedge a resource forever.
//
// The locker is deliberately non-reentrant: a second acquisition of the same
// key, even from the same Locker or goroutine, contends like any foreign
// claimant. If the TTL elapses while the critical section is still running,
// the lock is silently gone from the store's perspective and may be held by
// another owner; choose the TTL well above the expected section duration.
package lock
