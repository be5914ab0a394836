// Package store defines the minimal backing-store contract the locker needs:
// two primitives the store must execute atomically. Implementations are
// provided for Redis and for local memory. Transport, authentication and
// replication of the store are out of scope and opaque to the locker.
package store
