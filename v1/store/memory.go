package store

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
	timer     *time.Timer
}

// InMemory implements Store using local memory. It honors the same atomicity
// contract as the Redis backend and is meant for tests and single-process
// use; it obviously cannot coordinate lockers in different processes.
type InMemory struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewInMemory returns a new in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]*entry)}
}

// SetIfAbsent implements Store.SetIfAbsent. A non-positive ttl means the
// entry never expires.
func (s *InMemory) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		if !expired(e) {
			return false, nil
		}
		s.drop(key, e)
	}
	e := &entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
		e.timer = time.AfterFunc(ttl, func() {
			s.expire(key, value)
		})
	}
	s.entries[key] = e
	return true, nil
}

// DeleteIfMatch implements Store.DeleteIfMatch.
func (s *InMemory) DeleteIfMatch(ctx context.Context, key, value string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if expired(e) {
		s.drop(key, e)
		return false, nil
	}
	if e.value != value {
		return false, nil
	}
	s.drop(key, e)
	return true, nil
}

// expire removes key once its timer fires, but only if it still holds the
// value the timer was armed for. The value check guards against the timer
// racing with a release followed by a fresh claim.
func (s *InMemory) expire(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok && e.value == value {
		delete(s.entries, key)
	}
}

func (s *InMemory) drop(key string, e *entry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(s.entries, key)
}

func expired(e *entry) bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}
