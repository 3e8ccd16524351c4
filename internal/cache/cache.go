// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package cache provides an in-memory expiring key/value store.
package cache

import (
	"log/slog"
	"sync"
	"time"
)

// entry pairs a value with its expiry deadline.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// expired reports whether the entry is past its deadline at t.
func (e entry[V]) expired(t time.Time) bool {
	return !t.Before(e.expiresAt)
}

// Store is a concurrency-safe map with per-entry TTL. Expired entries
// are treated as missing on Get even before the janitor evicts them.
// All methods are safe for concurrent use; a Get that follows a Put on
// the same goroutine always observes the written value.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates a Store. If janitorInterval > 0, a background goroutine
// evicts expired entries on that interval until Stop is called.
func New[V any](janitorInterval time.Duration) *Store[V] {
	s := &Store[V]{
		entries: make(map[string]entry[V]),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if janitorInterval > 0 {
		go s.janitor(janitorInterval)
	} else {
		close(s.done)
	}

	return s
}

// Put stores value under key. A TTL <= 0 stores an already-expired
// entry, which is immediately missing on Get.
func (s *Store[V]) Put(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry[V]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Get returns the live value for key. Expired entries are missing and
// are evicted on the spot.
func (s *Store[V]) Get(key string) (V, bool) {
	now := time.Now()

	s.mu.RLock()
	e, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		recordMiss()
		var zero V
		return zero, false
	}

	if e.expired(now) {
		// Re-check under the write lock: another goroutine may have
		// replaced the entry since the read lock was dropped.
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur.expired(now) {
			delete(s.entries, key)
			recordEviction()
		}
		s.mu.Unlock()

		recordMiss()
		var zero V
		return zero, false
	}

	recordHit()
	return e.value, true
}

// Remove deletes key. Removing a missing key is a no-op.
func (s *Store[V]) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Len returns the number of live (unexpired) entries.
func (s *Store[V]) Len() int {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Stop halts the janitor goroutine. Idempotent. The store remains
// usable after Stop; only active eviction ends.
func (s *Store[V]) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}

// janitor periodically evicts expired entries until Stop is called.
func (s *Store[V]) janitor(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.evictExpired(); n > 0 {
				slog.Debug("evicted expired cache entries", "count", n)
			}
		}
	}
}

// evictExpired removes all expired entries and returns the count.
func (s *Store[V]) evictExpired() int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			n++
		}
	}
	if n > 0 {
		recordEvictions(n)
	}
	return n
}
