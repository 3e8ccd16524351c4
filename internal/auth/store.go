// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"time"

	"github.com/gatehouse/gatehouse/internal/cache"
)

// CacheSessionStore adapts cache.Store to the SessionStore interface.
// The in-memory backend cannot fail, so the error returns are always nil;
// they exist so a persistent backend can slot in without changing the
// SessionManager contract.
type CacheSessionStore struct {
	store *cache.Store[Session]
}

// NewCacheSessionStore wraps an expiring cache as a SessionStore.
func NewCacheSessionStore(store *cache.Store[Session]) *CacheSessionStore {
	return &CacheSessionStore{store: store}
}

// Put stores a session under key with the given TTL.
func (c *CacheSessionStore) Put(_ context.Context, key string, session Session, ttl time.Duration) error {
	c.store.Put(key, session, ttl)
	return nil
}

// Get retrieves a live session by key.
func (c *CacheSessionStore) Get(_ context.Context, key string) (Session, bool, error) {
	session, ok := c.store.Get(key)
	return session, ok, nil
}

// Remove deletes a session by key.
func (c *CacheSessionStore) Remove(_ context.Context, key string) error {
	c.store.Remove(key)
	return nil
}
