// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionTokenBytes is the entropy of a session token (32 bytes = 64 hex chars).
const SessionTokenBytes = 32

// Session is server-side session state for an authenticated principal.
// The plaintext token is handed to the client as a cookie value; the
// store is keyed by its SHA-256 hash, so a leaked store dump does not
// yield usable tokens.
type Session struct {
	Principal Principal
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewSession creates a validated Session expiring ttl after now.
func NewSession(principal Principal, now time.Time, ttl time.Duration) (Session, error) {
	if principal.ID.Compare(ulid.ULID{}) == 0 {
		return Session{}, oops.Code("SESSION_INVALID_PRINCIPAL").Errorf("principal ID cannot be zero")
	}
	if ttl <= 0 {
		return Session{}, oops.Code("SESSION_INVALID_TTL").
			With("ttl", ttl.String()).
			Errorf("session TTL must be positive")
	}
	return Session{
		Principal: principal,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// IsExpired returns true if the session has expired.
func (s Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the session would be expired at the given time.
// Useful for testing with deterministic time values.
func (s Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// GenerateSessionToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token goes to the client; the hash keys the session store.
func GenerateSessionToken() (token, hash string, err error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashSessionToken(token)

	return token, hash, nil
}

// HashSessionToken computes the SHA-256 hash of a session token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifySessionToken checks if the plaintext token matches the stored hash.
// Uses constant-time comparison to prevent timing attacks.
func VerifySessionToken(token, hash string) (bool, error) {
	if token == "" {
		return false, oops.Code("SESSION_TOKEN_EMPTY").Errorf("session token cannot be empty")
	}
	if hash == "" {
		return false, oops.Code("SESSION_HASH_EMPTY").Errorf("stored hash cannot be empty")
	}
	computed := HashSessionToken(token)
	// Both are hex-encoded SHA-256 hashes (64 chars), use constant-time compare.
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1, nil
}

// SessionStore is the mutable shared resource backing session state.
// Implementations synchronize internally; callers never lock around it.
// Expired entries are Missing on Get even before physical eviction.
type SessionStore interface {
	// Put stores a session under key with the given TTL.
	Put(ctx context.Context, key string, session Session, ttl time.Duration) error

	// Get retrieves a live session. ok is false when the key is missing
	// or expired; err is reserved for backend failures.
	Get(ctx context.Context, key string) (session Session, ok bool, err error)

	// Remove deletes a session. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
