// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"time"

	"github.com/samber/oops"
)

// SessionManager orchestrates login, session resolution, and logout.
// Each instance owns a reference to an injected SessionStore; there is
// no shared cache singleton and no global session counter. Session ids
// come from crypto/rand, never from a sequence.
type SessionManager struct {
	verifier *Verifier
	sessions SessionStore
	ttl      time.Duration
}

// NewSessionManager creates a SessionManager with the given session TTL.
func NewSessionManager(verifier *Verifier, sessions SessionStore, ttl time.Duration) (*SessionManager, error) {
	if verifier == nil {
		return nil, oops.Errorf("verifier cannot be nil")
	}
	if sessions == nil {
		return nil, oops.Errorf("session store cannot be nil")
	}
	if ttl <= 0 {
		return nil, oops.With("ttl", ttl.String()).Errorf("session TTL must be positive")
	}
	return &SessionManager{
		verifier: verifier,
		sessions: sessions,
		ttl:      ttl,
	}, nil
}

// TTL returns the configured session lifetime.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Login authenticates the credentials and creates a session.
// On success it returns the opaque session id for the caller to set as
// a cookie. A login cancelled before the store write commits nothing.
func (m *SessionManager) Login(ctx context.Context, username, password string) (string, error) {
	principal, err := m.verifier.Verify(ctx, username, password)
	if err != nil {
		if IsRejected(err) {
			recordLogin(loginStatusRejected)
		} else {
			recordLogin(loginStatusError)
		}
		return "", err
	}

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		recordLogin(loginStatusError)
		return "", err
	}

	session, err := NewSession(principal, time.Now(), m.ttl)
	if err != nil {
		recordLogin(loginStatusError)
		return "", err
	}

	// The store write is the single commit point. Past cancellation
	// means no partial session; after the write the login succeeded.
	if ctx.Err() != nil {
		recordLogin(loginStatusError)
		return "", oops.Code("AUTH_LOGIN_CANCELLED").Wrap(ctx.Err())
	}

	if err := m.sessions.Put(ctx, tokenHash, session, m.ttl); err != nil {
		recordLogin(loginStatusError)
		return "", oops.Code(CodeStoreFailed).
			With("operation", "persist session").
			Wrap(err)
	}

	recordLogin(loginStatusSuccess)
	return token, nil
}

// Resolve returns the principal for a session id, or an error with code
// CodeUnauthenticated when the id is unknown or expired. Store failures
// propagate with CodeStoreFailed and are never treated as a logged-out
// state.
func (m *SessionManager) Resolve(ctx context.Context, sessionID string) (Principal, error) {
	if sessionID == "" {
		return Principal{}, unauthenticated()
	}

	session, ok, err := m.sessions.Get(ctx, HashSessionToken(sessionID))
	if err != nil {
		return Principal{}, oops.Code(CodeStoreFailed).
			With("operation", "get session").
			Wrap(err)
	}
	if !ok {
		return Principal{}, unauthenticated()
	}

	// Lazy-expiry backends already hide expired entries; re-check for
	// backends that don't.
	if session.IsExpired() {
		_ = m.sessions.Remove(ctx, HashSessionToken(sessionID)) //nolint:errcheck // Best effort cleanup
		return Principal{}, unauthenticated()
	}

	return session.Principal, nil
}

// Logout removes the session. Idempotent: logging out an unknown or
// already-expired id is not an error.
func (m *SessionManager) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := m.sessions.Remove(ctx, HashSessionToken(sessionID)); err != nil {
		return oops.Code(CodeStoreFailed).
			With("operation", "remove session").
			Wrap(err)
	}
	return nil
}

func unauthenticated() error {
	return oops.Code(CodeUnauthenticated).Errorf("not authenticated")
}
