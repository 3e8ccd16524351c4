// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"regexp"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that:
// - Start with a letter (a-z, A-Z)
// - Contain only letters, numbers, and underscores
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Account is a provisioned login account. Accounts are created at
// provisioning time and are immutable while the subsystem runs.
type Account struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	DisplayName  string
}

// Principal is the authenticated identity attached to a session.
// It copies the minimal account fields rather than referencing the
// Account, so a removed account never dangles from a live session.
type Principal struct {
	ID          ulid.ULID
	DisplayName string
}

// NewAccount creates a validated Account.
func NewAccount(id ulid.ULID, username, passwordHash, displayName string) (*Account, error) {
	if id.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("AUTH_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_ACCOUNT").
			With("username", username).
			Errorf("password hash cannot be empty")
	}
	if displayName == "" {
		displayName = username
	}
	return &Account{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
	}, nil
}

// Principal returns the identity to attach to sessions for this account.
func (a *Account) Principal() Principal {
	return Principal{ID: a.ID, DisplayName: a.DisplayName}
}

// ValidateUsername validates a username against rules.
// Username requirements:
// - Length: MinUsernameLength to MaxUsernameLength characters
// - Must start with a letter
// - Can contain only letters (a-z, A-Z), numbers (0-9), and underscores (_)
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// CredentialStore looks up provisioned accounts. Implementations are
// read-only during authentication; lookups are case-sensitive.
type CredentialStore interface {
	// Lookup retrieves an account by username.
	// Returns ErrNotFound if no account has the given username.
	Lookup(ctx context.Context, username string) (*Account, error)
}

// StaticCredentialStore is an in-memory CredentialStore seeded at
// construction. It holds no locks: the map is never written after New.
type StaticCredentialStore struct {
	accounts map[string]*Account
}

// NewStaticCredentialStore builds a store from the given accounts.
// Duplicate usernames are rejected.
func NewStaticCredentialStore(accounts []*Account) (*StaticCredentialStore, error) {
	m := make(map[string]*Account, len(accounts))
	for _, a := range accounts {
		if a == nil {
			return nil, oops.Code("AUTH_INVALID_ACCOUNT").Errorf("account cannot be nil")
		}
		if _, exists := m[a.Username]; exists {
			return nil, oops.Code("AUTH_DUPLICATE_USERNAME").
				With("username", a.Username).
				Errorf("duplicate username %q", a.Username)
		}
		m[a.Username] = a
	}
	return &StaticCredentialStore{accounts: m}, nil
}

// Lookup retrieves an account by username (case-sensitive).
func (s *StaticCredentialStore) Lookup(_ context.Context, username string) (*Account, error) {
	account, ok := s.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers cannot mutate the stored account.
	cp := *account
	return &cp, nil
}

// Len returns the number of provisioned accounts.
func (s *StaticCredentialStore) Len() int {
	return len(s.accounts)
}
