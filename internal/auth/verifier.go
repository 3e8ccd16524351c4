// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// dummyPasswordHash is used when a username doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$2a$10$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Verifier checks plaintext passwords against stored accounts.
type Verifier struct {
	store  CredentialStore
	hasher PasswordHasher
}

// NewVerifier creates a Verifier.
func NewVerifier(store CredentialStore, hasher PasswordHasher) (*Verifier, error) {
	if store == nil {
		return nil, oops.Errorf("credential store cannot be nil")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher cannot be nil")
	}
	return &Verifier{store: store, hasher: hasher}, nil
}

// Verify authenticates a username/password pair and returns the principal.
// Unknown usernames and wrong passwords produce the same error, and the
// unknown-username path still runs a full-cost hash comparison so response
// time does not reveal whether the account exists.
// The plaintext password is never logged or attached to errors.
func (v *Verifier) Verify(ctx context.Context, username, password string) (Principal, error) {
	account, lookupErr := v.store.Lookup(ctx, username)

	// Determine which hash to verify against (real or dummy for timing attack prevention).
	var targetHash string
	var accountExists bool

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			targetHash = dummyPasswordHash
			accountExists = false
		} else {
			return Principal{}, oops.Code("AUTH_VERIFY_FAILED").
				With("operation", "lookup account").
				Wrap(lookupErr)
		}
	} else {
		targetHash = account.PasswordHash
		accountExists = true
	}

	// Always run the comparison so timing stays independent of existence.
	valid, verifyErr := v.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		// Dummy hash parse errors are indistinguishable from a mismatch.
		if !accountExists {
			return Principal{}, rejected()
		}
		return Principal{}, oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "verify password").
			With("username", username).
			Wrap(verifyErr)
	}

	if !accountExists || !valid {
		return Principal{}, rejected()
	}

	return account.Principal(), nil
}

// rejected builds the generic credential failure. The message never says
// which of the two fields was wrong.
func rejected() error {
	return oops.Code(CodeInvalidCredentials).Errorf("invalid username or password")
}
