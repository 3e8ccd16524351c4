// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
)

func mustAccount(t *testing.T, username, hash, displayName string) *auth.Account {
	t.Helper()
	account, err := auth.NewAccount(ulid.Make(), username, hash, displayName)
	require.NoError(t, err)
	return account
}

func TestNewAccount(t *testing.T) {
	t.Run("valid account", func(t *testing.T) {
		id := ulid.Make()
		account, err := auth.NewAccount(id, "john", "$2a$10$hash", "John Doe")
		require.NoError(t, err)
		assert.Equal(t, id, account.ID)
		assert.Equal(t, "john", account.Username)
		assert.Equal(t, "John Doe", account.DisplayName)
	})

	t.Run("display name defaults to username", func(t *testing.T) {
		account, err := auth.NewAccount(ulid.Make(), "jane", "$2a$10$hash", "")
		require.NoError(t, err)
		assert.Equal(t, "jane", account.DisplayName)
	})

	t.Run("rejects zero id", func(t *testing.T) {
		_, err := auth.NewAccount(ulid.ULID{}, "john", "$2a$10$hash", "John Doe")
		assert.Error(t, err)
	})

	t.Run("rejects empty password hash", func(t *testing.T) {
		_, err := auth.NewAccount(ulid.Make(), "john", "", "John Doe")
		assert.Error(t, err)
	})

	t.Run("rejects invalid username", func(t *testing.T) {
		for _, username := range []string{"", "ab", "1john", "has space", "has-dash"} {
			_, err := auth.NewAccount(ulid.Make(), username, "$2a$10$hash", "")
			assert.Error(t, err, "username %q should be rejected", username)
		}
	})
}

func TestStaticCredentialStore(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup finds seeded account", func(t *testing.T) {
		john := mustAccount(t, "john", "$2a$10$hash", "John Doe")
		store, err := auth.NewStaticCredentialStore([]*auth.Account{john})
		require.NoError(t, err)

		got, err := store.Lookup(ctx, "john")
		require.NoError(t, err)
		assert.Equal(t, john.ID, got.ID)
		assert.Equal(t, "John Doe", got.DisplayName)
	})

	t.Run("lookup is case-sensitive", func(t *testing.T) {
		store, err := auth.NewStaticCredentialStore([]*auth.Account{
			mustAccount(t, "john", "$2a$10$hash", "John Doe"),
		})
		require.NoError(t, err)

		_, err = store.Lookup(ctx, "John")
		assert.True(t, errors.Is(err, auth.ErrNotFound))
	})

	t.Run("missing username returns ErrNotFound", func(t *testing.T) {
		store, err := auth.NewStaticCredentialStore(nil)
		require.NoError(t, err)

		_, err = store.Lookup(ctx, "nobody")
		assert.True(t, errors.Is(err, auth.ErrNotFound))
	})

	t.Run("rejects duplicate usernames", func(t *testing.T) {
		_, err := auth.NewStaticCredentialStore([]*auth.Account{
			mustAccount(t, "john", "$2a$10$hash", "John Doe"),
			mustAccount(t, "john", "$2a$10$other", "Other John"),
		})
		assert.Error(t, err)
	})

	t.Run("lookup returns a copy", func(t *testing.T) {
		store, err := auth.NewStaticCredentialStore([]*auth.Account{
			mustAccount(t, "john", "$2a$10$hash", "John Doe"),
		})
		require.NoError(t, err)

		first, err := store.Lookup(ctx, "john")
		require.NoError(t, err)
		first.DisplayName = "mutated"

		second, err := store.Lookup(ctx, "john")
		require.NoError(t, err)
		assert.Equal(t, "John Doe", second.DisplayName)
	})
}
