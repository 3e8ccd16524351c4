// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk shape of an account seed file.
type seedFile struct {
	Accounts []seedAccount `yaml:"accounts"`
}

// seedAccount is a single provisioned account entry.
type seedAccount struct {
	ID           string `yaml:"id"`
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	DisplayName  string `yaml:"display_name"`
}

// LoadSeedAccounts reads provisioned accounts from a YAML file.
// Each entry must carry a ULID id, a username, and a password hash
// produced by the configured hashing scheme.
func LoadSeedAccounts(path string) ([]*Account, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from operator config.
	if err != nil {
		return nil, oops.Code("AUTH_SEED_FAILED").
			With("path", path).
			Wrap(err)
	}
	return ParseSeedAccounts(data)
}

// ParseSeedAccounts parses YAML seed data into validated accounts.
func ParseSeedAccounts(data []byte) ([]*Account, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, oops.Code("AUTH_SEED_FAILED").
			With("operation", "parse yaml").
			Wrap(err)
	}

	accounts := make([]*Account, 0, len(f.Accounts))
	for _, entry := range f.Accounts {
		id, err := ulid.Parse(entry.ID)
		if err != nil {
			return nil, oops.Code("AUTH_SEED_FAILED").
				With("username", entry.Username).
				With("id", entry.ID).
				Wrap(err)
		}
		account, err := NewAccount(id, entry.Username, entry.PasswordHash, entry.DisplayName)
		if err != nil {
			return nil, oops.Code("AUTH_SEED_FAILED").
				With("username", entry.Username).
				Wrap(err)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}
