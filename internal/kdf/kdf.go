// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package kdf provides password-based key derivation with an enforced
// salt policy. Derivation is PBKDF2-SHA512; salts always come from
// crypto/rand via GenerateSalt. There is no code path that accepts a
// fixed salt or a caller-trusted salt below the policy minimum:
// violations fail closed with KDF_INVALID_PARAMETER.
package kdf

import (
	"crypto/rand"
	"crypto/sha512"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// Policy minimums. Callers can raise the cost, never lower it.
const (
	// MinSaltLength is the smallest salt accepted, in bytes.
	MinSaltLength = 16

	// MinIterations is the floor on the PBKDF2 iteration count.
	// Caller-supplied counts below it are raised, not honored, so a
	// misconfigured caller cannot downgrade the derivation cost.
	MinIterations = 100_000
)

// CodeInvalidParameter marks malformed derivation input. It is a
// programming or configuration error and is surfaced, never swallowed.
const CodeInvalidParameter = "KDF_INVALID_PARAMETER"

// Derive computes a keyLength-byte PBKDF2-SHA512 key from the password
// and salt. It is a pure function: identical inputs always produce
// identical output, and no password material is retained.
//
// iterations below MinIterations are raised to MinIterations; a value
// less than 1 is rejected outright as a caller bug rather than floored.
func Derive(password string, salt []byte, iterations, keyLength int) ([]byte, error) {
	if iterations < 1 {
		return nil, oops.Code(CodeInvalidParameter).
			With("iterations", iterations).
			Errorf("iterations must be at least 1")
	}
	if keyLength <= 0 {
		return nil, oops.Code(CodeInvalidParameter).
			With("key_length", keyLength).
			Errorf("key length must be positive")
	}
	if len(salt) < MinSaltLength {
		return nil, oops.Code(CodeInvalidParameter).
			With("salt_length", len(salt)).
			With("min", MinSaltLength).
			Errorf("salt must be at least %d bytes", MinSaltLength)
	}

	if iterations < MinIterations {
		iterations = MinIterations
	}

	return pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha512.New), nil
}

// GenerateSalt returns length cryptographically random bytes. Lengths
// below the policy minimum are rejected.
func GenerateSalt(length int) ([]byte, error) {
	if length < MinSaltLength {
		return nil, oops.Code(CodeInvalidParameter).
			With("salt_length", length).
			With("min", MinSaltLength).
			Errorf("salt must be at least %d bytes", MinSaltLength)
	}

	salt := make([]byte, length)
	if _, err := rand.Read(salt); err != nil {
		return nil, oops.Code("KDF_SALT_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	return salt, nil
}

// Params configures a Deriver. Zero fields take policy defaults.
type Params struct {
	Iterations int // PBKDF2 iteration count, floored at MinIterations
	SaltLength int // salt bytes for DeriveNew, at least MinSaltLength
	KeyLength  int // derived key bytes
}

// DefaultKeyLength is the derived key size when Params.KeyLength is zero.
const DefaultKeyLength = 64

// normalized returns p with defaults applied.
func (p Params) normalized() Params {
	if p.Iterations < MinIterations {
		p.Iterations = MinIterations
	}
	if p.SaltLength < MinSaltLength {
		p.SaltLength = MinSaltLength
	}
	if p.KeyLength <= 0 {
		p.KeyLength = DefaultKeyLength
	}
	return p
}

// Deriver derives keys with a fixed, policy-validated parameter set.
// It is the entry point for callers hashing newly provisioned
// credentials; the per-request login path never touches it.
type Deriver struct {
	params Params
}

// NewDeriver creates a Deriver. Parameters below policy minimums are
// raised to them.
func NewDeriver(params Params) *Deriver {
	return &Deriver{params: params.normalized()}
}

// Params returns the effective parameter set.
func (d *Deriver) Params() Params {
	return d.params
}

// DeriveNew generates a fresh salt and derives a key from the password.
// Every call draws a new salt; there is no way to reuse one.
func (d *Deriver) DeriveNew(password string) (salt, key []byte, err error) {
	salt, err = GenerateSalt(d.params.SaltLength)
	if err != nil {
		return nil, nil, err
	}
	key, err = Derive(password, salt, d.params.Iterations, d.params.KeyLength)
	if err != nil {
		return nil, nil, err
	}
	return salt, key, nil
}

// Derive recomputes the key for a previously generated salt, e.g. to
// check a stored derivation. The salt must satisfy the policy minimum.
func (d *Deriver) Derive(password string, salt []byte) ([]byte, error) {
	return Derive(password, salt, d.params.Iterations, d.params.KeyLength)
}
