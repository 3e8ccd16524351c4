// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested entity does not exist.
// It is internal to the package: credential lookups collapse it into
// CodeInvalidCredentials before anything reaches a caller, so a failed
// login never reveals whether the username exists.
var ErrNotFound = errors.New("not found")

// Error codes attached to oops errors produced by this package.
const (
	// CodeInvalidCredentials covers both unknown usernames and wrong
	// passwords. The two cases are deliberately indistinguishable.
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"

	// CodeInvalidHash marks a stored password hash that cannot be parsed.
	CodeInvalidHash = "AUTH_INVALID_HASH"

	// CodeUnauthenticated marks a missing, invalid, or expired session.
	CodeUnauthenticated = "SESSION_UNAUTHENTICATED"

	// CodeStoreFailed marks a session store backend failure. It is never
	// collapsed into CodeUnauthenticated: treating a broken store as
	// "not logged in" would fail open.
	CodeStoreFailed = "SESSION_STORE_FAILED"
)

// IsRejected reports whether err represents a failed credential check,
// as opposed to an infrastructure failure.
func IsRejected(err error) bool {
	return hasCode(err, CodeInvalidCredentials)
}

// IsUnauthenticated reports whether err represents a missing or expired
// session. Store failures are not unauthenticated.
func IsUnauthenticated(err error) bool {
	return hasCode(err, CodeUnauthenticated)
}

func hasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == code
}
