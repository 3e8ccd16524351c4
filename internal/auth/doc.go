// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package auth provides credential verification and session management.
//
// # Domain Types
//
// Domain types (Account, Principal, Session) should be created using
// their respective constructors:
//   - NewAccount - creates an Account with validated username and password hash
//   - NewSession - creates a Session with validated principal and expiry
//
// Direct struct initialization bypasses validation and may create invalid state.
//
// # Services
//
// Service types coordinate domain operations:
//   - Verifier - checks a plaintext password against a stored account
//   - SessionManager - login, session resolution, logout
//
// Services are created with New* constructors that validate dependencies.
// The SessionManager owns no global state: its backing SessionStore is
// injected at construction time.
package auth
