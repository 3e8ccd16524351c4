// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"fmt"
)

// Mode selects how an operation is guarded. It is passed explicitly to
// Guard rather than looked up by name at dispatch time.
type Mode int

const (
	// ModeNone skips authentication entirely.
	ModeNone Mode = iota

	// ModeRequired rejects requests without a live session.
	ModeRequired

	// ModeOptional resolves the session when present but lets
	// anonymous requests through.
	ModeOptional
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeRequired:
		return "required"
	case ModeOptional:
		return "optional"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Guard applies the auth mode to a session id.
// Returns the resolved principal, or nil for anonymous access under
// ModeNone and ModeOptional. Under ModeRequired a missing or expired
// session is an error with code CodeUnauthenticated. Store failures
// propagate under every mode.
func (m *SessionManager) Guard(ctx context.Context, mode Mode, sessionID string) (*Principal, error) {
	switch mode {
	case ModeNone:
		return nil, nil

	case ModeOptional:
		principal, err := m.Resolve(ctx, sessionID)
		if err != nil {
			if IsUnauthenticated(err) {
				return nil, nil
			}
			return nil, err
		}
		return &principal, nil

	case ModeRequired:
		principal, err := m.Resolve(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return &principal, nil

	default:
		return nil, fmt.Errorf("unknown auth mode %d", int(mode))
	}
}
