// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/kdf"
)

// runDerive executes the derive command against in and returns the
// decoded salt and key it printed.
func runDerive(t *testing.T, in string, args ...string) (salt, key []byte) {
	t.Helper()

	cmd := NewDeriveCmd()
	cmd.SetIn(strings.NewReader(in))
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs(args)

	require.NoError(t, cmd.Execute())

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		field, value, found := strings.Cut(line, ":")
		require.True(t, found, "unexpected output line %q", line)

		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
		require.NoError(t, err)

		switch strings.TrimSpace(field) {
		case "salt":
			salt = decoded
		case "key":
			key = decoded
		}
	}

	require.NotNil(t, salt, "no salt in output")
	require.NotNil(t, key, "no key in output")
	return salt, key
}

func TestDerive_Defaults(t *testing.T) {
	salt, key := runDerive(t, "correct horse\n")

	assert.Len(t, salt, 32)
	assert.Len(t, key, 64)
}

func TestDerive_CustomLengths(t *testing.T) {
	salt, key := runDerive(t, "correct horse\n", "--salt-bytes", "16", "--key-bytes", "32")

	assert.Len(t, salt, 16)
	assert.Len(t, key, 32)
}

func TestDerive_FreshSaltPerInvocation(t *testing.T) {
	salt1, key1 := runDerive(t, "correct horse\n")
	salt2, key2 := runDerive(t, "correct horse\n")

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, key1, key2)
}

func TestDerive_ShortSaltFlooredToPolicyMinimum(t *testing.T) {
	salt, _ := runDerive(t, "correct horse\n", "--salt-bytes", "8")

	assert.Len(t, salt, kdf.MinSaltLength)
}
