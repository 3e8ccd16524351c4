// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// NewHashCmd creates the hash subcommand.
// It reads the password from stdin rather than argv so the plaintext
// never lands in shell history or the process table.
func NewHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash",
		Short: "Hash a password for an account seed file",
		Long: `Read a password from stdin and print its bcrypt hash, suitable for
the password_hash field of an account seed file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			hash, err := auth.NewBcryptHasher().Hash(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			cmd.Println(hash)
			return nil
		},
	}
}

// readPassword reads a single line from the command's stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
