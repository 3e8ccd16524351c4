// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/kdf"
)

// NewDeriveCmd creates the derive subcommand. Each invocation draws a
// fresh random salt; there is no flag to supply one.
func NewDeriveCmd() *cobra.Command {
	var (
		iterations int
		saltBytes  int
		keyBytes   int
	)

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive a key from a password (PBKDF2-SHA512)",
		Long: `Read a password from stdin and print a freshly salted PBKDF2-SHA512
derivation as base64. Iteration counts below the policy minimum are
raised to it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			deriver := kdf.NewDeriver(kdf.Params{
				Iterations: iterations,
				SaltLength: saltBytes,
				KeyLength:  keyBytes,
			})

			salt, key, err := deriver.DeriveNew(password)
			if err != nil {
				return fmt.Errorf("derivation failed: %w", err)
			}

			cmd.Printf("salt: %s\n", base64.StdEncoding.EncodeToString(salt))
			cmd.Printf("key:  %s\n", base64.StdEncoding.EncodeToString(key))
			return nil
		},
	}

	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultKDFIterations, "PBKDF2 iteration count")
	cmd.Flags().IntVar(&saltBytes, "salt-bytes", config.DefaultKDFSaltBytes, "salt length in bytes")
	cmd.Flags().IntVar(&keyBytes, "key-bytes", config.DefaultKDFKeyBytes, "derived key length in bytes")

	return cmd
}
