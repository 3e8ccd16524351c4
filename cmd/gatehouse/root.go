package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the gatehouse CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gatehouse",
		Short: "Gatehouse - credential verification and session service",
		Long: `Gatehouse verifies user credentials against stored password hashes
and manages short-lived server-side sessions referenced by an opaque
cookie token.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHashCmd())
	cmd.AddCommand(NewDeriveCmd())

	return cmd
}
