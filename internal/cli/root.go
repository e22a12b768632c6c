// SPDX-License-Identifier: AGPL-3.0-or-later

/*

topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package cli wires together the topofsm root Cobra command and global
// CLI options.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"topofsm/internal/cli/commands"
)

// NewRootCommand constructs the topofsm root Cobra command, wiring the
// validate, reachable, and plan subcommands.
func NewRootCommand() *cobra.Command {
	version := os.Getenv("TOPOFSM_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "topofsm",
		Short:         "topofsm – composed-FSM topology analysis CLI",
		Long:          "topofsm analyses distributed-application topologies modeled as interacting finite-state machines: reachability enumeration and all-pairs shortest-path planning over legal moves.",
		SilenceUsage:  true, // don't dump usage on user errors
		SilenceErrors: true, // centralize error printing in main()
	}

	// Global flags - registered in lexicographic order for deterministic help output
	cmd.PersistentFlags().StringP("format", "f", "", "output format: text or json")
	cmd.PersistentFlags().StringP("topology", "t", "", "path to the topology file")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	// Version command – simple and explicit.
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of topofsm",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "topofsm version %s\n", version)
		},
	})

	// Subcommands - keep registrations in lexicographic order by .Use
	// to ensure deterministic help output.
	cmd.AddCommand(commands.NewPlanCommand())
	cmd.AddCommand(commands.NewReachableCommand())
	cmd.AddCommand(commands.NewValidateCommand())

	return cmd
}
