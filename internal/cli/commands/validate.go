// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"topofsm/pkg/config"
	"topofsm/pkg/logging"
)

// NewValidateCommand returns the `topofsm validate` command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a topology file and build its initial application",
		Long:  "Parses the topology file, constructs every node spec, and builds the initial application, reporting any structural violation.",
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	flags, err := ResolveFlags(cmd)
	if err != nil {
		return fmt.Errorf("resolving flags: %w", err)
	}

	logger := logging.New(flags.Verbose)
	defer func() { _ = logger.Sync() }()

	top, err := config.Load(flags.Topology)
	if err != nil {
		if err == config.ErrConfigNotFound {
			return fmt.Errorf("topology file not found at %s", flags.Topology)
		}
		return fmt.Errorf("loading topology: %w", err)
	}

	app, err := top.Build()
	if err != nil {
		return fmt.Errorf("building application: %w", err)
	}

	return printValidateResult(cmd.OutOrStdout(), app.GlobalState(), app.IsConsistent(), app.IsContainmentConsistent())
}

func printValidateResult(out io.Writer, globalState string, consistent, containmentConsistent bool) error {
	_, err := fmt.Fprintf(out, "OK: initial state %q is consistent=%t containmentConsistent=%t\n", globalState, consistent, containmentConsistent)
	return err
}
