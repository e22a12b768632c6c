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
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"topofsm/internal/core/history"
	"topofsm/pkg/config"
	"topofsm/pkg/engine"
	"topofsm/pkg/logging"
)

// NewReachableCommand returns the `topofsm reachable` command.
func NewReachableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reachable",
		Short: "Enumerate every global state reachable from a topology's initial configuration",
		Long:  "Builds the application described by the topology file and enumerates every global state reachable from its initial configuration via legal moves.",
		RunE:  runReachable,
	}
}

func runReachable(cmd *cobra.Command, args []string) error {
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

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	eng := engine.New(logger)
	set, reachable, err := eng.Reachable(ctx, app)
	if err != nil {
		return fmt.Errorf("computing reachability: %w", err)
	}

	ledger := history.NewDefaultLedger()
	if _, err := ledger.Record(ctx, flags.Topology, history.KindReachability, len(reachable), app.IsConsistent()); err != nil {
		logger.Warn("failed to record analysis run", zap.Error(err))
	}

	return renderReachable(cmd.OutOrStdout(), set, flags.Format)
}

func renderReachable(out io.Writer, set *engine.ReachabilitySet, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(set)
	default:
		_, err := fmt.Fprintf(out, "Initial state: %s\nReachable states (%d):\n", set.InitialState, len(set.GlobalStates))
		if err != nil {
			return err
		}
		for _, s := range set.GlobalStates {
			if _, err := fmt.Fprintf(out, "  %s\n", s); err != nil {
				return err
			}
		}
		return nil
	}
}
