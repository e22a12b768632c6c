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
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"topofsm/internal/core/history"
	"topofsm/pkg/config"
	"topofsm/pkg/engine"
	"topofsm/pkg/logging"
)

// NewPlanCommand returns the `topofsm plan` command.
func NewPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Compute shortest paths between every pair of reachable global states",
		Long:  "Enumerates every global state reachable from a topology's initial configuration, then computes the all-pairs shortest-path table between them.",
		RunE:  runPlan,
	}
}

func runPlan(cmd *cobra.Command, args []string) error {
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
	_, reachable, err := eng.Reachable(ctx, app)
	if err != nil {
		return fmt.Errorf("computing reachability: %w", err)
	}

	planSet, err := eng.Plans(ctx, reachable)
	if err != nil {
		return fmt.Errorf("computing plan: %w", err)
	}

	ledger := history.NewDefaultLedger()
	if _, err := ledger.Record(ctx, flags.Topology, history.KindPlan, len(reachable), app.IsConsistent()); err != nil {
		logger.Warn("failed to record analysis run", zap.Error(err))
	}

	return renderPlan(cmd.OutOrStdout(), planSet, flags.Format)
}

func renderPlan(out io.Writer, set *engine.PlanSet, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(set)
	default:
		return renderPlanText(out, set)
	}
}

func renderPlanText(out io.Writer, set *engine.PlanSet) error {
	if _, err := fmt.Fprintf(out, "States (%d):\n", len(set.States)); err != nil {
		return err
	}

	for _, from := range set.States {
		row := set.Costs[from]
		destinations := make([]string, 0, len(row))
		for to := range row {
			destinations = append(destinations, to)
		}
		sort.Strings(destinations)

		for _, to := range destinations {
			if to == from {
				continue
			}
			cost := row[to]
			step := set.Steps[from][to]
			if _, err := fmt.Fprintf(out, "  %s -> %s: cost=%d first=%s\n", from, to, cost, describeStep(step)); err != nil {
				return err
			}
		}
	}
	return nil
}

func describeStep(s engine.Step) string {
	switch {
	case s.IsReset:
		return fmt.Sprintf("reset(%s)", s.NodeID)
	case s.IsOp:
		return fmt.Sprintf("op(%s.%s)", s.NodeID, s.OpOrReqID)
	default:
		return fmt.Sprintf("handle(%s.%s)", s.NodeID, s.OpOrReqID)
	}
}
