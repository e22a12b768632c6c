// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package engine is the facade the CLI drives: it turns an
// application.Application into the wire-format ReachabilitySet and
// PlanSet, delegating the actual search and shortest-path computation to
// internal/core/reachability and internal/core/planner.
package engine

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"topofsm/internal/core/application"
	"topofsm/internal/core/planner"
	"topofsm/internal/core/reachability"
)

// Engine is the authoritative analysis contract the CLI drives.
type Engine interface {
	// Reachable enumerates every configuration reachable from start. It
	// returns both the wire-format summary and the underlying
	// application map, since Plans needs the latter.
	Reachable(ctx context.Context, start *application.Application) (*ReachabilitySet, map[string]*application.Application, error)

	// Plans computes the all-pairs shortest-path table over a
	// previously computed reachability map.
	Plans(ctx context.Context, reachable map[string]*application.Application) (*PlanSet, error)
}

type analysisEngine struct {
	logger *zap.Logger
}

// New returns the default Engine. A nil logger is replaced with a no-op
// logger.
func New(logger *zap.Logger) Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analysisEngine{logger: logger}
}

func (e *analysisEngine) Reachable(ctx context.Context, start *application.Application) (*ReachabilitySet, map[string]*application.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	reachable, err := reachability.Reachable(start)
	if err != nil {
		return nil, nil, err
	}

	states := make([]string, 0, len(reachable))
	for k := range reachable {
		states = append(states, k)
	}
	sort.Strings(states)

	e.logger.Debug("computed reachability",
		zap.String("initialState", start.GlobalState()),
		zap.Int("reachableCount", len(states)),
	)

	return &ReachabilitySet{
		Version:      ReachabilitySchemaVersion,
		InitialState: start.GlobalState(),
		GlobalStates: states,
	}, reachable, nil
}

func (e *analysisEngine) Plans(ctx context.Context, reachable map[string]*application.Application) (*PlanSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := planner.Plans(reachable)
	if err != nil {
		return nil, err
	}

	costs := make(map[string]map[string]int, len(result.Costs))
	for from, row := range result.Costs {
		costs[from] = row
	}

	steps := make(map[string]map[string]Step, len(result.Steps))
	for from, row := range result.Steps {
		wireRow := make(map[string]Step, len(row))
		for to, s := range row {
			wireRow[to] = Step{NodeID: s.NodeID, OpOrReqID: s.OpOrReqID, IsOp: s.IsOp, IsReset: s.IsReset}
		}
		steps[from] = wireRow
	}

	e.logger.Debug("computed plan", zap.Int("stateCount", len(result.States)))

	return &PlanSet{
		Version: PlanSchemaVersion,
		States:  result.States,
		Costs:   costs,
		Steps:   steps,
	}, nil
}
