// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package planner computes all-pairs shortest paths over a reachability
// map via Floyd–Warshall, with a Step witness recording the first move
// of each shortest path. Costs default to unit-per-move; a CostFunc may
// be supplied to weight moves differently.
package planner

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"topofsm/internal/core/application"
)

// unreachable is the cost-matrix sentinel. The relaxation steps test for
// it explicitly, so a cell holding it is always overwritten by any
// candidate cost, however large.
const unreachable = -1

// Step is the canonical move witness: the node that moves, the op or
// requirement id (empty for a hard reset), and whether the move is an
// operation as opposed to a fault-handle.
type Step struct {
	NodeID    string
	OpOrReqID string
	IsOp      bool
	IsReset   bool
}

// Result is the all-pairs shortest-path table over a reachability map's
// global states. Costs and Steps are both keyed src → dst → value;
// unreachable pairs are omitted from both maps entirely.
type Result struct {
	States []string
	Costs  map[string]map[string]int
	Steps  map[string]map[string]Step
}

// CostFunc assigns a weight to a single legal move; the default is unit
// cost per move. It is the extension point for weighting ops, handlers
// and hard resets differently without touching the Floyd–Warshall core.
type CostFunc func(m application.Move) int

// UnitCost is the default CostFunc: every move costs 1.
func UnitCost(application.Move) int { return 1 }

// parallelThreshold is the minimum state-space size at which the
// Floyd–Warshall inner src-loop is parallelised across goroutines. Below
// it, the sequential path avoids scheduling overhead that would dwarf
// the work.
const parallelThreshold = 64

// Plans builds the Result for reachable using unit move cost.
func Plans(reachable map[string]*application.Application) (*Result, error) {
	return PlansWithCost(reachable, UnitCost)
}

// PlansWithCost builds the Result for reachable using costFn to weight
// each legal move.
func PlansWithCost(reachable map[string]*application.Application, costFn CostFunc) (*Result, error) {
	states := make([]string, 0, len(reachable))
	for k := range reachable {
		states = append(states, k)
	}
	sort.Strings(states)

	idx := make(map[string]int, len(states))
	for i, s := range states {
		idx[s] = i
	}

	n := len(states)
	cost := newMatrix(n)
	step := make([][]*Step, n)
	for i := range step {
		step[i] = make([]*Step, n)
		cost[i][i] = 0
	}

	// Phase 1 — direct edges.
	for i, key := range states {
		app := reachable[key]
		for _, m := range app.LegalMoves() {
			succ, err := app.Apply(m)
			if err != nil {
				return nil, err
			}
			j, ok := idx[succ.GlobalState()]
			if !ok {
				continue
			}
			newCost := costFn(m)
			if cost[i][j] == unreachable || cost[i][j] > newCost {
				cost[i][j] = newCost
				s := stepFromMove(m)
				step[i][j] = &s
			}
		}
	}

	// Phase 2 — Floyd–Warshall, with the src loop optionally
	// parallelised per the concurrency model's sanctioned optimisation.
	for via := 0; via < n; via++ {
		if n >= parallelThreshold {
			if err := relaxRowsParallel(n, via, cost, step); err != nil {
				return nil, err
			}
		} else {
			relaxRowsSequential(n, via, cost, step)
		}
	}

	costs := make(map[string]map[string]int, n)
	steps := make(map[string]map[string]Step, n)
	for i, from := range states {
		for j, to := range states {
			if cost[i][j] == unreachable {
				continue
			}
			if costs[from] == nil {
				costs[from] = map[string]int{}
			}
			costs[from][to] = cost[i][j]
			if step[i][j] != nil {
				if steps[from] == nil {
					steps[from] = map[string]Step{}
				}
				steps[from][to] = *step[i][j]
			}
		}
	}

	return &Result{States: states, Costs: costs, Steps: steps}, nil
}

func newMatrix(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
		for j := range m[i] {
			m[i][j] = unreachable
		}
	}
	return m
}

func relaxRowsSequential(n, via int, cost [][]int, step [][]*Step) {
	for src := 0; src < n; src++ {
		relaxRow(src, via, n, cost, step)
	}
}

func relaxRowsParallel(n, via int, cost [][]int, step [][]*Step) error {
	g, _ := errgroup.WithContext(context.Background())
	for src := 0; src < n; src++ {
		src := src
		g.Go(func() error {
			relaxRow(src, via, n, cost, step)
			return nil
		})
	}
	return g.Wait()
}

func relaxRow(src, via, n int, cost [][]int, step [][]*Step) {
	if src == via || cost[src][via] == unreachable {
		return
	}
	for dst := 0; dst < n; dst++ {
		if cost[via][dst] == unreachable {
			continue
		}
		newCost := cost[src][via] + cost[via][dst]
		if cost[src][dst] == unreachable || newCost < cost[src][dst] {
			cost[src][dst] = newCost
			step[src][dst] = step[src][via]
		}
	}
}

func stepFromMove(m application.Move) Step {
	switch m.Kind {
	case application.OpMove:
		return Step{NodeID: string(m.NodeID), OpOrReqID: m.ID, IsOp: true}
	case application.HandleMove:
		return Step{NodeID: string(m.NodeID), OpOrReqID: m.ID, IsOp: false}
	default:
		return Step{NodeID: string(m.NodeID), IsReset: true}
	}
}
