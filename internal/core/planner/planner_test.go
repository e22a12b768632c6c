// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"topofsm/internal/core/application"
	"topofsm/internal/core/instance"
	"topofsm/internal/core/reachability"
	"topofsm/internal/core/spec"
)

func twoStateApp(t *testing.T) *application.Application {
	t.Helper()
	ns, err := spec.New("N", spec.Input{
		InitialStateID: "s0",
		Ops:            []spec.OpID{"go"},
		States: map[spec.StateID]spec.State{
			"s0": {IsAlive: true, Ops: map[spec.OpID]spec.Operation{
				"go": {To: "s1", Reqs: []spec.ReqSet{spec.NewReqSet()}},
			}},
			"s1": {IsAlive: true},
		},
	})
	require.NoError(t, err)
	app, err := application.Build(map[spec.NodeID]*instance.NodeInstance{"N": instance.New(ns)}, nil, nil, false)
	require.NoError(t, err)
	return app
}

func TestPlans_SingleNodeTwoStates(t *testing.T) {
	app := twoStateApp(t)
	set, err := reachability.Reachable(app)
	require.NoError(t, err)

	result, err := Plans(set)
	require.NoError(t, err)

	require.Equal(t, 1, result.Costs["N=s0"]["N=s1"])
	require.Equal(t, Step{NodeID: "N", OpOrReqID: "go", IsOp: true}, result.Steps["N=s0"]["N=s1"])

	_, reachableBack := result.Costs["N=s1"]["N=s0"]
	require.False(t, reachableBack)
}

func TestPlans_CostConsistency(t *testing.T) {
	app := twoStateApp(t)
	set, err := reachability.Reachable(app)
	require.NoError(t, err)

	result, err := Plans(set)
	require.NoError(t, err)

	for from, row := range result.Costs {
		require.Equal(t, 0, row[from])
	}
}

func threeCycleApp(t *testing.T) *application.Application {
	t.Helper()
	ns, err := spec.New("N", spec.Input{
		InitialStateID: "a",
		Ops:            []spec.OpID{"next"},
		States: map[spec.StateID]spec.State{
			"a": {IsAlive: true, Ops: map[spec.OpID]spec.Operation{
				"next": {To: "b", Reqs: []spec.ReqSet{spec.NewReqSet()}},
			}},
			"b": {IsAlive: true, Ops: map[spec.OpID]spec.Operation{
				"next": {To: "c", Reqs: []spec.ReqSet{spec.NewReqSet()}},
			}},
			"c": {IsAlive: true, Ops: map[spec.OpID]spec.Operation{
				"next": {To: "a", Reqs: []spec.ReqSet{spec.NewReqSet()}},
			}},
		},
	})
	require.NoError(t, err)
	app, err := application.Build(map[spec.NodeID]*instance.NodeInstance{"N": instance.New(ns)}, nil, nil, false)
	require.NoError(t, err)
	return app
}

// TestPlans_ThreeCycle is seed scenario 5: a single node cycling through
// three states a -> b -> c -> a via one unit-cost op. The cost matrix is
// fully determined by how far around the ring each pair sits.
func TestPlans_ThreeCycle(t *testing.T) {
	app := threeCycleApp(t)
	set, err := reachability.Reachable(app)
	require.NoError(t, err)
	require.Len(t, set, 3)

	result, err := Plans(set)
	require.NoError(t, err)

	wantCosts := map[string]map[string]int{
		"N=a": {"N=a": 0, "N=b": 1, "N=c": 2},
		"N=b": {"N=b": 0, "N=c": 1, "N=a": 2},
		"N=c": {"N=c": 0, "N=a": 1, "N=b": 2},
	}
	for from, row := range wantCosts {
		for to, wantCost := range row {
			require.Equal(t, wantCost, result.Costs[from][to], "cost %s -> %s", from, to)
		}
	}

	wantFirstStep := application.Move{Kind: application.OpMove, NodeID: "N", ID: "next"}
	for from, row := range wantCosts {
		for to := range row {
			if from == to {
				continue
			}
			require.Equal(t, Step{NodeID: string(wantFirstStep.NodeID), OpOrReqID: wantFirstStep.ID, IsOp: true}, result.Steps[from][to], "first step %s -> %s", from, to)
		}
	}
}

func TestPlans_ParallelMatchesSequential(t *testing.T) {
	app := twoStateApp(t)
	set, err := reachability.Reachable(app)
	require.NoError(t, err)

	sequential, err := Plans(set)
	require.NoError(t, err)

	n := len(set)
	require.Less(t, n, parallelThreshold, "fixture is expected to exercise the sequential path")

	states := sequential.States
	cost := newMatrix(len(states))
	step := make([][]*Step, len(states))
	for i := range step {
		step[i] = make([]*Step, len(states))
		cost[i][i] = 0
	}
	idx := make(map[string]int, len(states))
	for i, s := range states {
		idx[s] = i
	}
	for i, key := range states {
		for _, m := range set[key].LegalMoves() {
			succ, err := set[key].Apply(m)
			require.NoError(t, err)
			j := idx[succ.GlobalState()]
			if cost[i][j] == unreachable || cost[i][j] > 1 {
				cost[i][j] = 1
				s := stepFromMove(m)
				step[i][j] = &s
			}
		}
	}
	for via := range states {
		err := relaxRowsParallel(len(states), via, cost, step)
		require.NoError(t, err)
	}

	for i, from := range states {
		for j, to := range states {
			if cost[i][j] == unreachable {
				continue
			}
			require.Equal(t, cost[i][j], sequential.Costs[from][to])
			_ = to
		}
	}
}
