// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package reachability enumerates every application configuration
// reachable from an initial one by any sequence of legal moves, keyed by
// its canonical global-state string.
package reachability

import (
	"topofsm/internal/core/application"
)

// Reachable performs an explicit worklist search over application.Apply,
// starting from start. The returned map is keyed by GlobalState so that
// two distinct orders of moves landing on the same configuration collapse
// to one entry, as the canonicalisation is designed to guarantee.
func Reachable(start *application.Application) (map[string]*application.Application, error) {
	visited := map[string]*application.Application{
		start.GlobalState(): start,
	}
	worklist := []*application.Application{start}

	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]

		for _, m := range current.LegalMoves() {
			succ, err := current.Apply(m)
			if err != nil {
				// LegalMoves only ever emits moves it has already
				// confirmed legal; Apply re-validates and cannot
				// disagree. A failure here is a programming error,
				// not a reachable runtime condition.
				return nil, err
			}
			key := succ.GlobalState()
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = succ
			worklist = append(worklist, succ)
		}
	}

	return visited, nil
}
