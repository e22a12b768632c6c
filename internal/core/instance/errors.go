// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package instance

import (
	"fmt"

	"topofsm/internal/core/spec"
)

// IllegalMoveError indicates a caller bug: a node-local move that is not
// in the current state's op/handler map.
type IllegalMoveError struct {
	NodeID spec.NodeID
	Move   string // "performOp" or "handleFault"
	ID     string // the op id or requirement id attempted
	State  spec.StateID
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("node %q: %s(%q) is not legal in state %q", e.NodeID, e.Move, e.ID, e.State)
}
