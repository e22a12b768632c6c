// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package application

import (
	"fmt"

	"topofsm/internal/core/spec"
)

// IllegalApplicationMoveError indicates an application-level move whose
// legality predicate failed. Reason is stable and testable; it is one of
// the fixed strings returned by the Unsatisfied* predicates.
type IllegalApplicationMoveError struct {
	NodeID spec.NodeID
	Move   string // "performOp", "handleFault" or "doHardReset"
	ID     string // op id, requirement id, or empty for a hard reset
	Reason string
}

func (e *IllegalApplicationMoveError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("node %q: %s is not legal: %s", e.NodeID, e.Move, e.Reason)
	}
	return fmt.Sprintf("node %q: %s(%q) is not legal: %s", e.NodeID, e.Move, e.ID, e.Reason)
}

// Reason sentinels returned by the legality predicates. These strings are
// part of the external contract: callers may match on them.
const (
	ReasonOK                  = ""
	ReasonFaultsPending       = "faults pending"
	ReasonLivenessConstraint  = "liveness constraint failing"
	ReasonUnknownNode         = "unknown node"
	ReasonOpNotInCurrentState = "operation is not offered in the node's current state"
	ReasonOpUnsatisfied       = "no requirement alternative is fully satisfied"
	ReasonReqNotFaulted       = "requirement is not currently faulted"
	ReasonNoHandler           = "node's current state has no handler for this requirement"
	ReasonHardResetDisabled   = "hard reset is disabled for this application"
	ReasonNoContainer         = "node has no container"
	ReasonContainerAlive      = "container is alive"
)
