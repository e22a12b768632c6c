// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package instance provides NodeInstance: a NodeSpec plus a current state
// id. NodeInstance is node-local — it knows nothing about requirement
// satisfaction, bindings, or containment; that is Application's job.
package instance

import (
	"fmt"

	"topofsm/internal/core/spec"
)

// NodeInstance is an immutable node spec paired with its current state.
// Successors are fresh values; no instance is ever mutated in place.
type NodeInstance struct {
	spec    *spec.NodeSpec
	current spec.StateID
}

// New returns a NodeInstance at its spec's initial state.
func New(s *spec.NodeSpec) *NodeInstance {
	return &NodeInstance{spec: s, current: s.InitialStateID()}
}

// At returns a NodeInstance at an explicit, already-validated state. It is
// used by collaborators restoring a previously observed configuration;
// the core itself only ever reaches new states via PerformOp/HandleFault/
// DoHardReset.
func At(s *spec.NodeSpec, stateID spec.StateID) (*NodeInstance, error) {
	if _, ok := s.State(stateID); !ok {
		return nil, fmt.Errorf("node %q: state %q is not declared", s.ID(), stateID)
	}
	return &NodeInstance{spec: s, current: stateID}, nil
}

// Spec returns the node's static specification.
func (n *NodeInstance) Spec() *spec.NodeSpec { return n.spec }

// CurrentStateID returns the node's current state id.
func (n *NodeInstance) CurrentStateID() spec.StateID { return n.current }

// CurrentState returns the node's current state.
func (n *NodeInstance) CurrentState() spec.State {
	s, _ := n.spec.State(n.current)
	return s
}

// PerformOp returns the instance reached by taking opID from the current
// state. It fails with *IllegalMoveError if opID is not among the current
// state's operations; it does not know or care whether the operation's
// requirements are satisfied anywhere in the application.
func (n *NodeInstance) PerformOp(opID spec.OpID) (*NodeInstance, error) {
	state := n.CurrentState()
	op, ok := state.Ops[opID]
	if !ok {
		return nil, &IllegalMoveError{NodeID: n.spec.ID(), Move: "performOp", ID: string(opID), State: n.current}
	}
	return &NodeInstance{spec: n.spec, current: op.To}, nil
}

// HandleFault returns the instance reached by draining a fault on reqID
// from the current state. It fails with *IllegalMoveError if the current
// state has no handler for reqID.
func (n *NodeInstance) HandleFault(reqID spec.ReqID) (*NodeInstance, error) {
	state := n.CurrentState()
	to, ok := state.Handlers[reqID]
	if !ok {
		return nil, &IllegalMoveError{NodeID: n.spec.ID(), Move: "handleFault", ID: string(reqID), State: n.current}
	}
	return &NodeInstance{spec: n.spec, current: to}, nil
}

// DoHardReset returns the instance at the node's initial state. It is
// unconditional at the node-local level; Application gates whether a
// hard reset is legal given containment.
func (n *NodeInstance) DoHardReset() *NodeInstance {
	return &NodeInstance{spec: n.spec, current: n.spec.InitialStateID()}
}
