// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package spec defines the static, per-node description of a composed-FSM
// topology: states, capabilities, requirements, operations, and fault
// handlers. A NodeSpec is validated once at construction and is immutable
// thereafter; nothing in this package holds runtime state.
package spec

import (
	"fmt"
	"sort"
)

// NodeID, StateID, OpID, CapID and ReqID are opaque identifiers, unique
// within their respective scope. They are distinct types so that a
// capability id can never be passed where a requirement id is expected.
type (
	NodeID  string
	StateID string
	OpID    string
	CapID   string
	ReqID   string
)

// ReqSet is one alternative set of requirements that together satisfy an
// operation's precondition.
type ReqSet map[ReqID]struct{}

// NewReqSet builds a ReqSet from a list of requirement ids.
func NewReqSet(reqs ...ReqID) ReqSet {
	s := make(ReqSet, len(reqs))
	for _, r := range reqs {
		s[r] = struct{}{}
	}
	return s
}

// SortedIDs returns the set's requirement ids in lexicographic order.
func (s ReqSet) SortedIDs() []ReqID {
	ids := make([]ReqID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Operation is a transition available from a state: a destination state
// and a non-empty ordered list of requirement-alternative sets. The
// operation is enabled iff at least one alternative set is entirely
// satisfied in the current application.
type Operation struct {
	To   StateID
	Reqs []ReqSet
}

// State is one state of a node's FSM.
type State struct {
	IsAlive  bool
	Caps     map[CapID]struct{}
	Reqs     map[ReqID]struct{}
	Ops      map[OpID]Operation
	Handlers map[ReqID]StateID
}

// Input is the construction-time description of a NodeSpec. It is the
// only shape the validated NodeSpec can be built from; everything else
// about a NodeSpec is derived and immutable.
type Input struct {
	// Type is an opaque tag carried for the caller's benefit; the core
	// never inspects it.
	Type string

	InitialStateID StateID
	Caps           []CapID
	Reqs           []ReqID
	Ops            []OpID
	States         map[StateID]State
}

// NodeSpec is an immutable, validated per-node description.
type NodeSpec struct {
	id             NodeID
	typ            string
	initialStateID StateID
	caps           map[CapID]struct{}
	reqs           map[ReqID]struct{}
	ops            map[OpID]struct{}
	states         map[StateID]State
}

// New validates in and, if it is well formed, returns an immutable
// NodeSpec. All structural violations listed for a single node are
// aggregated into one *InvalidError rather than surfaced one at a time.
func New(id NodeID, in Input) (*NodeSpec, error) {
	var errs []error
	addf := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	capSet := toSet(in.Caps)
	reqSet := toSet(in.Reqs)
	opSet := make(map[OpID]struct{}, len(in.Ops))
	for _, o := range in.Ops {
		opSet[o] = struct{}{}
	}

	if _, ok := in.States[in.InitialStateID]; !ok {
		addf("node %q: initial state %q is not declared", id, in.InitialStateID)
	}

	for stateID, state := range in.States {
		for capID := range state.Caps {
			if _, ok := capSet[capID]; !ok {
				addf("node %q: state %q offers undeclared capability %q", id, stateID, capID)
			}
		}
		for reqID := range state.Reqs {
			if _, ok := reqSet[reqID]; !ok {
				addf("node %q: state %q demands undeclared requirement %q", id, stateID, reqID)
			}
		}
		for opID, op := range state.Ops {
			if _, ok := opSet[opID]; !ok {
				addf("node %q: state %q offers undeclared operation %q", id, stateID, opID)
			}
			if _, ok := in.States[op.To]; !ok {
				addf("node %q: operation %q in state %q targets undeclared state %q", id, opID, stateID, op.To)
			}
			if len(op.Reqs) == 0 {
				addf("node %q: operation %q in state %q has no requirement alternatives", id, opID, stateID)
			}
			for _, alt := range op.Reqs {
				for reqID := range alt {
					if _, ok := reqSet[reqID]; !ok {
						addf("node %q: operation %q in state %q references undeclared requirement %q", id, opID, stateID, reqID)
					}
				}
			}
		}
		for reqID, target := range state.Handlers {
			if _, ok := reqSet[reqID]; !ok {
				addf("node %q: state %q handles undeclared requirement %q", id, stateID, reqID)
			}
			if _, ok := in.States[target]; !ok {
				addf("node %q: handler for %q in state %q targets undeclared state %q", id, reqID, stateID, target)
			}
		}
	}

	if len(errs) > 0 {
		return nil, &InvalidError{NodeID: id, Err: combine(errs)}
	}

	states := make(map[StateID]State, len(in.States))
	for k, v := range in.States {
		states[k] = v
	}

	return &NodeSpec{
		id:             id,
		typ:            in.Type,
		initialStateID: in.InitialStateID,
		caps:           capSet,
		reqs:           reqSet,
		ops:            opSet,
		states:         states,
	}, nil
}

func toSet[T comparable](items []T) map[T]struct{} {
	s := make(map[T]struct{}, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// ID returns the node's identifier.
func (n *NodeSpec) ID() NodeID { return n.id }

// Type returns the opaque type tag supplied at construction.
func (n *NodeSpec) Type() string { return n.typ }

// InitialStateID returns the node's initial state.
func (n *NodeSpec) InitialStateID() StateID { return n.initialStateID }

// State returns the declared state for id, and whether it exists.
func (n *NodeSpec) State(id StateID) (State, bool) {
	s, ok := n.states[id]
	return s, ok
}

// Caps returns the node's declared capability ids.
func (n *NodeSpec) Caps() map[CapID]struct{} { return n.caps }

// Reqs returns the node's declared requirement ids.
func (n *NodeSpec) Reqs() map[ReqID]struct{} { return n.reqs }

// SortedOpIDs returns every operation id ever declared on this node, in
// lexicographic order. Used by reachability/planning to enumerate moves
// deterministically.
func (n *NodeSpec) SortedOpIDs() []OpID {
	ids := make([]OpID, 0, len(n.ops))
	for id := range n.ops {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SortedReqIDs returns every requirement id ever declared on this node,
// in lexicographic order.
func (n *NodeSpec) SortedReqIDs() []ReqID {
	ids := make([]ReqID, 0, len(n.reqs))
	for id := range n.reqs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
