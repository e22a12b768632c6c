// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package application composes NodeInstances with a binding and a
// containment relation into an immutable snapshot: an Application. It
// derives per-configuration facts (active requirements, faults,
// containment consistency, the canonical global-state key) and exposes
// the legality predicates and successor constructors that are the heart
// of the analysis engine.
package application

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"topofsm/internal/core/instance"
	"topofsm/internal/core/spec"
)

// Application is an immutable snapshot of a composed-FSM topology: one
// NodeInstance per node, a global requirement→capability binding, an
// optional containment relation, and the hard-reset feature flag.
type Application struct {
	nodes        map[spec.NodeID]*instance.NodeInstance
	binding      map[spec.ReqID]spec.CapID
	containedBy  map[spec.NodeID]spec.NodeID
	hasHardReset bool

	// derived at construction
	reqs                    map[spec.ReqID]struct{}
	caps                    map[spec.CapID]struct{}
	reqNodeID               map[spec.ReqID]spec.NodeID
	capNodeID               map[spec.CapID]spec.NodeID
	faults                  map[spec.ReqID]struct{}
	isConsistent            bool
	isContainmentConsistent bool
	globalState             string
}

// Build validates and constructs the initial Application snapshot.
// Binding must be total over every requirement any node may ever demand,
// and requirement/capability ids must be declared by exactly one node.
// Violations are reported as *spec.InvalidError (buildApplication returns
// Application | SpecInvalid, per the engine's external contract).
func Build(
	nodes map[spec.NodeID]*instance.NodeInstance,
	binding map[spec.ReqID]spec.CapID,
	containedBy map[spec.NodeID]spec.NodeID,
	hasHardReset bool,
) (*Application, error) {
	if err := validateBinding(nodes, binding); err != nil {
		return nil, err
	}

	a := &Application{
		nodes:        nodes,
		binding:      cloneBinding(binding),
		containedBy:  cloneContainment(containedBy),
		hasHardReset: hasHardReset,
	}
	a.derive()
	return a, nil
}

func validateBinding(nodes map[spec.NodeID]*instance.NodeInstance, binding map[spec.ReqID]spec.CapID) error {
	var errs []error
	reqOwner := map[spec.ReqID]spec.NodeID{}
	capOwner := map[spec.CapID]spec.NodeID{}

	for nodeID, ni := range nodes {
		for reqID := range ni.Spec().Reqs() {
			if owner, ok := reqOwner[reqID]; ok && owner != nodeID {
				errs = append(errs, fmt.Errorf("requirement %q is declared by both %q and %q", reqID, owner, nodeID))
				continue
			}
			reqOwner[reqID] = nodeID
		}
		for capID := range ni.Spec().Caps() {
			if owner, ok := capOwner[capID]; ok && owner != nodeID {
				errs = append(errs, fmt.Errorf("capability %q is declared by both %q and %q", capID, owner, nodeID))
				continue
			}
			capOwner[capID] = nodeID
		}
	}

	for reqID := range reqOwner {
		capID, ok := binding[reqID]
		if !ok {
			errs = append(errs, fmt.Errorf("requirement %q has no binding", reqID))
			continue
		}
		if _, ok := capOwner[capID]; !ok {
			errs = append(errs, fmt.Errorf("requirement %q is bound to undeclared capability %q", reqID, capID))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	var combined error
	for _, e := range errs {
		combined = multierr.Append(combined, e)
	}
	return &spec.InvalidError{NodeID: "<application>", Err: combined}
}

func cloneBinding(b map[spec.ReqID]spec.CapID) map[spec.ReqID]spec.CapID {
	out := make(map[spec.ReqID]spec.CapID, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func cloneContainment(c map[spec.NodeID]spec.NodeID) map[spec.NodeID]spec.NodeID {
	out := make(map[spec.NodeID]spec.NodeID, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// derive recomputes every derived field from nodes/binding/containedBy.
// It is called once at Build and again on every successor, since nodes is
// the only thing that ever changes between snapshots.
func (a *Application) derive() {
	a.reqs = map[spec.ReqID]struct{}{}
	a.caps = map[spec.CapID]struct{}{}
	a.reqNodeID = map[spec.ReqID]spec.NodeID{}
	a.capNodeID = map[spec.CapID]spec.NodeID{}
	a.isContainmentConsistent = true

	for nodeID, ni := range a.nodes {
		for reqID := range ni.Spec().Reqs() {
			a.reqNodeID[reqID] = nodeID
		}
		for capID := range ni.Spec().Caps() {
			a.capNodeID[capID] = nodeID
		}

		state := ni.CurrentState()
		for reqID := range state.Reqs {
			a.reqs[reqID] = struct{}{}
		}
		for capID := range state.Caps {
			a.caps[capID] = struct{}{}
		}

		if state.IsAlive {
			if parent, ok := a.containedBy[nodeID]; ok {
				if parentNI, ok := a.nodes[parent]; ok && !parentNI.CurrentState().IsAlive {
					a.isContainmentConsistent = false
				}
			}
		}
	}

	a.faults = map[spec.ReqID]struct{}{}
	for reqID := range a.reqs {
		capID := a.binding[reqID]
		if _, offered := a.caps[capID]; !offered {
			a.faults[reqID] = struct{}{}
		}
	}
	a.isConsistent = len(a.faults) == 0

	a.globalState = canonicalGlobalState(a.nodes)
}

func canonicalGlobalState(nodes map[spec.NodeID]*instance.NodeInstance) string {
	tokens := make([]string, 0, len(nodes))
	for nodeID, ni := range nodes {
		tokens = append(tokens, string(nodeID)+"="+string(ni.CurrentStateID()))
	}
	sort.Strings(tokens)
	return strings.Join(tokens, "|")
}

// NodeIDs returns every node id in the application, in lexicographic
// order — the enumeration order used throughout reachability and
// planning for determinism.
func (a *Application) NodeIDs() []spec.NodeID {
	ids := make([]spec.NodeID, 0, len(a.nodes))
	for id := range a.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Node returns the NodeInstance for id, and whether it is present.
func (a *Application) Node(id spec.NodeID) (*instance.NodeInstance, bool) {
	ni, ok := a.nodes[id]
	return ni, ok
}

// GlobalState returns the canonical "node=state|…" key for this
// configuration.
func (a *Application) GlobalState() string { return a.globalState }

// IsConsistent reports whether every currently active requirement is
// satisfied.
func (a *Application) IsConsistent() bool { return a.isConsistent }

// IsContainmentConsistent reports whether every currently alive node
// with a container has an alive container.
func (a *Application) IsContainmentConsistent() bool { return a.isContainmentConsistent }

// HasHardReset reports whether the hard-reset move is enabled for this
// application.
func (a *Application) HasHardReset() bool { return a.hasHardReset }

// Faults returns the set of currently active, currently unsatisfied
// requirement ids.
func (a *Application) Faults() map[spec.ReqID]struct{} { return a.faults }

// UnsatisfiedOpConstraints checks, in contract order, whether opID is
// legal to perform on nodeID. It returns ReasonOK when legal. The
// liveness check is skipped entirely when hard reset is disabled, and
// every other check is skipped once an earlier one fails — the ordering
// itself is part of the external contract, not an implementation detail.
func (a *Application) UnsatisfiedOpConstraints(nodeID spec.NodeID, opID spec.OpID) string {
	if !a.isConsistent {
		return ReasonFaultsPending
	}
	if a.hasHardReset && !a.isContainmentConsistent {
		return ReasonLivenessConstraint
	}
	ni, ok := a.nodes[nodeID]
	if !ok {
		return ReasonUnknownNode
	}
	op, ok := ni.CurrentState().Ops[opID]
	if !ok {
		return ReasonOpNotInCurrentState
	}
	if !a.anyAlternativeSatisfied(op.Reqs) {
		return ReasonOpUnsatisfied
	}
	return ReasonOK
}

func (a *Application) anyAlternativeSatisfied(alternatives []spec.ReqSet) bool {
	for _, alt := range alternatives {
		satisfied := true
		for reqID := range alt {
			capID, bound := a.binding[reqID]
			if !bound {
				satisfied = false
				break
			}
			if _, offered := a.caps[capID]; !offered {
				satisfied = false
				break
			}
		}
		if satisfied {
			return true
		}
	}
	return false
}

// UnsatisfiedHandlerConstraints checks, in contract order, whether
// handling reqID on nodeID is legal. There is deliberately no global
// "faults pending" short-circuit: fault handlers exist precisely to
// drain faults.
func (a *Application) UnsatisfiedHandlerConstraints(nodeID spec.NodeID, reqID spec.ReqID) string {
	if _, faulted := a.faults[reqID]; !faulted {
		return ReasonReqNotFaulted
	}
	ni, ok := a.nodes[nodeID]
	if !ok {
		return ReasonUnknownNode
	}
	if _, ok := ni.CurrentState().Handlers[reqID]; !ok {
		return ReasonNoHandler
	}
	return ReasonOK
}

// UnsatisfiedHardResetConstraints checks, in contract order, whether
// hard-resetting nodeID is legal: the feature must be enabled, the node
// must have a container, and that container must not currently be alive.
func (a *Application) UnsatisfiedHardResetConstraints(nodeID spec.NodeID) string {
	if !a.hasHardReset {
		return ReasonHardResetDisabled
	}
	parent, ok := a.containedBy[nodeID]
	if !ok {
		return ReasonNoContainer
	}
	parentNI, ok := a.nodes[parent]
	if !ok {
		return ReasonNoContainer
	}
	if parentNI.CurrentState().IsAlive {
		return ReasonContainerAlive
	}
	return ReasonOK
}

// CanPerformOp, CanHandleFault and CanHardReset are boolean conveniences
// over the reason-returning predicates.
func (a *Application) CanPerformOp(nodeID spec.NodeID, opID spec.OpID) bool {
	return a.UnsatisfiedOpConstraints(nodeID, opID) == ReasonOK
}

func (a *Application) CanHandleFault(nodeID spec.NodeID, reqID spec.ReqID) bool {
	return a.UnsatisfiedHandlerConstraints(nodeID, reqID) == ReasonOK
}

func (a *Application) CanHardReset(nodeID spec.NodeID) bool {
	return a.UnsatisfiedHardResetConstraints(nodeID) == ReasonOK
}

// withNode returns a successor Application whose nodes map differs in
// exactly one entry, reusing every other entry structurally, with every
// derived field recomputed.
func (a *Application) withNode(nodeID spec.NodeID, next *instance.NodeInstance) *Application {
	nodes := make(map[spec.NodeID]*instance.NodeInstance, len(a.nodes))
	for k, v := range a.nodes {
		nodes[k] = v
	}
	nodes[nodeID] = next

	succ := &Application{
		nodes:        nodes,
		binding:      a.binding,
		containedBy:  a.containedBy,
		hasHardReset: a.hasHardReset,
	}
	succ.derive()
	return succ
}

// PerformOp checks legality and, if legal, returns the successor
// Application with nodeID advanced by opID.
func (a *Application) PerformOp(nodeID spec.NodeID, opID spec.OpID) (*Application, error) {
	if reason := a.UnsatisfiedOpConstraints(nodeID, opID); reason != ReasonOK {
		return nil, &IllegalApplicationMoveError{NodeID: nodeID, Move: "performOp", ID: string(opID), Reason: reason}
	}
	next, err := a.nodes[nodeID].PerformOp(opID)
	if err != nil {
		return nil, err
	}
	return a.withNode(nodeID, next), nil
}

// HandleFault checks legality and, if legal, returns the successor
// Application with nodeID's fault on reqID drained.
func (a *Application) HandleFault(nodeID spec.NodeID, reqID spec.ReqID) (*Application, error) {
	if reason := a.UnsatisfiedHandlerConstraints(nodeID, reqID); reason != ReasonOK {
		return nil, &IllegalApplicationMoveError{NodeID: nodeID, Move: "handleFault", ID: string(reqID), Reason: reason}
	}
	next, err := a.nodes[nodeID].HandleFault(reqID)
	if err != nil {
		return nil, err
	}
	return a.withNode(nodeID, next), nil
}

// DoHardReset checks legality and, if legal, returns the successor
// Application with nodeID reset to its initial state.
func (a *Application) DoHardReset(nodeID spec.NodeID) (*Application, error) {
	if reason := a.UnsatisfiedHardResetConstraints(nodeID); reason != ReasonOK {
		return nil, &IllegalApplicationMoveError{NodeID: nodeID, Move: "doHardReset", Reason: reason}
	}
	return a.withNode(nodeID, a.nodes[nodeID].DoHardReset()), nil
}

// MoveKind distinguishes the three move types. The zero value is never a
// valid move.
type MoveKind int

const (
	// OpMove advances a node by one of its operations.
	OpMove MoveKind = iota + 1
	// HandleMove drains a fault on a node via a handler.
	HandleMove
	// ResetMove hard-resets a contained node.
	ResetMove
)

// Move names one candidate application-level move: a node plus an op or
// requirement id (ignored for ResetMove). Move is the shared vocabulary
// between reachability and planning, so both enumerate and apply moves
// identically and in the same order.
type Move struct {
	Kind   MoveKind
	NodeID spec.NodeID
	ID     string // op id for OpMove, requirement id for HandleMove
}

// LegalMoves enumerates every legal move from a, in the mandated order:
// every op on every node (nodes then ops, both lexicographic), then
// every fault-handle on every declared requirement of every node, then
// every hard reset on every node. This fixed order is what makes the
// first-seen-edge-wins tie-break in planning deterministic.
func (a *Application) LegalMoves() []Move {
	var moves []Move

	for _, nodeID := range a.NodeIDs() {
		ni := a.nodes[nodeID]
		for _, opID := range ni.Spec().SortedOpIDs() {
			if a.CanPerformOp(nodeID, opID) {
				moves = append(moves, Move{Kind: OpMove, NodeID: nodeID, ID: string(opID)})
			}
		}
	}

	for _, nodeID := range a.NodeIDs() {
		ni := a.nodes[nodeID]
		for _, reqID := range ni.Spec().SortedReqIDs() {
			if a.CanHandleFault(nodeID, reqID) {
				moves = append(moves, Move{Kind: HandleMove, NodeID: nodeID, ID: string(reqID)})
			}
		}
	}

	for _, nodeID := range a.NodeIDs() {
		if a.CanHardReset(nodeID) {
			moves = append(moves, Move{Kind: ResetMove, NodeID: nodeID})
		}
	}

	return moves
}

// Apply produces the successor Application reached by m. m must have
// come from LegalMoves on this same Application; Apply re-checks
// legality regardless; since LegalMoves only emits moves it already
// confirmed legal, this never fails.
func (a *Application) Apply(m Move) (*Application, error) {
	switch m.Kind {
	case OpMove:
		return a.PerformOp(m.NodeID, spec.OpID(m.ID))
	case HandleMove:
		return a.HandleFault(m.NodeID, spec.ReqID(m.ID))
	case ResetMove:
		return a.DoHardReset(m.NodeID)
	default:
		return nil, fmt.Errorf("application: unknown move kind %v", m.Kind)
	}
}
