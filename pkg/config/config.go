// SPDX-License-Identifier: AGPL-3.0-or-later

/*

topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package config defines the topology file schema and helpers for
// loading and validating it: the YAML description of nodes, their state
// machines, the requirement/capability binding, and containment, from
// which the CLI builds an application.Application.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"topofsm/internal/core/application"
	"topofsm/internal/core/instance"
	"topofsm/internal/core/spec"
)

// ErrConfigNotFound is returned when the topology file does not exist at
// the given path.
var ErrConfigNotFound = errors.New("topofsm topology file not found")

// Topology is the top-level topology file schema.
type Topology struct {
	Nodes        map[string]NodeConfig `yaml:"nodes"`
	Binding      map[string]string     `yaml:"binding,omitempty"`
	ContainedBy  map[string]string     `yaml:"containedBy,omitempty"`
	HasHardReset bool                  `yaml:"hasHardReset,omitempty"`
}

// NodeConfig is one node's static specification, as written in YAML.
type NodeConfig struct {
	Type         string                 `yaml:"type,omitempty"`
	InitialState string                 `yaml:"initialState"`
	Caps         []string               `yaml:"caps,omitempty"`
	Reqs         []string               `yaml:"reqs,omitempty"`
	Ops          []string               `yaml:"ops,omitempty"`
	States       map[string]StateConfig `yaml:"states"`
}

// StateConfig is one state of a node's FSM, as written in YAML.
type StateConfig struct {
	IsAlive  bool                       `yaml:"isAlive"`
	Caps     []string                   `yaml:"caps,omitempty"`
	Reqs     []string                   `yaml:"reqs,omitempty"`
	Ops      map[string]OperationConfig `yaml:"ops,omitempty"`
	Handlers map[string]string          `yaml:"handlers,omitempty"`
}

// OperationConfig is one operation, as written in YAML. Reqs is an
// ordered list of requirement-alternative sets; each inner list is one
// alternative.
type OperationConfig struct {
	To   string     `yaml:"to"`
	Reqs [][]string `yaml:"reqs"`
}

// DefaultTopologyPath returns the default topology file path for the
// current working directory.
func DefaultTopologyPath() string {
	return "topology.yml"
}

// Exists reports whether a topology file exists at the given path. It
// returns (false, nil) if the file does not exist.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Load reads, parses, and validates the topology file at path, returning
// ErrConfigNotFound if it does not exist.
func Load(path string) (*Topology, error) {
	exists, err := Exists(path)
	if err != nil {
		return nil, fmt.Errorf("checking topology file existence: %w", err)
	}
	if !exists {
		return nil, ErrConfigNotFound
	}

	//nolint:gosec // G304: reading a topology file from a user-specified path is expected behavior
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology file: %w", err)
	}

	var top Topology
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parsing topology file: %w", err)
	}

	if err := validate(&top); err != nil {
		return nil, err
	}

	return &top, nil
}

func validate(top *Topology) error {
	if len(top.Nodes) == 0 {
		return errors.New("topology: at least one node is required")
	}
	for name, n := range top.Nodes {
		if name == "" {
			return errors.New("topology: node name must be non-empty")
		}
		if n.InitialState == "" {
			return fmt.Errorf("topology: node %q: initialState must be non-empty", name)
		}
		if len(n.States) == 0 {
			return fmt.Errorf("topology: node %q: at least one state is required", name)
		}
	}
	return nil
}

// Build converts a parsed Topology into an application.Application,
// constructing and validating a spec.NodeSpec for every node along the
// way. Every node starts at its spec's declared initial state.
func (t *Topology) Build() (*application.Application, error) {
	nodes := make(map[spec.NodeID]*instance.NodeInstance, len(t.Nodes))

	for name, nc := range t.Nodes {
		ns, err := spec.New(spec.NodeID(name), toSpecInput(nc))
		if err != nil {
			return nil, err
		}
		nodes[spec.NodeID(name)] = instance.New(ns)
	}

	binding := make(map[spec.ReqID]spec.CapID, len(t.Binding))
	for req, capID := range t.Binding {
		binding[spec.ReqID(req)] = spec.CapID(capID)
	}

	containedBy := make(map[spec.NodeID]spec.NodeID, len(t.ContainedBy))
	for child, parent := range t.ContainedBy {
		containedBy[spec.NodeID(child)] = spec.NodeID(parent)
	}

	return application.Build(nodes, binding, containedBy, t.HasHardReset)
}

func toSpecInput(nc NodeConfig) spec.Input {
	caps := make([]spec.CapID, len(nc.Caps))
	for i, c := range nc.Caps {
		caps[i] = spec.CapID(c)
	}
	reqs := make([]spec.ReqID, len(nc.Reqs))
	for i, r := range nc.Reqs {
		reqs[i] = spec.ReqID(r)
	}
	ops := make([]spec.OpID, len(nc.Ops))
	for i, o := range nc.Ops {
		ops[i] = spec.OpID(o)
	}

	states := make(map[spec.StateID]spec.State, len(nc.States))
	for stateName, sc := range nc.States {
		states[spec.StateID(stateName)] = toSpecState(sc)
	}

	return spec.Input{
		Type:           nc.Type,
		InitialStateID: spec.StateID(nc.InitialState),
		Caps:           caps,
		Reqs:           reqs,
		Ops:            ops,
		States:         states,
	}
}

func toSpecState(sc StateConfig) spec.State {
	var caps map[spec.CapID]struct{}
	if len(sc.Caps) > 0 {
		caps = make(map[spec.CapID]struct{}, len(sc.Caps))
		for _, c := range sc.Caps {
			caps[spec.CapID(c)] = struct{}{}
		}
	}

	var reqs map[spec.ReqID]struct{}
	if len(sc.Reqs) > 0 {
		reqs = make(map[spec.ReqID]struct{}, len(sc.Reqs))
		for _, r := range sc.Reqs {
			reqs[spec.ReqID(r)] = struct{}{}
		}
	}

	var ops map[spec.OpID]spec.Operation
	if len(sc.Ops) > 0 {
		ops = make(map[spec.OpID]spec.Operation, len(sc.Ops))
		for opName, oc := range sc.Ops {
			alts := make([]spec.ReqSet, len(oc.Reqs))
			for i, alt := range oc.Reqs {
				ids := make([]spec.ReqID, len(alt))
				for j, r := range alt {
					ids[j] = spec.ReqID(r)
				}
				alts[i] = spec.NewReqSet(ids...)
			}
			ops[spec.OpID(opName)] = spec.Operation{To: spec.StateID(oc.To), Reqs: alts}
		}
	}

	var handlers map[spec.ReqID]spec.StateID
	if len(sc.Handlers) > 0 {
		handlers = make(map[spec.ReqID]spec.StateID, len(sc.Handlers))
		for r, target := range sc.Handlers {
			handlers[spec.ReqID(r)] = spec.StateID(target)
		}
	}

	return spec.State{
		IsAlive:  sc.IsAlive,
		Caps:     caps,
		Reqs:     reqs,
		Ops:      ops,
		Handlers: handlers,
	}
}
