// SPDX-License-Identifier: AGPL-3.0-or-later

/*

topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTopologyPath(t *testing.T) {
	path := DefaultTopologyPath()
	if path != "topology.yml" {
		t.Fatalf("expected DefaultTopologyPath to return 'topology.yml', got %q", path)
	}
}

func TestExists_ReportsCorrectly(t *testing.T) {
	tmpDir := t.TempDir()

	nonExisting := filepath.Join(tmpDir, "nope.yml")
	ok, err := Exists(nonExisting)
	if err != nil {
		t.Fatalf("expected no error for non-existing file, got: %v", err)
	}
	if ok {
		t.Fatalf("expected Exists to return false for non-existing file")
	}

	existing := filepath.Join(tmpDir, "topology.yml")
	if err := os.WriteFile(existing, []byte("nodes: {}\n"), 0o600); err != nil {
		t.Fatalf("failed to write temp topology file: %v", err)
	}

	ok, err = Exists(existing)
	if err != nil {
		t.Fatalf("expected no error for existing file, got: %v", err)
	}
	if !ok {
		t.Fatalf("expected Exists to return true for existing file")
	}
}

func TestLoad_ReturnsErrConfigNotFoundWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "missing.yml")

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected error for missing topology file, got nil")
	}
	if err != ErrConfigNotFound {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoad_ValidatesAtLeastOneNode(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "topology.yml")

	if err := os.WriteFile(path, []byte("nodes: {}\n"), 0o600); err != nil {
		t.Fatalf("failed to write temp topology file: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error for empty node set")
	}
}

const singleNodeTopology = `
nodes:
  N:
    initialState: s0
    ops: [go]
    states:
      s0:
        isAlive: true
        ops:
          go:
            to: s1
            reqs:
              - []
      s1:
        isAlive: true
`

func TestLoad_ParsesSingleNodeTopology(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "topology.yml")

	if err := os.WriteFile(path, []byte(singleNodeTopology), 0o600); err != nil {
		t.Fatalf("failed to write temp topology file: %v", err)
	}

	top, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error loading valid topology, got: %v", err)
	}

	n, ok := top.Nodes["N"]
	if !ok {
		t.Fatalf("expected node 'N' to be present")
	}
	if n.InitialState != "s0" {
		t.Fatalf("expected initialState 's0', got %q", n.InitialState)
	}
}

func TestTopology_Build_SingleNodeTwoStates(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "topology.yml")

	if err := os.WriteFile(path, []byte(singleNodeTopology), 0o600); err != nil {
		t.Fatalf("failed to write temp topology file: %v", err)
	}

	top, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	app, err := top.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if app.GlobalState() != "N=s0" {
		t.Fatalf("expected initial global state 'N=s0', got %q", app.GlobalState())
	}
	if !app.CanPerformOp("N", "go") {
		t.Fatalf("expected op 'go' to be legal from the initial state")
	}
}

const requirementGatedTopology = `
nodes:
  A:
    initialState: "off"
    caps: [c]
    ops: [flip]
    states:
      "on":
        isAlive: true
        caps: [c]
        ops:
          flip:
            to: "off"
            reqs:
              - []
      "off":
        isAlive: true
        ops:
          flip:
            to: "on"
            reqs:
              - []
  B:
    initialState: s
    reqs: [r]
    ops: [start]
    states:
      s:
        isAlive: true
        ops:
          start:
            to: run
            reqs:
              - [r]
      run:
        isAlive: true
        reqs: [r]
binding:
  r: c
`

func TestTopology_Build_RequirementSatisfactionGating(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "topology.yml")

	if err := os.WriteFile(path, []byte(requirementGatedTopology), 0o600); err != nil {
		t.Fatalf("failed to write temp topology file: %v", err)
	}

	top, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	app, err := top.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if app.GlobalState() != "A=off|B=s" {
		t.Fatalf("expected initial global state 'A=off|B=s', got %q", app.GlobalState())
	}
	if app.CanPerformOp("B", "start") {
		t.Fatalf("expected 'start' to be illegal while A is off")
	}
}

func TestTopology_Build_RejectsUnboundRequirement(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "topology.yml")

	content := []byte(`
nodes:
  B:
    initialState: s
    reqs: [r]
    states:
      s:
        isAlive: true
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write temp topology file: %v", err)
	}

	top, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := top.Build(); err == nil {
		t.Fatalf("expected Build to reject an unbound requirement")
	}
}
