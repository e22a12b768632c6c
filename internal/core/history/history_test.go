// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// newTestLedger creates a test ledger with a deterministic clock.
// Timestamps increase by 1 second per call, ensuring deterministic ordering.
func newTestLedger(path string) *Ledger {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	current := t0
	return &Ledger{
		path: path,
		now: func() time.Time {
			result := current
			current = current.Add(time.Second)
			return result
		},
	}
}

func TestNewLedger(t *testing.T) {
	l := NewLedger(".topofsm/runs.json")
	if l == nil {
		t.Fatal("NewLedger returned nil")
	}
	if l.path != ".topofsm/runs.json" {
		t.Errorf("expected path '.topofsm/runs.json', got %q", l.path)
	}
}

func TestLedger_RecordAndGet(t *testing.T) {
	dir := t.TempDir()
	l := newTestLedger(filepath.Join(dir, "runs.json"))

	run, err := l.Record(context.Background(), "topology.yaml", KindReachability, 4, true)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if run.ReachableCount != 4 {
		t.Errorf("expected ReachableCount 4, got %d", run.ReachableCount)
	}

	got, err := l.Get(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Topology != "topology.yaml" {
		t.Errorf("expected topology 'topology.yaml', got %q", got.Topology)
	}
}

func TestLedger_GetUnknownID(t *testing.T) {
	dir := t.TempDir()
	l := newTestLedger(filepath.Join(dir, "runs.json"))

	_, err := l.Get(context.Background(), "run-nope")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestLedger_Latest(t *testing.T) {
	dir := t.TempDir()
	l := newTestLedger(filepath.Join(dir, "runs.json"))

	first, err := l.Record(context.Background(), "topo.yaml", KindReachability, 2, true)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	second, err := l.Record(context.Background(), "topo.yaml", KindPlan, 2, false)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	latest, err := l.Latest(context.Background(), "topo.yaml")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("expected latest run %q, got %q (first was %q)", second.ID, latest.ID, first.ID)
	}
}

func TestLedger_List(t *testing.T) {
	dir := t.TempDir()
	l := newTestLedger(filepath.Join(dir, "runs.json"))

	for i := 0; i < 3; i++ {
		if _, err := l.Record(context.Background(), "topo.yaml", KindReachability, i, true); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	runs, err := l.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 0; i < len(runs)-1; i++ {
		if runs[i].ID >= runs[i+1].ID {
			t.Errorf("expected runs sorted by id, got %q before %q", runs[i].ID, runs[i+1].ID)
		}
	}
}

func TestLedger_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.json")

	l1 := newTestLedger(path)
	if _, err := l1.Record(context.Background(), "topo.yaml", KindReachability, 1, true); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	l2 := newTestLedger(path)
	runs, err := l2.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run after reopening ledger, got %d", len(runs))
	}
}
