// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package history records an audit trail of analysis runs: one entry per
// invocation of reachability or planning against a named topology, so a
// user can later answer "when did we last analyse this topology, and
// what did we find". Entries are appended to a local JSON file, written
// atomically (temp file, then rename) so a crash mid-write cannot
// corrupt a previous run's record.
//
// Note: the ledger is local-file-based and not safe for concurrent
// modification from multiple processes. A single invocation of the CLI
// should own the ledger file at any time.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// DefaultLedgerPath is the default path for the analysis-run ledger.
const DefaultLedgerPath = ".topofsm/runs.json"

// Kind distinguishes the two entry point operations a run can record.
type Kind string

const (
	// KindReachability records a run of the reachability enumeration.
	KindReachability Kind = "reachability"
	// KindPlan records a run of the shortest-path planner.
	KindPlan Kind = "plan"
)

// Run is a single recorded analysis invocation. Run values returned from
// Ledger methods should be treated as read-only snapshots.
type Run struct {
	ID             string    `json:"id"`
	Topology       string    `json:"topology"`
	Kind           Kind      `json:"kind"`
	Timestamp      time.Time `json:"timestamp"`
	ReachableCount int       `json:"reachable_count"`
	Consistent     bool      `json:"consistent"`
}

type ledgerFile struct {
	Runs []*Run `json:"runs"`
}

// Ledger appends and queries analysis runs against a local JSON file.
// Ledger is safe for concurrent use within a single process.
type Ledger struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// ErrRunNotFound is returned when a run id has no matching entry.
var ErrRunNotFound = errors.New("run not found")

// NewLedger returns a Ledger backed by path.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path, now: time.Now}
}

// NewDefaultLedger returns a Ledger at DefaultLedgerPath, overridable via
// the TOPOFSM_LEDGER_FILE environment variable for testing.
func NewDefaultLedger() *Ledger {
	if envPath := os.Getenv("TOPOFSM_LEDGER_FILE"); envPath != "" {
		return NewLedger(envPath)
	}
	return NewLedger(DefaultLedgerPath)
}

// generateRunID produces a lexicographically-sortable id that also sorts
// chronologically: run-YYYYMMDD-HHMMSSmmm.
func generateRunID(t time.Time) string {
	return fmt.Sprintf("run-%s-%s%03d", t.Format("20060102"), t.Format("150405"), t.Nanosecond()/1e6)
}

func cloneRun(r *Run) *Run {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

func (l *Ledger) load(ctx context.Context) (*ledgerFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return &ledgerFile{Runs: []*Run{}}, nil
	}

	//nolint:gosec // G304: ledger path comes from trusted config/flags
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("reading ledger file: %w", err)
	}
	var lf ledgerFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing ledger file: %w", err)
	}
	return &lf, nil
}

func (l *Ledger) save(ctx context.Context, lf *ledgerFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}
	tmp := fmt.Sprintf("%s.%d.tmp", l.path, os.Getpid())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing temporary ledger file: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming ledger file: %w", err)
	}
	return nil
}

// Record appends a new Run for topology and returns the stored snapshot.
func (l *Ledger) Record(ctx context.Context, topology string, kind Kind, reachableCount int, consistent bool) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	topology = filepath.Clean(topology)

	l.mu.Lock()
	defer l.mu.Unlock()

	lf, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:             generateRunID(l.now()),
		Topology:       topology,
		Kind:           kind,
		Timestamp:      l.now(),
		ReachableCount: reachableCount,
		Consistent:     consistent,
	}
	lf.Runs = append(lf.Runs, run)

	if err := l.save(ctx, lf); err != nil {
		return nil, err
	}
	return cloneRun(run), nil
}

// Get retrieves a run by id.
func (l *Ledger) Get(ctx context.Context, id string) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lf, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range lf.Runs {
		if r.ID == id {
			return cloneRun(r), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrRunNotFound, id)
}

// Latest returns the most recent run recorded for topology.
func (l *Ledger) Latest(ctx context.Context, topology string) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	topology = filepath.Clean(topology)

	l.mu.Lock()
	defer l.mu.Unlock()

	lf, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	var latest *Run
	for _, r := range lf.Runs {
		if r.Topology != topology {
			continue
		}
		if latest == nil || r.Timestamp.After(latest.Timestamp) {
			latest = r
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: topology %q", ErrRunNotFound, topology)
	}
	return cloneRun(latest), nil
}

// List returns every recorded run, ordered by id (and therefore
// chronologically).
func (l *Ledger) List(ctx context.Context) ([]*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lf, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	runs := make([]*Run, 0, len(lf.Runs))
	for _, r := range lf.Runs {
		runs = append(runs, cloneRun(r))
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}
