// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package logging provides the structured logger used by the CLI
// commands. The exploration ledger takes no logger. The analysis core (spec, instance, application,
// reachability, planner) takes no logger and never imports this package —
// it stays pure and side-effect free.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger for CLI use: human-readable console encoding at
// info level by default, debug level when verbose is set.
func New(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		// Build only fails on a malformed encoder/sink config, which New
		// never constructs; fall back rather than panic.
		return zap.NewNop()
	}
	return logger
}

// NewNop returns a logger that discards everything, for tests and library
// callers that have not configured logging.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
