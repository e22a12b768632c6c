// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Level(t *testing.T) {
	quiet := New(false)
	require.NotNil(t, quiet)
	require.False(t, quiet.Core().Enabled(zapcore.DebugLevel))
	require.True(t, quiet.Core().Enabled(zapcore.InfoLevel))

	verbose := New(true)
	require.NotNil(t, verbose)
	require.True(t, verbose.Core().Enabled(zapcore.DebugLevel))
}

func TestNewNop_DiscardsEverything(t *testing.T) {
	logger := NewNop()
	require.NotNil(t, logger)
	require.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
