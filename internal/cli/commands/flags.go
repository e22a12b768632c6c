// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"topofsm/pkg/config"
)

// ResolvedFlags contains the resolved values for all global flags.
type ResolvedFlags struct {
	Topology string
	Format   string
	Verbose  bool
}

// ResolveFlags resolves global flags with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Built-in defaults (lowest priority)
func ResolveFlags(cmd *cobra.Command) (*ResolvedFlags, error) {
	flags := &ResolvedFlags{}

	topologyFlag, _ := cmd.Flags().GetString("topology")
	flags.Topology = resolveString(topologyFlag, os.Getenv("TOPOFSM_TOPOLOGY"), config.DefaultTopologyPath())

	formatFlag, _ := cmd.Flags().GetString("format")
	flags.Format = resolveString(formatFlag, os.Getenv("TOPOFSM_FORMAT"), "text")
	if flags.Format != "text" && flags.Format != "json" {
		return nil, fmt.Errorf("invalid --format %q (must be 'text' or 'json')", flags.Format)
	}

	verboseFlag, _ := cmd.Flags().GetBool("verbose")
	if cmd.Flags().Changed("verbose") {
		flags.Verbose = verboseFlag
	} else {
		flags.Verbose = resolveBool(verboseFlag, parseBoolEnv(os.Getenv("TOPOFSM_VERBOSE")), false)
	}

	return flags, nil
}

func resolveString(flag, env, defaultValue string) string {
	if flag != "" {
		return flag
	}
	if env != "" {
		return env
	}
	return defaultValue
}

func resolveBool(flag, env, defaultValue bool) bool {
	if flag {
		return true
	}
	if env {
		return true
	}
	return defaultValue
}

func parseBoolEnv(value string) bool {
	if value == "" {
		return false
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return parsed
}
