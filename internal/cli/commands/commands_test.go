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
	"bytes"

	"github.com/spf13/cobra"
)

// newTestRootCommand returns a bare root command carrying the same
// persistent flags internal/cli.NewRootCommand registers, so a
// subcommand under test can resolve them via ResolveFlags.
func newTestRootCommand() *cobra.Command {
	root := &cobra.Command{Use: "topofsm", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().StringP("format", "f", "", "output format: text or json")
	root.PersistentFlags().StringP("topology", "t", "", "path to the topology file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	return root
}

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

const singleNodeTopologyFixture = `
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
