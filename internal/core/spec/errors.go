// SPDX-License-Identifier: AGPL-3.0-or-later

/*
topofsm - an analysis engine for distributed-application topologies modeled as interacting finite-state machines: composed-FSM semantics, reachability enumeration, and Floyd-Warshall shortest-path planning.

Copyright (C) 2026  The topofsm Authors

Adapted from Stagecraft, Copyright (C) 2025 Bartek Kus, licensed under the
GNU AGPL v3 or later.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package spec

import (
	"fmt"

	"go.uber.org/multierr"
)

// InvalidError reports every structural violation found while validating
// a single NodeSpec. Callers that only care whether construction failed
// can treat it as an opaque error; callers that want the individual
// violations can multierr.Errors(e.Err).
type InvalidError struct {
	NodeID NodeID
	Err    error
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid spec for node %q: %v", e.NodeID, e.Err)
}

func (e *InvalidError) Unwrap() error { return e.Err }

// combine aggregates validation violations into a single error via
// multierr, so New reports every problem in one pass instead of one
// fix-recompile cycle at a time.
func combine(errs []error) error {
	var combined error
	for _, e := range errs {
		combined = multierr.Append(combined, e)
	}
	return combined
}
