// Package agent provides the decision makers that drive seats: a scripted
// heuristic player and an LLM-backed player speaking the JSON envelope.
package agent

import (
	"context"

	"github.com/talgya/catan-table/internal/action"
	"github.com/talgya/catan-table/internal/snapshot"
)

// Agent decides one action from a snapshot. Implementations must honor
// ctx cancellation; a timed-out decision counts as a failed attempt.
type Agent interface {
	Name() string
	Decide(ctx context.Context, state *snapshot.State) (*action.Decision, error)
}
