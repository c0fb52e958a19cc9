package engine

import (
	"context"

	"github.com/cortex-memory/cortex/internal/cortex/policy"
	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// Prioritize scans a tenant's active engrams and returns a ranked
// action queue via the Bellman policy engine. Every fact is passed with
// ConsensusScore 1.0 (single-replica): this core has no multi-replica
// wiring of its own, so every fact scores as fully agreed upon.
func (e *Engine) Prioritize(ctx context.Context, tenantID, projectID string) ([]types.ActionItem, error) {
	filter := types.Filter{
		ProjectID: projectID,
		States:    []types.State{types.StateActive},
	}
	engrams, err := e.store.Scan(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	facts := make([]policy.Fact, 0, len(engrams))
	for _, eng := range engrams {
		facts = append(facts, policy.Fact{Engram: eng, ConsensusScore: 1.0})
	}
	return e.policyEngine.Evaluate(facts), nil
}
