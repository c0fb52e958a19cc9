package engine

import (
	"context"

	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// Recall returns every ACTIVE engram for a tenant, optionally narrowed
// to one project.
func (e *Engine) Recall(ctx context.Context, tenantID, projectID string) ([]*types.Engram, error) {
	filter := types.Filter{
		ProjectID: projectID,
		States:    []types.State{types.StateActive},
	}
	engrams, err := e.store.Scan(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	for _, eng := range engrams {
		e.rememberTenant(eng.ID, eng.TenantID)
	}
	return engrams, nil
}
