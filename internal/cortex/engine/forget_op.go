package engine

import (
	"context"

	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// Forget explicitly destroys an engram outside the homeostasis pruning
// cycle.
// The vector index entry, the store row, any causal edges touching id,
// and any still-silent twin backing the engram are all removed; a twin
// that already matured stands on its own and survives.
func (e *Engine) Forget(ctx context.Context, tenantID, id string) error {
	if err := e.index.Delete(ctx, id); err != nil {
		return err
	}
	if err := e.store.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	if err := e.removeCausalEngram(ctx, id); err != nil {
		return err
	}

	silents, err := e.store.Scan(ctx, tenantID, types.Filter{States: []types.State{types.StateSilent}})
	if err != nil {
		return err
	}
	for _, twin := range silents {
		if twin.ActiveTwinID != id {
			continue
		}
		if err := e.index.Delete(ctx, twin.ID); err != nil {
			return err
		}
		if err := e.store.Delete(ctx, tenantID, twin.ID); err != nil {
			return err
		}
	}
	return nil
}
