package engine

import "context"

// PruneCycleResult reports the outcome of one background maintenance
// pass.
type PruneCycleResult struct {
	Pruned   int
	Matured  int
	Deceased int
}

// PruneCycle runs the homeostasis pruning pass, the dual-trace
// consolidation sweep, and the reconsolidation labile sweep for a
// tenant in sequence, then decays the co-access graph. A
// crash mid-cycle is safe: C2 is always updated before C1 within each
// sub-pass, so a dangling vector is impossible and a dangling row is
// simply re-pruned next cycle.
func (e *Engine) PruneCycle(ctx context.Context, tenantID string) (PruneCycleResult, error) {
	pruned, err := e.pruner.PruneCycle(ctx, tenantID)
	if err != nil {
		return PruneCycleResult{}, err
	}

	sweep, err := e.consolidator.ConsolidationSweep(ctx, tenantID)
	if err != nil {
		return PruneCycleResult{Pruned: pruned}, err
	}

	for _, idDelta := range e.recon.Sweep(e.cfg.IgnorePenalty) {
		eng, err := e.store.Get(ctx, tenantID, idDelta.ID)
		if err != nil {
			continue // already gone, e.g. pruned this same cycle
		}
		updated := eng.Clone()
		updated.EnergyLevel += idDelta.Delta
		if updated.EnergyLevel < 0 {
			updated.EnergyLevel = 0
		}
		if err := e.store.Put(ctx, updated); err != nil {
			return PruneCycleResult{Pruned: pruned, Matured: sweep.Matured, Deceased: sweep.Deceased}, err
		}
		if err := e.index.Upsert(ctx, updated); err != nil {
			return PruneCycleResult{Pruned: pruned, Matured: sweep.Matured, Deceased: sweep.Deceased}, err
		}
	}

	e.coaccessG.DecayAll()

	return PruneCycleResult{Pruned: pruned, Matured: sweep.Matured, Deceased: sweep.Deceased}, nil
}
