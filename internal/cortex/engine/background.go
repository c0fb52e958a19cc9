package engine

import (
	"context"
	"time"
)

// Run drives the background maintenance cadence for a fixed set of
// tenants until ctx is cancelled: a homeostasis prune cycle every
// prune_cycle_interval_s and a dual-trace consolidation sweep every
// consolidation_interval_s. Background failures are logged and the
// loop continues; a failed cycle never poisons the store. Run blocks,
// so callers start it on its own goroutine.
func (e *Engine) Run(ctx context.Context, tenantIDs []string) {
	pruneEvery := time.Duration(e.cfg.PruneCycleIntervalSeconds) * time.Second
	sweepEvery := time.Duration(e.cfg.ConsolidationIntervalSeconds) * time.Second
	if pruneEvery <= 0 {
		pruneEvery = 4 * time.Hour
	}
	if sweepEvery <= 0 {
		sweepEvery = time.Hour
	}

	pruneTicker := time.NewTicker(pruneEvery)
	defer pruneTicker.Stop()
	sweepTicker := time.NewTicker(sweepEvery)
	defer sweepTicker.Stop()

	e.log.Info("background maintenance started",
		"tenants", len(tenantIDs), "prune_interval", pruneEvery, "sweep_interval", sweepEvery)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("background maintenance stopped")
			return

		case <-pruneTicker.C:
			for _, tenant := range tenantIDs {
				res, err := e.PruneCycle(ctx, tenant)
				if err != nil {
					e.log.Warn("prune cycle failed", "tenant_id", tenant, "error", err)
					continue
				}
				e.log.Info("prune cycle complete", "tenant_id", tenant,
					"pruned", res.Pruned, "matured", res.Matured, "deceased", res.Deceased)
			}

		case <-sweepTicker.C:
			for _, tenant := range tenantIDs {
				stats, err := e.consolidator.ConsolidationSweep(ctx, tenant)
				if err != nil {
					e.log.Warn("consolidation sweep failed", "tenant_id", tenant, "error", err)
					continue
				}
				e.log.Info("consolidation sweep complete", "tenant_id", tenant,
					"matured", stats.Matured, "deceased", stats.Deceased, "pending", stats.Pending)
			}
		}
	}
}
