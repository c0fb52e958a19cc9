// Package homeostasis implements the Thermodynamic Homeostasis Engine
// (C7): periodic decay recomputation and ATP-threshold entropy pruning,
// modeled on synaptic pruning.
package homeostasis

import (
	"context"
	"log/slog"

	"github.com/cortex-memory/cortex/internal/cortex/clock"
	"github.com/cortex-memory/cortex/internal/cortex/consolidation"
	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// energyDriftTolerance is the minimum |recomputed - stored| gap before
// a row is rewritten, avoiding a write on every prune tick for engrams
// whose decay hasn't meaningfully moved.
const energyDriftTolerance = 0.05

// Store is the subset of C1 the pruner needs.
type Store interface {
	Scan(ctx context.Context, tenantID string, filter types.Filter) ([]*types.Engram, error)
	Put(ctx context.Context, e *types.Engram) error
	Delete(ctx context.Context, tenantID, id string) error
}

// VectorIndex is the subset of C2 the pruner must keep in sync:
// deletes when pruning, and upserts when a survivor's decayed energy
// is persisted so min-energy search filters see the refreshed value.
type VectorIndex interface {
	Upsert(ctx context.Context, e *types.Engram) error
	Delete(ctx context.Context, id string) error
}

// Pruner runs circadian pruning cycles over a tenant's memory.
type Pruner struct {
	store           Store
	index           VectorIndex
	clock           clock.Clock
	atpThreshold    float64
	decayRatePerDay float64
	log             *slog.Logger
}

// New constructs a Pruner. atpThreshold is the minimum decayed energy
// an engram must retain to survive a prune cycle.
func New(store Store, index VectorIndex, c clock.Clock, atpThreshold, decayRatePerDay float64, log *slog.Logger) *Pruner {
	if log == nil {
		log = slog.Default()
	}
	return &Pruner{store: store, index: index, clock: c, atpThreshold: atpThreshold, decayRatePerDay: decayRatePerDay, log: log}
}

// PruneCycle scans every engram for tenantID, recomputes its decayed
// energy, deletes any non-diamond engram that has fallen below the ATP
// threshold, and persists refreshed energy for survivors whose decay
// has drifted meaningfully from the stored value. Returns the number
// of pruned engrams.
func (p *Pruner) PruneCycle(ctx context.Context, tenantID string) (int, error) {
	p.log.Info("starting thermodynamic pruning cycle", "tenant_id", tenantID)

	engrams, err := p.store.Scan(ctx, tenantID, types.Filter{})
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, e := range engrams {
		didPrune, err := p.pruneOne(ctx, e)
		if err != nil {
			return pruned, err
		}
		if didPrune {
			pruned++
		}
	}
	return pruned, nil
}

func (p *Pruner) pruneOne(ctx context.Context, e *types.Engram) (bool, error) {
	currentEnergy := consolidation.ComputeDecay(e, p.clock, p.decayRatePerDay)

	if currentEnergy < p.atpThreshold && !e.IsDiamond {
		p.log.Debug("pruning depleted engram", "engram_id", e.ID, "energy", currentEnergy)
		if err := p.index.Delete(ctx, e.ID); err != nil {
			return false, err
		}
		if err := p.store.Delete(ctx, e.TenantID, e.ID); err != nil {
			return false, err
		}
		return true, nil
	}

	if abs(currentEnergy-e.EnergyLevel) > energyDriftTolerance {
		updated := e.Clone()
		updated.EnergyLevel = currentEnergy
		if err := p.store.Put(ctx, updated); err != nil {
			return false, err
		}
		if err := p.index.Upsert(ctx, updated); err != nil {
			return false, err
		}
	}

	return false, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Reinforce strengthens an existing engram (simulated LTP), bumping its
// energy by boost and clamping to 1.0.
func Reinforce(e *types.Engram, c clock.Clock, boost float64) *types.Engram {
	out := e.Clone()
	out.LastAccessedAt = c.Now()
	out.EnergyLevel += boost
	if out.EnergyLevel > 1.0 {
		out.EnergyLevel = 1.0
	}
	return out
}
