package engine

import (
	"context"
	"fmt"

	"github.com/cortex-memory/cortex/internal/cortex/cortexerr"
	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// Confirm re-stabilizes a labile engram, applying the reconsolidation
// energy boost and persisting it. Returns false, ErrWindowExpired if
// the engram was never marked labile or its window already swept out.
func (e *Engine) Confirm(ctx context.Context, id string) (bool, error) {
	tenantID, ok := e.tenantOf(id)
	if !ok {
		return false, fmt.Errorf("confirm: %w: %s", cortexerr.ErrUnknownID, id)
	}

	delta := e.recon.Confirm(id)
	if delta == 0 {
		return false, fmt.Errorf("confirm: %w", cortexerr.ErrWindowExpired)
	}

	eng, err := e.store.Get(ctx, tenantID, id)
	if err != nil {
		return false, fmt.Errorf("confirm: %w: %s", cortexerr.ErrUnknownID, id)
	}

	updated := eng.Clone()
	updated.EnergyLevel += delta
	if updated.EnergyLevel > 1.0 {
		updated.EnergyLevel = 1.0
	}
	updated.Tier = e.classifier.EvaluateAndMigrate(updated.ID, updated.AccessCount, updated.EnergyLevel, updated.Tier)

	if err := e.store.Put(ctx, updated); err != nil {
		return false, err
	}
	if err := e.index.Upsert(ctx, updated); err != nil {
		return false, err
	}
	return true, nil
}

// Contradict flags an engram's content as disputed, incrementing its
// contradiction count and resetting its maturation clock. The
// reconsolidation tracker's own delta is neutral for contradictions
// , so no energy adjustment happens here.
func (e *Engine) Contradict(ctx context.Context, id string) (bool, error) {
	tenantID, ok := e.tenantOf(id)
	if !ok {
		return false, fmt.Errorf("contradict: %w: %s", cortexerr.ErrUnknownID, id)
	}
	e.recon.Contradict(id)

	eng, err := e.store.Get(ctx, tenantID, id)
	if err != nil {
		return false, fmt.Errorf("contradict: %w: %s", cortexerr.ErrUnknownID, id)
	}

	updated := eng.Clone()
	updated.ContradictionCount++
	if updated.State == types.StateSilent {
		// Resetting created_at restarts the maturation clock; this is
		// the only sanctioned mutation of created_at and applies to
		// silent twins alone.
		updated.CreatedAt = e.clock.Now()
	}

	if err := e.store.Put(ctx, updated); err != nil {
		return false, err
	}
	return true, nil
}
