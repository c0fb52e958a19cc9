package engine

import (
	"context"

	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// Stats summarizes a tenant's memory.
type Stats struct {
	Total    int
	Active   int
	Deceased int
	PerTier  map[types.Tier]int
	PerType  map[types.FactType]int
}

// Stats scans every engram for tenantID and tabulates lifecycle, tier,
// and fact-type breakdowns. DECEASED engrams are deleted on prune, so
// Deceased will normally read 0 between prune cycles; it is reported
// regardless in case a caller observes mid-cycle state.
func (e *Engine) Stats(ctx context.Context, tenantID string) (Stats, error) {
	engrams, err := e.store.Scan(ctx, tenantID, types.Filter{States: allStates})
	if err != nil {
		return Stats{}, err
	}

	out := Stats{
		PerTier: make(map[types.Tier]int),
		PerType: make(map[types.FactType]int),
	}
	for _, eng := range engrams {
		out.Total++
		switch eng.State {
		case types.StateActive:
			out.Active++
		case types.StateDeceased:
			out.Deceased++
		}
		out.PerTier[eng.Tier]++
		out.PerType[eng.FactType]++
	}
	return out, nil
}

var allStates = []types.State{
	types.StateActive, types.StateSilent, types.StateMatured, types.StateDeceased,
}
