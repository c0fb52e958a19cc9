// Package resonance implements the Adaptive Resonance Gate (C3): an
// ART-inspired pre-store filter that checks a candidate engram for
// semantic resonance against existing memory before deciding whether
// to reinforce an existing engram (RESONANCE) or admit a new one
// (RESET).
package resonance

import (
	"context"
	"log/slog"

	"github.com/cortex-memory/cortex/internal/cortex/types"
	"github.com/cortex-memory/cortex/internal/cortex/vectorindex"
)

// Outcome is the result of running the gate over a candidate engram.
type Outcome string

const (
	Resonance Outcome = "resonance"
	Reset     Outcome = "reset"
)

// Index is the subset of the vector index the gate needs.
type Index interface {
	BestMatch(ctx context.Context, tenantID string, query []float32) (vectorindex.Match, bool, error)
}

// Gate is the ART-inspired resonance gate.
type Gate struct {
	index Index
	rho   float64 // vigilance threshold
	ltp   float64 // long-term-potentiation energy boost on resonance
	log   *slog.Logger
}

// New constructs a Gate. rho is the vigilance parameter (default
// 0.85); ltpBoost is the energy increment applied on resonance
// (default 0.25).
func New(index Index, rho, ltpBoost float64, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{index: index, rho: rho, ltp: ltpBoost, log: log}
}

// Decision reports the gate's verdict: on Resonance, MatchID names the
// existing engram the caller should load and reinforce via Reinforce;
// on Reset the candidate should be stored as-is.
type Decision struct {
	Outcome    Outcome
	MatchID    string
	Similarity float64
}

// Gate evaluates candidate against the tenant's existing memory and
// reports whether the caller should reinforce an existing engram
// (Resonance) or admit candidate as a new one (Reset). It does not
// mutate or persist anything itself — the orchestrator loads the full
// matched engram by id and calls Reinforce before writing it back.
func (g *Gate) Gate(ctx context.Context, candidate *types.Engram) (Decision, error) {
	match, found, err := g.index.BestMatch(ctx, candidate.TenantID, candidate.Embedding)
	if err != nil {
		return Decision{}, err
	}

	if found && match.Similarity >= g.rho {
		g.log.Info("ART resonance",
			"engram_id", match.ID, "similarity", match.Similarity, "rho", g.rho)
		return Decision{Outcome: Resonance, MatchID: match.ID, Similarity: match.Similarity}, nil
	}

	sim := 0.0
	if found {
		sim = match.Similarity
	}
	g.log.Info("ART reset", "candidate_id", candidate.ID, "best_sim", sim, "rho", g.rho)
	return Decision{Outcome: Reset, Similarity: sim}, nil
}

// Reinforce applies the LTP energy boost and entangled-ref merge to an
// existing engram that resonated with newRefID, clamping energy to 1.0.
func (g *Gate) Reinforce(existing *types.Engram, newRefID string) *types.Engram {
	reinforced := existing.Clone()
	reinforced.EnergyLevel += g.ltp
	if reinforced.EnergyLevel > 1.0 {
		reinforced.EnergyLevel = 1.0
	}
	reinforced.EntangledRefs = mergeRefs(reinforced.EntangledRefs, newRefID)
	return reinforced
}

func mergeRefs(existing []string, newRef string) []string {
	seen := make(map[string]bool, len(existing)+1)
	out := make([]string, 0, len(existing)+1)
	for _, r := range existing {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	if !seen[newRef] {
		out = append(out, newRef)
	}
	return out
}
