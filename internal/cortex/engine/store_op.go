package engine

import (
	"context"
	"fmt"

	"github.com/cortex-memory/cortex/internal/cortex/cortexerr"
	"github.com/cortex-memory/cortex/internal/cortex/idgen"
	"github.com/cortex-memory/cortex/internal/cortex/resonance"
	"github.com/cortex-memory/cortex/internal/cortex/types"
	"github.com/cortex-memory/cortex/internal/cortex/valence"
)

// StoreRequest is the input to Store. Tags and Source have no
// dedicated Engram column, so they land in Extra with the rest of the
// caller-supplied metadata.
type StoreRequest struct {
	TenantID   string
	ProjectID  string
	Content    string
	FactType   types.FactType
	Confidence types.Confidence
	Tags       []string
	Source     string
	IsDiamond  bool
}

// StoreResult reports what Store actually did: a brand-new engram plus
// its silent twin, or a reinforced existing engram on resonance.
type StoreResult struct {
	Outcome resonance.Outcome
	Active  *types.Engram
	Silent  *types.Engram // nil on resonance
	MatchID string        // set on resonance
}

// Store runs the full write path: embedding, bloom fast-negative check,
// ART resonance gate, valence tagging, dual-trace consolidation, vector
// index upsert, and tier classification.
func (e *Engine) Store(ctx context.Context, req StoreRequest) (StoreResult, error) {
	if req.Content == "" {
		return StoreResult{}, fmt.Errorf("store: %w: empty content", cortexerr.ErrValidation)
	}

	embedding, err := e.encoder.Encode(ctx, req.Content)
	if err != nil {
		return StoreResult{}, fmt.Errorf("store: encode: %w", err)
	}
	if e.cfg.VectorDim != 0 && len(embedding) != e.cfg.VectorDim {
		return StoreResult{}, fmt.Errorf("store: %w: expected dim %d, got %d",
			cortexerr.ErrValidation, e.cfg.VectorDim, len(embedding))
	}

	contentHash := types.ContentHash(req.TenantID, req.Content)
	bloomKey := req.TenantID + "\x00" + contentHash

	candidate := &types.Engram{
		ID:         idgen.EngramID(req.TenantID, req.Content, e.clock.Now(), 0),
		TenantID:   req.TenantID,
		ProjectID:  req.ProjectID,
		Content:    req.Content,
		Embedding:  embedding,
		FactType:   req.FactType,
		Confidence: req.Confidence,
		IsDiamond:  req.IsDiamond,
		State:      types.StateActive,
		CreatedAt:  e.clock.Now(),
		Extra:      extraFrom(req),
	}

	vrecord := valence.Classify(req.Content, req.FactType)
	candidate.Valence = vrecord.Valence
	candidate.EnergyMultiplier = vrecord.EnergyMultiplier()
	candidate.EnergyLevel = 0.5 * candidate.EnergyMultiplier
	if candidate.EnergyLevel > 1.0 {
		candidate.EnergyLevel = 1.0
	}

	// Bloom fast-negative: only when the content hash MIGHT have been
	// seen is the exact-duplicate store lookup worth its I/O. An exact
	// hash match is resonance at similarity 1.0 by definition, no
	// vector comparison needed.
	if e.bloom.MightContain(bloomKey) {
		if existing, err := e.store.FindByContentHash(ctx, req.TenantID, contentHash); err == nil {
			decision := resonance.Decision{Outcome: resonance.Resonance, MatchID: existing.ID, Similarity: 1.0}
			return e.storeResonance(ctx, candidate, decision, bloomKey)
		}
	}

	// The vector gate runs regardless of the bloom verdict: paraphrases
	// hash differently but must still resonate against near-identical
	// embeddings. If the index is unreachable, degrade to the
	// fast-insert path; the duplicate merges on a later sweep.
	decision, err := e.gate.Gate(ctx, candidate)
	if err != nil {
		e.log.Warn("resonance gate degraded to fast insert", "error", err)
		decision = resonance.Decision{Outcome: resonance.Reset}
	}

	if decision.Outcome == resonance.Resonance {
		return e.storeResonance(ctx, candidate, decision, bloomKey)
	}
	return e.storeReset(ctx, candidate, bloomKey)
}

func extraFrom(req StoreRequest) map[string]string {
	if len(req.Tags) == 0 && req.Source == "" {
		return nil
	}
	extra := make(map[string]string, 2)
	if req.Source != "" {
		extra["source"] = req.Source
	}
	if len(req.Tags) > 0 {
		joined := ""
		for i, t := range req.Tags {
			if i > 0 {
				joined += ","
			}
			joined += t
		}
		extra["tags"] = joined
	}
	return extra
}

func (e *Engine) storeResonance(ctx context.Context, candidate *types.Engram, decision resonance.Decision, bloomKey string) (StoreResult, error) {
	existing, err := e.store.Get(ctx, candidate.TenantID, decision.MatchID)
	if err != nil {
		return StoreResult{}, err
	}
	reinforced := e.gate.Reinforce(existing, candidate.ID)
	reinforced.AccessCount++
	reinforced.LastAccessedAt = e.clock.Now()
	reinforced.Tier = e.classifier.EvaluateAndMigrate(reinforced.ID, reinforced.AccessCount, reinforced.EnergyLevel, reinforced.Tier)

	if err := e.store.Put(ctx, reinforced); err != nil {
		return StoreResult{}, err
	}
	if err := e.index.Upsert(ctx, reinforced); err != nil {
		return StoreResult{}, err
	}
	e.rememberTenant(reinforced.ID, reinforced.TenantID)
	e.bloom.Add(bloomKey)
	e.recon.OnAccess(reinforced.ID)
	e.coaccessG.RecordAccess(reinforced.ID)

	return StoreResult{Outcome: resonance.Resonance, Active: reinforced, MatchID: decision.MatchID}, nil
}

func (e *Engine) storeReset(ctx context.Context, candidate *types.Engram, bloomKey string) (StoreResult, error) {
	candidate.Tier = e.classifier.Classify(0, candidate.EnergyLevel)

	active, silent, err := e.consolidator.DualStore(ctx, candidate)
	if err != nil {
		return StoreResult{}, err
	}

	e.bloom.Add(bloomKey)
	e.rememberTenant(active.ID, active.TenantID)
	e.rememberTenant(silent.ID, silent.TenantID)
	e.recon.OnAccess(active.ID)
	e.coaccessG.RecordAccess(active.ID)

	return StoreResult{Outcome: resonance.Reset, Active: active, Silent: silent}, nil
}
