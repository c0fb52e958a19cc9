package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/cortex-memory/cortex/internal/cortex/cortexerr"
	"github.com/cortex-memory/cortex/internal/cortex/router"
	"github.com/cortex-memory/cortex/internal/cortex/types"
	"github.com/cortex-memory/cortex/internal/cortex/vectorindex"
)

// SearchRequest is the input to Search.
type SearchRequest struct {
	TenantID       string
	ProjectID      string // empty means no project narrowing
	QueryText      string
	IsCrossProject bool
	IsAxiomLookup  bool
}

// SearchHit is one ranked match.
type SearchHit struct {
	ID       string
	Content  string
	Score    float64
	Project  string
	FactType types.FactType
}

// Search embeds the query, routes it to a retrieval band via BIFT, and
// returns ranked hits scoped by the band's search configuration. Every
// hit's source engram is recorded into the co-access graph so C13 can
// learn "queries that return X also return Y" transition patterns.
func (e *Engine) Search(ctx context.Context, req SearchRequest) ([]SearchHit, error) {
	if req.TenantID == "" {
		return nil, fmt.Errorf("search: %w: missing tenant", cortexerr.ErrValidation)
	}

	queryVec, err := e.encoder.Encode(ctx, req.QueryText)
	if err != nil {
		return nil, cortexerr.Wrap("search-encode", err)
	}

	band := router.ClassifyQuery(req.QueryText, req.IsCrossProject, req.IsAxiomLookup)
	bandCfg := router.GetConfig(band)

	filter := types.Filter{
		ProjectID:         req.ProjectID,
		MinEnergy:         bandCfg.MinEnergy,
		RequiredDiamond:   bandCfg.RequireDiamond,
		AllowCrossProject: bandCfg.CrossProject || req.IsCrossProject,
	}

	matches, err := e.index.Search(ctx, req.TenantID, queryVec, bandCfg.MaxResults, filter)
	if err != nil {
		return nil, fmt.Errorf("search: %w: %v", cortexerr.ErrIndexUnavailable, err)
	}

	// Gamma is the exact/keyword band: supplement the semantic matches
	// with full-text hits the embedding may have missed, scored by
	// their actual cosine distance so ordering stays honest.
	if band == router.Gamma {
		matches = e.mergeKeywordMatches(ctx, req.TenantID, req.QueryText, queryVec, matches, bandCfg.MaxResults, bandCfg.MinEnergy)
	}

	hits := make([]SearchHit, 0, len(matches))
	for _, m := range matches {
		eng, err := e.store.Get(ctx, req.TenantID, m.ID)
		if err != nil {
			continue // index/store drift: skip rather than fail the whole search
		}
		hits = append(hits, SearchHit{ID: eng.ID, Content: eng.Content, Score: m.Similarity, Project: eng.ProjectID, FactType: eng.FactType})
		e.rememberTenant(eng.ID, eng.TenantID)

		// Read-path side effects: each returned engram goes labile,
		// feeds the co-access graph, and records the access for the
		// tier classifier. The write-back is best-effort; a retrieval
		// never fails because its bookkeeping lost a chain-lock race.
		e.recon.OnAccess(eng.ID)
		e.coaccessG.RecordAccess(eng.ID)

		accessed := eng.Clone()
		accessed.AccessCount++
		accessed.LastAccessedAt = e.clock.Now()
		accessed.Tier = e.classifier.EvaluateAndMigrate(accessed.ID, accessed.AccessCount, accessed.EnergyLevel, accessed.Tier)
		if err := e.store.Put(ctx, accessed); err != nil {
			e.log.Warn("search access write-back skipped", "engram_id", eng.ID, "error", err)
			continue
		}
		if err := e.index.Upsert(ctx, accessed); err != nil {
			e.log.Warn("search index refresh skipped", "engram_id", eng.ID, "error", err)
		}
	}
	return hits, nil
}

// mergeKeywordMatches appends full-text matches absent from the vector
// result set, keeping the combined list sorted by similarity and capped
// at limit. FTS failures degrade silently to the vector-only results.
func (e *Engine) mergeKeywordMatches(ctx context.Context, tenantID, queryText string, queryVec []float32, matches []vectorindex.Match, limit int, minEnergy float64) []vectorindex.Match {
	keyword, err := e.store.SearchContent(ctx, tenantID, queryText, limit)
	if err != nil {
		e.log.Warn("keyword search skipped", "error", err)
		return matches
	}

	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		seen[m.ID] = true
	}
	for _, eng := range keyword {
		if seen[eng.ID] || eng.EnergyLevel < minEnergy {
			continue
		}
		matches = append(matches, vectorindex.Match{
			ID:         eng.ID,
			TenantID:   eng.TenantID,
			Similarity: vectorindex.CosineSimilarity(queryVec, eng.Embedding),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
