// Package vectorindex implements the Vector Index (C2):
// nearest-neighbor lookup over engram embeddings by exact cosine
// similarity.
//
// The index is a brute-force cosine scan over an in-memory map rather
// than an ANN structure: the resonance gate's near-duplicate check
// (sim >= 0.99) must be exact, not approximate, and at the scale this
// engine targets (tens of thousands of engrams per tenant, not
// billions) an exact scan is cheap.
package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// Config holds what a brute-force cosine index actually needs.
type Config struct {
	VectorDim    int
	SimilarityFn SimilarityFunc
}

// DefaultConfig returns a Config with cosine similarity for the given
// embedding dimension.
func DefaultConfig(dim int) Config {
	return Config{VectorDim: dim, SimilarityFn: CosineSimilarity}
}

// SimilarityFunc scores two equal-length vectors; higher is more similar.
type SimilarityFunc func(a, b []float32) float64

// CosineSimilarity returns a value in [-1, 1]. Zero-norm vectors
// score 0, not NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0.0 || normB == 0.0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Match is one scored hit from Search.
type Match struct {
	ID         string
	TenantID   string
	Similarity float64
}

// entry is the indexed representation of one engram's embedding.
type entry struct {
	tenantID  string
	projectID string
	state     types.State
	tier      types.Tier
	diamond   bool
	energy    float64
	vector    []float32
}

// Index is the in-memory cosine-similarity index. Safe for concurrent use.
type Index struct {
	cfg Config

	mu      sync.RWMutex
	entries map[string]*entry // keyed by engram id
}

// New constructs an empty Index.
func New(cfg Config) (*Index, error) {
	if cfg.VectorDim <= 0 {
		return nil, wrapError("new", fmt.Errorf("vector dim must be positive, got %d", cfg.VectorDim))
	}
	if cfg.SimilarityFn == nil {
		cfg.SimilarityFn = CosineSimilarity
	}
	return &Index{cfg: cfg, entries: make(map[string]*entry)}, nil
}

// Upsert indexes or replaces the embedding for an engram.
func (idx *Index) Upsert(ctx context.Context, e *types.Engram) error {
	if len(e.Embedding) != idx.cfg.VectorDim {
		return wrapError("upsert", fmt.Errorf("%s: expected dim %d, got %d", e.ID, idx.cfg.VectorDim, len(e.Embedding)))
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[e.ID] = &entry{
		tenantID:  e.TenantID,
		projectID: e.ProjectID,
		state:     e.State,
		tier:      e.Tier,
		diamond:   e.IsDiamond,
		energy:    e.EnergyLevel,
		vector:    append([]float32(nil), e.Embedding...),
	}
	return nil
}

// Delete removes an id from the index. A no-op if id isn't present.
func (idx *Index) Delete(ctx context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, id)
	return nil
}

// Search returns the top-k matches for a tenant's query vector, highest
// similarity first, ties broken by id for determinism.
func (idx *Index) Search(ctx context.Context, tenantID string, query []float32, k int, filter types.Filter) ([]Match, error) {
	if len(query) != idx.cfg.VectorDim {
		return nil, wrapError("search", fmt.Errorf("expected dim %d, got %d", idx.cfg.VectorDim, len(query)))
	}
	if k <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var matches []Match
	for id, e := range idx.entries {
		// Tenants are hard isolation keys; AllowCrossProject only widens
		// the project scope, never the tenant scope.
		if e.tenantID != tenantID {
			continue
		}
		if filter.ProjectID != "" && e.projectID != filter.ProjectID && !filter.AllowCrossProject {
			continue
		}
		if !stateAllowed(e.state, filter.States) {
			continue
		}
		if filter.MinEnergy > 0 && e.energy < filter.MinEnergy {
			continue
		}
		if filter.RequiredDiamond && !e.diamond {
			continue
		}
		if len(filter.AllowedTiers) > 0 && !tierAllowed(e.tier, filter.AllowedTiers) {
			continue
		}
		sim := idx.cfg.SimilarityFn(query, e.vector)
		matches = append(matches, Match{ID: id, TenantID: e.tenantID, Similarity: sim})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// BestMatch is a convenience wrapper used by the resonance gate (C3) to
// find the single closest existing engram for a tenant, regardless of
// project: dedup is cross-project within a tenant.
func (idx *Index) BestMatch(ctx context.Context, tenantID string, query []float32) (Match, bool, error) {
	matches, err := idx.Search(ctx, tenantID, query, 1, types.Filter{AllowCrossProject: true})
	if err != nil {
		return Match{}, false, err
	}
	if len(matches) == 0 {
		return Match{}, false, nil
	}
	return matches[0], true, nil
}

func stateAllowed(s types.State, allowed []types.State) bool {
	// Default visibility predicate: only ACTIVE and MATURED engrams are
	// searchable. SILENT twins sit in the index (so maturation is an
	// index metadata update, not a re-embed) but stay invisible until
	// they mature.
	if len(allowed) == 0 {
		return s == types.StateActive || s == types.StateMatured
	}
	for _, a := range allowed {
		if a == s {
			return true
		}
	}
	return false
}

func tierAllowed(t types.Tier, allowed []types.Tier) bool {
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}
