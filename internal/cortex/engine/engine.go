// Package engine wires C1-C15 into the CortexCore context: a single
// explicit struct constructed once at startup and threaded through
// every operation, ordinary dependency injection instead of
// module-level singletons. It exposes the engine's programmatic
// interface (store/search/recall/confirm/contradict/prioritize/
// prune_cycle/verify_chain/stats).
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cortex-memory/cortex/internal/cortex/bloomfilter"
	"github.com/cortex-memory/cortex/internal/cortex/causal"
	"github.com/cortex-memory/cortex/internal/cortex/clock"
	"github.com/cortex-memory/cortex/internal/cortex/coaccess"
	"github.com/cortex-memory/cortex/internal/cortex/config"
	"github.com/cortex-memory/cortex/internal/cortex/consolidation"
	"github.com/cortex-memory/cortex/internal/cortex/cortexerr"
	"github.com/cortex-memory/cortex/internal/cortex/homeostasis"
	"github.com/cortex-memory/cortex/internal/cortex/idgen"
	"github.com/cortex-memory/cortex/internal/cortex/policy"
	"github.com/cortex-memory/cortex/internal/cortex/reconsolidation"
	"github.com/cortex-memory/cortex/internal/cortex/resonance"
	"github.com/cortex-memory/cortex/internal/cortex/store"
	"github.com/cortex-memory/cortex/internal/cortex/tiers"
	"github.com/cortex-memory/cortex/internal/cortex/types"
	"github.com/cortex-memory/cortex/internal/cortex/vectorindex"
)

// Encoder is the injected embedding capability the host must supply.
// Stateless; may be batched by the caller.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// Engine is the CortexCore context: the thermodynamic memory engine
// assembled from every C1-C15 component.
type Engine struct {
	cfg     *config.Config
	store   store.Store
	index   *vectorindex.Index
	encoder Encoder
	clock   clock.Clock
	log     *slog.Logger

	bloom        *bloomfilter.Filter
	gate         *resonance.Gate
	consolidator *consolidation.Consolidator
	classifier   *tiers.Classifier
	pruner       *homeostasis.Pruner
	recon        *reconsolidation.Tracker
	policyEngine *policy.Engine

	causalMu sync.RWMutex
	causalG  *causal.Graph

	coaccessG *coaccess.Graph

	// tenantIndex is a small in-memory id -> tenant lookup so Confirm
	// and Contradict, which take no tenant argument, can locate the
	// owning tenant without a full cross-tenant scan.
	tenantMu    sync.RWMutex
	tenantIndex map[string]string
}

// New constructs an Engine over an already-open Store and wires every
// in-process component (ART gate, consolidator, tier classifier,
// pruner, reconsolidation tracker, policy engine, bloom filter,
// causal graph, co-access graph) from cfg. It loads the persisted
// causal edge set into the in-memory causal graph.
func New(ctx context.Context, cfg *config.Config, st store.Store, idx *vectorindex.Index, enc Encoder, clk clock.Clock, log *slog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, cortexerr.Wrap("engine-new", err)
	}
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = slog.Default()
	}

	var twinNonce int64
	newSilentID := func() string {
		n := atomic.AddInt64(&twinNonce, 1)
		return idgen.SilentTwinID(idgen.EngramID("silent-twin", "", clk.Now(), int(n)))
	}

	// Every component appends through the retrying wrapper, so a lost
	// chain-lock race resolves with capped backoff instead of bubbling
	// CHAIN_LOCKED to the caller.
	rst := retryingStore{Store: st}

	e := &Engine{
		cfg: cfg, store: rst, index: idx, encoder: enc, clock: clk, log: log,

		bloom:        bloomfilter.New(cfg.BloomExpectedItems, cfg.BloomFPRate),
		gate:         resonance.New(idx, cfg.VigilanceRho, cfg.LTPBoost, log),
		consolidator: consolidation.New(rst, idx, clk, cfg.MaturationDays, cfg.SilentInitialEnergy, cfg.DecayRatePerDay, newSilentID, log),
		classifier:   tiers.New(promotionMap(cfg), demotionMap(cfg), log),
		pruner:       homeostasis.New(rst, idx, clk, cfg.ATPThreshold, cfg.DecayRatePerDay, log),
		recon:        reconsolidation.New(clk, cfg.LabileWindowSeconds, cfg.ReconsolidateBoost),
		policyEngine: policy.New(policyConfig(cfg), clk),

		causalG:     causal.New(),
		coaccessG:   coaccess.New(cfg.CoAccessDecayFactor),
		tenantIndex: make(map[string]string),
	}

	edges, err := st.ScanCausalEdges(ctx)
	if err != nil {
		return nil, cortexerr.Wrap("engine-new-causal-load", err)
	}
	for _, edge := range edges {
		e.causalG.AddEdge(edge)
	}

	return e, nil
}

func promotionMap(cfg *config.Config) map[types.Tier]int64 {
	return map[types.Tier]int64{
		types.TierHot: cfg.TierPromotionThresholds[0], types.TierWarm: cfg.TierPromotionThresholds[1],
		types.TierCold: cfg.TierPromotionThresholds[2], types.TierPermafrost: cfg.TierPromotionThresholds[3],
	}
}

func demotionMap(cfg *config.Config) map[types.Tier]float64 {
	return map[types.Tier]float64{
		types.TierHot: cfg.TierMinEnergy[0], types.TierWarm: cfg.TierMinEnergy[1],
		types.TierCold: cfg.TierMinEnergy[2], types.TierPermafrost: cfg.TierMinEnergy[3],
	}
}

func policyConfig(cfg *config.Config) policy.Config {
	pc := policy.DefaultConfig()
	pc.Gamma = cfg.Gamma
	pc.MaxActions = cfg.MaxActions
	pc.CrossProjectBonus = cfg.CrossProjectBonus
	pc.BlockingMultiplier = cfg.BlockingMultiplier
	return pc
}

// rememberTenant records id's owning tenant for later confirm/contradict
// lookups.
func (e *Engine) rememberTenant(id, tenantID string) {
	e.tenantMu.Lock()
	defer e.tenantMu.Unlock()
	e.tenantIndex[id] = tenantID
}

func (e *Engine) tenantOf(id string) (string, bool) {
	e.tenantMu.RLock()
	defer e.tenantMu.RUnlock()
	t, ok := e.tenantIndex[id]
	return t, ok
}

// AddCausalEdge persists a causal relationship and updates the
// in-memory causal graph.
func (e *Engine) AddCausalEdge(ctx context.Context, edge *types.CausalEdge) error {
	if err := e.store.PutCausalEdge(ctx, edge); err != nil {
		return err
	}
	e.causalMu.Lock()
	defer e.causalMu.Unlock()
	e.causalG.AddEdge(edge)
	return nil
}

// CausalGraph exposes the read-only causal graph operations directly,
// since they take no write path of their own.
func (e *Engine) CausalGraph() *causal.Graph {
	e.causalMu.RLock()
	defer e.causalMu.RUnlock()
	return e.causalG
}

// retryingStore wraps a Store so that Put retries a lost chain-lock
// race with capped exponential backoff.
type retryingStore struct {
	store.Store
}

const (
	putRetryAttempts = 4
	putRetryBase     = 5 * time.Millisecond
)

func (r retryingStore) Put(ctx context.Context, e *types.Engram) error {
	backoff := putRetryBase
	var err error
	for attempt := 0; attempt < putRetryAttempts; attempt++ {
		err = r.Store.Put(ctx, e)
		if err == nil || !errors.Is(err, cortexerr.ErrChainLocked) {
			return err
		}
		select {
		case <-ctx.Done():
			return cortexerr.Wrap("put-retry", cortexerr.ErrTimeout)
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

func (e *Engine) removeCausalEngram(ctx context.Context, id string) error {
	if err := e.store.DeleteCausalEdgesFor(ctx, id); err != nil {
		return err
	}
	e.causalMu.Lock()
	defer e.causalMu.Unlock()
	e.causalG.RemoveEngram(id)
	return nil
}
