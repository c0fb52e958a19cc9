// Package cortex provides a minimal public API for embedding the
// thermodynamic memory engine in a host process.
//
// Most callers should construct a Store, a VectorIndex, and an Encoder,
// then call New to get a fully wired Engine. For detailed component
// documentation see the internal/cortex/* packages this re-exports.
package cortex

import (
	"github.com/cortex-memory/cortex/internal/cortex/clock"
	"github.com/cortex-memory/cortex/internal/cortex/config"
	"github.com/cortex-memory/cortex/internal/cortex/engine"
	"github.com/cortex-memory/cortex/internal/cortex/store"
	"github.com/cortex-memory/cortex/internal/cortex/types"
	"github.com/cortex-memory/cortex/internal/cortex/vectorindex"
)

// Core types for working with engrams.
type (
	Engram     = types.Engram
	FactType   = types.FactType
	Confidence = types.Confidence
	State      = types.State
	Tier       = types.Tier
	CausalEdge = types.CausalEdge
	ActionItem = types.ActionItem
)

// FactType constants.
const (
	FactDecision  = types.FactDecision
	FactError     = types.FactError
	FactBridge    = types.FactBridge
	FactKnowledge = types.FactKnowledge
	FactGhost     = types.FactGhost
	FactRule      = types.FactRule
)

// State constants.
const (
	StateActive   = types.StateActive
	StateSilent   = types.StateSilent
	StateMatured  = types.StateMatured
	StateDeceased = types.StateDeceased
)

// Tier constants.
const (
	TierHot        = types.TierHot
	TierWarm       = types.TierWarm
	TierCold       = types.TierCold
	TierPermafrost = types.TierPermafrost
)

// Config is the typed configuration surface.
type Config = config.Config

// DefaultConfig returns Config populated with the stock defaults.
func DefaultConfig() *Config { return config.Default() }

// LoadConfig reads a YAML config file, falling back to defaults when
// absent.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }

// Clock abstracts wall-clock time for deterministic tests.
type Clock = clock.Clock

// Encoder is the injected embedding capability a host must supply.
type Encoder = engine.Encoder

// Engine is the CortexCore context exposing store/search/recall/
// confirm/contradict/prioritize/prune_cycle/verify_chain/stats.
type Engine = engine.Engine

// StoreRequest, StoreResult, SearchRequest, SearchHit, ChainStatus,
// Stats, and PruneCycleResult mirror the Engine operation shapes.
type (
	StoreRequest     = engine.StoreRequest
	StoreResult      = engine.StoreResult
	SearchRequest    = engine.SearchRequest
	SearchHit        = engine.SearchHit
	ChainStatus      = engine.ChainStatus
	Stats            = engine.Stats
	PruneCycleResult = engine.PruneCycleResult
	Session          = engine.Session
)

// New constructs a fully wired Engine over st and idx, using enc to
// embed text and clk as the time source (pass nil for the real wall
// clock).
var New = engine.New

// NewSQLiteStore opens (creating if necessary) a SQLite-backed engram
// store at path. Pass ":memory:" for an ephemeral, test-only store.
func NewSQLiteStore(path string, c Clock) (store.Store, error) {
	return store.New(path, c)
}

// NewVectorIndex constructs an empty brute-force cosine similarity
// index for the given embedding dimension.
func NewVectorIndex(dim int) (*vectorindex.Index, error) {
	return vectorindex.New(vectorindex.DefaultConfig(dim))
}
