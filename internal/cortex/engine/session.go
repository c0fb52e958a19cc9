package engine

import (
	"github.com/cortex-memory/cortex/internal/cortex/coaccess"
	"github.com/cortex-memory/cortex/internal/cortex/workingset"
)

// Session is a per-conversation working-set buffer and guardrail pair
// plus an anticipatory cache over this engine's shared co-access
// graph. The buffer and guardrail are session-scoped; the co-access
// graph they feed is tenant-wide and lives on the Engine.
type Session struct {
	Buffer    *workingset.Buffer
	Guardrail *workingset.Guardrail
	Cache     *coaccess.AnticipatoryCache[*CacheEntry]
}

// CacheEntry is what Session's anticipatory cache holds: just enough to
// serve a cache hit without a round trip through Recall.
type CacheEntry struct {
	Content  string
	TenantID string
}

// NewSession constructs a fresh working-set buffer and session
// guardrail seeded from the engine's configuration, and an anticipatory
// cache sharing the engine's co-access graph.
func (e *Engine) NewSession() *Session {
	return &Session{
		Buffer:    workingset.NewBuffer(e.cfg.MaxSessionTokens),
		Guardrail: workingset.NewGuardrail(e.clock, e.cfg.MaxSessionTokens, e.cfg.WarnThreshold, e.cfg.MaxTurns, e.log),
		Cache:     coaccess.NewAnticipatoryCache[*CacheEntry](e.coaccessG, e.cfg.PrefetchThreshold, e.cfg.MaxPrefetch),
	}
}
