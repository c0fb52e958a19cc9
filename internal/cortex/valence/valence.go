// Package valence implements the Valence Tagger (C9): emotional
// charge tagging so critical lessons and confirmed anti-patterns
// consolidate more strongly than neutral facts, modeling amygdala
// noradrenaline-mediated LTP enhancement.
package valence

import (
	"strings"

	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// Tag is a discrete emotional category for an engram.
type Tag string

const (
	TagCritical    Tag = "critical"
	TagPositive    Tag = "positive"
	TagNeutral     Tag = "neutral"
	TagNegative    Tag = "negative"
	TagAntiPattern Tag = "anti_pattern"
)

// Record is the emotional-valence metadata attached to an engram.
type Record struct {
	Valence float64 // -1 (anti-pattern) .. +1 (critical)
	Tag     Tag
	Arousal float64 // 0..1, how activating the memory is
}

// EnergyMultiplier computes a multiplier in [0.5, 2.0] from valence and
// arousal. Both valence extremes (strongly positive or negative) boost
// consolidation; higher arousal amplifies the effect.
func (r Record) EnergyMultiplier() float64 {
	intensity := r.Valence
	if intensity < 0 {
		intensity = -intensity
	}
	base := 1.0 + intensity
	mult := base * (0.5 + 0.5*r.Arousal)
	if mult > 2.0 {
		return 2.0
	}
	return mult
}

var errorSignals = []string{"error", "bug", "crash", "failed", "broke", "fix"}

// Classify auto-classifies emotional valence from content and fact
// type heuristics. This is a
// fast heuristic, not an LLM call; it runs inline on every store.
func Classify(content string, factType types.FactType) Record {
	lower := strings.ToLower(content)

	if factType == types.FactError || containsAny(lower, errorSignals) {
		return Record{Valence: -0.8, Tag: TagNegative, Arousal: 0.9}
	}
	if factType == types.FactDecision {
		return Record{Valence: 0.6, Tag: TagPositive, Arousal: 0.7}
	}
	if factType == types.FactBridge {
		return Record{Valence: 0.9, Tag: TagCritical, Arousal: 0.8}
	}
	if factType == types.FactRule {
		return Record{Valence: 1.0, Tag: TagCritical, Arousal: 0.6}
	}
	return Record{Valence: 0.0, Tag: TagNeutral, Arousal: 0.5}
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
