// Package policy implements the Policy Engine (C11): a Bellman value
// function that converts stored facts into a ranked action queue,
// V(s) = R(s,a) + gamma*V(s').
package policy

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cortex-memory/cortex/internal/cortex/clock"
	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// rewardMap is the base immediate reward per fact type (higher = more
// actionable); ghosts/errors represent incomplete or broken state.
var rewardMap = map[types.FactType]float64{
	types.FactError:     0.90,
	types.FactGhost:     0.70,
	types.FactBridge:    0.50,
	types.FactDecision:  0.30,
	types.FactKnowledge: 0.10,
}

// actionTypeMap names the action category derived from a fact type.
var actionTypeMap = map[types.FactType]string{
	types.FactGhost:     "resolve_ghost",
	types.FactError:     "fix_error",
	types.FactBridge:    "apply_bridge",
	types.FactDecision:  "review_decision",
	types.FactKnowledge: "absorb_knowledge",
}

// sourceTypePriority breaks ties between equal-value actions, highest
// priority first.
var sourceTypePriority = map[types.FactType]int{
	types.FactError:     5,
	types.FactGhost:     4,
	types.FactBridge:    3,
	types.FactDecision:  2,
	types.FactKnowledge: 1,
}

var blockingKeywords = []string{
	"blocking", "blocked", "critical", "urgent",
	"deploy", "ship", "production", "release",
	"security", "vulnerability", "crash", "broken",
}

var confidenceMultiplier = map[types.Confidence]float64{
	types.ConfidenceC1: 1.3,
	types.ConfidenceC2: 1.2,
	types.ConfidenceC3: 1.0,
	types.ConfidenceC4: 0.9,
	types.ConfidenceC5: 0.8,
}

// Config holds the tunable Bellman-value parameters.
type Config struct {
	Gamma              float64
	MaxActions         int
	CrossProjectBonus  float64
	BlockingMultiplier float64

	// GhostAgeDecay is the per-day multiplicative decay applied to
	// ghost urgency, and ErrorRecencyWeight/RecencyWindowHours gate
	// the error recency bonus. These are rarely worth tuning, so they
	// stay here rather than threading through the top-level Config.
	GhostAgeDecay      float64
	ErrorRecencyWeight float64
	RecencyWindowHours float64
}

// DefaultConfig returns the stock Bellman parameters.
func DefaultConfig() Config {
	return Config{
		Gamma:              0.9,
		MaxActions:         20,
		CrossProjectBonus:  1.5,
		BlockingMultiplier: 3.0,
		GhostAgeDecay:      0.95,
		ErrorRecencyWeight: 2.0,
		RecencyWindowHours: 24.0,
	}
}

// Fact is the engine input: an engram plus the consensus score the
// orchestrator computed across replicas (a CRDT merge input), since
// consensus lives outside the Engram struct proper.
type Fact struct {
	Engram         *types.Engram
	ConsensusScore float64 // defaults to 1.0 when unknown (single-replica)
}

// Engine scores facts via the Bellman value function and returns a
// ranked action queue.
type Engine struct {
	cfg   Config
	clock clock.Clock
}

// New constructs an Engine.
func New(cfg Config, c clock.Clock) *Engine {
	return &Engine{cfg: cfg, clock: c}
}

// Evaluate scores every fact and returns the top max_actions items,
// sorted descending by value, ties broken by source-type priority
// then by recency. Zero-value actions are dropped.
func (e *Engine) Evaluate(facts []Fact) []types.ActionItem {
	if len(facts) == 0 {
		return nil
	}

	projectIndex := make(map[string]bool, len(facts))
	for _, f := range facts {
		projectIndex[f.Engram.ProjectID] = true
	}

	now := e.clock.Now()

	type scored struct {
		item types.ActionItem
		eng  *types.Engram
	}
	var actions []scored

	for _, f := range facts {
		item := e.scoreFact(f, projectIndex, now)
		if item.Value > 0.0 {
			actions = append(actions, scored{item: item, eng: f.Engram})
		}
	}

	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].item.Value != actions[j].item.Value {
			return actions[i].item.Value > actions[j].item.Value
		}
		pi := sourceTypePriority[actions[i].item.SourceType]
		pj := sourceTypePriority[actions[j].item.SourceType]
		if pi != pj {
			return pi > pj
		}
		return actions[i].eng.CreatedAt.After(actions[j].eng.CreatedAt)
	})

	if e.cfg.MaxActions > 0 && len(actions) > e.cfg.MaxActions {
		actions = actions[:e.cfg.MaxActions]
	}

	out := make([]types.ActionItem, len(actions))
	for i, a := range actions {
		out[i] = a.item
	}
	return out
}

func (e *Engine) scoreFact(f Fact, projectIndex map[string]bool, now time.Time) types.ActionItem {
	eng := f.Engram
	reward := e.computeReward(eng, f.ConsensusScore, now)
	future := e.computeFutureValue(eng, projectIndex)
	value := clamp01(reward + e.cfg.Gamma*future)

	actionType, ok := actionTypeMap[eng.FactType]
	if !ok {
		actionType = "absorb_knowledge"
	}

	return types.ActionItem{
		SourceFactID: eng.ID,
		Project:      eng.ProjectID,
		ActionType:   actionType,
		Description:  describeAction(eng, actionType),
		Value:        value,
		Urgency:      reward,
		Impact:       future,
		SourceType:   eng.FactType,
		Metadata: map[string]string{
			"confidence": string(eng.Confidence),
		},
	}
}

// computeReward maps a fact to its immediate reward R(f), applying a
// fact-type-specific time-decay factor plus confidence and consensus
// modifiers.
func (e *Engine) computeReward(eng *types.Engram, consensusScore float64, now time.Time) float64 {
	base, ok := rewardMap[eng.FactType]
	if !ok {
		base = 0.10
	}

	ageDays := now.Sub(eng.CreatedAt).Hours() / 24.0
	if ageDays < 0 {
		ageDays = 0
	}

	var timeFactor float64
	switch eng.FactType {
	case types.FactGhost:
		timeFactor = math.Pow(e.cfg.GhostAgeDecay, ageDays)
	case types.FactError:
		ageHours := ageDays * 24
		if ageHours < e.cfg.RecencyWindowHours {
			timeFactor = e.cfg.ErrorRecencyWeight
		} else {
			timeFactor = math.Max(0.3, 1.0-ageDays/30)
		}
	default:
		timeFactor = math.Max(0.2, 1.0-ageDays/90)
	}

	confMod := confidenceMultiplier[eng.Confidence]
	if confMod == 0 {
		confMod = 1.0
	}

	consensusMod := 1.0
	if consensusScore > 0 && consensusScore < 0.5 { // 0 = unset, scored as 1.0
		consensusMod = 1.3
	}

	reward := base * timeFactor * confMod * consensusMod
	if reward > 1.0 {
		return 1.0
	}
	return reward
}

// computeFutureValue estimates downstream value: cross-project
// mentions, blocking keywords on ghosts/errors, and bridge fan-out,
// compressed into [0, 1].
func (e *Engine) computeFutureValue(eng *types.Engram, projectIndex map[string]bool) float64 {
	future := 0.0
	contentLower := strings.ToLower(eng.Content)

	otherProjects := make([]string, 0, len(projectIndex))
	for p := range projectIndex {
		if p != eng.ProjectID {
			otherProjects = append(otherProjects, p)
		}
	}

	for _, other := range otherProjects {
		if other != "" && strings.Contains(contentLower, strings.ToLower(other)) {
			future += e.cfg.CrossProjectBonus
			break
		}
	}

	if eng.FactType == types.FactGhost || eng.FactType == types.FactError {
		if containsAnyKeyword(contentLower, blockingKeywords) {
			future += e.cfg.BlockingMultiplier
		}
	}

	if eng.FactType == types.FactBridge {
		mentioned := 0
		for _, other := range otherProjects {
			if other != "" && strings.Contains(contentLower, strings.ToLower(other)) {
				mentioned++
			}
		}
		future += float64(mentioned) * 0.3
	}

	if future > 0 {
		future = bellmanCompress(future)
	}
	return future
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func describeAction(eng *types.Engram, actionType string) string {
	prefixes := map[string]string{
		"resolve_ghost":    "Resolve ghost",
		"fix_error":        "Fix error",
		"apply_bridge":     "Apply bridge pattern",
		"review_decision":  "Review decision",
		"absorb_knowledge": "Absorb knowledge",
	}
	prefix, ok := prefixes[actionType]
	if !ok {
		prefix = "Process"
	}
	content := eng.Content
	if len(content) > 120 {
		content = content[:120]
	}
	return prefix + " [" + eng.ProjectID + "]: " + content
}

func containsAnyKeyword(content string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

func bellmanCompress(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return 1.0 - math.Exp(-x/3.0)
}
