// Package tiers implements the Frequency Tier Classifier (C5): a
// Continuous Memory System that stratifies engrams into frequency
// tiers (HOT/WARM/COLD/PERMAFROST) based on access count and energy,
// inspired by HOPE/Titans nested learning.
package tiers

import (
	"log/slog"

	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// order lists tiers from least to most stable; Classify scans it in
// reverse.
var order = []types.Tier{types.TierHot, types.TierWarm, types.TierCold, types.TierPermafrost}

// DefaultPromotionThresholds is the minimum access_count to enter each
// tier, indexed by the same order as `order`.
var DefaultPromotionThresholds = map[types.Tier]int64{
	types.TierHot: 0, types.TierWarm: 8, types.TierCold: 32, types.TierPermafrost: 128,
}

// DefaultDemotionEnergy is the minimum energy required to remain in
// (or enter) each tier.
var DefaultDemotionEnergy = map[types.Tier]float64{
	types.TierHot: 0.0, types.TierWarm: 0.3, types.TierCold: 0.5, types.TierPermafrost: 0.8,
}

// Classifier assigns and migrates tiers for engrams.
type Classifier struct {
	promotion map[types.Tier]int64
	demotion  map[types.Tier]float64
	log       *slog.Logger
}

// New constructs a Classifier with the given thresholds. Pass nil maps
// to use the defaults.
func New(promotion map[types.Tier]int64, demotion map[types.Tier]float64, log *slog.Logger) *Classifier {
	if promotion == nil {
		promotion = DefaultPromotionThresholds
	}
	if demotion == nil {
		demotion = DefaultDemotionEnergy
	}
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{promotion: promotion, demotion: demotion, log: log}
}

// Classify determines the tier an engram belongs in given its access
// count and current energy, checking from most to least stable and
// returning the first tier whose thresholds are both satisfied.
func (c *Classifier) Classify(accessCount int64, energyLevel float64) types.Tier {
	for i := len(order) - 1; i >= 0; i-- {
		tier := order[i]
		if accessCount >= c.promotion[tier] && energyLevel >= c.demotion[tier] {
			return tier
		}
	}
	return types.TierHot
}

// rank returns a tier's position in `order`, used to decide promotion
// vs demotion for logging only.
func rank(t types.Tier) int {
	for i, o := range order {
		if o == t {
			return i
		}
	}
	return 0
}

// EvaluateAndMigrate decides whether engramID should move tiers, and
// logs the transition.
// Returns the new tier (may equal currentTier).
func (c *Classifier) EvaluateAndMigrate(engramID string, accessCount int64, energy float64, currentTier types.Tier) types.Tier {
	newTier := c.Classify(accessCount, energy)
	if newTier != currentTier {
		direction := "demoted"
		if rank(newTier) > rank(currentTier) {
			direction = "promoted"
		}
		c.log.Info("tier transition",
			"engram_id", engramID, "direction", direction,
			"from", currentTier, "to", newTier, "access_count", accessCount, "energy", energy)
	}
	return newTier
}
