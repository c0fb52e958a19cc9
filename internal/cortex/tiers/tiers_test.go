package tiers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cortex-memory/cortex/internal/cortex/tiers"
	"github.com/cortex-memory/cortex/internal/cortex/types"
)

func TestClassifyDefaultsToHot(t *testing.T) {
	c := tiers.New(nil, nil, nil)
	assert.Equal(t, types.TierHot, c.Classify(0, 1.0))
}

func TestClassifyPromotesOnAccessAndEnergy(t *testing.T) {
	c := tiers.New(nil, nil, nil)
	assert.Equal(t, types.TierWarm, c.Classify(10, 0.5))
	assert.Equal(t, types.TierCold, c.Classify(40, 0.6))
	assert.Equal(t, types.TierPermafrost, c.Classify(200, 0.9))
}

func TestClassifyFallsBackWhenEnergyTooLowForHigherTier(t *testing.T) {
	c := tiers.New(nil, nil, nil)
	// enough accesses for permafrost but energy only qualifies for warm
	assert.Equal(t, types.TierWarm, c.Classify(200, 0.35))
}

func TestEvaluateAndMigrateReturnsNewTier(t *testing.T) {
	c := tiers.New(nil, nil, nil)
	got := c.EvaluateAndMigrate("e1", 40, 0.6, types.TierHot)
	assert.Equal(t, types.TierCold, got)
}

func TestEvaluateAndMigrateNoChange(t *testing.T) {
	c := tiers.New(nil, nil, nil)
	got := c.EvaluateAndMigrate("e1", 0, 1.0, types.TierHot)
	assert.Equal(t, types.TierHot, got)
}
