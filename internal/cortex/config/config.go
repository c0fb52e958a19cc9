// Package config defines CORTEX's typed configuration surface:
// YAML-backed, always returning a populated struct with defaults
// applied, never a zero value, even when no file is present.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every engine tunable. All fields have
// defaults (see Default()); a narrow "extra" escape hatch lives on the
// Engram row itself, not here.
type Config struct {
	// Adaptive Resonance Gate (C3)
	VigilanceRho float64 `yaml:"vigilance_rho"`
	LTPBoost     float64 `yaml:"ltp_boost"`
	ARTSearchK   int     `yaml:"art_search_k"`

	// Dual-Trace Consolidator (C4)
	MaturationDays      float64 `yaml:"maturation_days"`
	SilentInitialEnergy float64 `yaml:"silent_initial_energy"`

	// Homeostasis Engine (C7)
	DecayRatePerDay float64 `yaml:"decay_rate_per_day"`
	ATPThreshold    float64 `yaml:"atp_threshold"`

	// Reconsolidation Tracker (C8)
	LabileWindowSeconds float64 `yaml:"labile_window_seconds"`
	ReconsolidateBoost  float64 `yaml:"reconsolidate_boost"`
	IgnorePenalty       float64 `yaml:"ignore_penalty"`

	// Frequency Tier Classifier (C5)
	TierPromotionThresholds [4]int64   `yaml:"tier_promotion_thresholds"` // HOT/WARM/COLD/PERMAFROST access counts
	TierMinEnergy           [4]float64 `yaml:"tier_min_energy"`           // HOT/WARM/COLD/PERMAFROST min energy

	// Policy Engine (C11)
	Gamma              float64 `yaml:"gamma"`
	MaxActions         int     `yaml:"max_actions"`
	CrossProjectBonus  float64 `yaml:"cross_project_bonus"`
	BlockingMultiplier float64 `yaml:"blocking_multiplier"`

	// Bloom Fast-Negative (C14)
	BloomExpectedItems int     `yaml:"bloom_expected_items"`
	BloomFPRate        float64 `yaml:"bloom_fp_rate"`

	// Background cadence
	PruneCycleIntervalSeconds    int `yaml:"prune_cycle_interval_s"`
	ConsolidationIntervalSeconds int `yaml:"consolidation_interval_s"`

	// Co-Access / Anticipatory Cache (C13)
	CoAccessDecayFactor float64 `yaml:"co_access_decay_factor"`
	PrefetchThreshold   float64 `yaml:"prefetch_threshold"`
	MaxPrefetch         int     `yaml:"max_prefetch"`

	// Session guardrail (C10)
	MaxSessionTokens int     `yaml:"max_session_tokens"`
	WarnThreshold    float64 `yaml:"warn_threshold"`
	MaxTurns         int     `yaml:"max_turns"`

	// VectorDim is the fixed embedding dimension for this store. Set at
	// construction and immutable; a mismatched vector is a construction
	// or request-validation error, never silently accepted.
	VectorDim int `yaml:"vector_dim"`
}

// Default returns the configuration populated with the stock defaults.
func Default() *Config {
	return &Config{
		VigilanceRho: 0.85,
		LTPBoost:     0.25,
		ARTSearchK:   10,

		MaturationDays:      3.0,
		SilentInitialEnergy: 0.5,

		DecayRatePerDay: 0.05,
		ATPThreshold:    0.2,

		LabileWindowSeconds: 300,
		ReconsolidateBoost:  0.2,
		IgnorePenalty:       0.15,

		TierPromotionThresholds: [4]int64{0, 8, 32, 128},
		TierMinEnergy:           [4]float64{0.0, 0.3, 0.5, 0.8},

		Gamma:              0.9,
		MaxActions:         20,
		CrossProjectBonus:  1.5,
		BlockingMultiplier: 3.0,

		BloomExpectedItems: 10_000,
		BloomFPRate:        0.01,

		PruneCycleIntervalSeconds:    14400,
		ConsolidationIntervalSeconds: 3600,

		CoAccessDecayFactor: 0.95,
		PrefetchThreshold:   0.3,
		MaxPrefetch:         5,

		MaxSessionTokens: 100_000,
		WarnThreshold:    0.8,
		MaxTurns:         0,

		VectorDim: 0, // unset: Store skips its own dimension check; the vector index still rejects a wrong dimension
	}
}

// Load reads a YAML config file at path, applying it on top of
// Default(). A missing file is not an error: Load returns the default
// configuration, mirroring LoadLocalConfig's "never nil, never a zero
// struct" contract.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- path supplied by host at construction
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails loudly at construction time for vigilance/dimension
// misconfiguration, rather than deferring the failure to request time.
func (c *Config) Validate() error {
	if c.VigilanceRho < 0 || c.VigilanceRho > 1 {
		return errInvalidVigilance
	}
	if c.VectorDim < 0 {
		return errInvalidVectorDim
	}
	return nil
}
