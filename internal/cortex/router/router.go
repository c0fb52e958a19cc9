// Package router implements the Retrieval Router (C6): a BIFT
// (brain-oscillation-inspired frequency-band) classifier that routes
// each query to the search parameters best suited to its shape.
package router

import "strings"

// Band is a neural-oscillation-inspired retrieval frequency band.
type Band string

const (
	Gamma Band = "gamma" // high freq: exact/keyword, recent facts
	Beta  Band = "beta"  // standard cosine-similarity semantic search
	Theta Band = "theta" // low freq: cross-project bridges, long-range
	Delta Band = "delta" // lowest: axioms, immutable rules, diamonds
)

// Config is the search configuration associated with a Band.
type Config struct {
	MaxResults     int
	MinEnergy      float64
	RequireDiamond bool
	CrossProject   bool
}

// bandConfigs mirrors BAND_CONFIGS exactly.
var bandConfigs = map[Band]Config{
	Gamma: {MaxResults: 5, MinEnergy: 0.6, RequireDiamond: false, CrossProject: false},
	Beta:  {MaxResults: 10, MinEnergy: 0.3, RequireDiamond: false, CrossProject: false},
	Theta: {MaxResults: 15, MinEnergy: 0.1, RequireDiamond: false, CrossProject: true},
	Delta: {MaxResults: 20, MinEnergy: 0.0, RequireDiamond: true, CrossProject: true},
}

// GetConfig returns the search configuration for a band.
func GetConfig(b Band) Config {
	return bandConfigs[b]
}

// ClassifyQuery routes a query to its optimal frequency band: axiom
// lookups go to Delta, cross-project queries to Theta, short
// keyword-like queries to Gamma, and everything else to the default
// Beta semantic search.
func ClassifyQuery(query string, isCrossProject, isAxiomLookup bool) Band {
	if isAxiomLookup {
		return Delta
	}
	if isCrossProject {
		return Theta
	}
	if len(strings.Fields(query)) <= 3 {
		return Gamma
	}
	return Beta
}
