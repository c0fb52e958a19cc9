package coaccess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortex-memory/cortex/internal/cortex/coaccess"
)

func TestRecordAccessStrengthensEdge(t *testing.T) {
	g := coaccess.New(0.95)
	g.RecordAccess("a")
	g.RecordAccess("b")
	g.RecordAccess("a")
	g.RecordAccess("b")

	preds := g.PredictNext("a", 5)
	require.Len(t, preds, 1)
	assert.Equal(t, "b", preds[0].ID)
	assert.InDelta(t, 1.0, preds[0].Confidence, 1e-9)
}

func TestPredictNextSortsByConfidenceDescending(t *testing.T) {
	g := coaccess.New(0.95)
	g.RecordAccess("a")
	g.RecordAccess("b")
	g.RecordAccess("a")
	g.RecordAccess("c")
	g.RecordAccess("a")
	g.RecordAccess("c")

	preds := g.PredictNext("a", 5)
	require.Len(t, preds, 2)
	assert.Equal(t, "c", preds[0].ID)
	assert.Greater(t, preds[0].Confidence, preds[1].Confidence)
}

func TestPredictNextRespectsTopK(t *testing.T) {
	g := coaccess.New(0.95)
	for _, next := range []string{"b", "c", "d"} {
		g.RecordAccess("a")
		g.RecordAccess(next)
	}
	preds := g.PredictNext("a", 1)
	assert.Len(t, preds, 1)
}

func TestDecayAllShrinksAndPrunesWeakEdges(t *testing.T) {
	g := coaccess.New(0.5)
	g.RecordAccess("a")
	g.RecordAccess("b")
	require.Equal(t, 1, g.EdgeCount())

	for i := 0; i < 10; i++ {
		g.DecayAll()
	}
	assert.Equal(t, 0, g.EdgeCount())
}

func TestAnticipatoryCacheTracksHitsAndPrefetch(t *testing.T) {
	g := coaccess.New(0.95)
	cache := coaccess.NewAnticipatoryCache[string](g, 0.3, 5)

	cache.OnAccess("a", "content-a", true)
	result := cache.OnAccess("b", "content-b", true)
	assert.Equal(t, "b", result.SourceID)

	v, ok := cache.GetCached("a")
	require.True(t, ok)
	assert.Equal(t, "content-a", v)

	cache.Evict("a")
	_, ok = cache.GetCached("a")
	assert.False(t, ok)
}

func TestAnticipatoryCacheHitRate(t *testing.T) {
	g := coaccess.New(0.95)
	cache := coaccess.NewAnticipatoryCache[string](g, 0.3, 5)

	assert.Equal(t, 0.0, cache.HitRate())
	cache.OnAccess("a", "x", true)
	cache.OnAccess("a", "x", true)
	assert.Greater(t, cache.HitRate(), 0.0)
}
