package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortex-memory/cortex/internal/cortex/clock"
	"github.com/cortex-memory/cortex/internal/cortex/cortexerr"
	"github.com/cortex-memory/cortex/internal/cortex/store"
	"github.com/cortex-memory/cortex/internal/cortex/types"
)

func newTestStore(t *testing.T) (*store.SQLiteStore, *clock.Fake) {
	t.Helper()
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s, err := store.New(":memory:", fc)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, fc
}

func newEngram(tenant, content string) *types.Engram {
	return &types.Engram{
		ID:         uuid.NewString(),
		TenantID:   tenant,
		ProjectID:  "proj-a",
		Content:    content,
		Embedding:  []float32{0.1, 0.2, 0.3},
		FactType:   types.FactKnowledge,
		Confidence: types.ConfidenceC3,
		State:      types.StateActive,
		Tier:       types.TierHot,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	e := newEngram("tenant-1", "the sky is blue")
	require.NoError(t, s.Put(ctx, e))

	got, err := s.Get(ctx, "tenant-1", e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Content, got.Content)
	assert.Equal(t, e.FactType, got.FactType)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got.Embedding)
	assert.NotEmpty(t, got.Hash)
	assert.Empty(t, got.PrevHash)
}

func TestChainLinksSequentially(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	e1 := newEngram("tenant-1", "fact one")
	e2 := newEngram("tenant-1", "fact two")
	require.NoError(t, s.Put(ctx, e1))
	require.NoError(t, s.Put(ctx, e2))

	got2, err := s.Get(ctx, "tenant-1", e2.ID)
	require.NoError(t, err)
	assert.Equal(t, e1.Hash, got2.PrevHash)

	valid, firstBreak, err := s.VerifyChain(ctx, "tenant-1")
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Empty(t, firstBreak)
}

func TestVerifyChainEmptyTenantIsValid(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	valid, firstBreak, err := s.VerifyChain(ctx, "never-seen-tenant")
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Empty(t, firstBreak)
}

func TestGetUnknownIDReturnsSentinel(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "tenant-1", "does-not-exist")
	assert.ErrorIs(t, err, cortexerr.ErrUnknownID)
}

func TestDeleteUnknownIDReturnsSentinel(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	err := s.Delete(ctx, "tenant-1", "does-not-exist")
	assert.ErrorIs(t, err, cortexerr.ErrUnknownID)
}

func TestPutEmptyContentRejected(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	e := newEngram("tenant-1", "")
	err := s.Put(ctx, e)
	assert.ErrorIs(t, err, cortexerr.ErrValidation)
}

func TestScanFiltersByProjectAndState(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	active := newEngram("tenant-1", "active fact")
	silent := newEngram("tenant-1", "silent fact")
	silent.State = types.StateSilent
	otherProject := newEngram("tenant-1", "other project fact")
	otherProject.ProjectID = "proj-b"

	require.NoError(t, s.Put(ctx, active))
	require.NoError(t, s.Put(ctx, silent))
	require.NoError(t, s.Put(ctx, otherProject))

	got, err := s.Scan(ctx, "tenant-1", types.Filter{
		ProjectID: "proj-a",
		States:    []types.State{types.StateActive},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)
}

func TestScanIsTenantIsolated(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, newEngram("tenant-1", "one")))
	require.NoError(t, s.Put(ctx, newEngram("tenant-2", "two")))

	got, err := s.Scan(ctx, "tenant-1", types.Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearchContentMatchesKeywords(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	hit := newEngram("tenant-1", "the billing service owns invoice generation")
	miss := newEngram("tenant-1", "authentication uses rotating JWT keys")
	silent := newEngram("tenant-1", "billing silent twin copy")
	silent.State = types.StateSilent

	require.NoError(t, s.Put(ctx, hit))
	require.NoError(t, s.Put(ctx, miss))
	require.NoError(t, s.Put(ctx, silent))

	got, err := s.SearchContent(ctx, "tenant-1", "billing", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, hit.ID, got[0].ID)
}

func TestSearchContentIsTenantIsolated(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, newEngram("tenant-1", "shared terminology fact")))
	require.NoError(t, s.Put(ctx, newEngram("tenant-2", "shared terminology fact")))

	got, err := s.SearchContent(ctx, "tenant-1", "terminology", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearchContentEmptyQueryReturnsNothing(t *testing.T) {
	s, _ := newTestStore(t)
	got, err := s.SearchContent(context.Background(), "tenant-1", "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindByContentHashDedup(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	e := newEngram("tenant-1", "duplicate content")
	require.NoError(t, s.Put(ctx, e))

	hash := types.ContentHash("tenant-1", "duplicate content")
	found, err := s.FindByContentHash(ctx, "tenant-1", hash)
	require.NoError(t, err)
	assert.Equal(t, e.ID, found.ID)
}

func TestCausalEdgeLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	cause := newEngram("tenant-1", "server crashed")
	effect := newEngram("tenant-1", "users lost data")
	require.NoError(t, s.Put(ctx, cause))
	require.NoError(t, s.Put(ctx, effect))

	edge := &types.CausalEdge{
		CauseID:  cause.ID,
		EffectID: effect.ID,
		Relation: types.RelationCaused,
		Strength: 0.9,
	}
	require.NoError(t, s.PutCausalEdge(ctx, edge))

	edges, err := s.ScanCausalEdges(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, cause.ID, edges[0].CauseID)
	assert.Equal(t, effect.ID, edges[0].EffectID)

	require.NoError(t, s.DeleteCausalEdgesFor(ctx, cause.ID))
	edges, err = s.ScanCausalEdges(ctx)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestCausalEdgeUpsertReplacesStrength(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	edge := &types.CausalEdge{CauseID: "a", EffectID: "b", Relation: types.RelationCaused, Strength: 0.5}
	require.NoError(t, s.PutCausalEdge(ctx, edge))
	edge.Strength = 0.8
	require.NoError(t, s.PutCausalEdge(ctx, edge))

	edges, err := s.ScanCausalEdges(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, 0.8, edges[0].Strength)
}
