package consolidation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortex-memory/cortex/internal/cortex/clock"
	"github.com/cortex-memory/cortex/internal/cortex/consolidation"
	"github.com/cortex-memory/cortex/internal/cortex/store"
	"github.com/cortex-memory/cortex/internal/cortex/types"
)

func newStore(t *testing.T, c clock.Clock) *store.SQLiteStore {
	t.Helper()
	s, err := store.New(":memory:", c)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fakeIndex struct {
	upserted []string
	deleted  []string
}

func (f *fakeIndex) Upsert(ctx context.Context, e *types.Engram) error {
	f.upserted = append(f.upserted, e.ID)
	return nil
}

func (f *fakeIndex) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func idSeq(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('0'+n))
	}
}

func TestDualStoreCreatesSilentTwin(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s := newStore(t, fc)
	idx := &fakeIndex{}
	c := consolidation.New(s, idx, fc, 3.0, 0.5, 0.05, idSeq("silent-"), nil)

	active := &types.Engram{ID: "active-1", TenantID: "t1", Content: "fact", State: types.StateActive}
	_, silent, err := c.DualStore(context.Background(), active)
	require.NoError(t, err)

	assert.Equal(t, types.StateSilent, silent.State)
	assert.Equal(t, "active-1", silent.ActiveTwinID)
	assert.Equal(t, 0.5, silent.EnergyLevel)
	assert.Equal(t, types.TierCold, silent.Tier)
	assert.Contains(t, silent.EntangledRefs, "active-1")
	assert.ElementsMatch(t, []string{"active-1", silent.ID}, idx.upserted)
}

func TestIsMatureRequiresAgeAndNoContradiction(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	e := &types.Engram{
		State: types.StateSilent, MaturationDays: 3,
		CreatedAt: fc.Now().Add(-4 * 24 * time.Hour), LastAccessedAt: fc.Now(),
		EnergyLevel: 1.0,
	}
	assert.True(t, consolidation.IsMature(e, fc, 0.05))

	e.ContradictionCount = 1
	assert.False(t, consolidation.IsMature(e, fc, 0.05))
}

func TestIsMatureFalseBeforeAge(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	e := &types.Engram{
		State: types.StateSilent, MaturationDays: 3,
		CreatedAt: fc.Now().Add(-1 * 24 * time.Hour), LastAccessedAt: fc.Now(),
		EnergyLevel: 1.0,
	}
	assert.False(t, consolidation.IsMature(e, fc, 0.05))
}

func TestTickPromotesMaturedSilent(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	e := &types.Engram{
		State: types.StateSilent, MaturationDays: 3,
		CreatedAt: fc.Now().Add(-5 * 24 * time.Hour), LastAccessedAt: fc.Now(),
		EnergyLevel: 1.0,
	}
	assert.Equal(t, types.StateMatured, consolidation.Tick(e, fc, 0.05))
}

func TestTickKillsDepletedContradictedEngram(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	e := &types.Engram{
		State: types.StateSilent, MaturationDays: 3,
		CreatedAt: fc.Now().Add(-1 * 24 * time.Hour), LastAccessedAt: fc.Now().Add(-400 * 24 * time.Hour),
		EnergyLevel: 1.0, ContradictionCount: 1,
	}
	assert.Equal(t, types.StateDeceased, consolidation.Tick(e, fc, 0.05))
}

func TestContradictResetsMaturationClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fc := clock.NewFake(start)
	e := &types.Engram{CreatedAt: start.Add(-10 * 24 * time.Hour)}

	fc.Advance(time.Hour)
	contradicted := consolidation.Contradict(e, fc)

	assert.Equal(t, int64(1), contradicted.ContradictionCount)
	assert.Equal(t, fc.Now(), contradicted.CreatedAt)
	assert.Equal(t, start.Add(-10*24*time.Hour), e.CreatedAt) // original untouched
}

func TestConsolidationSweepMaturesAndPrunes(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s := newStore(t, fc)
	ctx := context.Background()

	matureCandidate := &types.Engram{
		ID: "mature-me", TenantID: "t1", Content: "x", State: types.StateSilent,
		MaturationDays: 3, EnergyLevel: 1.0,
		CreatedAt: fc.Now().Add(-5 * 24 * time.Hour), LastAccessedAt: fc.Now(),
	}
	deadCandidate := &types.Engram{
		ID: "die-already", TenantID: "t1", Content: "y", State: types.StateSilent,
		MaturationDays: 3, EnergyLevel: 1.0, ContradictionCount: 1,
		CreatedAt: fc.Now(), LastAccessedAt: fc.Now().Add(-400 * 24 * time.Hour),
	}
	require.NoError(t, s.Put(ctx, matureCandidate))
	require.NoError(t, s.Put(ctx, deadCandidate))

	idx := &fakeIndex{}
	c := consolidation.New(s, idx, fc, 3.0, 0.5, 0.05, idSeq("silent-"), nil)
	stats, err := c.ConsolidationSweep(ctx, "t1")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Matured)
	assert.Equal(t, 1, stats.Deceased)

	matured, err := s.Get(ctx, "t1", "mature-me")
	require.NoError(t, err)
	assert.Equal(t, types.StateMatured, matured.State)
	assert.Contains(t, idx.upserted, "mature-me")

	_, err = s.Get(ctx, "t1", "die-already")
	assert.Error(t, err)
	assert.Contains(t, idx.deleted, "die-already")
}
