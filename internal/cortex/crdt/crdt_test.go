package crdt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortex-memory/cortex/internal/cortex/clock"
	"github.com/cortex-memory/cortex/internal/cortex/crdt"
)

func TestGCounterMergeTakesMaxPerAgent(t *testing.T) {
	a := crdt.NewGCounter().Increment("agent-1", 3).Increment("agent-2", 1)
	b := crdt.NewGCounter().Increment("agent-1", 1).Increment("agent-2", 5)

	merged := a.Merge(b)
	assert.Equal(t, int64(8), merged.Value()) // max(3,1) + max(1,5)
}

func TestGCounterMergeIsCommutative(t *testing.T) {
	a := crdt.NewGCounter().Increment("agent-1", 3)
	b := crdt.NewGCounter().Increment("agent-1", 7)

	assert.Equal(t, a.Merge(b).Value(), b.Merge(a).Value())
}

func TestLWWRegisterUpdateKeepsLaterWrite(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	r := crdt.LWWRegister{}

	r = r.Update("first", "agent-1", c)
	c.Advance(time.Second)
	r = r.Update("second", "agent-2", c)

	assert.Equal(t, "second", r.Value)
	assert.Equal(t, "agent-2", r.AgentID)
}

func TestLWWRegisterMergePicksLaterTimestamp(t *testing.T) {
	older := crdt.LWWRegister{Value: "old", Timestamp: 100, AgentID: "a"}
	newer := crdt.LWWRegister{Value: "new", Timestamp: 200, AgentID: "b"}

	merged := older.Merge(newer)
	assert.Equal(t, "new", merged.Value)

	mergedReverse := newer.Merge(older)
	assert.Equal(t, "new", mergedReverse.Value)
}

func TestLWWRegisterMergeBreaksTiesByAgentID(t *testing.T) {
	a := crdt.LWWRegister{Value: "from-a", Timestamp: 100, AgentID: "agent-a"}
	b := crdt.LWWRegister{Value: "from-b", Timestamp: 100, AgentID: "agent-b"}

	assert.Equal(t, "from-b", a.Merge(b).Value)
}

func TestORSetAddAndMergeUnion(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	a := crdt.NewORSet().Add("x", c)
	c.Advance(time.Second)
	b := crdt.NewORSet().Add("y", c)

	merged := a.Merge(b)
	elems := merged.Elements()
	assert.True(t, elems["x"])
	assert.True(t, elems["y"])
}

func TestORSetRemoveIsResurrectedByConcurrentAdd(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	a := crdt.NewORSet().Add("x", c)
	b := a.Remove("x")

	merged := b.Merge(a)
	assert.True(t, merged.Elements()["x"])
}

func TestCRDTEngramMergeCombinesAllFields(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	local := crdt.Engram{
		EngramID:    "e1",
		Content:     crdt.LWWRegister{}.Update("local content", "agent-1", c),
		AccessCount: crdt.NewGCounter().Increment("agent-1", 2),
		Tags:        crdt.NewORSet().Add("urgent", c),
	}
	c.Advance(time.Second)
	remote := crdt.Engram{
		EngramID:    "e1",
		Content:     crdt.LWWRegister{}.Update("remote content", "agent-2", c),
		AccessCount: crdt.NewGCounter().Increment("agent-2", 5),
		Tags:        crdt.NewORSet().Add("reviewed", c),
	}

	merged, err := local.Merge(remote)
	require.NoError(t, err)
	assert.Equal(t, "remote content", merged.Content.Value)
	assert.Equal(t, int64(7), merged.AccessCount.Value())
	assert.True(t, merged.Tags.Elements()["urgent"])
	assert.True(t, merged.Tags.Elements()["reviewed"])
}

func TestCRDTEngramMergeRejectsMismatchedIDs(t *testing.T) {
	a := crdt.Engram{EngramID: "e1"}
	b := crdt.Engram{EngramID: "e2"}

	_, err := a.Merge(b)
	assert.Error(t, err)
}
