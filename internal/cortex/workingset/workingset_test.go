package workingset_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cortex-memory/cortex/internal/cortex/clock"
	"github.com/cortex-memory/cortex/internal/cortex/workingset"
)

func TestBufferEvictsFromHeadWhenOverBudget(t *testing.T) {
	b := workingset.NewBuffer(100)
	b.AddEvent(workingset.Event{ID: "1", Tokens: 40})
	b.AddEvent(workingset.Event{ID: "2", Tokens: 40})
	b.AddEvent(workingset.Event{ID: "3", Tokens: 40})

	events := b.Events()
	assert.Len(t, events, 2)
	assert.Equal(t, "2", events[0].ID)
	assert.Equal(t, "3", events[1].ID)
	assert.Equal(t, 80, b.TotalTokens())
}

func TestBufferSingleOversizedEventStillAdded(t *testing.T) {
	b := workingset.NewBuffer(10)
	b.AddEvent(workingset.Event{ID: "huge", Tokens: 500})
	assert.Len(t, b.Events(), 1)
}

func TestGuardrailConsumeWithinBudget(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	g := workingset.NewGuardrail(fc, 100, 0.8, 0, nil)

	assert.True(t, g.Consume(50))
	assert.Equal(t, 50, g.Consumed())
	assert.Equal(t, 50, g.Remaining())
}

func TestGuardrailRejectsOverHardLimit(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	g := workingset.NewGuardrail(fc, 100, 0.8, 0, nil)

	assert.True(t, g.Consume(90))
	assert.False(t, g.Consume(20))
	assert.Equal(t, 90, g.Consumed())
}

func TestGuardrailRejectsOverTurnLimit(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	g := workingset.NewGuardrail(fc, 100, 0.8, 2, nil)

	g.TickTurn()
	g.TickTurn()
	assert.False(t, g.Consume(1))
}

func TestGuardrailInvariantConsumedPlusRemaining(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	g := workingset.NewGuardrail(fc, 100, 0.8, 0, nil)

	g.Consume(30)
	assert.Equal(t, 100, g.Consumed()+g.Remaining())
}

func TestGuardrailConsumedNeverDecreasesOnRejection(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	g := workingset.NewGuardrail(fc, 100, 0.8, 0, nil)

	g.Consume(90)
	g.Consume(50) // rejected, should not change consumed
	assert.Equal(t, 90, g.Consumed())
}
