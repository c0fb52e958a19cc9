// Package workingset implements the Working-Set Buffer + Session
// Guardrail (C10): a token-counted sliding window for the current
// turn, and a cumulative session-level budget that rejects events once
// exhausted.
package workingset

import (
	"log/slog"

	"github.com/cortex-memory/cortex/internal/cortex/clock"
)

// Event is one unit admitted into the sliding-window buffer.
type Event struct {
	ID     string
	Tokens int
}

// Buffer is a token-counted sliding window: appending past max_tokens
// evicts from the head until back within budget.
type Buffer struct {
	maxTokens int
	events    []Event
	total     int
}

// NewBuffer constructs an empty Buffer with the given token budget.
func NewBuffer(maxTokens int) *Buffer {
	return &Buffer{maxTokens: maxTokens}
}

// AddEvent appends ev, evicting older events from the head until total
// token usage is within maxTokens. The newest event is always kept,
// even when it alone exceeds maxTokens.
func (b *Buffer) AddEvent(ev Event) {
	b.events = append(b.events, ev)
	b.total += ev.Tokens

	for b.total > b.maxTokens && len(b.events) > 1 {
		evicted := b.events[0]
		b.events = b.events[1:]
		b.total -= evicted.Tokens
	}
}

// Events returns the buffer's current contents, oldest first.
func (b *Buffer) Events() []Event {
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// TotalTokens returns the sum of tokens currently held.
func (b *Buffer) TotalTokens() int { return b.total }

// Guardrail tracks cumulative tokens and turns for an entire session,
// rejecting consume() calls once either cap is hit.
type Guardrail struct {
	clock     clock.Clock
	log       *slog.Logger
	startedAt int64

	maxTokens     int
	warnThreshold float64
	maxTurns      int

	consumed int
	turns    int
	warned   bool
}

// NewGuardrail constructs a Guardrail. maxTurns of 0 means unlimited.
func NewGuardrail(c clock.Clock, maxTokens int, warnThreshold float64, maxTurns int, log *slog.Logger) *Guardrail {
	if log == nil {
		log = slog.Default()
	}
	return &Guardrail{
		clock: c, log: log, startedAt: c.Now().UnixNano(),
		maxTokens: maxTokens, warnThreshold: warnThreshold, maxTurns: maxTurns,
	}
}

// Consume attempts to charge tokens against the session budget.
// Returns false (hard reject) if the turn cap or token cap would be
// exceeded; consumed state is unchanged on rejection. Logs once the
// first time warnThreshold utilization is crossed.
func (g *Guardrail) Consume(tokens int) bool {
	if g.maxTurns > 0 && g.turns >= g.maxTurns {
		g.log.Warn("session guardrail: turn limit reached", "turns", g.turns, "max_turns", g.maxTurns)
		return false
	}

	if g.consumed+tokens > g.maxTokens {
		g.log.Warn("session guardrail: hard limit",
			"requested", tokens, "consumed", g.consumed, "max_tokens", g.maxTokens)
		return false
	}

	g.consumed += tokens

	if !g.warned && g.Utilization() >= g.warnThreshold {
		g.warned = true
		g.log.Warn("session guardrail: budget threshold crossed",
			"utilization", g.Utilization(), "consumed", g.consumed, "max_tokens", g.maxTokens)
	}

	return true
}

// TickTurn registers a completed conversation turn.
func (g *Guardrail) TickTurn() { g.turns++ }

// Consumed is the total tokens consumed this session.
func (g *Guardrail) Consumed() int { return g.consumed }

// Remaining is the tokens left in the budget; consumed + remaining
// always equals max_tokens.
func (g *Guardrail) Remaining() int {
	r := g.maxTokens - g.consumed
	if r < 0 {
		return 0
	}
	return r
}

// Utilization is the budget utilization ratio in [0, 1].
func (g *Guardrail) Utilization() float64 {
	if g.maxTokens <= 0 {
		return 0.0
	}
	return float64(g.consumed) / float64(g.maxTokens)
}

// Turns returns the number of completed turns.
func (g *Guardrail) Turns() int { return g.turns }

// Status is a telemetry snapshot of the guardrail's state.
type Status struct {
	Consumed    int
	Remaining   int
	MaxTokens   int
	Utilization float64
	Turns       int
	MaxTurns    int
	Warned      bool
}

// Status returns a snapshot suitable for logging or surfacing to a caller.
func (g *Guardrail) Status() Status {
	return Status{
		Consumed: g.consumed, Remaining: g.Remaining(), MaxTokens: g.maxTokens,
		Utilization: g.Utilization(), Turns: g.turns, MaxTurns: g.maxTurns, Warned: g.warned,
	}
}
