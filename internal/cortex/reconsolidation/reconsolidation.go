// Package reconsolidation implements the Reconsolidation Tracker (C8):
// every access marks an engram LABILE for a temporal window. Confirm
// within the window re-stabilizes it with an energy boost;
// contradiction flags it for in-place content update; silence
// (expiry) applies a soft decay penalty.
package reconsolidation

import (
	"sync"

	"github.com/cortex-memory/cortex/internal/cortex/clock"
)

// Tracker monitors all open labile windows and resolves their fate.
// Safe for concurrent use.
type Tracker struct {
	clock  clock.Clock
	window float64 // seconds
	boost  float64 // reconsolidation energy boost on confirm

	mu     sync.Mutex
	labile map[string]*trackedRecord
}

type trackedRecord struct {
	accessedAtUnixNanos int64
	confirmed           bool
	contradicted        bool
}

// New constructs a Tracker with the given default labile window and
// reconsolidation boost.
func New(c clock.Clock, windowSeconds, reconsolidateBoost float64) *Tracker {
	return &Tracker{clock: c, window: windowSeconds, boost: reconsolidateBoost, labile: make(map[string]*trackedRecord)}
}

func (t *Tracker) isExpired(r *trackedRecord) bool {
	elapsed := t.clock.Now().UnixNano() - r.accessedAtUnixNanos
	return float64(elapsed)/1e9 > t.window
}

// OnAccess marks an engram as labile after access.
func (t *Tracker) OnAccess(engramID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.labile[engramID] = &trackedRecord{accessedAtUnixNanos: t.clock.Now().UnixNano()}
}

// Confirm re-stabilizes a labile engram, returning the energy delta to
// apply (0 if the engram wasn't labile or its window already expired).
func (t *Tracker) Confirm(engramID string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.labile[engramID]
	if !ok {
		return 0.0
	}
	delete(t.labile, engramID)
	if t.isExpired(r) {
		return 0.0
	}
	r.confirmed = true
	return t.boost
}

// Contradict flags a labile engram for in-place update, returning a
// neutral energy delta (content mutation happens externally).
func (t *Tracker) Contradict(engramID string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.labile[engramID]
	if !ok {
		return 0.0
	}
	delete(t.labile, engramID)
	if t.isExpired(r) {
		return 0.0
	}
	r.contradicted = true
	return 0.0
}

// Sweep removes expired, unresolved labile records and returns the
// (engramID, energyDelta) pairs those expirations produce (a negative
// ignore-penalty delta for each).
func (t *Tracker) Sweep(ignorePenalty float64) []IDDelta {
	t.mu.Lock()
	defer t.mu.Unlock()

	var expired []IDDelta
	for id, r := range t.labile {
		if t.isExpired(r) && !r.confirmed && !r.contradicted {
			expired = append(expired, IDDelta{ID: id, Delta: -ignorePenalty})
		}
	}
	for _, e := range expired {
		delete(t.labile, e.ID)
	}
	return expired
}

// LabileCount returns the number of currently labile engrams.
func (t *Tracker) LabileCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.labile)
}

// LabileIDs returns the ids of currently labile engrams.
func (t *Tracker) LabileIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.labile))
	for id := range t.labile {
		ids = append(ids, id)
	}
	return ids
}

// IDDelta pairs an engram id with an energy delta to apply.
type IDDelta struct {
	ID    string
	Delta float64
}
