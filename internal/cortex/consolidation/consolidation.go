// Package consolidation implements the Dual-Trace Consolidator (C4):
// every stored fact is mirrored into a SILENT twin that matures
// autonomously over time unless contradicted, modeling hippocampal-
// cortical systems consolidation. The engram itself is plain data;
// Tick and the sweep are free functions over a types.Engram and a
// clock.
package consolidation

import (
	"context"
	"log/slog"

	"github.com/cortex-memory/cortex/internal/cortex/clock"
	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// ActiveTwinMinEnergy is the decayed energy a silent engram must
// exceed to still be eligible for maturation.
const ActiveTwinMinEnergy = 0.1

// AgeDays returns how long e has existed, in days, relative to c.
func AgeDays(e *types.Engram, c clock.Clock) float64 {
	d := c.Now().Sub(e.CreatedAt)
	days := d.Hours() / 24.0
	if days < 0 {
		return 0
	}
	return days
}

// IsMature reports whether a SILENT engram has completed maturation:
// enough time has passed, it received no contradictions, and its
// decayed energy hasn't collapsed.
func IsMature(e *types.Engram, c clock.Clock, decayRatePerDay float64) bool {
	switch e.State {
	case types.StateMatured:
		return true
	case types.StateDeceased:
		return false
	}

	age := AgeDays(e, c)
	hasAged := age >= e.MaturationDays
	isClean := e.ContradictionCount == 0
	hasEnergy := ComputeDecay(e, c, decayRatePerDay) > ActiveTwinMinEnergy

	return hasAged && isClean && hasEnergy
}

// ComputeDecay returns e's energy after applying linear decay since
// its last access, never below zero.
func ComputeDecay(e *types.Engram, c clock.Clock, decayRatePerDay float64) float64 {
	daysSinceAccess := c.Now().Sub(e.LastAccessedAt).Hours() / 24.0
	if daysSinceAccess < 0 {
		daysSinceAccess = 0
	}
	decayed := e.EnergyLevel - daysSinceAccess*decayRatePerDay
	if decayed < 0 {
		return 0
	}
	return decayed
}

// Tick self-evaluates e's lifecycle state given the current clock,
// returning the state it should transition to. The caller persists the
// transition; Tick never mutates e.
func Tick(e *types.Engram, c clock.Clock, decayRatePerDay float64) types.State {
	if e.State == types.StateDeceased {
		return types.StateDeceased
	}

	currentEnergy := ComputeDecay(e, c, decayRatePerDay)
	if currentEnergy <= 0 && e.ContradictionCount > 0 {
		return types.StateDeceased
	}
	if e.State == types.StateSilent && IsMature(e, c, decayRatePerDay) {
		return types.StateMatured
	}
	return e.State
}

// Contradict registers a contradictory signal against a silent engram,
// resetting its maturation clock.
func Contradict(e *types.Engram, c clock.Clock) *types.Engram {
	out := e.Clone()
	out.ContradictionCount++
	out.CreatedAt = c.Now()
	return out
}

// Store is the subset of C1 the consolidator needs.
type Store interface {
	Put(ctx context.Context, e *types.Engram) error
	Delete(ctx context.Context, tenantID, id string) error
	Scan(ctx context.Context, tenantID string, filter types.Filter) ([]*types.Engram, error)
}

// Index is the subset of C2 the consolidator keeps in sync: twins are
// indexed at creation (invisible until matured), maturation flips their
// search visibility, and a deceased twin leaves C2 before C1.
type Index interface {
	Upsert(ctx context.Context, e *types.Engram) error
	Delete(ctx context.Context, id string) error
}

// Consolidator orchestrates the dual-trace pipeline: creating silent
// twins on store, and sweeping them toward maturation or death.
type Consolidator struct {
	store           Store
	index           Index
	clock           clock.Clock
	maturationDays  float64
	initialEnergy   float64
	decayRatePerDay float64
	log             *slog.Logger
	newID           func() string
}

// New constructs a Consolidator. initialEnergy seeds each silent twin
// ; newID generates silent-twin ids (injected so
// tests can supply deterministic ids).
func New(store Store, index Index, c clock.Clock, maturationDays, initialEnergy, decayRatePerDay float64, newID func() string, log *slog.Logger) *Consolidator {
	if log == nil {
		log = slog.Default()
	}
	if initialEnergy <= 0 {
		initialEnergy = 0.5
	}
	return &Consolidator{
		store: store, index: index, clock: c, maturationDays: maturationDays,
		initialEnergy: initialEnergy, decayRatePerDay: decayRatePerDay, newID: newID, log: log,
	}
}

// DualStore persists the active engram as given and creates + persists
// its SILENT twin, indexing both, returning both. The twin enters the
// index under a COLD tier hint and stays invisible to search until it
// matures.
func (c *Consolidator) DualStore(ctx context.Context, active *types.Engram) (*types.Engram, *types.Engram, error) {
	if err := c.store.Put(ctx, active); err != nil {
		return nil, nil, err
	}
	if err := c.index.Upsert(ctx, active); err != nil {
		return nil, nil, err
	}

	silent := &types.Engram{
		ID:             c.newID(),
		TenantID:       active.TenantID,
		ProjectID:      active.ProjectID,
		Content:        active.Content,
		Embedding:      append([]float32(nil), active.Embedding...),
		FactType:       active.FactType,
		Confidence:     active.Confidence,
		EnergyLevel:    c.initialEnergy,
		State:          types.StateSilent,
		ActiveTwinID:   active.ID,
		MaturationDays: c.maturationDays,
		IsDiamond:      active.IsDiamond,
		EntangledRefs:  []string{active.ID},
		Tier:           types.TierCold,
		CreatedAt:      c.clock.Now(),
		LastAccessedAt: c.clock.Now(),
	}

	if err := c.store.Put(ctx, silent); err != nil {
		return nil, nil, err
	}
	if err := c.index.Upsert(ctx, silent); err != nil {
		return nil, nil, err
	}

	c.log.Info("dual-trace created",
		"active_id", active.ID, "silent_id", silent.ID, "maturation_days", c.maturationDays)
	return active, silent, nil
}

// SweepStats summarizes one consolidation_sweep invocation.
type SweepStats struct {
	Matured  int
	Deceased int
	Pending  int
}

// ConsolidationSweep matures or prunes every SILENT engram for a
// tenant, reporting what it did.
func (c *Consolidator) ConsolidationSweep(ctx context.Context, tenantID string) (SweepStats, error) {
	var stats SweepStats

	engrams, err := c.store.Scan(ctx, tenantID, types.Filter{States: []types.State{types.StateSilent}})
	if err != nil {
		return stats, err
	}

	for _, e := range engrams {
		newState := Tick(e, c.clock, c.decayRatePerDay)

		switch {
		case newState == types.StateMatured && e.State != types.StateMatured:
			matured := e.Clone()
			matured.State = types.StateMatured
			matured.Tier = types.TierWarm
			if err := c.store.Put(ctx, matured); err != nil {
				return stats, err
			}
			// Matured twins become searchable: the index entry's state
			// is what the default search filter keys on.
			if err := c.index.Upsert(ctx, matured); err != nil {
				return stats, err
			}
			stats.Matured++
			c.log.Info("silent engram matured", "engram_id", e.ID, "age_days", AgeDays(e, c.clock))

		case newState == types.StateDeceased:
			// C2 before C1: a dangling vector must be impossible.
			if err := c.index.Delete(ctx, e.ID); err != nil {
				return stats, err
			}
			if err := c.store.Delete(ctx, tenantID, e.ID); err != nil {
				return stats, err
			}
			stats.Deceased++
			c.log.Info("silent engram deceased", "engram_id", e.ID, "contradictions", e.ContradictionCount)

		default:
			stats.Pending++
		}
	}

	return stats, nil
}
