package store

import (
	"encoding/json"
	"math"
	"time"

	"github.com/cortex-memory/cortex/internal/cortex/types"
)

type row struct {
	id, tenantID, projectID, content, contentHash string
	embedding                                     []byte
	factType, confidence                          string
	createdAt, lastAccessedAt                     string
	energyLevel                                   float64
	accessCount                                   int64
	state, activeTwinID                           string
	maturationDays                                float64
	contradictionCount                            int64
	isDiamond                                     int
	entangledRefs                                 string
	valence, energyMultiplier                     float64
	tier, hash, prevHash, extra                   string
	seq                                           int64
}

const tsLayout = time.RFC3339Nano

func marshalRow(e *types.Engram, contentHash string, seq int64) (*row, error) {
	refs, err := json.Marshal(e.EntangledRefs)
	if err != nil {
		return nil, err
	}
	extra, err := json.Marshal(e.Extra)
	if err != nil {
		return nil, err
	}
	embedding := encodeEmbedding(e.Embedding)

	diamond := 0
	if e.IsDiamond {
		diamond = 1
	}

	mult := e.EnergyMultiplier
	if mult == 0 {
		mult = 1.0
	}

	return &row{
		id: e.ID, tenantID: e.TenantID, projectID: e.ProjectID,
		content: e.Content, contentHash: contentHash, embedding: embedding,
		factType: string(e.FactType), confidence: string(e.Confidence),
		createdAt: e.CreatedAt.Format(tsLayout), lastAccessedAt: e.LastAccessedAt.Format(tsLayout),
		energyLevel: e.EnergyLevel, accessCount: e.AccessCount,
		state: string(e.State), activeTwinID: e.ActiveTwinID, maturationDays: e.MaturationDays,
		contradictionCount: e.ContradictionCount, isDiamond: diamond,
		entangledRefs: string(refs), valence: e.Valence, energyMultiplier: mult,
		tier: string(e.Tier), hash: e.Hash, prevHash: e.PrevHash, extra: string(extra), seq: seq,
	}, nil
}

func encodeEmbedding(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		bits := math.Float32bits(f)
		buf[i*4+0] = byte(bits)
		buf[i*4+1] = byte(bits >> 8)
		buf[i*4+2] = byte(bits >> 16)
		buf[i*4+3] = byte(bits >> 24)
	}
	return buf
}

func decodeEmbedding(buf []byte) []float32 {
	n := len(buf) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := uint32(buf[i*4+0]) | uint32(buf[i*4+1])<<8 | uint32(buf[i*4+2])<<16 | uint32(buf[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRow reads one engrams row into a types.Engram, returning the raw
// content hash alongside it (used by the resonance gate's dedup check).
func scanRow(s scanner) (*types.Engram, string, error) {
	var r row
	err := s.Scan(
		&r.id, &r.tenantID, &r.projectID, &r.content, &r.contentHash, &r.embedding,
		&r.factType, &r.confidence, &r.createdAt, &r.lastAccessedAt, &r.energyLevel,
		&r.accessCount, &r.state, &r.activeTwinID, &r.maturationDays, &r.contradictionCount,
		&r.isDiamond, &r.entangledRefs, &r.valence, &r.energyMultiplier, &r.tier,
		&r.hash, &r.prevHash, &r.extra, &r.seq,
	)
	if err != nil {
		return nil, "", err
	}

	created, _ := time.Parse(tsLayout, r.createdAt)
	lastAccessed, _ := time.Parse(tsLayout, r.lastAccessedAt)

	var refs []string
	_ = json.Unmarshal([]byte(r.entangledRefs), &refs)
	var extra map[string]string
	_ = json.Unmarshal([]byte(r.extra), &extra)

	e := &types.Engram{
		ID: r.id, TenantID: r.tenantID, ProjectID: r.projectID,
		Content: r.content, Embedding: decodeEmbedding(r.embedding),
		FactType: types.FactType(r.factType), Confidence: types.Confidence(r.confidence),
		CreatedAt: created, LastAccessedAt: lastAccessed,
		EnergyLevel: r.energyLevel, AccessCount: r.accessCount,
		State: types.State(r.state), ActiveTwinID: r.activeTwinID, MaturationDays: r.maturationDays,
		ContradictionCount: r.contradictionCount, IsDiamond: r.isDiamond != 0,
		EntangledRefs: refs, Valence: r.valence, EnergyMultiplier: r.energyMultiplier,
		Tier: types.Tier(r.tier), Hash: r.hash, PrevHash: r.prevHash, Extra: extra,
	}
	return e, r.contentHash, nil
}

const selectOneSQL = `
SELECT id, tenant_id, project_id, content, content_hash, embedding,
       fact_type, confidence, created_at, last_accessed_at, energy_level,
       access_count, state, active_twin_id, maturation_days, contradiction_count,
       is_diamond, entangled_refs, valence, energy_multiplier, tier,
       hash, prev_hash, extra, seq
FROM engrams WHERE tenant_id = ? AND id = ?`
