package store

import (
	"context"

	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// PutCausalEdge persists a directed causal edge, replacing any
// existing edge with the same (cause, effect, relation) key.
func (s *SQLiteStore) PutCausalEdge(ctx context.Context, e *types.CausalEdge) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO causal_edges (cause_id, effect_id, relation, strength)
VALUES (?, ?, ?, ?)
ON CONFLICT(cause_id, effect_id, relation) DO UPDATE SET strength = excluded.strength
`, e.CauseID, e.EffectID, string(e.Relation), e.Strength)
	if err != nil {
		return wrapDBError("put-causal-edge", err)
	}
	return nil
}

// DeleteCausalEdgesFor removes every causal edge touching engramID as
// either cause or effect, used when an engram is forgotten.
func (s *SQLiteStore) DeleteCausalEdgesFor(ctx context.Context, engramID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM causal_edges WHERE cause_id = ? OR effect_id = ?`, engramID, engramID)
	if err != nil {
		return wrapDBError("delete-causal-edges", err)
	}
	return nil
}

// ScanCausalEdges returns every persisted causal edge, used to rebuild
// the in-memory causal graph (C12) at startup.
func (s *SQLiteStore) ScanCausalEdges(ctx context.Context) ([]*types.CausalEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cause_id, effect_id, relation, strength FROM causal_edges`)
	if err != nil {
		return nil, wrapDBError("scan-causal-edges", err)
	}
	defer rows.Close()

	var out []*types.CausalEdge
	for rows.Next() {
		var e types.CausalEdge
		var relation string
		if err := rows.Scan(&e.CauseID, &e.EffectID, &relation, &e.Strength); err != nil {
			return nil, wrapDBError("scan-causal-edges-row", err)
		}
		e.Relation = types.Relation(relation)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("scan-causal-edges-iter", err)
	}
	return out, nil
}
