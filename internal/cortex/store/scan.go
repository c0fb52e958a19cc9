package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// Scan returns an ordered slice of engrams for a tenant, optionally
// narrowed by project and by a state/energy/tier predicate.
func (s *SQLiteStore) Scan(ctx context.Context, tenantID string, filter types.Filter) ([]*types.Engram, error) {
	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}

	where := []string{"tenant_id = ?"}
	args := []interface{}{tenantID}

	if filter.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if len(filter.States) > 0 {
		placeholders := make([]string, len(filter.States))
		for i, st := range filter.States {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		where = append(where, fmt.Sprintf("state IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.MinEnergy > 0 {
		where = append(where, "energy_level >= ?")
		args = append(args, filter.MinEnergy)
	}
	if filter.RequiredDiamond {
		where = append(where, "is_diamond = 1")
	}
	if len(filter.AllowedTiers) > 0 {
		placeholders := make([]string, len(filter.AllowedTiers))
		for i, t := range filter.AllowedTiers {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		where = append(where, fmt.Sprintf("tier IN (%s)", strings.Join(placeholders, ",")))
	}

	query := selectManySQL + " WHERE " + strings.Join(where, " AND ") + " ORDER BY seq ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("scan", err)
	}
	defer rows.Close()

	var out []*types.Engram
	for rows.Next() {
		e, _, err := scanRow(rows)
		if err != nil {
			return nil, wrapDBError("scan-row", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("scan-iter", err)
	}
	return out, nil
}

const selectManySQL = `
SELECT id, tenant_id, project_id, content, content_hash, embedding,
       fact_type, confidence, created_at, last_accessed_at, energy_level,
       access_count, state, active_twin_id, maturation_days, contradiction_count,
       is_diamond, entangled_refs, valence, energy_multiplier, tier,
       hash, prev_hash, extra, seq
FROM engrams`

// SearchContent runs a full-text keyword query over the tenant's
// visible (ACTIVE/MATURED) engrams, best match first. Query tokens are
// quoted before hitting the FTS index so caller text can't inject
// MATCH syntax.
func (s *SQLiteStore) SearchContent(ctx context.Context, tenantID, query string, limit int) ([]*types.Engram, error) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 || limit <= 0 {
		return nil, nil
	}
	for i, tok := range tokens {
		tokens[i] = `"` + strings.ReplaceAll(tok, `"`, ``) + `"`
	}
	match := strings.Join(tokens, " ")

	rows, err := s.db.QueryContext(ctx, ftsSelectSQL, match, tenantID, limit)
	if err != nil {
		return nil, wrapDBError("search-content", err)
	}
	defer rows.Close()

	var out []*types.Engram
	for rows.Next() {
		e, _, err := scanRow(rows)
		if err != nil {
			return nil, wrapDBError("search-content-row", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("search-content-iter", err)
	}
	return out, nil
}

const ftsSelectSQL = `
SELECT engrams.id, engrams.tenant_id, engrams.project_id, engrams.content, engrams.content_hash,
       engrams.embedding, engrams.fact_type, engrams.confidence, engrams.created_at,
       engrams.last_accessed_at, engrams.energy_level, engrams.access_count, engrams.state,
       engrams.active_twin_id, engrams.maturation_days, engrams.contradiction_count,
       engrams.is_diamond, engrams.entangled_refs, engrams.valence, engrams.energy_multiplier,
       engrams.tier, engrams.hash, engrams.prev_hash, engrams.extra, engrams.seq
FROM engrams_fts
JOIN engrams ON engrams.rowid = engrams_fts.rowid
WHERE engrams_fts MATCH ?
  AND engrams.tenant_id = ?
  AND engrams.state IN ('ACTIVE','MATURED')
ORDER BY engrams_fts.rank
LIMIT ?`

// FindByContentHash looks up a visible (ACTIVE or MATURED) engram by
// exact content hash,
// used to satisfy invariant 6 (at most one ACTIVE engram per
// (tenant, content-hash)).
func (s *SQLiteStore) FindByContentHash(ctx context.Context, tenantID, contentHash string) (*types.Engram, error) {
	row := s.db.QueryRowContext(ctx,
		selectManySQL+` WHERE tenant_id = ? AND content_hash = ? AND state IN ('ACTIVE','MATURED') LIMIT 1`,
		tenantID, contentHash)
	e, _, err := scanRow(row)
	if err != nil {
		return nil, wrapDBError("find-by-hash", err)
	}
	return e, nil
}
