package store

import (
	"context"

	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// VerifyChain recomputes the per-tenant hash chain in sequence order and
// reports the first engram id at which the recorded hash diverges
// from the recomputed one. A tenant with no engrams is trivially
// valid.
func (s *SQLiteStore) VerifyChain(ctx context.Context, tenantID string) (bool, string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content_hash, hash, prev_hash FROM engrams WHERE tenant_id = ? ORDER BY seq ASC`,
		tenantID)
	if err != nil {
		return false, "", wrapDBError("verify-chain", err)
	}
	defer rows.Close()

	prevHash := ""
	for rows.Next() {
		var id, contentHash, hash, recordedPrev string
		if err := rows.Scan(&id, &contentHash, &hash, &recordedPrev); err != nil {
			return false, "", wrapDBError("verify-chain-scan", err)
		}

		if recordedPrev != prevHash {
			return false, id, nil
		}
		expected := types.ChainHash(prevHash, id, contentHash)
		if expected != hash {
			return false, id, nil
		}
		prevHash = hash
	}
	if err := rows.Err(); err != nil {
		return false, "", wrapDBError("verify-chain-iter", err)
	}
	return true, "", nil
}
