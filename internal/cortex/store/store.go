// Package store implements the Engram Store (C1): typed-row
// persistence over SQLite with an append-only per-tenant hash chain.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/cortex-memory/cortex/internal/cortex/clock"
	"github.com/cortex-memory/cortex/internal/cortex/cortexerr"
	"github.com/cortex-memory/cortex/internal/cortex/types"

	_ "modernc.org/sqlite"
)

// Store is the C1 Engram Store contract.
type Store interface {
	Put(ctx context.Context, e *types.Engram) error
	Get(ctx context.Context, tenantID, id string) (*types.Engram, error)
	Scan(ctx context.Context, tenantID string, filter types.Filter) ([]*types.Engram, error)
	FindByContentHash(ctx context.Context, tenantID, contentHash string) (*types.Engram, error)
	SearchContent(ctx context.Context, tenantID, query string, limit int) ([]*types.Engram, error)
	Delete(ctx context.Context, tenantID, id string) error
	VerifyChain(ctx context.Context, tenantID string) (valid bool, firstBreak string, err error)

	PutCausalEdge(ctx context.Context, e *types.CausalEdge) error
	DeleteCausalEdgesFor(ctx context.Context, engramID string) error
	ScanCausalEdges(ctx context.Context) ([]*types.CausalEdge, error)

	Close() error
}

// SQLiteStore is the default Store implementation.
type SQLiteStore struct {
	db    *sql.DB
	clock clock.Clock

	// busy guards the per-tenant hash chain append path. tryLock semantics:
	// Put returns CHAIN_LOCKED rather than blocking, so a concurrent
	// caller can retry instead of queueing behind another in-flight
	// append.
	locksMu sync.Mutex
	busy    map[string]bool
}

// New opens (creating if necessary) a SQLite-backed engram store at
// path. Pass ":memory:" for an ephemeral, test-only store.
func New(path string, c clock.Clock) (*SQLiteStore, error) {
	if c == nil {
		c = clock.System{}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, wrapDBError("open", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: single writer, consistent with append-lock model

	s := &SQLiteStore{
		db:    db,
		clock: c,
		busy:  make(map[string]bool),
	}

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, wrapDBError("init-schema", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// tryLockTenant attempts to acquire the named tenant's append lock
// without blocking. Returns false if another append is already in
// flight (caller should surface CHAIN_LOCKED and retry).
func (s *SQLiteStore) tryLockTenant(tenantID string) bool {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	if s.busy[tenantID] {
		return false
	}
	s.busy[tenantID] = true
	return true
}

func (s *SQLiteStore) unlockTenant(tenantID string) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	s.busy[tenantID] = false
}

// Put inserts or replaces an engram, filling prev_hash/hash atomically
// under the per-tenant append lock. Fails with ErrChainLocked on
// concurrent append attempts.
func (s *SQLiteStore) Put(ctx context.Context, e *types.Engram) error {
	if e.Content == "" {
		return fmt.Errorf("put: %w: empty content", cortexerr.ErrValidation)
	}
	if !s.tryLockTenant(e.TenantID) {
		return fmt.Errorf("put: %w", cortexerr.ErrChainLocked)
	}
	defer s.unlockTenant(e.TenantID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("put-begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lastID, lastContentHash, lastHash, lastPrev string
	var lastSeq int64
	row := tx.QueryRowContext(ctx,
		`SELECT id, content_hash, hash, prev_hash, seq FROM engrams WHERE tenant_id = ? ORDER BY seq DESC LIMIT 1`, e.TenantID)
	switch err := row.Scan(&lastID, &lastContentHash, &lastHash, &lastPrev, &lastSeq); err {
	case nil:
		// chain continues, unless its latest row no longer matches its hash
		if types.ChainHash(lastPrev, lastID, lastContentHash) != lastHash {
			return fmt.Errorf("put: %w: %s", cortexerr.ErrChainBroken, lastID)
		}
	case sql.ErrNoRows:
		lastHash, lastSeq = "", 0
	default:
		return wrapDBError("put-lasthash", err)
	}

	contentHash := types.ContentHash(e.TenantID, e.Content)
	e.PrevHash = lastHash
	e.Hash = types.ChainHash(lastHash, e.ID, contentHash)

	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock.Now()
	}
	if e.LastAccessedAt.IsZero() {
		e.LastAccessedAt = s.clock.Now()
	}

	row2, err := marshalRow(e, contentHash, lastSeq+1)
	if err != nil {
		return wrapDBError("put-marshal", err)
	}

	if _, err := tx.ExecContext(ctx, putSQL,
		row2.id, row2.tenantID, row2.projectID, row2.content, row2.contentHash, row2.embedding,
		row2.factType, row2.confidence, row2.createdAt, row2.lastAccessedAt, row2.energyLevel,
		row2.accessCount, row2.state, row2.activeTwinID, row2.maturationDays, row2.contradictionCount,
		row2.isDiamond, row2.entangledRefs, row2.valence, row2.energyMultiplier, row2.tier,
		row2.hash, row2.prevHash, row2.extra, row2.seq,
	); err != nil {
		return wrapDBError("put-exec", err)
	}

	if err := tx.Commit(); err != nil {
		return wrapDBError("put-commit", err)
	}
	return nil
}

const putSQL = `
INSERT INTO engrams (
    id, tenant_id, project_id, content, content_hash, embedding,
    fact_type, confidence, created_at, last_accessed_at, energy_level,
    access_count, state, active_twin_id, maturation_days, contradiction_count,
    is_diamond, entangled_refs, valence, energy_multiplier, tier,
    hash, prev_hash, extra, seq
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
    tenant_id=excluded.tenant_id, project_id=excluded.project_id, content=excluded.content,
    content_hash=excluded.content_hash, embedding=excluded.embedding, fact_type=excluded.fact_type,
    confidence=excluded.confidence, created_at=excluded.created_at, last_accessed_at=excluded.last_accessed_at,
    energy_level=excluded.energy_level, access_count=excluded.access_count, state=excluded.state,
    active_twin_id=excluded.active_twin_id, maturation_days=excluded.maturation_days,
    contradiction_count=excluded.contradiction_count, is_diamond=excluded.is_diamond,
    entangled_refs=excluded.entangled_refs, valence=excluded.valence,
    energy_multiplier=excluded.energy_multiplier, tier=excluded.tier, extra=excluded.extra
`

func (s *SQLiteStore) Get(ctx context.Context, tenantID, id string) (*types.Engram, error) {
	row := s.db.QueryRowContext(ctx, selectOneSQL, tenantID, id)
	e, _, err := scanRow(row)
	if err != nil {
		return nil, wrapDBError("get", err)
	}
	return e, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, tenantID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM engrams WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return wrapDBError("delete", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("delete: %w", cortexerr.ErrUnknownID)
	}
	return nil
}

// checkDeadline checks ctx against a deadline and returns ErrTimeout
// without having mutated anything.
func checkDeadline(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w", cortexerr.ErrTimeout)
	default:
		return nil
	}
}
