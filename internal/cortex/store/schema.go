package store

// schema defines the SQLite-compatible layout for engram persistence.
// Modeled on internal/storage/ephemeral/schema.go's "CREATE TABLE IF NOT
// EXISTS" + secondary-index style, adapted from issue rows to engrams.
const schema = `
CREATE TABLE IF NOT EXISTS engrams (
    id                  TEXT PRIMARY KEY,
    tenant_id           TEXT NOT NULL,
    project_id          TEXT NOT NULL DEFAULT '',
    content             TEXT NOT NULL,
    content_hash        TEXT NOT NULL,
    embedding           BLOB NOT NULL,
    fact_type           TEXT NOT NULL DEFAULT 'knowledge',
    confidence          TEXT NOT NULL DEFAULT 'C3',
    created_at          TEXT NOT NULL,
    last_accessed_at    TEXT NOT NULL,
    energy_level        REAL NOT NULL DEFAULT 1.0,
    access_count        INTEGER NOT NULL DEFAULT 0,
    state               TEXT NOT NULL DEFAULT 'ACTIVE',
    active_twin_id      TEXT NOT NULL DEFAULT '',
    maturation_days     REAL NOT NULL DEFAULT 0,
    contradiction_count INTEGER NOT NULL DEFAULT 0,
    is_diamond          INTEGER NOT NULL DEFAULT 0,
    entangled_refs      TEXT NOT NULL DEFAULT '[]',
    valence             REAL NOT NULL DEFAULT 0,
    energy_multiplier   REAL NOT NULL DEFAULT 1.0,
    tier                TEXT NOT NULL DEFAULT 'HOT',
    hash                TEXT NOT NULL,
    prev_hash           TEXT NOT NULL DEFAULT '',
    extra               TEXT NOT NULL DEFAULT '{}',
    seq                 INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_engrams_tenant_project ON engrams(tenant_id, project_id);
CREATE INDEX IF NOT EXISTS idx_engrams_tenant_fact_type ON engrams(tenant_id, fact_type);
CREATE INDEX IF NOT EXISTS idx_engrams_tenant_created ON engrams(tenant_id, created_at);
CREATE INDEX IF NOT EXISTS idx_engrams_tenant_state ON engrams(tenant_id, state);
CREATE INDEX IF NOT EXISTS idx_engrams_tenant_hash_dedup ON engrams(tenant_id, content_hash, state);
CREATE INDEX IF NOT EXISTS idx_engrams_tenant_seq ON engrams(tenant_id, seq);

CREATE VIRTUAL TABLE IF NOT EXISTS engrams_fts USING fts5(content, content='engrams', content_rowid='rowid');

CREATE TRIGGER IF NOT EXISTS engrams_ai AFTER INSERT ON engrams BEGIN
  INSERT INTO engrams_fts(rowid, content) VALUES (new.rowid, new.content);
END;
CREATE TRIGGER IF NOT EXISTS engrams_ad AFTER DELETE ON engrams BEGIN
  INSERT INTO engrams_fts(engrams_fts, rowid, content) VALUES('delete', old.rowid, old.content);
END;
CREATE TRIGGER IF NOT EXISTS engrams_au AFTER UPDATE ON engrams BEGIN
  INSERT INTO engrams_fts(engrams_fts, rowid, content) VALUES('delete', old.rowid, old.content);
  INSERT INTO engrams_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TABLE IF NOT EXISTS causal_edges (
    cause_id  TEXT NOT NULL,
    effect_id TEXT NOT NULL,
    relation  TEXT NOT NULL DEFAULT 'caused',
    strength  REAL NOT NULL DEFAULT 1.0,
    PRIMARY KEY (cause_id, effect_id, relation)
);

CREATE INDEX IF NOT EXISTS idx_causal_effect ON causal_edges(effect_id);
`
