package db

// schema is the full database schema.
//
// Timestamps written by the store layer are UTC and truncated to whole
// seconds, so their text encodings compare correctly in ORDER BY clauses.
// The movements table deliberately has no foreign key to assets: the ledger
// is the audit trail and outlives deleted assets.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assets (
    id          TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL,
    code        TEXT NOT NULL DEFAULT '',
    serial      TEXT NOT NULL DEFAULT '',
    type        TEXT NOT NULL DEFAULT '',
    subtype     TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL DEFAULT '',
    brand       TEXT NOT NULL DEFAULT '',
    model       TEXT NOT NULL DEFAULT '',
    specs       TEXT NOT NULL DEFAULT '',
    assigned_at DATETIME,
    due_at      DATETIME,
    returned_at DATETIME,
    status      TEXT NOT NULL CHECK (status IN ('assigned', 'returned', 'maintenance', 'lost', 'damaged', 'transferred')),
    value       REAL,
    currency    TEXT NOT NULL DEFAULT '',
    notes       TEXT NOT NULL DEFAULT '',
    attachments TEXT,
    photo       BLOB,
    photo_thumb BLOB,
    photo_mime  TEXT,
    created_at  DATETIME NOT NULL,
    created_by  TEXT NOT NULL DEFAULT '',
    updated_at  DATETIME NOT NULL,
    updated_by  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_assets_owner ON assets(owner_id, created_at);

CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_owner_serial_assigned
    ON assets(owner_id, serial) WHERE status = 'assigned' AND serial != '';

CREATE TABLE IF NOT EXISTS movements (
    id              TEXT PRIMARY KEY,
    asset_id        TEXT NOT NULL,
    type            TEXT NOT NULL CHECK (type IN ('assign', 'return', 'maintenance', 'lost', 'damage', 'transfer')),
    occurred_at     DATETIME NOT NULL,
    notes           TEXT NOT NULL DEFAULT '',
    attachments     TEXT,
    created_at      DATETIME NOT NULL,
    created_by      TEXT NOT NULL DEFAULT '',
    idempotency_key TEXT
);

CREATE INDEX IF NOT EXISTS idx_movements_asset ON movements(asset_id, occurred_at);

CREATE UNIQUE INDEX IF NOT EXISTS idx_movements_asset_idem
    ON movements(asset_id, idempotency_key) WHERE idempotency_key IS NOT NULL;
`
