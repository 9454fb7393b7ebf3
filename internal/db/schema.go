package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// Enum-valued columns (type, status, contact_method, role) are plain TEXT;
// membership is validated in the model package so that adding an enum member
// never needs a migration. items.vector holds 384 little-endian float32s.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    telegram_id   INTEGER UNIQUE,
    username      TEXT,
    password_hash TEXT,
    role          TEXT NOT NULL DEFAULT 'user',
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS categories (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS locations (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    address    TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id             INTEGER PRIMARY KEY,
    author_id      INTEGER NOT NULL REFERENCES users(id),
    category_id    INTEGER NOT NULL REFERENCES categories(id),
    location_id    INTEGER REFERENCES locations(id),
    type           TEXT NOT NULL,
    status         TEXT NOT NULL DEFAULT 'active',
    description    TEXT,
    photo_id       TEXT,
    photo          BLOB,
    photo_mime     TEXT,
    specific_place TEXT,
    contact_method TEXT NOT NULL,
    contact_info   TEXT,
    vector         BLOB,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    archived_at    DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_author ON items(author_id);
CREATE INDEX IF NOT EXISTS idx_items_status_type ON items(status, type);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
