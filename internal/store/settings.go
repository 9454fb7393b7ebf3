package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// The settings table holds values that must survive restarts but never leave
// the database, keyed by name.

const jwtSecretKey = "jwt_secret"

// GetJWTSecret returns the persisted JWT signing secret, generating and
// storing a fresh one on first call.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return ensureSetting(ctx, db, jwtSecretKey, hex.EncodeToString(buf))
}

// ensureSetting stores value under key unless the key already exists, then
// reads back whichever value won. INSERT OR IGNORE plus the re-read keeps
// concurrent first starts from disagreeing on the stored value.
func ensureSetting(ctx context.Context, db *sql.DB, key, value string) (string, error) {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return "", fmt.Errorf("storing setting %q: %w", key, err)
	}

	var stored string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("reading setting %q: %w", key, err)
	}
	return stored, nil
}
