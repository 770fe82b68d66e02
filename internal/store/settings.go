package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// Setting keys.
const (
	SettingJWTSecret       = "jwt_secret"
	SettingDefaultCurrency = "default_currency"
)

// GetSetting returns a setting's value, or the empty string when unset.
func GetSetting(ctx context.Context, db *sql.DB, key string) (string, error) {
	return getSetting(ctx, db, key)
}

func getSetting(ctx context.Context, q DBTX, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a setting, replacing any previous value.
func SetSetting(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing setting %s: %w", key, err)
	}
	return nil
}

// GetJWTSecret retrieves the JWT signing secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid a TOCTOU race on concurrent
// startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		SettingJWTSecret, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	return GetSetting(ctx, db, SettingJWTSecret)
}
