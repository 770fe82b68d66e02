package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at
// the end.
var migrations = []string{
	// Migration 1: the serial guard originally covered empty serials too,
	// making two serial-less assignments to the same employee collide.
	// Recreate the index so it only guards non-empty serials.
	`DROP INDEX IF EXISTS idx_assets_owner_serial`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_owner_serial_assigned
	     ON assets(owner_id, serial) WHERE status = 'assigned' AND serial != ''`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
