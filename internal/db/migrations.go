package db

import (
	"context"
	"fmt"
)

// migrations are applied in order; the schema version is the number of
// migrations applied, stored in PRAGMA user_version.
var migrations = []string{
	// 1: track the token limit next to the request limit.
	`ALTER TABLE rate_samples ADD COLUMN max_tpm INTEGER DEFAULT 0`,
	// 2: normalize timestamps written with a zone suffix (" +0000 UTC").
	`UPDATE rate_samples
	 SET recorded_at = SUBSTR(recorded_at, 1, 19)
	 WHERE length(recorded_at) > 19 AND recorded_at LIKE '% UTC'`,
}

// SchemaVersion returns the number of migrations applied to the database.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	if err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// migrate applies every migration newer than the stored schema version.
func (db *DB) migrate() error {
	version, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	for i := version; i < len(migrations); i++ {
		if _, err := db.ExecContext(context.Background(), migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := db.ExecContext(context.Background(), fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("failed to store schema version %d: %w", i+1, err)
		}
	}

	return nil
}
