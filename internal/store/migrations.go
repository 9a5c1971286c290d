package store

import (
	"database/sql"
	"fmt"

	"github.com/philokalos/promptlens/internal/logging"
)

// migration describes one ALTER TABLE to apply if missing, following the
// teacher's "check column existence, add if absent" convention.
type migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations lists schema additions applied to databases created by
// earlier builds. Empty for schema v1; future columns get appended here
// rather than bumping the base CREATE TABLE, so older databases upgrade in
// place.
var pendingMigrations = []migration{}

// RunMigrations applies any pending column additions, skipping quietly
// when the table doesn't exist or the column already exists.
func RunMigrations(db *sql.DB) error {
	if len(pendingMigrations) == 0 {
		return nil
	}

	applied, skipped := 0, 0
	for _, m := range pendingMigrations {
		if !tableExists(db, m.Table) {
			skipped++
			continue
		}
		if columnExists(db, m.Table, m.Column) {
			skipped++
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := db.Exec(query); err != nil {
			logging.StoreWarn("migration failed for %s.%s: %v", m.Table, m.Column, err)
			skipped++
			continue
		}
		logging.Store("migration applied: %s.%s", m.Table, m.Column)
		applied++
	}
	logging.Store("migrations complete: applied=%d skipped=%d", applied, skipped)
	return nil
}

func tableExists(db *sql.DB, table string) bool {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	return err == nil && count > 0
}

func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

// schemaVersionOf returns the most recently recorded schema version, or 0 if
// none has been recorded yet.
func schemaVersionOf(db *sql.DB) (int, error) {
	if !tableExists(db, "schema_versions") {
		return 0, nil
	}
	var version int
	err := db.QueryRow("SELECT version FROM schema_versions ORDER BY applied_at DESC LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// SetSchemaVersion records a new schema version.
func SetSchemaVersion(db *sql.DB, version int) error {
	_, err := db.Exec("INSERT INTO schema_versions (version) VALUES (?)", version)
	return err
}
