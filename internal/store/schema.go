// Package store persists prompt analysis history in an embedded, pure-Go
// SQLite database (no CGO) with versioned schema migrations.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/philokalos/promptlens/internal/logging"
)

// CurrentSchemaVersion is the schema version this build expects.
//
// v1: prompt_history + personal_tips tables
const CurrentSchemaVersion = 1

// Store is the SQLite-backed prompt history repository.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open initializes the database at path, creating the schema if needed and
// running any pending migrations.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := SetSchemaVersion(db, CurrentSchemaVersion); err != nil {
		logging.StoreWarn("failed to record schema version: %v", err)
	}

	logging.Store("store opened at %s", path)
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS prompt_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		prompt_text TEXT NOT NULL,
		overall_score INTEGER NOT NULL,
		grade TEXT NOT NULL,
		golden_goal INTEGER NOT NULL,
		golden_output INTEGER NOT NULL,
		golden_limits INTEGER NOT NULL,
		golden_data INTEGER NOT NULL,
		golden_eval INTEGER NOT NULL,
		golden_next INTEGER NOT NULL,
		issues_json TEXT NOT NULL DEFAULT '[]',
		improved_prompt TEXT NOT NULL DEFAULT '',
		source_app TEXT NOT NULL DEFAULT '',
		project_path TEXT NOT NULL DEFAULT '',
		intent TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		analyzed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_prompt_history_project ON prompt_history(project_path);
	CREATE INDEX IF NOT EXISTS idx_prompt_history_category ON prompt_history(category);
	CREATE INDEX IF NOT EXISTS idx_prompt_history_analyzed_at ON prompt_history(analyzed_at);

	CREATE TABLE IF NOT EXISTS personal_tips (
		weakness_type TEXT PRIMARY KEY,
		frequency INTEGER NOT NULL DEFAULT 0,
		last_seen_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS schema_versions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		version INTEGER NOT NULL,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
