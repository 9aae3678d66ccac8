package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with sharai-specific helpers.
type DB struct {
	*sql.DB
	mu   sync.RWMutex
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Each pooled connection would otherwise get its own empty database.
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Path returns the file the database was opened from.
func (d *DB) Path() string { return d.path }

// WithLock runs fn while holding the write lock. Stores use it for
// read-modify-write sequences.
func (d *DB) WithLock(fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn()
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
//
// preferences mirrors the two browser storage areas of the web client:
// scope 'session' is cleared with the review session, scope 'local'
// survives across sessions. decision_log holds the decision history of
// each review session until the session is cleared. term_reviews keeps
// the latest unconfirmed AI review of each clause until it is confirmed.
const schema = `
CREATE TABLE IF NOT EXISTS preferences (
    scope TEXT NOT NULL CHECK(scope IN ('session','local')),
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (scope, key)
);

CREATE TABLE IF NOT EXISTS decision_log (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    action TEXT NOT NULL CHECK(action IN ('user_edit','ai_review','expert_feedback','confirmation')),
    actor TEXT NOT NULL CHECK(actor IN ('user','ai','expert')),
    term_id TEXT,
    details TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_decision_log_session ON decision_log(session_id, timestamp);

CREATE TABLE IF NOT EXISTS term_reviews (
    session_id TEXT NOT NULL,
    term_id TEXT NOT NULL,
    user_modified_text TEXT NOT NULL DEFAULT '',
    reviewed_suggestion TEXT NOT NULL DEFAULT '',
    is_valid INTEGER,
    status TEXT NOT NULL DEFAULT '',
    issue TEXT NOT NULL DEFAULT '',
    reference TEXT NOT NULL DEFAULT '',
    updated_at TEXT NOT NULL,
    PRIMARY KEY (session_id, term_id)
);
`
