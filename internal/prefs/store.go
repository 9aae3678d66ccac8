package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ziadkadry99/sharai/internal/db"
)

// Scope selects the lifetime of a stored value.
type Scope string

const (
	// ScopeSession values belong to the current review session.
	ScopeSession Scope = "session"

	// ScopeLocal values persist across sessions.
	ScopeLocal Scope = "local"
)

// Well-known keys.
const (
	KeySessionID = "shariaaAnalyzerSessionId"
	KeyRole      = "shariaaAnalyzerUserRole"
	KeyLanguage  = "app-language"
	KeyTheme     = "theme"
)

// Store is a small key/value store backed by the preferences table.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Get returns the stored value and whether it was present.
func (s *Store) Get(ctx context.Context, scope Scope, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE scope = ? AND key = ?`,
		string(scope), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s/%s: %w", scope, key, err)
	}
	return value, true, nil
}

// Set inserts or replaces a value.
func (s *Store) Set(ctx context.Context, scope Scope, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (scope, key, value, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(scope), key, value,
	)
	if err != nil {
		return fmt.Errorf("writing preference %s/%s: %w", scope, key, err)
	}
	return nil
}

// Delete removes a value. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, scope Scope, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM preferences WHERE scope = ? AND key = ?`,
		string(scope), key,
	)
	if err != nil {
		return fmt.Errorf("deleting preference %s/%s: %w", scope, key, err)
	}
	return nil
}

// ClearScope removes every value in a scope.
func (s *Store) ClearScope(ctx context.Context, scope Scope) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE scope = ?`, string(scope)); err != nil {
		return fmt.Errorf("clearing %s preferences: %w", scope, err)
	}
	return nil
}
