package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/sharai/internal/db"
	"github.com/ziadkadry99/sharai/internal/session"
)

// Store reads and writes the decision_log table. It implements
// session.Journal.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

var _ session.Journal = (*Store)(nil)

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Log appends e to the history of sessionID. If e.ID is empty a UUID is
// generated; a zero timestamp becomes now.
func (s *Store) Log(ctx context.Context, sessionID string, e session.HistoryEntry) error {
	if sessionID == "" {
		return fmt.Errorf("logging decision: empty session id")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	var termID sql.NullString
	if e.TermID != "" {
		termID = sql.NullString{String: e.TermID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decision_log (id, session_id, timestamp, action, actor, term_id, details)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		sessionID,
		e.Timestamp.UTC().Format(timeLayout),
		string(e.Action),
		string(e.Actor),
		termID,
		e.Details,
	)
	if err != nil {
		return fmt.Errorf("inserting decision: %w", err)
	}
	return nil
}

// List returns the history of sessionID, oldest first.
func (s *Store) List(ctx context.Context, sessionID string) ([]session.HistoryEntry, error) {
	records, err := s.query(ctx, QueryFilter{SessionID: sessionID}, "ASC")
	if err != nil {
		return nil, err
	}
	entries := make([]session.HistoryEntry, len(records))
	for i, r := range records {
		entries[i] = r.HistoryEntry
	}
	return entries, nil
}

// Query returns records matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	return s.query(ctx, filter, "DESC")
}

func (s *Store) query(ctx context.Context, filter QueryFilter, order string) ([]Record, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.TermID != "" {
		clauses = append(clauses, "term_id = ?")
		args = append(args, filter.TermID)
	}
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.Actor != "" {
		clauses = append(clauses, "actor = ?")
		args = append(args, string(filter.Actor))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(timeLayout))
	}

	query := "SELECT id, session_id, timestamp, action, actor, term_id, details FROM decision_log"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY timestamp %s, rowid %s", order, order)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying decisions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// DeleteSession removes the history of sessionID and returns the number
// of deleted rows.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM decision_log WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, fmt.Errorf("deleting decisions of %s: %w", sessionID, err)
	}
	return res.RowsAffected()
}

// DeleteBefore removes all records older than the given time.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM decision_log WHERE timestamp < ?",
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old decisions: %w", err)
	}
	return res.RowsAffected()
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var (
		r             Record
		ts            string
		action, actor string
		termID        sql.NullString
	)
	if err := rows.Scan(&r.ID, &r.SessionID, &ts, &action, &actor, &termID, &r.Details); err != nil {
		return nil, fmt.Errorf("scanning decision: %w", err)
	}
	r.Action = session.HistoryAction(action)
	r.Actor = session.Actor(actor)
	if termID.Valid {
		r.TermID = termID.String
	}
	if t, err := time.Parse(timeLayout, ts); err == nil {
		r.Timestamp = t
	}
	return &r, nil
}
