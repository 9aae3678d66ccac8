// Package reviews keeps the unconfirmed AI reviews of a session's clauses
// so that a later command sees the reviewed wording and status.
package reviews

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ziadkadry99/sharai/internal/db"
	"github.com/ziadkadry99/sharai/internal/session"
)

// Store reads and writes the term_reviews table. It implements
// session.ReviewStore.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

var _ session.ReviewStore = (*Store)(nil)

// SaveReview stores r as the pending review of its clause, replacing an
// earlier one.
func (s *Store) SaveReview(ctx context.Context, sessionID string, r session.Review) error {
	if sessionID == "" || r.TermID == "" {
		return fmt.Errorf("saving review: empty session or term id")
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}

	var valid sql.NullBool
	if r.IsValid != nil {
		valid = sql.NullBool{Bool: *r.IsValid, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO term_reviews
			(session_id, term_id, user_modified_text, reviewed_suggestion, is_valid, status, issue, reference, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, term_id) DO UPDATE SET
			user_modified_text = excluded.user_modified_text,
			reviewed_suggestion = excluded.reviewed_suggestion,
			is_valid = excluded.is_valid,
			status = excluded.status,
			issue = excluded.issue,
			reference = excluded.reference,
			updated_at = excluded.updated_at`,
		sessionID,
		r.TermID,
		r.UserModifiedText,
		r.ReviewedSuggestion,
		valid,
		r.Status,
		r.Issue,
		r.Reference,
		r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving review of %s: %w", r.TermID, err)
	}
	return nil
}

// Reviews returns the pending reviews of sessionID ordered by term id.
func (s *Store) Reviews(ctx context.Context, sessionID string) ([]session.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT term_id, user_modified_text, reviewed_suggestion, is_valid, status, issue, reference, updated_at
		FROM term_reviews WHERE session_id = ? ORDER BY term_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	var out []session.Review
	for rows.Next() {
		var (
			r     session.Review
			valid sql.NullBool
			ts    string
		)
		if err := rows.Scan(&r.TermID, &r.UserModifiedText, &r.ReviewedSuggestion, &valid, &r.Status, &r.Issue, &r.Reference, &ts); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		if valid.Valid {
			v := valid.Bool
			r.IsValid = &v
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			r.UpdatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteReview drops the pending review of one clause.
func (s *Store) DeleteReview(ctx context.Context, sessionID, termID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM term_reviews WHERE session_id = ? AND term_id = ?", sessionID, termID)
	if err != nil {
		return fmt.Errorf("deleting review of %s: %w", termID, err)
	}
	return nil
}

// DeleteReviews drops every pending review of sessionID and returns the
// number of deleted rows.
func (s *Store) DeleteReviews(ctx context.Context, sessionID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM term_reviews WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, fmt.Errorf("deleting reviews of %s: %w", sessionID, err)
	}
	return res.RowsAffected()
}
