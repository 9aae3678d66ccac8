// Package audit persists the decision history of review sessions so it
// outlives the process that recorded it.
package audit

import (
	"time"

	"github.com/ziadkadry99/sharai/internal/session"
)

// Record is a decision history entry with the session it belongs to.
type Record struct {
	SessionID string `json:"session_id"`
	session.HistoryEntry
}

// QueryFilter controls which records Query returns.
type QueryFilter struct {
	SessionID string
	TermID    string
	Action    session.HistoryAction
	Actor     session.Actor
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}
