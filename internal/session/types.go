package session

import (
	"errors"
	"time"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/compliance"
)

var (
	// ErrNoSession is returned by operations that need an analyzed contract.
	ErrNoSession = errors.New("no active session: upload a contract first")

	// ErrNoDetails is returned when generation runs before session details loaded.
	ErrNoDetails = errors.New("session details are not loaded")

	// ErrTermNotFound is returned for an unknown clause id.
	ErrTermNotFound = errors.New("term not found")

	// ErrAssessmentRequired means expert feedback lacks an approve/reject judgment.
	ErrAssessmentRequired = errors.New("expert assessment is required")

	// ErrCorrectedStatusRequired means a rejected analysis lacks the corrected status.
	ErrCorrectedStatusRequired = errors.New("a corrected compliance status is required when rejecting the analysis")

	// ErrExpertOnly is returned when a regular user submits expert feedback.
	ErrExpertOnly = errors.New("expert feedback requires the shariah_expert role")
)

// Role is the UI mode. It is a presentation toggle, not an authorization.
type Role string

const (
	RoleRegular Role = "regular_user"
	RoleExpert  Role = "shariah_expert"
)

// ParseRole returns the role for s, defaulting to regular.
func ParseRole(s string) Role {
	if Role(s) == RoleExpert {
		return RoleExpert
	}
	return RoleRegular
}

// QAMeta is the structured part of an answer to a clause question.
type QAMeta struct {
	SuggestedClause   string
	ReferenceStandard string
}

// Term is a clause as held by the client: the backend record plus
// client-only review state.
type Term struct {
	api.AnalysisTerm

	IsUserConfirmed  bool
	UserModifiedText string

	CurrentQAAnswer string
	QAMeta          *QAMeta

	ReviewedSuggestion          string
	IsReviewedSuggestionValid   *bool
	ReviewedSuggestionStatus    string
	ReviewedSuggestionIssue     string
	ReviewedSuggestionReference string
}

// termFromAPI builds the client view of a freshly fetched clause.
func termFromAPI(t api.AnalysisTerm) Term {
	return Term{
		AnalysisTerm:     t,
		IsUserConfirmed:  t.IsConfirmedByUser,
		UserModifiedText: t.ConfirmedModifiedText,
	}
}

// Review is the client-only result of an AI review of a clause, kept
// until the clause is confirmed.
type Review struct {
	TermID             string
	UserModifiedText   string
	ReviewedSuggestion string
	IsValid            *bool
	Status             string
	Issue              string
	Reference          string
	UpdatedAt          time.Time
}

// PendingReview reports whether the clause holds an AI review that has
// not been confirmed yet.
func (t Term) PendingReview() bool {
	if t.IsUserConfirmed {
		return false
	}
	return t.ReviewedSuggestion != "" || t.ReviewedSuggestionStatus != "" || t.IsReviewedSuggestionValid != nil
}

// Review extracts the review state of the clause.
func (t Term) Review() Review {
	return Review{
		TermID:             t.TermID,
		UserModifiedText:   t.UserModifiedText,
		ReviewedSuggestion: t.ReviewedSuggestion,
		IsValid:            cloneBool(t.IsReviewedSuggestionValid),
		Status:             t.ReviewedSuggestionStatus,
		Issue:              t.ReviewedSuggestionIssue,
		Reference:          t.ReviewedSuggestionReference,
	}
}

// applyReview puts r back on the clause, which becomes unconfirmed.
func (t *Term) applyReview(r Review) {
	t.UserModifiedText = r.UserModifiedText
	t.ReviewedSuggestion = r.ReviewedSuggestion
	t.IsReviewedSuggestionValid = cloneBool(r.IsValid)
	t.ReviewedSuggestionStatus = r.Status
	t.ReviewedSuggestionIssue = r.Issue
	t.ReviewedSuggestionReference = r.Reference
	t.IsUserConfirmed = false
}

// EffectiveStatus is the status shown for the clause.
func (t Term) EffectiveStatus() compliance.Status {
	return compliance.Effective(compliance.Inputs{
		ExpertOverride:          t.ExpertOverrideIsValidSharia,
		UserConfirmed:           t.IsUserConfirmed,
		RawStatus:               t.ComplianceStatus,
		ReviewedStatus:          t.ReviewedSuggestionStatus,
		ReviewedSuggestionValid: t.IsReviewedSuggestionValid,
	})
}

// CurrentText is the text a confirm commits and an edit starts from:
// the user's edit, else the reviewed suggestion, else the AI suggestion,
// else the original clause.
func (t Term) CurrentText() string {
	for _, s := range []string{t.UserModifiedText, t.ReviewedSuggestion, t.ModifiedTerm} {
		if s != "" {
			return s
		}
	}
	return t.TermText
}

// HistoryAction classifies a decision history entry.
type HistoryAction string

const (
	ActionUserEdit       HistoryAction = "user_edit"
	ActionAIReview       HistoryAction = "ai_review"
	ActionExpertFeedback HistoryAction = "expert_feedback"
	ActionConfirmation   HistoryAction = "confirmation"
)

// Actor is who took a recorded decision.
type Actor string

const (
	ActorUser   Actor = "user"
	ActorAI     Actor = "ai"
	ActorExpert Actor = "expert"
)

// HistoryEntry is one audit record of the review session.
type HistoryEntry struct {
	ID        string        `json:"id"`
	Action    HistoryAction `json:"action"`
	Actor     Actor         `json:"actor"`
	Timestamp time.Time     `json:"timestamp"`
	TermID    string        `json:"term_id,omitempty"`
	Details   string        `json:"details,omitempty"`
}

// Flags are the in-flight indicators views render spinners from.
type Flags struct {
	Uploading          bool
	UploadProgress     int
	Analyzing          bool
	FetchingSession    bool
	GeneratingModified bool
	GeneratingMarked   bool
	GeneralQuestion    bool
	TermProcessing     map[string]bool
	Reviewing          map[string]bool
	SubmittingFeedback map[string]bool
	PreviewLoading     map[string]bool
}

// Busy reports whether any clause-scoped operation is running for termID.
func (f Flags) Busy(termID string) bool {
	return f.TermProcessing[termID] || f.Reviewing[termID] || f.SubmittingFeedback[termID]
}

// Generating reports whether either generation is running.
func (f Flags) Generating() bool {
	return f.GeneratingModified || f.GeneratingMarked
}

// State is a point-in-time copy of everything the manager owns.
type State struct {
	SessionID string

	// Terms is nil until an analysis has been loaded.
	Terms   []Term
	Details *api.SessionDetails
	History []HistoryEntry
	Role    Role
	Flags   Flags

	LastError     string
	UploadError   string
	AnalysisError string
}

// HasSession reports whether an analyzed session is loaded.
func (s State) HasSession() bool {
	return s.SessionID != "" && s.Terms != nil
}

// Term returns the clause with the given id.
func (s State) Term(id string) (Term, bool) {
	for _, t := range s.Terms {
		if t.TermID == id {
			return t, true
		}
	}
	return Term{}, false
}

// Stats computes the compliance summary, or nil when no analysis is loaded.
func (s State) Stats() *compliance.Stats {
	if s.Terms == nil {
		return nil
	}
	statuses := make([]compliance.Status, len(s.Terms))
	for i, t := range s.Terms {
		statuses[i] = t.EffectiveStatus()
	}
	st := compliance.Compute(statuses)
	return &st
}

// Filtered returns the clauses passing f, in original order.
func (s State) Filtered(f compliance.Filter) []Term {
	var out []Term
	for _, t := range s.Terms {
		if f.Match(t.EffectiveStatus()) {
			out = append(out, t)
		}
	}
	return out
}
