package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/compliance"
	"github.com/ziadkadry99/sharai/internal/upload"
)

var (
	// ErrNoAnswer is returned when an answer is reused before one exists.
	ErrNoAnswer = errors.New("no answer to use: ask a question about the term first")

	// ErrConfirmRejected wraps a confirm the backend answered with success=false.
	ErrConfirmRejected = errors.New("confirmation rejected")

	// ErrGenerationFailed wraps a generate call the backend answered with success=false.
	ErrGenerationFailed = errors.New("contract generation failed")

	// ErrEmptyText is returned for a blank question or edit.
	ErrEmptyText = errors.New("text must not be empty")
)

// Stats computes the compliance summary of the current clauses, or nil
// when no analysis is loaded.
func (m *Manager) Stats() *compliance.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.Stats()
}

// UploadAndAnalyze clears the current session, sends f for analysis and
// loads the resulting session. Unsupported files are rejected before any
// request is made.
func (m *Manager) UploadAndAnalyze(ctx context.Context, f *upload.File) (*api.AnalyzeResponse, error) {
	if f == nil || !upload.IsAccepted(f.MIME) {
		err := upload.ErrUnsupportedType
		m.update(func(st *State) { st.UploadError = err.Error() })
		return nil, m.fail("toast.error", err)
	}

	m.Clear(ctx)
	m.update(func(st *State) {
		st.Flags.Uploading = true
		st.Flags.Analyzing = true
		st.Flags.UploadProgress = 50
	})
	defer m.update(func(st *State) {
		st.Flags.Uploading = false
		st.Flags.Analyzing = false
		st.Flags.UploadProgress = 0
	})

	m.log.Info("uploading contract", "filename", f.Name, "mime", f.MIME, "bytes", f.Size())
	resp, err := m.backend.Analyze(ctx, f.Upload())
	if err != nil {
		m.update(func(st *State) {
			if api.IsBackendError(err) {
				st.AnalysisError = err.Error()
			} else {
				st.UploadError = err.Error()
			}
		})
		return nil, m.fail("toast.error", err)
	}
	m.update(func(st *State) { st.Flags.UploadProgress = 100 })

	if err := m.Load(ctx, resp.SessionID); err != nil {
		m.update(func(st *State) { st.AnalysisError = err.Error() })
		return nil, err
	}
	m.notify.Notify(Toast{Variant: ToastDefault, Title: "toast.analysisComplete", Body: "toast.analysisCompleteBody", Message: resp.Message})
	return resp, nil
}

// AskAboutTerm asks a question scoped to one clause and stores the
// answer on it.
func (m *Manager) AskAboutTerm(ctx context.Context, termID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyText
	}
	snap := m.Snapshot()
	if !snap.HasSession() {
		return "", m.fail("toast.sessionError", ErrNoSession)
	}
	term, ok := snap.Term(termID)
	if !ok {
		return "", m.fail("toast.applicationError", fmt.Errorf("%w: %s", ErrTermNotFound, termID))
	}

	m.update(func(st *State) {
		st.Flags.TermProcessing[termID] = true
		st.LastError = ""
	})
	defer m.update(func(st *State) { delete(st.Flags.TermProcessing, termID) })

	resp, err := m.backend.Ask(ctx, snap.SessionID, api.AskRequest{
		Question: question,
		TermID:   termID,
		TermText: term.TermText,
	})
	if err != nil {
		return "", m.fail("toast.interactionError", err)
	}

	answer := resp.Text()
	m.applyIfCurrent(snap.SessionID, termID, func(t *Term) {
		t.CurrentQAAnswer = answer
		t.QAMeta = &QAMeta{
			SuggestedClause:   resp.SuggestedClause,
			ReferenceStandard: resp.ReferenceStandard,
		}
	})
	return answer, nil
}

// AskGeneral asks a question about the whole contract. The answer is
// returned, not stored.
func (m *Manager) AskGeneral(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyText
	}
	sid, err := m.requireSession()
	if err != nil {
		return "", err
	}

	m.update(func(st *State) {
		st.Flags.GeneralQuestion = true
		st.LastError = ""
	})
	defer m.update(func(st *State) { st.Flags.GeneralQuestion = false })

	resp, err := m.backend.Ask(ctx, sid, api.AskRequest{Question: question})
	if err != nil {
		return "", m.fail("toast.interactionError", err)
	}
	return resp.Text(), nil
}

// ReviewModification sends text for AI review and stores the reviewed
// suggestion on the clause. The clause becomes unconfirmed.
func (m *Manager) ReviewModification(ctx context.Context, termID, text, original string) error {
	sid, err := m.requireSession()
	if err != nil {
		return err
	}
	if _, ok := m.Snapshot().Term(termID); !ok {
		return m.fail("toast.applicationError", fmt.Errorf("%w: %s", ErrTermNotFound, termID))
	}
	isExpert := m.Role() == RoleExpert

	m.update(func(st *State) {
		st.Flags.Reviewing[termID] = true
		st.LastError = ""
	})
	defer m.update(func(st *State) { delete(st.Flags.Reviewing, termID) })

	resp, err := m.backend.ReviewModification(ctx, api.ReviewRequest{
		SessionID:        sid,
		TermID:           termID,
		UserModifiedText: text,
		OriginalTermText: original,
		IsExpert:         isExpert,
	})
	if err != nil {
		return m.fail("toast.reviewError", err)
	}

	valid := resp.IsStillValidSharia
	review := Review{
		TermID:             termID,
		UserModifiedText:   resp.ReviewedText,
		ReviewedSuggestion: resp.ReviewedText,
		IsValid:            &valid,
		Status:             resp.ComplianceStatus,
		Issue:              resp.Issue(),
		Reference:          resp.Reference(),
		UpdatedAt:          m.now().UTC(),
	}
	if !m.applyIfCurrent(sid, termID, func(t *Term) {
		t.applyReview(review)
		t.CurrentQAAnswer = ""
	}) {
		return nil
	}
	if m.reviews != nil {
		if err := m.reviews.SaveReview(ctx, sid, review); err != nil {
			m.log.Warn("saving pending review failed", "session_id", sid, "term_id", termID, "error", err)
		}
	}

	m.AddHistory(ctx, HistoryEntry{
		Action:  ActionAIReview,
		Actor:   ActorAI,
		TermID:  termID,
		Details: "AI reviewed user modification for " + termID,
	})
	m.success("toast.reviewComplete", "toast.reviewCompleteBody")
	return nil
}

// EditSuggestion records a user edit and sends it for AI review.
func (m *Manager) EditSuggestion(ctx context.Context, termID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	snap := m.Snapshot()
	if !snap.HasSession() {
		return m.fail("toast.sessionError", ErrNoSession)
	}
	term, ok := snap.Term(termID)
	if !ok {
		return m.fail("toast.applicationError", fmt.Errorf("%w: %s", ErrTermNotFound, termID))
	}

	m.AddHistory(ctx, HistoryEntry{
		Action:  ActionUserEdit,
		Actor:   ActorUser,
		TermID:  termID,
		Details: "User edited suggestion before AI review",
	})
	return m.ReviewModification(ctx, termID, text, term.TermText)
}

// UseAnswerAsSuggestion sends the clause's last QA answer through AI
// review as the new suggestion.
func (m *Manager) UseAnswerAsSuggestion(ctx context.Context, termID string) error {
	snap := m.Snapshot()
	if !snap.HasSession() {
		return m.fail("toast.sessionError", ErrNoSession)
	}
	term, ok := snap.Term(termID)
	if !ok {
		return m.fail("toast.applicationError", fmt.Errorf("%w: %s", ErrTermNotFound, termID))
	}
	if term.CurrentQAAnswer == "" {
		return ErrNoAnswer
	}
	return m.ReviewModification(ctx, termID, term.CurrentQAAnswer, term.TermText)
}

// EditStartText is the text an edit of the clause starts from.
func EditStartText(t Term) string {
	if t.IsUserConfirmed && t.UserModifiedText != "" {
		return t.UserModifiedText
	}
	return t.CurrentText()
}

// ConfirmCurrent confirms the clause with its current text.
func (m *Manager) ConfirmCurrent(ctx context.Context, termID string) error {
	term, ok := m.Snapshot().Term(termID)
	if !ok {
		if m.SessionID() == "" {
			return m.fail("toast.sessionError", ErrNoSession)
		}
		return m.fail("toast.applicationError", fmt.Errorf("%w: %s", ErrTermNotFound, termID))
	}
	return m.Confirm(ctx, termID, term.CurrentText())
}

// Confirm commits text as the final wording of the clause and reloads
// the clause list from the backend.
func (m *Manager) Confirm(ctx context.Context, termID, text string) error {
	sid, err := m.requireSession()
	if err != nil {
		return err
	}

	m.update(func(st *State) {
		st.Flags.TermProcessing[termID] = true
		st.LastError = ""
	})
	defer m.update(func(st *State) { delete(st.Flags.TermProcessing, termID) })

	resp, err := m.backend.ConfirmModification(ctx, api.ConfirmRequest{
		SessionID:    sid,
		TermID:       termID,
		ModifiedText: text,
	})
	if err != nil {
		return m.fail("toast.confirmationError", err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "the backend did not confirm the modification"
		}
		return m.fail("toast.confirmationError", fmt.Errorf("%w: %s", ErrConfirmRejected, msg))
	}

	fresh, err := m.backend.SessionTerms(ctx, sid)
	if err != nil {
		return m.fail("toast.confirmationError", fmt.Errorf("reloading terms: %w", err))
	}

	current := true
	m.update(func(st *State) {
		if st.SessionID != sid {
			current = false
			return
		}
		previous := make(map[string]Term, len(st.Terms))
		for _, t := range st.Terms {
			previous[t.TermID] = t
		}
		terms := make([]Term, len(fresh))
		for i, at := range fresh {
			t := termFromAPI(at)
			if old, ok := previous[at.TermID]; ok {
				t.CurrentQAAnswer = old.CurrentQAAnswer
				t.QAMeta = old.QAMeta

				// Other clauses keep their unconfirmed reviews.
				if at.TermID != termID && old.PendingReview() {
					t.applyReview(old.Review())
				}
			}
			terms[i] = t
		}
		st.Terms = terms
	})
	if !current {
		return nil
	}
	if m.reviews != nil {
		if err := m.reviews.DeleteReview(ctx, sid, termID); err != nil {
			m.log.Warn("dropping confirmed review failed", "session_id", sid, "term_id", termID, "error", err)
		}
	}

	m.AddHistory(ctx, HistoryEntry{
		Action:  ActionConfirmation,
		Actor:   ActorUser,
		TermID:  termID,
		Details: "User confirmed modification for " + termID,
	})
	m.success("toast.termConfirmed", "toast.termConfirmedBody")
	return nil
}

// GenerateModified builds the clean contract with confirmed wording and
// records the produced files on the session details.
func (m *Manager) GenerateModified(ctx context.Context) (*api.GeneratedContractInfo, error) {
	sid, original, err := m.requireDetails()
	if err != nil {
		return nil, err
	}

	m.update(func(st *State) {
		st.Flags.GeneratingModified = true
		st.LastError = ""
	})
	defer m.update(func(st *State) { st.Flags.GeneratingModified = false })

	resp, err := m.backend.GenerateModified(ctx, sid)
	if err != nil {
		return nil, m.fail("toast.generationError", err)
	}
	if !resp.Success {
		return nil, m.fail("toast.generationError", generationFailure(resp.Message))
	}

	base := BaseFilename(original)
	info := &api.GeneratedContractInfo{
		DocxCloudinaryInfo:  generatedFile(resp.ModifiedDocxCloudinaryURL, "docx", "modified_"+base+".docx"),
		TxtCloudinaryInfo:   generatedFile(resp.ModifiedTxtCloudinaryURL, "txt", "modified_"+base+".txt"),
		GenerationTimestamp: m.now().UTC().Format(time.RFC3339),
	}
	m.update(func(st *State) {
		if st.SessionID == sid && st.Details != nil {
			st.Details.ModifiedContractInfo = info
		}
	})
	m.success("toast.contractGenerated", "toast.contractGeneratedBody")
	return cloneGenerated(info), nil
}

// GenerateMarked builds the contract with changes highlighted.
func (m *Manager) GenerateMarked(ctx context.Context) (*api.GeneratedContractInfo, error) {
	sid, original, err := m.requireDetails()
	if err != nil {
		return nil, err
	}

	m.update(func(st *State) {
		st.Flags.GeneratingMarked = true
		st.LastError = ""
	})
	defer m.update(func(st *State) { st.Flags.GeneratingMarked = false })

	resp, err := m.backend.GenerateMarked(ctx, sid)
	if err != nil {
		return nil, m.fail("toast.generationError", err)
	}
	if !resp.Success {
		return nil, m.fail("toast.generationError", generationFailure(resp.Message))
	}

	info := &api.GeneratedContractInfo{
		DocxCloudinaryInfo:  generatedFile(resp.MarkedDocxCloudinaryURL, "docx", "marked_"+BaseFilename(original)+".docx"),
		GenerationTimestamp: m.now().UTC().Format(time.RFC3339),
	}
	m.update(func(st *State) {
		if st.SessionID == sid && st.Details != nil {
			st.Details.MarkedContractInfo = info
		}
	})
	m.success("toast.markedGenerated", "toast.markedGeneratedBody")
	return cloneGenerated(info), nil
}

// Generate dispatches to GenerateModified or GenerateMarked.
func (m *Manager) Generate(ctx context.Context, kind api.PreviewKind) (*api.GeneratedContractInfo, error) {
	switch kind {
	case api.PreviewModified:
		return m.GenerateModified(ctx)
	case api.PreviewMarked:
		return m.GenerateMarked(ctx)
	}
	return nil, fmt.Errorf("unknown contract kind %q", kind)
}

func (m *Manager) requireDetails() (sid, filename string, err error) {
	m.mu.Lock()
	sid = m.st.SessionID
	if m.st.Details != nil {
		filename = m.st.Details.OriginalFilename
	}
	hasDetails := m.st.Details != nil
	m.mu.Unlock()

	if sid == "" {
		return "", "", m.fail("toast.sessionError", ErrNoSession)
	}
	if !hasDetails {
		return "", "", m.fail("toast.sessionError", ErrNoDetails)
	}
	return sid, filename, nil
}

func generationFailure(msg string) error {
	if msg == "" {
		return ErrGenerationFailed
	}
	return fmt.Errorf("%w: %s", ErrGenerationFailed, msg)
}

func generatedFile(url, format, name string) *api.FileInfo {
	if url == "" {
		return nil
	}
	return &api.FileInfo{URL: url, Format: format, UserFacingFilename: name}
}

// BaseFilename strips the final extension from name.
func BaseFilename(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 || strings.Contains(name[i+1:], "/") {
		return name
	}
	return name[:i]
}

// FeedbackInput is an expert's judgment on one clause analysis.
type FeedbackInput struct {
	Approved            *bool
	ExpertIsValidSharia *bool
	Comment             string
	CorrectedIssue      string
	CorrectedReference  string
	CorrectedSuggestion string
}

// FeedbackDraft pre-fills the feedback form for t.
func FeedbackDraft(t Term) FeedbackInput {
	valid := t.ComplianceStatus == string(compliance.Compliant)
	if t.ExpertOverrideIsValidSharia != nil {
		valid = *t.ExpertOverrideIsValidSharia
	}
	suggestion := t.UserModifiedText
	if suggestion == "" {
		suggestion = t.ReviewedSuggestion
	}
	if suggestion == "" {
		suggestion = t.ModifiedTerm
	}
	return FeedbackInput{
		ExpertIsValidSharia: &valid,
		CorrectedIssue:      t.ShariaIssue,
		CorrectedReference:  t.ReferenceNumber,
		CorrectedSuggestion: suggestion,
	}
}

// Validate checks the judgment is complete.
func (in FeedbackInput) Validate() error {
	if in.Approved == nil {
		return ErrAssessmentRequired
	}
	if !*in.Approved && in.ExpertIsValidSharia == nil {
		return ErrCorrectedStatusRequired
	}
	return nil
}

// SubmitExpertFeedback sends an expert judgment and marks the clause as
// reviewed by an expert. Only the shariah_expert role may submit.
func (m *Manager) SubmitExpertFeedback(ctx context.Context, termID string, in FeedbackInput) (*api.ExpertFeedbackResponse, error) {
	if m.Role() != RoleExpert {
		return nil, m.fail("toast.feedbackError", ErrExpertOnly)
	}
	if err := in.Validate(); err != nil {
		return nil, m.fail("toast.feedbackError", err)
	}
	sid, err := m.requireSession()
	if err != nil {
		return nil, err
	}

	m.update(func(st *State) {
		st.Flags.SubmittingFeedback[termID] = true
		st.LastError = ""
	})
	defer m.update(func(st *State) { delete(st.Flags.SubmittingFeedback, termID) })

	resp, err := m.backend.SubmitExpertFeedback(ctx, api.ExpertFeedbackRequest{
		SessionID: sid,
		TermID:    termID,
		FeedbackData: api.ExpertFeedback{
			AIAnalysisApproved:         cloneBool(in.Approved),
			ExpertIsValidSharia:        cloneBool(in.ExpertIsValidSharia),
			ExpertComment:              in.Comment,
			ExpertCorrectedShariaIssue: in.CorrectedIssue,
			ExpertCorrectedReference:   in.CorrectedReference,
			ExpertCorrectedSuggestion:  in.CorrectedSuggestion,
		},
	})
	if err != nil {
		return nil, m.fail("toast.feedbackError", err)
	}

	m.applyIfCurrent(sid, termID, func(t *Term) {
		t.HasExpertFeedback = true
		t.ExpertOverrideIsValidSharia = cloneBool(in.ExpertIsValidSharia)
		if resp.FeedbackID != "" {
			t.LastExpertFeedbackID = resp.FeedbackID
		}
	})
	m.AddHistory(ctx, HistoryEntry{
		Action:  ActionExpertFeedback,
		Actor:   ActorExpert,
		TermID:  termID,
		Details: "Expert feedback submitted",
	})
	m.success("toast.feedbackSubmitted", "toast.feedbackSubmittedBody")
	return resp, nil
}

// applyIfCurrent patches a clause only if sid is still the active
// session, so responses to a cleared session are dropped.
func (m *Manager) applyIfCurrent(sid, termID string, fn func(t *Term)) bool {
	applied := false
	m.update(func(st *State) {
		if st.SessionID != sid {
			return
		}
		for i := range st.Terms {
			if st.Terms[i].TermID == termID {
				fn(&st.Terms[i])
				applied = true
				return
			}
		}
	})
	return applied
}
