// Package session owns the client-side state of one contract review: the
// active session, its clauses, decision history and in-flight flags.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/logger"
)

// Backend is the subset of the API client the manager calls.
type Backend interface {
	Analyze(ctx context.Context, file api.Upload) (*api.AnalyzeResponse, error)
	Ask(ctx context.Context, sessionID string, req api.AskRequest) (*api.AskResponse, error)
	ReviewModification(ctx context.Context, req api.ReviewRequest) (*api.ReviewResponse, error)
	ConfirmModification(ctx context.Context, req api.ConfirmRequest) (*api.ConfirmResponse, error)
	GenerateModified(ctx context.Context, sessionID string) (*api.GenerateModifiedResponse, error)
	GenerateMarked(ctx context.Context, sessionID string) (*api.GenerateMarkedResponse, error)
	SubmitExpertFeedback(ctx context.Context, req api.ExpertFeedbackRequest) (*api.ExpertFeedbackResponse, error)
	SessionDetails(ctx context.Context, sessionID string) (*api.SessionDetails, error)
	SessionTerms(ctx context.Context, sessionID string) ([]api.AnalysisTerm, error)
}

// Persistence stores the session id and role between runs.
type Persistence interface {
	SessionID(ctx context.Context) (string, error)
	SetSessionID(ctx context.Context, id string) error
	ClearSessionID(ctx context.Context) error
	Role(ctx context.Context) (string, error)
	SetRole(ctx context.Context, role string) error
}

// Journal keeps the decision history of each session beyond the process.
type Journal interface {
	Log(ctx context.Context, sessionID string, e HistoryEntry) error
	List(ctx context.Context, sessionID string) ([]HistoryEntry, error)
	DeleteSession(ctx context.Context, sessionID string) (int64, error)
}

// ReviewStore keeps the unconfirmed AI reviews of each session's clauses
// beyond the process.
type ReviewStore interface {
	SaveReview(ctx context.Context, sessionID string, r Review) error
	Reviews(ctx context.Context, sessionID string) ([]Review, error)
	DeleteReview(ctx context.Context, sessionID, termID string) error
	DeleteReviews(ctx context.Context, sessionID string) (int64, error)
}

// Manager serializes every state change behind one mutex. The lock is
// never held across a backend call, so independent operations overlap and
// the last response to arrive wins.
type Manager struct {
	backend Backend
	store   Persistence
	journal Journal
	reviews ReviewStore
	notify  Notifier
	log     *logger.Logger
	now     func() time.Time
	newID   func() string

	mu sync.Mutex
	st State
}

// Option configures a Manager.
type Option func(*Manager)

// WithPersistence keeps the session id and role in p.
func WithPersistence(p Persistence) Option {
	return func(m *Manager) { m.store = p }
}

// WithJournal records the decision history in j and reloads it with the
// session.
func WithJournal(j Journal) Option {
	return func(m *Manager) { m.journal = j }
}

// WithReviews keeps pending clause reviews in rs and puts them back on
// the clauses when the session is loaded.
func WithReviews(rs ReviewStore) Option {
	return func(m *Manager) { m.reviews = rs }
}

// WithNotifier delivers toasts to n.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notify = n }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithClock overrides the time source used for history and generation
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a manager with no active session.
func New(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend: backend,
		notify:  discard{},
		log:     logger.Nop(),
		now:     time.Now,
		newID:   uuid.NewString,
		st:      initialState(RoleRegular),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func initialState(role Role) State {
	return State{
		Role: role,
		Flags: Flags{
			TermProcessing:     map[string]bool{},
			Reviewing:          map[string]bool{},
			SubmittingFeedback: map[string]bool{},
			PreviewLoading:     map[string]bool{},
		},
	}
}

// Snapshot returns a deep copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.clone()
}

// SessionID returns the active session id, or "".
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.SessionID
}

// Role returns the current UI role.
func (m *Manager) Role() Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.Role
}

func (m *Manager) update(fn func(st *State)) {
	m.mu.Lock()
	fn(&m.st)
	m.mu.Unlock()
}

// fail records err as the last error and raises a destructive toast.
func (m *Manager) fail(title string, err error) error {
	m.update(func(st *State) { st.LastError = err.Error() })
	m.log.Warn("session operation failed", "toast", title, "error", err)
	m.notify.Notify(Toast{Variant: ToastDestructive, Title: title, Message: err.Error()})
	return err
}

func (m *Manager) success(title, body string) {
	m.notify.Notify(Toast{Variant: ToastDefault, Title: title, Body: body})
}

// requireSession returns the active session id or records ErrNoSession.
func (m *Manager) requireSession() (string, error) {
	sid := m.SessionID()
	if sid == "" {
		return "", m.fail("toast.sessionError", ErrNoSession)
	}
	return sid, nil
}

// Restore reloads the role and any stored session id. A missing store or
// stored id is not an error.
func (m *Manager) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	role, err := m.store.Role(ctx)
	if err != nil {
		return fmt.Errorf("restoring role: %w", err)
	}
	m.update(func(st *State) { st.Role = ParseRole(role) })

	sid, err := m.store.SessionID(ctx)
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	if sid == "" {
		return nil
	}
	return m.Load(ctx, sid)
}

// Load fetches the session details and clause list in parallel and
// replaces the current session with them. On failure the session is
// cleared and the error kept in LastError.
func (m *Manager) Load(ctx context.Context, sessionID string) error {
	m.update(func(st *State) {
		st.Flags.FetchingSession = true
		st.LastError = ""
	})
	defer m.update(func(st *State) { st.Flags.FetchingSession = false })

	var (
		details *api.SessionDetails
		terms   []api.AnalysisTerm
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = m.backend.SessionDetails(gctx, sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		terms, err = m.backend.SessionTerms(gctx, sessionID)
		return err
	})
	if err := g.Wait(); err != nil {
		m.Clear(ctx)
		return m.fail("toast.sessionLoadError", fmt.Errorf("loading session %s: %w", sessionID, err))
	}

	id := details.SessionID
	if id == "" {
		id = sessionID
	}
	clientTerms := make([]Term, len(terms))
	for i, t := range terms {
		clientTerms[i] = termFromAPI(t)
	}
	if m.reviews != nil {
		pending, err := m.reviews.Reviews(ctx, id)
		if err != nil {
			m.log.Warn("reading pending reviews failed", "session_id", id, "error", err)
		}
		byTerm := make(map[string]Review, len(pending))
		for _, r := range pending {
			byTerm[r.TermID] = r
		}
		for i := range clientTerms {
			if r, ok := byTerm[clientTerms[i].TermID]; ok {
				clientTerms[i].applyReview(r)
			}
		}
	}
	var history []HistoryEntry
	if m.journal != nil {
		var err error
		if history, err = m.journal.List(ctx, id); err != nil {
			m.log.Warn("reading decision history failed", "session_id", id, "error", err)
		}
	}

	m.update(func(st *State) {
		st.SessionID = id
		st.Details = details
		st.Terms = clientTerms
		if m.journal != nil {
			st.History = history
		}
	})

	if m.store != nil {
		if err := m.store.SetSessionID(ctx, id); err != nil {
			m.log.Warn("persisting session id failed", "error", err)
		}
	}
	m.log.Debug("session loaded", "session_id", id, "terms", len(clientTerms))
	return nil
}

// Refresh reloads the active session from the backend.
func (m *Manager) Refresh(ctx context.Context) error {
	sid, err := m.requireSession()
	if err != nil {
		return err
	}
	return m.Load(ctx, sid)
}

// Clear resets every field except the role and forgets the stored
// session id.
func (m *Manager) Clear(ctx context.Context) {
	var sid string
	m.update(func(st *State) {
		sid = st.SessionID
		*st = initialState(st.Role)
	})
	if m.journal != nil && sid != "" {
		if _, err := m.journal.DeleteSession(ctx, sid); err != nil {
			m.log.Warn("clearing decision history failed", "session_id", sid, "error", err)
		}
	}
	if m.reviews != nil && sid != "" {
		if _, err := m.reviews.DeleteReviews(ctx, sid); err != nil {
			m.log.Warn("clearing pending reviews failed", "session_id", sid, "error", err)
		}
	}
	if m.store != nil {
		if err := m.store.ClearSessionID(ctx); err != nil {
			m.log.Warn("clearing stored session id failed", "error", err)
		}
	}
}

// UpdateTerm applies fn to the clause with the given id. It reports
// whether the clause exists.
func (m *Manager) UpdateTerm(termID string, fn func(t *Term)) bool {
	found := false
	m.update(func(st *State) {
		for i := range st.Terms {
			if st.Terms[i].TermID == termID {
				fn(&st.Terms[i])
				found = true
				return
			}
		}
	})
	return found
}

// UpdatePreviewInfo caches a converted PDF preview on the session details.
func (m *Manager) UpdatePreviewInfo(kind api.PreviewKind, info *api.FileInfo) {
	m.update(func(st *State) {
		if st.Details == nil {
			return
		}
		if st.Details.PDFPreviewInfo == nil {
			st.Details.PDFPreviewInfo = &api.PDFPreviewInfo{}
		}
		st.Details.PDFPreviewInfo.Set(kind, info)
	})
}

// AddHistory appends an entry to the decision history, filling in the id
// and timestamp when they are empty.
func (m *Manager) AddHistory(ctx context.Context, e HistoryEntry) HistoryEntry {
	if e.ID == "" {
		e.ID = m.newID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = m.now().UTC()
	}
	var sid string
	m.update(func(st *State) {
		sid = st.SessionID
		st.History = append(st.History, e)
	})
	if m.journal != nil && sid != "" {
		if err := m.journal.Log(ctx, sid, e); err != nil {
			m.log.Warn("recording decision failed", "session_id", sid, "action", e.Action, "error", err)
		}
	}
	return e
}

// PreviewKey is the loading-flag key for a session preview.
func PreviewKey(sessionID string, kind api.PreviewKind) string {
	return sessionID + "-" + string(kind) + "-preview"
}

// SetPreviewLoading marks a preview key as loading or done.
func (m *Manager) SetPreviewLoading(key string, loading bool) {
	m.update(func(st *State) {
		if loading {
			st.Flags.PreviewLoading[key] = true
		} else {
			delete(st.Flags.PreviewLoading, key)
		}
	})
}

// SetRole switches the UI role and persists it.
func (m *Manager) SetRole(ctx context.Context, role Role) error {
	m.update(func(st *State) { st.Role = role })
	if m.store != nil {
		if err := m.store.SetRole(ctx, string(role)); err != nil {
			return fmt.Errorf("persisting role: %w", err)
		}
	}
	return nil
}

// ToggleRole flips between regular user and shariah expert.
func (m *Manager) ToggleRole(ctx context.Context) (Role, error) {
	next := RoleExpert
	if m.Role() == RoleExpert {
		next = RoleRegular
	}
	if err := m.SetRole(ctx, next); err != nil {
		return next, err
	}
	body := "toast.switchedRegular"
	if next == RoleExpert {
		body = "toast.switchedExpert"
	}
	m.success("toast.modeSwitched", body)
	return next, nil
}

// clone deep-copies s so callers can read it without the lock.
func (s State) clone() State {
	out := s
	if s.Terms != nil {
		out.Terms = make([]Term, len(s.Terms))
		for i, t := range s.Terms {
			out.Terms[i] = t.clone()
		}
	}
	if s.Details != nil {
		out.Details = cloneDetails(s.Details)
	}
	out.History = append([]HistoryEntry(nil), s.History...)
	out.Flags = s.Flags
	out.Flags.TermProcessing = cloneFlags(s.Flags.TermProcessing)
	out.Flags.Reviewing = cloneFlags(s.Flags.Reviewing)
	out.Flags.SubmittingFeedback = cloneFlags(s.Flags.SubmittingFeedback)
	out.Flags.PreviewLoading = cloneFlags(s.Flags.PreviewLoading)
	return out
}

func (t Term) clone() Term {
	out := t
	out.ExpertOverrideIsValidSharia = cloneBool(t.ExpertOverrideIsValidSharia)
	out.IsReviewedSuggestionValid = cloneBool(t.IsReviewedSuggestionValid)
	if t.QAMeta != nil {
		meta := *t.QAMeta
		out.QAMeta = &meta
	}
	return out
}

func cloneDetails(d *api.SessionDetails) *api.SessionDetails {
	out := *d
	out.OriginalCloudinaryInfo = cloneFile(d.OriginalCloudinaryInfo)
	out.AnalysisResultsCloudinaryInfo = cloneFile(d.AnalysisResultsCloudinaryInfo)
	out.ModifiedContractInfo = cloneGenerated(d.ModifiedContractInfo)
	out.MarkedContractInfo = cloneGenerated(d.MarkedContractInfo)
	if d.PDFPreviewInfo != nil {
		out.PDFPreviewInfo = &api.PDFPreviewInfo{
			Modified: cloneFile(d.PDFPreviewInfo.Modified),
			Marked:   cloneFile(d.PDFPreviewInfo.Marked),
		}
	}
	if d.ConfirmedTerms != nil {
		out.ConfirmedTerms = make(map[string]api.ConfirmedTerm, len(d.ConfirmedTerms))
		for k, v := range d.ConfirmedTerms {
			out.ConfirmedTerms[k] = v
		}
	}
	out.Interactions = append([]api.Interaction(nil), d.Interactions...)
	return &out
}

func cloneGenerated(g *api.GeneratedContractInfo) *api.GeneratedContractInfo {
	if g == nil {
		return nil
	}
	out := *g
	out.DocxCloudinaryInfo = cloneFile(g.DocxCloudinaryInfo)
	out.TxtCloudinaryInfo = cloneFile(g.TxtCloudinaryInfo)
	return &out
}

func cloneFile(f *api.FileInfo) *api.FileInfo {
	if f == nil {
		return nil
	}
	out := *f
	return &out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func cloneFlags(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
