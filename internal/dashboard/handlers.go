package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/compliance"
	"github.com/ziadkadry99/sharai/internal/i18n"
	"github.com/ziadkadry99/sharai/internal/prefs"
	"github.com/ziadkadry99/sharai/internal/preview"
	"github.com/ziadkadry99/sharai/internal/progress"
	"github.com/ziadkadry99/sharai/internal/session"
	"github.com/ziadkadry99/sharai/internal/upload"
)

// maxUploadBytes bounds a contract upload.
const maxUploadBytes = 32 << 20

func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := d.basePage(r)
	filter := compliance.ParseFilter(r.URL.Query().Get("filter"))
	p.Index = d.buildIndex(p.T, d.sessions.Snapshot(), filter)
	d.render(w, http.StatusOK, "index", p)
}

func (d *Dashboard) handleLogin(w http.ResponseWriter, r *http.Request) {
	d.render(w, http.StatusOK, "login", d.basePage(r))
}

// handleLoginSubmit accepts any credentials. The login page is
// decorative; there are no accounts.
func (d *Dashboard) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	d.toasts.Notify(session.Toast{Variant: session.ToastDefault, Title: "login.success", Body: "login.successMessage"})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (d *Dashboard) handleNotFound(w http.ResponseWriter, r *http.Request) {
	d.log.Warn("route not found", "path", r.URL.Path)
	d.render(w, http.StatusNotFound, "notfound", d.basePage(r))
}

func (d *Dashboard) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		d.toastError("error.fileType", err)
		redirectHome(w, r, "upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		d.toastError("toast.error", err)
		redirectHome(w, r, "upload")
		return
	}
	f, err := upload.FromBytes(header.Filename, data)
	if err != nil {
		d.toastError("error.fileType", err)
		redirectHome(w, r, "upload")
		return
	}

	d.sessions.Clear(r.Context())
	d.mu.Lock()
	d.pending = f
	d.general = nil
	d.expanded = map[string]bool{}
	d.mu.Unlock()

	d.log.Info("contract selected", "filename", f.Name, "mime", f.MIME, "bytes", f.Size())
	d.toasts.Notify(session.Toast{Variant: session.ToastDefault, Title: "upload.success", Body: "upload.successMessage"})
	redirectHome(w, r, "upload")
}

// handleAnalyze starts the analysis of the pending file in the
// background. Progress is streamed to /ws/progress.
func (d *Dashboard) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	f := d.pending
	if f == nil || d.analyzing {
		d.mu.Unlock()
		if f == nil {
			d.toastError("toast.error", errors.New("select a contract file first"))
		}
		redirectHome(w, r, "upload")
		return
	}
	d.pending = nil
	d.analyzing = true
	d.mu.Unlock()

	t := d.translator(r)
	ctx := context.WithoutCancel(r.Context())
	go func() {
		err := d.animate(ctx, kindAnalysis, progress.AnalysisPlan, d.analysisHold, t, func() error {
			_, err := d.sessions.UploadAndAnalyze(ctx, f)
			d.mu.Lock()
			d.analyzing = false
			d.mu.Unlock()
			return err
		})
		if err != nil {
			d.log.Warn("analysis failed", "filename", f.Name, "error", err)
		}
	}()
	redirectHome(w, r, "upload")
}

func (d *Dashboard) handleAsk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	question := r.FormValue("question")
	err := d.rotate(r.Context(), d.translator(r), func() error {
		_, err := d.sessions.AskAboutTerm(r.Context(), id, question)
		return err
	})
	d.report(err)
	d.expand(id)
	redirectHome(w, r, "term-"+id)
}

func (d *Dashboard) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d.report(d.sessions.EditSuggestion(r.Context(), id, r.FormValue("text")))
	d.expand(id)
	redirectHome(w, r, "term-"+id)
}

func (d *Dashboard) handleUseAnswer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d.report(d.sessions.UseAnswerAsSuggestion(r.Context(), id))
	d.expand(id)
	redirectHome(w, r, "term-"+id)
}

// handleConfirm confirms the submitted text, or the clause's current
// text when none is submitted.
func (d *Dashboard) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var err error
	if text := r.FormValue("text"); strings.TrimSpace(text) != "" {
		err = d.sessions.Confirm(r.Context(), id, text)
	} else {
		err = d.sessions.ConfirmCurrent(r.Context(), id)
	}
	d.report(err)
	redirectHome(w, r, "term-"+id)
}

func (d *Dashboard) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if d.sessions.Role() != session.RoleExpert {
		http.Error(w, session.ErrExpertOnly.Error(), http.StatusForbidden)
		return
	}
	id := chi.URLParam(r, "id")
	in := parseFeedback(r)
	if in.Approved != nil && *in.Approved && in.ExpertIsValidSharia == nil {
		if term, ok := d.sessions.Snapshot().Term(id); ok {
			in.ExpertIsValidSharia = session.FeedbackDraft(term).ExpertIsValidSharia
		}
	}
	_, err := d.sessions.SubmitExpertFeedback(r.Context(), id, in)
	d.report(err)
	d.expand(id)
	redirectHome(w, r, "term-"+id)
}

// parseFeedback reads the expert form. approved is yes|no and valid is
// the corrected status when the assessment is rejected.
func parseFeedback(r *http.Request) session.FeedbackInput {
	in := session.FeedbackInput{
		Comment:             strings.TrimSpace(r.FormValue("comment")),
		CorrectedIssue:      strings.TrimSpace(r.FormValue("issue")),
		CorrectedReference:  strings.TrimSpace(r.FormValue("reference")),
		CorrectedSuggestion: strings.TrimSpace(r.FormValue("suggestion")),
	}
	switch r.FormValue("approved") {
	case "yes":
		in.Approved = boolPtr(true)
	case "no":
		in.Approved = boolPtr(false)
	}
	if s, ok := compliance.ParseStatus(r.FormValue("valid")); ok {
		in.ExpertIsValidSharia = boolPtr(s == compliance.Compliant)
	}
	return in
}

func boolPtr(b bool) *bool { return &b }

func (d *Dashboard) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d.mu.Lock()
	d.expanded[id] = !d.expanded[id]
	d.mu.Unlock()
	redirectHome(w, r, "term-"+id)
}

func (d *Dashboard) expand(id string) {
	d.mu.Lock()
	d.expanded[id] = true
	d.mu.Unlock()
}

func (d *Dashboard) handleQuestion(w http.ResponseWriter, r *http.Request) {
	question := strings.TrimSpace(r.FormValue("question"))
	var answer string
	err := d.rotate(r.Context(), d.translator(r), func() error {
		var err error
		answer, err = d.sessions.AskGeneral(r.Context(), question)
		return err
	})
	if err == nil {
		d.mu.Lock()
		d.general = &generalAnswer{Question: question, Answer: answer}
		d.mu.Unlock()
	}
	d.report(err)
	redirectHome(w, r, "question")
}

func (d *Dashboard) handleGenerate(w http.ResponseWriter, r *http.Request) {
	kind := api.PreviewKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		d.handleNotFound(w, r)
		return
	}
	err := d.animate(r.Context(), kindGeneration, progress.GenerationPlan, 0, d.translator(r), func() error {
		_, err := d.sessions.Generate(r.Context(), kind)
		return err
	})
	if err != nil {
		d.log.Warn("generation failed", "kind", kind, "error", err)
	}
	redirectHome(w, r, "generate")
}

func (d *Dashboard) handlePreview(w http.ResponseWriter, r *http.Request) {
	kind := api.PreviewKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		d.handleNotFound(w, r)
		return
	}
	res, err := d.previews.Resolve(r.Context(), kind)

	p := d.basePage(r)
	v := &previewView{Kind: kind}
	if kind == api.PreviewMarked {
		v.Title = p.T.Tf("contract.preview.markedTitle")
		v.Preview = p.T.Tf("contract.previewDescription")
	} else {
		v.Title = p.T.Tf("contract.preview.modifiedTitle")
		v.Preview = p.T.Tf("contract.previewModifiedDescription")
	}
	switch {
	case errors.Is(err, session.ErrNoSession):
		v.Error = p.T.Tf("term.noSession")
	case errors.Is(err, preview.ErrNoFileURL):
		v.NoFile = true
		v.Error = p.T.Tf("contract.preview.noFileUrlDesc")
	case err != nil:
		v.Error = err.Error()
	default:
		v.PDFURL, v.PDFName = res.PDFURL, res.PDFFilename
		v.DocxURL, v.DocxName = res.DocxURL, res.DocxFilename
	}
	p.Preview = v
	d.render(w, http.StatusOK, "preview", p)
}

func (d *Dashboard) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := d.sessions.Refresh(r.Context()); err == nil {
		d.toasts.Notify(session.Toast{Variant: session.ToastDefault, Title: "term.refreshed"})
	}
	redirectHome(w, r, "")
}

func (d *Dashboard) handleClear(w http.ResponseWriter, r *http.Request) {
	d.sessions.Clear(r.Context())
	d.mu.Lock()
	d.pending = nil
	d.general = nil
	d.expanded = map[string]bool{}
	d.mu.Unlock()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRole sets the posted role, or toggles it when none is posted.
func (d *Dashboard) handleRole(w http.ResponseWriter, r *http.Request) {
	var err error
	if role := r.FormValue("role"); role != "" {
		err = d.sessions.SetRole(r.Context(), session.ParseRole(role))
	} else {
		_, err = d.sessions.ToggleRole(r.Context())
	}
	if err != nil {
		d.toastError("toast.error", err)
	}
	redirectHome(w, r, "")
}

var errNoPrefs = errors.New("preferences are not stored by this dashboard")

func (d *Dashboard) handleLanguage(w http.ResponseWriter, r *http.Request) {
	lang, ok := i18n.Parse(r.FormValue("lang"))
	if !ok {
		http.Error(w, "unsupported language", http.StatusBadRequest)
		return
	}
	if d.prefs == nil {
		d.toastError("toast.error", errNoPrefs)
		redirectHome(w, r, "")
		return
	}
	if err := d.prefs.SetLanguage(r.Context(), string(lang)); err != nil {
		d.toastError("toast.error", err)
	}
	redirectHome(w, r, "")
}

// handleTheme sets the posted theme, or toggles it when none is posted.
func (d *Dashboard) handleTheme(w http.ResponseWriter, r *http.Request) {
	if d.prefs == nil {
		d.toastError("toast.error", errNoPrefs)
		redirectHome(w, r, "")
		return
	}
	var err error
	switch theme := prefs.Theme(r.FormValue("theme")); theme {
	case prefs.ThemeLight, prefs.ThemeDark:
		err = d.prefs.SetTheme(r.Context(), theme)
	default:
		_, err = d.prefs.ToggleTheme(r.Context())
	}
	if err != nil {
		d.toastError("toast.error", err)
	}
	redirectHome(w, r, "")
}

// statsResponse is the JSON response for the stats endpoint.
type statsResponse struct {
	SessionID string `json:"session_id"`
	compliance.Stats
	Rounded  int                 `json:"rounded_percentage"`
	Headline compliance.Headline `json:"headline"`
	Tone     compliance.Tone     `json:"tone"`
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	st := d.sessions.Snapshot()
	stats := st.Stats()
	if stats == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": session.ErrNoSession.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		SessionID: st.SessionID,
		Stats:     *stats,
		Rounded:   stats.RoundedPercentage(),
		Headline:  compliance.HeadlineFor(stats.Percentage),
		Tone:      compliance.ToneFor(stats.Percentage),
	})
}

func (d *Dashboard) handleHistory(w http.ResponseWriter, r *http.Request) {
	history := d.sessions.Snapshot().History
	if history == nil {
		history = []session.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, history)
}

// report queues a toast for input errors the session manager returns
// without notifying.
func (d *Dashboard) report(err error) {
	if errors.Is(err, session.ErrEmptyText) || errors.Is(err, session.ErrNoAnswer) {
		d.toastError("toast.error", err)
	}
}

func (d *Dashboard) toastError(title string, err error) {
	d.toasts.Notify(session.Toast{Variant: session.ToastDestructive, Title: title, Message: err.Error()})
}

// redirectHome sends the browser back to the main page, keeping the
// active filter and scrolling to anchor.
func redirectHome(w http.ResponseWriter, r *http.Request, anchor string) {
	target := "/"
	if f := compliance.ParseFilter(r.FormValue("filter")); f != compliance.FilterAll {
		target += "?filter=" + url.QueryEscape(string(f))
	}
	if anchor != "" {
		target += "#" + anchor
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
