package dashboard

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/compliance"
	"github.com/ziadkadry99/sharai/internal/i18n"
	"github.com/ziadkadry99/sharai/internal/prefs"
	"github.com/ziadkadry99/sharai/internal/session"
)

// pageData is shared by every page layout.
type pageData struct {
	T        *i18n.Translator
	Theme    prefs.Theme
	Role     session.Role
	IsExpert bool
	Toasts   []toastView

	Index   *indexView
	Preview *previewView
}

type toastView struct {
	Destructive bool
	Title       string
	Body        string
}

type filterTab struct {
	Filter compliance.Filter
	Label  string
	Count  int
	Active bool
}

type termView struct {
	session.Term
	Status      compliance.Status
	StatusLabel string
	Expanded    bool
	Busy        bool
	Current     string
	EditStart   string
	Draft       session.FeedbackInput
	DraftValid  bool
}

type historyView struct {
	session.HistoryEntry
	Line string
}

type indexView struct {
	HasSession    bool
	Filename      string
	Pending       string
	Analyzing     bool
	UploadError   string
	AnalysisError string
	Flags         session.Flags

	Stats      *compliance.Stats
	Headline   compliance.Headline
	Tone       compliance.Tone
	Percentage int

	Filter  compliance.Filter
	Tabs    []filterTab
	Terms   []termView
	History []historyView
	General *generalAnswer

	ContractMarkdown string
	Modified         *api.GeneratedContractInfo
	Marked           *api.GeneratedContractInfo
}

type previewView struct {
	Kind     api.PreviewKind
	Title    string
	Preview  string
	PDFURL   string
	PDFName  string
	DocxURL  string
	DocxName string
	Error    string
	NoFile   bool
}

// basePage drains pending toasts into a page for r.
func (d *Dashboard) basePage(r *http.Request) *pageData {
	t := d.translator(r)
	role := session.RoleRegular
	if d.sessions != nil {
		role = d.sessions.Role()
	}
	p := &pageData{
		T:        t,
		Theme:    d.theme(r),
		Role:     role,
		IsExpert: role == session.RoleExpert,
	}
	for _, toast := range d.toasts.Drain() {
		p.Toasts = append(p.Toasts, toastText(t, toast))
	}
	return p
}

func toastText(t *i18n.Translator, toast session.Toast) toastView {
	v := toastView{
		Destructive: toast.Variant == session.ToastDestructive,
		Title:       t.Tf(toast.Title),
	}
	switch {
	case toast.Message != "":
		v.Body = toast.Message
	case toast.Body != "":
		v.Body = t.Tf(toast.Body)
	}
	return v
}

// statusKey maps a status onto its label key.
func statusKey(s compliance.Status) string {
	if s == compliance.NonCompliant {
		return "term.non-compliant"
	}
	return "term." + string(s)
}

var (
	actionKeys = map[session.HistoryAction]string{
		session.ActionUserEdit:       "history.userEdit",
		session.ActionAIReview:       "history.aiReview",
		session.ActionExpertFeedback: "history.expertFeedback",
		session.ActionConfirmation:   "history.confirmation",
	}
	actorKeys = map[session.Actor]string{
		session.ActorUser:   "history.user",
		session.ActorAI:     "history.ai",
		session.ActorExpert: "history.expert",
	}
)

// buildIndex assembles the main page from a session snapshot.
func (d *Dashboard) buildIndex(t *i18n.Translator, st session.State, filter compliance.Filter) *indexView {
	d.mu.Lock()
	v := &indexView{
		HasSession:    st.HasSession(),
		Analyzing:     d.analyzing,
		UploadError:   st.UploadError,
		AnalysisError: st.AnalysisError,
		Flags:         st.Flags,
		Filter:        filter,
		General:       d.general,
	}
	if d.pending != nil {
		v.Pending = d.pending.Name
	}
	expanded := make(map[string]bool, len(d.expanded))
	for k, ok := range d.expanded {
		expanded[k] = ok
	}
	d.mu.Unlock()

	if st.Details != nil {
		v.Filename = st.Details.OriginalFilename
		v.ContractMarkdown = st.Details.OriginalContractMarkdown
		v.Modified = st.Details.ModifiedContractInfo
		v.Marked = st.Details.MarkedContractInfo
	}

	if stats := st.Stats(); stats != nil {
		v.Stats = stats
		v.Headline = compliance.HeadlineFor(stats.Percentage)
		v.Tone = compliance.ToneFor(stats.Percentage)
		v.Percentage = stats.RoundedPercentage()
		counts := map[compliance.Filter]int{
			compliance.FilterAll:          stats.Total,
			compliance.FilterCompliant:    stats.Compliant,
			compliance.FilterWarning:      stats.Warning,
			compliance.FilterNonCompliant: stats.NonCompliant,
		}
		for _, f := range compliance.Filters {
			v.Tabs = append(v.Tabs, filterTab{
				Filter: f,
				Label:  t.Tf("filter." + string(f)),
				Count:  counts[f],
				Active: f == filter,
			})
		}
	}

	for _, term := range st.Filtered(filter) {
		status := term.EffectiveStatus()
		draft := session.FeedbackDraft(term)
		v.Terms = append(v.Terms, termView{
			Term:        term,
			Status:      status,
			StatusLabel: t.Tf(statusKey(status)),
			Expanded:    expanded[term.TermID],
			Busy:        st.Flags.Busy(term.TermID),
			Current:     term.CurrentText(),
			EditStart:   session.EditStartText(term),
			Draft:       draft,
			DraftValid:  draft.ExpertIsValidSharia != nil && *draft.ExpertIsValidSharia,
		})
	}

	for i := len(st.History) - 1; i >= 0; i-- {
		e := st.History[i]
		v.History = append(v.History, historyView{
			HistoryEntry: e,
			Line: t.Tf("history.at",
				"actor", t.Tf(actorKeys[e.Actor]),
				"action", t.Tf(actionKeys[e.Action]),
				"time", e.Timestamp.Local().Format("2006-01-02 15:04"),
			),
		})
	}
	return v
}

// render executes page into a buffer so template errors never leave a
// half-written response.
func (d *Dashboard) render(w http.ResponseWriter, status int, page string, data *pageData) {
	var buf bytes.Buffer
	if err := d.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		d.log.Error("rendering page", "page", page, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderMarkdown converts backend markdown to HTML. Raw HTML in the
// source is dropped by the renderer.
func (d *Dashboard) renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := d.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
