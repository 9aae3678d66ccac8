package dashboard

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/db"
	"github.com/ziadkadry99/sharai/internal/i18n"
	"github.com/ziadkadry99/sharai/internal/prefs"
	"github.com/ziadkadry99/sharai/internal/preview"
	"github.com/ziadkadry99/sharai/internal/progress"
	"github.com/ziadkadry99/sharai/internal/session"
	"github.com/ziadkadry99/sharai/internal/upload"
)

const pdfBytes = "%PDF-1.7\n1 0 obj\n<<>>\nendobj\n"

// fakeBackend answers the analysis service endpoints the dashboard uses.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int
	terms []map[string]any
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: map[string]int{},
		terms: []map[string]any{
			{"term_id": "t1", "term_text": "Interest of 5% accrues monthly.", "is_valid_sharia": false, "compliance_status": "non_compliant", "sharia_issue": "Riba", "modified_term": "A fixed service fee applies."},
			{"term_id": "t2", "term_text": "Delivery within 30 days.", "is_valid_sharia": true, "compliance_status": "compliant"},
			{"term_id": "t3", "term_text": "Late penalty at lender discretion.", "is_valid_sharia": false, "compliance_status": "warning"},
		},
	}
}

func (f *fakeBackend) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	switch {
	case strings.HasPrefix(r.URL.Path, "/session/"):
		key = r.Method + " /session"
	case strings.HasPrefix(r.URL.Path, "/terms/"):
		key = r.Method + " /terms"
	case strings.HasPrefix(r.URL.Path, "/preview_contract/"):
		key = r.Method + " /preview_contract"
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++

	switch key {
	case "POST /analyze":
		writeJSON(w, http.StatusOK, map[string]any{"session_id": "s1", "message": "Contract analyzed", "analysis_results": f.terms})
	case "GET /session":
		writeJSON(w, http.StatusOK, map[string]any{"session_id": "s1", "original_filename": "lease.pdf"})
	case "GET /terms":
		writeJSON(w, http.StatusOK, f.terms)
	case "POST /interact":
		var body api.AskRequest
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{"response": "answer to " + body.Question})
	case "POST /confirm_modification":
		var body api.ConfirmRequest
		json.NewDecoder(r.Body).Decode(&body)
		for _, t := range f.terms {
			if t["term_id"] == body.TermID {
				t["is_confirmed_by_user"] = true
				t["confirmed_modified_text"] = body.ModifiedText
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case "POST /generate_modified_contract":
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "modified_docx_cloudinary_url": "https://files.example/mod.docx"})
	case "GET /preview_contract":
		writeJSON(w, http.StatusOK, map[string]any{"pdf_url": "https://files.example/mod.pdf"})
	case "POST /feedback/expert":
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "feedback_id": "fb-1"})
	default:
		http.NotFound(w, r)
	}
}

type fixture struct {
	d       *Dashboard
	router  chi.Router
	mgr     *session.Manager
	backend *fakeBackend
}

func setupTest(t *testing.T) *fixture {
	t.Helper()

	fb := newFakeBackend()
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	store := prefs.NewStore(database)

	client := api.New(srv.URL)
	toasts := session.NewQueue(0)
	mgr := session.New(client, session.WithPersistence(store), session.WithNotifier(toasts))

	d := New(Deps{
		Sessions: mgr,
		Previews: preview.NewResolver(mgr, client, toasts, nil),
		Prefs:    store,
		Toasts:   toasts,
	})
	d.analysisHold = 0

	r := chi.NewRouter()
	d.RegisterRoutes(r)
	return &fixture{d: d, router: r, mgr: mgr, backend: fb}
}

func (f *fixture) post(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) page(t *testing.T, target string) string {
	t.Helper()
	w := f.get(t, target)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d", target, w.Code)
	}
	return w.Body.String()
}

// analyze loads the fake session directly through the manager.
func (f *fixture) analyze(t *testing.T) {
	t.Helper()
	file, err := upload.FromBytes("lease.pdf", []byte(pdfBytes))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if _, err := f.mgr.UploadAndAnalyze(t.Context(), file); err != nil {
		t.Fatalf("UploadAndAnalyze: %v", err)
	}
}

func multipartUpload(t *testing.T, name string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestIndexWithoutSession(t *testing.T) {
	f := setupTest(t)
	body := f.page(t, "/")

	if !strings.Contains(body, "Please upload a contract to begin analysis.") {
		t.Error("expected the no-session message")
	}
	if !strings.Contains(body, `dir="ltr"`) {
		t.Error("expected left-to-right layout")
	}
	if !strings.Contains(body, "No history yet") {
		t.Error("expected empty history")
	}
}

func TestLanguageFromAcceptLanguage(t *testing.T) {
	f := setupTest(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ar-EG,ar;q=0.9,en;q=0.5")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `dir="rtl"`) {
		t.Error("expected right-to-left layout for an Arabic browser")
	}
}

func TestLanguagePreference(t *testing.T) {
	f := setupTest(t)

	w := f.post(t, "/prefs/language", url.Values{"lang": {"ar"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	body := f.page(t, "/")
	if !strings.Contains(body, `lang="ar"`) || !strings.Contains(body, `dir="rtl"`) {
		t.Error("expected stored Arabic preference to win")
	}

	w = f.post(t, "/prefs/language", url.Values{"lang": {"fr"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unsupported language: expected 400, got %d", w.Code)
	}
}

func TestUploadThenAnalyze(t *testing.T) {
	f := setupTest(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, multipartUpload(t, "lease.pdf", []byte(pdfBytes)))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("upload: expected 303, got %d", w.Code)
	}
	body := f.page(t, "/")
	if !strings.Contains(body, "lease.pdf: File selected and ready for analysis") {
		t.Fatal("expected pending file on the page")
	}
	if f.backend.count("POST /analyze") != 0 {
		t.Error("upload alone must not call the backend")
	}

	w = f.post(t, "/analyze", nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("analyze: expected 303, got %d", w.Code)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !f.mgr.Snapshot().HasSession() {
		if time.Now().After(deadline) {
			t.Fatal("analysis did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}

	body = f.page(t, "/")
	if !strings.Contains(body, "Not Shariah Compliant") {
		t.Error("expected the non-compliant banner")
	}
	if !strings.Contains(body, "1 compliant, 1 warnings, 1 non-compliant of 3 terms") {
		t.Error("expected the stats summary")
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	f := setupTest(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, multipartUpload(t, "scan.png", png))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}

	body := f.page(t, "/")
	if !strings.Contains(body, "Invalid File Type") {
		t.Error("expected file type toast")
	}
	if strings.Contains(body, "File selected") {
		t.Error("rejected file must not become pending")
	}
}

func TestAnalyzeWithoutPendingFile(t *testing.T) {
	f := setupTest(t)
	f.post(t, "/analyze", nil)

	if f.backend.count("POST /analyze") != 0 {
		t.Error("expected no backend call")
	}
	if !strings.Contains(f.page(t, "/"), "select a contract file first") {
		t.Error("expected a toast asking for a file")
	}
}

func TestFilterTabs(t *testing.T) {
	f := setupTest(t)
	f.analyze(t)

	body := f.page(t, "/?filter=warning")
	if !strings.Contains(body, "Late penalty at lender discretion.") {
		t.Error("expected the warning term")
	}
	if strings.Contains(body, "Delivery within 30 days.") {
		t.Error("compliant term should be filtered out")
	}
	if !strings.Contains(body, `class="active">Warnings (1)`) {
		t.Error("expected the active warnings tab with its count")
	}
}

func TestToggleExpandsTerm(t *testing.T) {
	f := setupTest(t)
	f.analyze(t)

	if strings.Contains(f.page(t, "/"), "WHY NON-COMPLIANT") {
		t.Fatal("terms should start collapsed")
	}

	w := f.post(t, "/terms/t1/toggle", nil)
	if got := w.Header().Get("Location"); got != "/#term-t1" {
		t.Errorf("Location = %q, want /#term-t1", got)
	}
	body := f.page(t, "/")
	if !strings.Contains(body, "WHY NON-COMPLIANT") || !strings.Contains(body, "Riba") {
		t.Error("expected the expanded term details")
	}
}

func TestAskRendersMarkdownAnswer(t *testing.T) {
	f := setupTest(t)
	f.analyze(t)

	f.post(t, "/terms/t1/ask", url.Values{"question": {"is **this** ok"}})

	body := f.page(t, "/")
	if !strings.Contains(body, "answer to is <strong>this</strong> ok") {
		t.Error("expected the answer rendered as markdown")
	}
	if !strings.Contains(body, "Use Answer &amp; AI Review") {
		t.Error("expected the use-answer action")
	}
}

func TestEmptyQuestionShowsToast(t *testing.T) {
	f := setupTest(t)
	f.analyze(t)
	f.page(t, "/")

	f.post(t, "/question", url.Values{"question": {"   "}})
	if !strings.Contains(f.page(t, "/"), session.ErrEmptyText.Error()) {
		t.Error("expected an empty text toast")
	}
}

func TestGeneralQuestion(t *testing.T) {
	f := setupTest(t)
	f.analyze(t)

	w := f.post(t, "/question", url.Values{"question": {"Is the contract valid?"}})
	if got := w.Header().Get("Location"); got != "/#question" {
		t.Errorf("Location = %q, want /#question", got)
	}
	if !strings.Contains(f.page(t, "/"), "answer to Is the contract valid?") {
		t.Error("expected the general answer")
	}
}

func TestConfirmKeepsFilter(t *testing.T) {
	f := setupTest(t)
	f.analyze(t)

	w := f.post(t, "/terms/t1/confirm", url.Values{"filter": {"non-compliant"}})
	if got := w.Header().Get("Location"); got != "/?filter=non-compliant#term-t1" {
		t.Errorf("Location = %q", got)
	}

	w = f.get(t, "/api/history")
	var history []session.HistoryEntry
	if err := json.NewDecoder(w.Body).Decode(&history); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	if len(history) != 1 || history[0].Action != session.ActionConfirmation {
		t.Fatalf("history = %+v, want one confirmation", history)
	}

	term, _ := f.mgr.Snapshot().Term("t1")
	if !term.IsUserConfirmed || term.UserModifiedText != "A fixed service fee applies." {
		t.Errorf("term not confirmed with its suggestion: %+v", term)
	}
}

func TestFeedbackRequiresExpertRole(t *testing.T) {
	f := setupTest(t)
	f.analyze(t)
	form := url.Values{"approved": {"no"}, "valid": {"compliant"}, "comment": {"Fee is acceptable"}}

	w := f.post(t, "/terms/t1/feedback", form)
	if w.Code != http.StatusForbidden {
		t.Fatalf("regular role: expected 403, got %d", w.Code)
	}
	if f.backend.count("POST /feedback/expert") != 0 {
		t.Fatal("feedback must not reach the backend")
	}
	f.post(t, "/terms/t1/toggle", nil)
	if strings.Contains(f.page(t, "/"), "Provide Expert Feedback") {
		t.Error("feedback form should be hidden for regular users")
	}

	f.post(t, "/prefs/role", url.Values{"role": {"shariah_expert"}})
	f.post(t, "/terms/t1/feedback", form)
	if f.backend.count("POST /feedback/expert") != 1 {
		t.Fatal("expected the feedback to be submitted")
	}

	term, _ := f.mgr.Snapshot().Term("t1")
	if term.ExpertOverrideIsValidSharia == nil || !*term.ExpertOverrideIsValidSharia {
		t.Errorf("expected the expert override to be compliant: %+v", term.ExpertOverrideIsValidSharia)
	}
	body := f.page(t, "/")
	if !strings.Contains(body, "Provide Expert Feedback") {
		t.Error("expected the feedback form for experts")
	}
	if !strings.Contains(body, "Expert · Expert feedback") {
		t.Error("expected the expert history line")
	}
}

func TestGenerateAndPreview(t *testing.T) {
	f := setupTest(t)
	f.analyze(t)

	w := f.post(t, "/generate/modified", nil)
	if got := w.Header().Get("Location"); got != "/#generate" {
		t.Errorf("Location = %q, want /#generate", got)
	}
	body := f.page(t, "/")
	if !strings.Contains(body, "https://files.example/mod.docx") {
		t.Error("expected the generated docx link")
	}

	body = f.page(t, "/preview/modified")
	if !strings.Contains(body, "https://files.example/mod.pdf") {
		t.Error("expected the PDF link")
	}
	if !strings.Contains(body, `download="Modified_lease.pdf"`) {
		t.Error("expected the default PDF filename")
	}

	f.page(t, "/preview/modified")
	if n := f.backend.count("GET /preview_contract"); n != 1 {
		t.Errorf("preview requests = %d, want 1 (cached)", n)
	}
}

func TestPreviewWithoutSession(t *testing.T) {
	f := setupTest(t)
	body := f.page(t, "/preview/marked")
	if !strings.Contains(body, "Please upload a contract to begin analysis.") {
		t.Error("expected the no-session error")
	}
	if !strings.Contains(body, `href="/preview/marked"`) {
		t.Error("expected a retry link")
	}
}

func TestNotFound(t *testing.T) {
	f := setupTest(t)

	for _, target := range []string{"/nope", "/preview/bogus"} {
		w := f.get(t, target)
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s: expected 404, got %d", target, w.Code)
		}
		if !strings.Contains(w.Body.String(), "Return to Home") {
			t.Errorf("GET %s: expected the not found page", target)
		}
	}
}

func TestThemeAndRoleToggles(t *testing.T) {
	f := setupTest(t)

	f.post(t, "/prefs/theme", nil)
	f.post(t, "/prefs/role", nil)

	body := f.page(t, "/")
	if !strings.Contains(body, `data-theme="dark"`) {
		t.Error("expected dark theme")
	}
	if !strings.Contains(body, "Expert Mode") {
		t.Error("expected expert mode label")
	}
	if !strings.Contains(body, "Mode Switched") {
		t.Error("expected the mode switch toast")
	}
	if f.mgr.Role() != session.RoleExpert {
		t.Errorf("role = %q, want %q", f.mgr.Role(), session.RoleExpert)
	}
}

func TestPrefsWithoutStore(t *testing.T) {
	toasts := session.NewQueue(0)
	d := New(Deps{Sessions: session.New(api.New("http://127.0.0.1:1")), Toasts: toasts})
	r := chi.NewRouter()
	d.RegisterRoutes(r)

	for _, form := range []struct {
		target string
		values url.Values
	}{
		{"/prefs/theme", nil},
		{"/prefs/theme", url.Values{"theme": {"dark"}}},
		{"/prefs/language", url.Values{"lang": {"ar"}}},
	} {
		req := httptest.NewRequest(http.MethodPost, form.target, strings.NewReader(form.values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusSeeOther {
			t.Errorf("POST %s: expected 303, got %d", form.target, w.Code)
		}
	}
	got := toasts.Drain()
	if len(got) != 3 {
		t.Fatalf("toasts = %d, want 3", len(got))
	}
	for _, toast := range got {
		if toast.Variant != session.ToastDestructive || toast.Message != errNoPrefs.Error() {
			t.Errorf("toast = %+v", toast)
		}
	}
}

func TestStatsEndpoint(t *testing.T) {
	f := setupTest(t)

	if w := f.get(t, "/api/stats"); w.Code != http.StatusNotFound {
		t.Errorf("no session: expected 404, got %d", w.Code)
	}

	f.analyze(t)
	w := f.get(t, "/api/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var stats statsResponse
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if stats.Total != 3 || stats.Compliant != 1 || stats.NonCompliant != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Rounded != 33 {
		t.Errorf("rounded = %d, want 33", stats.Rounded)
	}
	if stats.Headline != "non" || stats.Tone != "bad" {
		t.Errorf("headline/tone = %s/%s, want non/bad", stats.Headline, stats.Tone)
	}
}

func TestLoginIsDecorative(t *testing.T) {
	f := setupTest(t)
	if !strings.Contains(f.page(t, "/login"), "Sign in to your account") {
		t.Error("expected the login form")
	}

	w := f.post(t, "/login", url.Values{"email": {"a@b.c"}, "password": {"x"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if !strings.Contains(f.page(t, "/"), "Signed in") {
		t.Error("expected the sign in toast")
	}
}

func TestClearSession(t *testing.T) {
	f := setupTest(t)
	f.analyze(t)

	f.post(t, "/session/clear", nil)
	if f.mgr.Snapshot().HasSession() {
		t.Error("expected the session to be cleared")
	}
	if !strings.Contains(f.page(t, "/"), "Please upload a contract to begin analysis.") {
		t.Error("expected the no-session message")
	}
}

func TestProgressWebSocket(t *testing.T) {
	f := setupTest(t)
	server := httptest.NewServer(f.router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/progress"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		f.d.hub.mu.Lock()
		n := len(f.d.hub.clients)
		f.d.hub.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	f.d.hub.broadcast(progressMessage{Kind: kindAnalysis, Label: "Checking", Percent: 42})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg progressMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Kind != kindAnalysis || msg.Percent != 42 || msg.Label != "Checking" {
		t.Errorf("msg = %+v", msg)
	}
}

func TestFrameMessage(t *testing.T) {
	en := i18n.New(i18n.English)

	tests := []struct {
		name  string
		kind  string
		frame progress.Frame
		want  string
	}{
		{"analysis step", kindAnalysis, progress.Frame{Key: "analyze.step.extractText", Percent: 12.4}, "Extracting Text from Document..."},
		{"analysis done", kindAnalysis, progress.Frame{Percent: 100, Complete: true}, "Analysis Complete!"},
		{"generation stage", kindGeneration, progress.Frame{Key: "generate.stage2", Percent: 41.6}, "Applying Modifications (42%)"},
		{"hidden", kindGeneration, progress.Frame{Percent: 100, Complete: true, Hidden: true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := frameMessage(tt.kind, en, tt.frame)
			if got.Label != tt.want {
				t.Errorf("Label = %q, want %q", got.Label, tt.want)
			}
		})
	}
}
