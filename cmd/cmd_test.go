package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/i18n"
	"github.com/ziadkadry99/sharai/internal/session"
)

// confirmLog records the wording sent with each confirmation.
type confirmLog struct {
	mu    sync.Mutex
	texts []string
}

func (l *confirmLog) last() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.texts) == 0 {
		return ""
	}
	return l.texts[len(l.texts)-1]
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	return recordingBackend(t, &confirmLog{})
}

func recordingBackend(t *testing.T, confirmed *confirmLog) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	terms := []map[string]any{
		{"term_id": "t1", "term_text": "Interest of 5% accrues monthly.", "is_valid_sharia": false, "compliance_status": "non_compliant", "sharia_issue": "Riba", "modified_term": "A fixed service fee applies."},
		{"term_id": "t2", "term_text": "Delivery within 30 days.", "is_valid_sharia": true, "compliance_status": "compliant"},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, map[string]any{"session_id": "s1", "message": "Contract analyzed", "analysis_results": terms})
	})
	mux.HandleFunc("GET /session/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"session_id": r.PathValue("id"), "original_filename": "lease.txt"})
	})
	mux.HandleFunc("GET /terms/{id}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, terms)
	})
	mux.HandleFunc("POST /review_modification", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"reviewed_text":         "USER REVIEWED WORDING",
			"is_still_valid_sharia": true,
			"compliance_status":     "warning",
			"sharia_issue":          "Fee amount should be fixed in advance",
		})
	})
	mux.HandleFunc("POST /confirm_modification", func(w http.ResponseWriter, r *http.Request) {
		var body api.ConfirmRequest
		json.NewDecoder(r.Body).Decode(&body)
		confirmed.mu.Lock()
		confirmed.texts = append(confirmed.texts, body.ModifiedText)
		confirmed.mu.Unlock()
		mu.Lock()
		defer mu.Unlock()
		for _, t := range terms {
			if t["term_id"] == body.TermID {
				t["is_confirmed_by_user"] = true
				t["confirmed_modified_text"] = body.ModifiedText
				t["compliance_status"] = "compliant"
			}
		}
		writeJSON(w, map[string]any{"success": true})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// setupConfig writes a config pointing at backendURL with a fresh data
// directory and returns its path.
func setupConfig(t *testing.T, backendURL string) string {
	t.Helper()
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "en_US.UTF-8")
	dir := t.TempDir()
	path := filepath.Join(dir, ".sharai.yml")
	content := fmt.Sprintf("api_base_url: %s\ndata_dir: %s\n", backendURL, filepath.Join(dir, "data"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	// cobra keeps a subcommand's context from its first execution; hand
	// every command this test's context so earlier tests don't leak in.
	var setCtx func(c *cobra.Command)
	setCtx = func(c *cobra.Command) {
		c.SetContext(t.Context())
		for _, sub := range c.Commands() {
			setCtx(sub)
		}
	}
	setCtx(rootCmd)
	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestReviewFlow(t *testing.T) {
	backend := fakeBackend(t)
	cfg := setupConfig(t, backend.URL)

	contract := filepath.Join(t.TempDir(), "lease.txt")
	if err := os.WriteFile(contract, []byte("Interest of 5% accrues monthly.\nDelivery within 30 days.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfg, "analyze", contract)
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	for _, want := range []string{"Session: s1", "Partially Shariah Compliant", "50% compliant", "1 compliant, 0 warnings, 1 non-compliant of 2 terms"} {
		if !strings.Contains(out, want) {
			t.Errorf("analyze output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "--config", cfg, "terms", "--filter", "non-compliant")
	if err != nil {
		t.Fatalf("terms: %v", err)
	}
	if !strings.Contains(out, "[t1]") || strings.Contains(out, "[t2]") {
		t.Errorf("filtered terms = %q, want only t1", out)
	}
	if !strings.Contains(out, "A fixed service fee applies.") {
		t.Errorf("terms output missing suggestion:\n%s", out)
	}

	if out, err := execute(t, "--config", cfg, "confirm", "t1"); err != nil {
		t.Fatalf("confirm: %v\n%s", err, out)
	}

	out, err = execute(t, "--config", cfg, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "[t1]") || !strings.Contains(out, "User confirmed modification for t1") {
		t.Errorf("history = %q, want the t1 confirmation", out)
	}

	out, err = execute(t, "--config", cfg, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "Fully Shariah Compliant") || !strings.Contains(out, "100% compliant") {
		t.Errorf("stats after confirm = %q, want fully compliant", out)
	}

	if _, err := execute(t, "--config", cfg, "session", "clear"); err != nil {
		t.Fatalf("session clear: %v", err)
	}
	if _, err := execute(t, "--config", cfg, "stats"); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("stats after clear: err = %v, want ErrNoSession", err)
	}
	out, _ = execute(t, "--config", cfg, "history", "--all")
	if !strings.Contains(out, "No history yet") {
		t.Errorf("history after clear = %q, want none", out)
	}
}

func TestEditThenConfirmAcrossCommands(t *testing.T) {
	confirmed := &confirmLog{}
	backend := recordingBackend(t, confirmed)
	cfg := setupConfig(t, backend.URL)

	contract := filepath.Join(t.TempDir(), "lease.txt")
	if err := os.WriteFile(contract, []byte("Interest of 5% accrues monthly.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if out, err := execute(t, "--config", cfg, "analyze", contract); err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}

	if out, err := execute(t, "--config", cfg, "edit", "t1", "my words"); err != nil {
		t.Fatalf("edit: %v\n%s", err, out)
	}

	out, err := execute(t, "--config", cfg, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "1 compliant, 1 warnings, 0 non-compliant of 2 terms") {
		t.Errorf("stats after edit = %q, want the reviewed warning counted", out)
	}

	out, err = execute(t, "--config", cfg, "terms", "t1")
	if err != nil {
		t.Fatalf("terms: %v", err)
	}
	if !strings.Contains(out, "USER REVIEWED WORDING") {
		t.Errorf("term after edit = %q, want the reviewed wording", out)
	}

	if out, err := execute(t, "--config", cfg, "confirm", "t1"); err != nil {
		t.Fatalf("confirm: %v\n%s", err, out)
	}
	if got := confirmed.last(); got != "USER REVIEWED WORDING" {
		t.Errorf("confirmed text = %q, want the reviewed wording", got)
	}

	out, _ = execute(t, "--config", cfg, "stats")
	if !strings.Contains(out, "100% compliant") {
		t.Errorf("stats after confirm = %q, want 100%%", out)
	}
}

func TestAnalyzeRejectsUnsupportedFile(t *testing.T) {
	backend := fakeBackend(t)
	cfg := setupConfig(t, backend.URL)

	path := filepath.Join(t.TempDir(), "photo.png")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", cfg, "analyze", path); err == nil {
		t.Fatal("expected an error for a PNG upload")
	}
}

func TestRoleAndLanguage(t *testing.T) {
	cfg := setupConfig(t, "http://127.0.0.1:1")

	out, err := execute(t, "--config", cfg, "role")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, string(session.RoleRegular)) {
		t.Errorf("default role = %q, want regular_user", out)
	}

	if _, err := execute(t, "--config", cfg, "role", "expert"); err != nil {
		t.Fatal(err)
	}
	out, _ = execute(t, "--config", cfg, "role")
	if !strings.Contains(out, string(session.RoleExpert)) {
		t.Errorf("role after set = %q, want shariah_expert", out)
	}

	if _, err := execute(t, "--config", cfg, "lang", "fr"); err == nil {
		t.Error("expected an error for an unsupported language")
	}
	if _, err := execute(t, "--config", cfg, "lang", "ar"); err != nil {
		t.Fatal(err)
	}
	out, _ = execute(t, "--config", cfg, "lang")
	if !strings.Contains(out, "(ar)") {
		t.Errorf("lang after set = %q, want ar", out)
	}
}

func TestTheme(t *testing.T) {
	cfg := setupConfig(t, "http://127.0.0.1:1")

	out, err := execute(t, "--config", cfg, "theme")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "light" {
		t.Errorf("default theme = %q, want light", out)
	}
	out, _ = execute(t, "--config", cfg, "theme", "toggle")
	if strings.TrimSpace(out) != "dark" {
		t.Errorf("toggled theme = %q, want dark", out)
	}
}

func TestFeedbackFromFlags(t *testing.T) {
	valid := true
	draft := session.FeedbackInput{ExpertIsValidSharia: &valid, CorrectedIssue: "Riba"}

	tests := []struct {
		name      string
		args      []string
		wantErr   bool
		approved  *bool
		validNil  bool
		wantValid bool
		wantIssue string
	}{
		{name: "approve keeps draft", args: []string{"--approve"}, approved: boolPtr(true), wantValid: true, wantIssue: "Riba"},
		{name: "reject drops validity", args: []string{"--reject"}, approved: boolPtr(false), validNil: true, wantIssue: "Riba"},
		{name: "reject with status", args: []string{"--reject", "--status", "non-compliant", "--issue", "Gharar"}, approved: boolPtr(false), wantValid: false, wantIssue: "Gharar"},
		{name: "warning is not a judgment", args: []string{"--reject", "--status", "warning"}, wantErr: true},
		{name: "no judgment", args: nil, wantValid: true, wantIssue: "Riba"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &cobra.Command{Use: "feedback"}
			addFeedbackFlags(c)
			if err := c.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			in, err := feedbackFromFlags(c, draft)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if (in.Approved == nil) != (tt.approved == nil) || (in.Approved != nil && *in.Approved != *tt.approved) {
				t.Errorf("Approved = %v, want %v", in.Approved, tt.approved)
			}
			if tt.validNil {
				if in.ExpertIsValidSharia != nil {
					t.Errorf("ExpertIsValidSharia = %v, want nil", *in.ExpertIsValidSharia)
				}
			} else if in.ExpertIsValidSharia == nil || *in.ExpertIsValidSharia != tt.wantValid {
				t.Errorf("ExpertIsValidSharia = %v, want %v", in.ExpertIsValidSharia, tt.wantValid)
			}
			if in.CorrectedIssue != tt.wantIssue {
				t.Errorf("CorrectedIssue = %q, want %q", in.CorrectedIssue, tt.wantIssue)
			}
		})
	}
}

func TestFormatToast(t *testing.T) {
	tr := i18n.New(i18n.English)
	tests := []struct {
		toast session.Toast
		want  string
	}{
		{session.Toast{Title: "toast.termConfirmed", Body: "toast.termConfirmedBody"}, "✓ Changes Confirmed: The changes have been confirmed for this term"},
		{session.Toast{Title: "toast.analysisComplete", Message: "done"}, "✓ Analysis Complete: done"},
		{session.Toast{Title: "toast.modeSwitched"}, "✓ Mode Switched"},
	}
	for _, tt := range tests {
		if got := formatToast(tr, tt.toast); got != tt.want {
			t.Errorf("formatToast(%v) = %q, want %q", tt.toast, got, tt.want)
		}
	}
}

func TestToastPrinterSkipsFailures(t *testing.T) {
	var buf bytes.Buffer
	n := toastPrinter(&buf, i18n.New(i18n.English))
	n.Notify(session.Toast{Variant: session.ToastDestructive, Title: "toast.error", Message: "boom"})
	if buf.Len() != 0 {
		t.Errorf("destructive toast printed %q", buf.String())
	}
	n.Notify(session.Toast{Title: "toast.modeSwitched"})
	if !strings.Contains(buf.String(), "Mode Switched") {
		t.Errorf("success toast not printed: %q", buf.String())
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"modified", "marked"} {
		if _, err := parseKind(s); err != nil {
			t.Errorf("parseKind(%q) error: %v", s, err)
		}
	}
	if _, err := parseKind("draft"); err == nil {
		t.Error("parseKind(draft) should fail")
	}
}

func TestTermItemTruncates(t *testing.T) {
	a := &app{t: i18n.New(i18n.English)}
	term := session.Term{}
	term.TermID = "t9"
	term.TermText = strings.Repeat("word ", 40)
	term.ComplianceStatus = "warning"
	term.IsUserConfirmed = true

	got := termItem(a, term)
	if !strings.HasPrefix(got, "✓ [t9] Warning: ") {
		t.Errorf("termItem prefix = %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("termItem = %q, want truncated text", got)
	}
}
