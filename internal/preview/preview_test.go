package preview

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/session"
)

type backend struct {
	previewCalls atomic.Int32
	previewBody  map[string]any
	previewCode  int
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasPrefix(r.URL.Path, "/session/"):
		json.NewEncoder(w).Encode(map[string]any{
			"session_id":        "s9",
			"original_filename": "murabaha.docx",
			"marked_contract_info": map[string]any{
				"docx_cloudinary_info": map[string]any{"url": "http://" + r.Host + "/files/marked.docx", "user_facing_filename": "marked_murabaha.docx"},
			},
		})
	case strings.HasPrefix(r.URL.Path, "/terms/"):
		json.NewEncoder(w).Encode([]map[string]any{{"term_id": "t1", "term_text": "x"}})
	case strings.HasPrefix(r.URL.Path, "/preview_contract/"):
		b.previewCalls.Add(1)
		if b.previewCode != 0 {
			w.WriteHeader(b.previewCode)
		}
		json.NewEncoder(w).Encode(b.previewBody)
	case strings.HasPrefix(r.URL.Path, "/files/"):
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("DOCX-BYTES"))
	default:
		http.NotFound(w, r)
	}
}

func setup(t *testing.T, b *backend) (*Resolver, *session.Manager, *session.Queue) {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	client := api.New(srv.URL)
	q := session.NewQueue(0)
	mgr := session.New(client)
	if err := mgr.Load(t.Context(), "s9"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return NewResolver(mgr, client, q, nil), mgr, q
}

func TestResolveFetchesThenCaches(t *testing.T) {
	b := &backend{previewBody: map[string]any{"pdf_url": "https://cdn/modified.pdf"}}
	r, mgr, _ := setup(t, b)

	p, err := r.Resolve(t.Context(), api.PreviewModified)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.PDFURL != "https://cdn/modified.pdf" || p.Cached {
		t.Errorf("preview = %+v", p)
	}
	if p.PDFFilename != "Modified_murabaha.pdf" || p.DocxFilename != "Modified_murabaha.docx" {
		t.Errorf("filenames = %q, %q", p.PDFFilename, p.DocxFilename)
	}

	cached := mgr.Snapshot().Details.PDFPreviewInfo.Get(api.PreviewModified)
	if cached == nil || cached.URL != p.PDFURL {
		t.Fatalf("preview not cached on session: %+v", cached)
	}

	again, err := r.Resolve(t.Context(), api.PreviewModified)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if !again.Cached {
		t.Error("second resolve did not use cache")
	}
	if n := b.previewCalls.Load(); n != 1 {
		t.Errorf("preview calls = %d, want 1", n)
	}
	if len(mgr.Snapshot().Flags.PreviewLoading) != 0 {
		t.Error("loading flag left set")
	}
}

func TestResolveUsesGeneratedDocx(t *testing.T) {
	b := &backend{previewBody: map[string]any{"pdf_url": "https://cdn/marked.pdf"}}
	r, _, _ := setup(t, b)

	p, err := r.Resolve(t.Context(), api.PreviewMarked)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.DocxFilename != "marked_murabaha.docx" || !strings.HasSuffix(p.DocxURL, "/files/marked.docx") {
		t.Errorf("docx = %q %q", p.DocxURL, p.DocxFilename)
	}
	if p.PDFFilename != "Marked_murabaha.pdf" {
		t.Errorf("pdf name = %q", p.PDFFilename)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		b    *backend
		want error
	}{
		{"missing url", &backend{previewBody: map[string]any{}}, ErrNoFileURL},
		{"error field", &backend{previewBody: map[string]any{"error": "conversion failed"}}, ErrFetch},
		{"http error", &backend{previewCode: 500, previewBody: map[string]any{"error": "boom"}}, ErrFetch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mgr, q := setup(t, tt.b)
			_, err := r.Resolve(t.Context(), api.PreviewModified)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if mgr.Snapshot().Details.PDFPreviewInfo.Get(api.PreviewModified) != nil {
				t.Error("failed preview was cached")
			}
			toasts := q.Drain()
			if len(toasts) != 1 || toasts[0].Title != "toast.previewError" {
				t.Errorf("toasts = %+v", toasts)
			}
		})
	}
}

func TestResolveWithoutSession(t *testing.T) {
	r := NewResolver(session.New(api.New("http://127.0.0.1:1")), api.New("http://127.0.0.1:1"), nil, nil)
	if _, err := r.Resolve(t.Context(), api.PreviewMarked); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestSaveDocx(t *testing.T) {
	b := &backend{previewBody: map[string]any{"pdf_url": "https://cdn/marked.pdf"}}
	r, _, _ := setup(t, b)

	p, err := r.Resolve(t.Context(), api.PreviewMarked)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	dir := t.TempDir()
	path, err := r.Save(t.Context(), p, FormatDocx, dir)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(dir, "marked_murabaha.docx") {
		t.Errorf("path = %q", path)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "DOCX-BYTES" {
		t.Errorf("content = %q", data)
	}
}

func TestSaveNotGenerated(t *testing.T) {
	r := NewResolver(session.New(nil), nil, nil, nil)
	_, err := r.Save(t.Context(), &Preview{Kind: api.PreviewModified}, FormatDocx, t.TempDir())
	if !errors.Is(err, ErrNotGenerated) {
		t.Errorf("err = %v, want ErrNotGenerated", err)
	}
}
