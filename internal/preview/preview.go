// Package preview resolves PDF previews and downloadable files for the
// generated contracts of a session.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/logger"
	"github.com/ziadkadry99/sharai/internal/session"
)

var (
	// ErrNoFileURL means the backend answered without a PDF link.
	ErrNoFileURL = errors.New("PDF URL not found in server response")

	// ErrFetch wraps a failed preview request.
	ErrFetch = errors.New("could not load contract preview")

	// ErrNotGenerated means the requested contract has not been generated yet.
	ErrNotGenerated = errors.New("contract has not been generated yet")
)

// Backend fetches preview links and file contents.
type Backend interface {
	PreviewURL(ctx context.Context, sessionID string, kind api.PreviewKind) (*api.PreviewResponse, error)
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// Preview is everything a preview dialog shows for one contract kind.
type Preview struct {
	Kind         api.PreviewKind
	PDFURL       string
	PDFFilename  string
	DocxURL      string
	DocxFilename string

	// Cached is true when the link came from the session instead of a
	// fresh request.
	Cached bool
}

// Resolver finds previews, preferring links cached on the session.
type Resolver struct {
	sessions *session.Manager
	backend  Backend
	notify   session.Notifier
	log      *logger.Logger
}

// NewResolver creates a Resolver. notify and log may be nil.
func NewResolver(sessions *session.Manager, backend Backend, notify session.Notifier, log *logger.Logger) *Resolver {
	if notify == nil {
		notify = session.NotifierFunc(func(session.Toast) {})
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{sessions: sessions, backend: backend, notify: notify, log: log}
}

// Resolve returns the preview for kind. A cached PDF link on the session
// wins; otherwise the backend converts the contract and the link is
// cached for next time.
func (r *Resolver) Resolve(ctx context.Context, kind api.PreviewKind) (*Preview, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid preview kind %q", kind)
	}
	snap := r.sessions.Snapshot()
	if snap.SessionID == "" || snap.Details == nil {
		return nil, session.ErrNoSession
	}

	p := describe(snap.Details, kind)
	if cached := snap.Details.PDFPreviewInfo.Get(kind); cached != nil && cached.URL != "" {
		p.PDFURL = cached.URL
		p.Cached = true
		return p, nil
	}

	key := session.PreviewKey(snap.SessionID, kind)
	r.sessions.SetPreviewLoading(key, true)
	defer r.sessions.SetPreviewLoading(key, false)

	resp, err := r.backend.PreviewURL(ctx, snap.SessionID, kind)
	switch {
	case err != nil:
		err = fmt.Errorf("%w: %w", ErrFetch, err)
	case resp.Error != "":
		err = fmt.Errorf("%w: %s", ErrFetch, resp.Error)
	case resp.PDFURL == "":
		err = ErrNoFileURL
	}
	if err != nil {
		r.log.Warn("preview failed", "session_id", snap.SessionID, "kind", kind, "error", err)
		r.notify.Notify(session.Toast{Variant: session.ToastDestructive, Title: "toast.previewError", Message: err.Error()})
		return nil, err
	}

	p.PDFURL = resp.PDFURL
	r.sessions.UpdatePreviewInfo(kind, &api.FileInfo{
		URL:                resp.PDFURL,
		Format:             "pdf",
		UserFacingFilename: p.PDFFilename,
	})
	return p, nil
}

// describe fills in filenames and the DOCX link known from the session.
func describe(d *api.SessionDetails, kind api.PreviewKind) *Preview {
	prefix := "Modified_"
	generated := d.ModifiedContractInfo
	if kind == api.PreviewMarked {
		prefix = "Marked_"
		generated = d.MarkedContractInfo
	}
	base := session.BaseFilename(d.OriginalFilename)
	if base == "" {
		base = "contract"
	}

	p := &Preview{
		Kind:         kind,
		PDFFilename:  prefix + base + ".pdf",
		DocxFilename: prefix + base + ".docx",
	}
	if cached := d.PDFPreviewInfo.Get(kind); cached != nil && cached.UserFacingFilename != "" {
		p.PDFFilename = cached.UserFacingFilename
	}
	if generated != nil && generated.DocxCloudinaryInfo != nil {
		p.DocxURL = generated.DocxCloudinaryInfo.URL
		if name := generated.DocxCloudinaryInfo.UserFacingFilename; name != "" {
			p.DocxFilename = name
		}
	}
	return p
}

// Format selects which file of a preview to save.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
)

// Save downloads one file of p into dir and returns the written path.
func (r *Resolver) Save(ctx context.Context, p *Preview, format Format, dir string) (string, error) {
	src, name := p.PDFURL, p.PDFFilename
	if format == FormatDocx {
		src, name = p.DocxURL, p.DocxFilename
	}
	if src == "" {
		return "", fmt.Errorf("%s %s: %w", p.Kind, format, ErrNotGenerated)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	n, err := r.backend.Download(ctx, src, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}
	r.log.Info("saved contract", "path", path, "bytes", n)
	return path, nil
}
