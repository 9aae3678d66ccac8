// Package upload decides which contract files may be sent for analysis.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ziadkadry99/sharai/internal/api"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEText = "text/plain"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Accepted lists the MIME types the backend can analyze.
var Accepted = []string{MIMEPDF, MIMEText, MIMEDocx}

// ErrUnsupportedType is returned for files outside Accepted.
var ErrUnsupportedType = errors.New("unsupported file type: only PDF, TXT and DOCX are accepted")

var byExtension = map[string]string{
	".pdf":  MIMEPDF,
	".txt":  MIMEText,
	".docx": MIMEDocx,
}

// File is a contract ready to upload.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Size returns the file length in bytes.
func (f *File) Size() int { return len(f.Data) }

// Upload converts f into the request payload for the API client.
func (f *File) Upload() api.Upload {
	return api.Upload{
		Filename:    f.Name,
		ContentType: f.MIME,
		Content:     bytes.NewReader(f.Data),
	}
}

// Open reads and classifies the file at path.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return FromBytes(filepath.Base(path), data)
}

// FromBytes classifies an in-memory file.
func FromBytes(name string, data []byte) (*File, error) {
	typ, err := Detect(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &File{Name: name, MIME: typ, Data: data}, nil
}

// Detect sniffs the content type and returns one of Accepted. DOCX files
// are zip containers, so a generic container result falls back to the
// file extension.
func Detect(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file")
	}

	sniffed := mimetype.Detect(data)
	for _, accepted := range Accepted {
		if sniffed.Is(accepted) {
			return accepted, nil
		}
	}

	if sniffed.Is("application/zip") || sniffed.Is("application/octet-stream") {
		if typ, ok := byExtension[strings.ToLower(filepath.Ext(name))]; ok && typ == MIMEDocx {
			return typ, nil
		}
	}
	return "", fmt.Errorf("%w (detected %s)", ErrUnsupportedType, sniffed.String())
}

// IsAccepted reports whether mime is one of the accepted types.
func IsAccepted(mime string) bool {
	base := strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])
	for _, a := range Accepted {
		if strings.EqualFold(base, a) {
			return true
		}
	}
	return false
}
