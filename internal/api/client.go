package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/ziadkadry99/sharai/internal/logger"
)

// skipWarningHeader is sent on every request so tunnelled backends answer
// with JSON instead of an interstitial page.
const skipWarningHeader = "ngrok-skip-browser-warning"

// Client talks to the contract analysis backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// Upload is a contract file to send for analysis.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// Analyze uploads a contract and returns the analysis.
func (c *Client) Analyze(ctx context.Context, file Upload) (*AnalyzeResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Filename))
	if file.ContentType != "" {
		h.Set("Content-Type", file.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", file.Filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var out AnalyzeResponse
	if err := c.do(ctx, http.MethodPost, "/analyze", nil, &buf, mw.FormDataContentType(), "analyze", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ask sends a question about the contract, optionally scoped to one clause.
func (c *Client) Ask(ctx context.Context, sessionID string, req AskRequest) (*AskResponse, error) {
	q := url.Values{"session_id": {sessionID}}
	var out AskResponse
	if err := c.doJSON(ctx, http.MethodPost, "/interact", q, req, "interact", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReviewModification asks the backend to review a user-edited clause.
func (c *Client) ReviewModification(ctx context.Context, req ReviewRequest) (*ReviewResponse, error) {
	var out ReviewResponse
	if err := c.doJSON(ctx, http.MethodPost, "/review_modification", nil, req, "review", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmModification commits the final text for a clause.
func (c *Client) ConfirmModification(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	var out ConfirmResponse
	if err := c.doJSON(ctx, http.MethodPost, "/confirm_modification", nil, req, "confirm", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// GenerateModified builds the clean compliant contract.
func (c *Client) GenerateModified(ctx context.Context, sessionID string) (*GenerateModifiedResponse, error) {
	var out GenerateModifiedResponse
	if err := c.doJSON(ctx, http.MethodPost, "/generate_modified_contract", nil, sessionRequest{sessionID}, "generate_modified", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateMarked builds the contract with changes highlighted.
func (c *Client) GenerateMarked(ctx context.Context, sessionID string) (*GenerateMarkedResponse, error) {
	var out GenerateMarkedResponse
	if err := c.doJSON(ctx, http.MethodPost, "/generate_marked_contract", nil, sessionRequest{sessionID}, "generate_marked", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitExpertFeedback records an expert's judgment on a clause.
func (c *Client) SubmitExpertFeedback(ctx context.Context, req ExpertFeedbackRequest) (*ExpertFeedbackResponse, error) {
	var out ExpertFeedbackResponse
	if err := c.doJSON(ctx, http.MethodPost, "/feedback/expert", nil, req, "feedback", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SessionDetails fetches the stored session.
func (c *Client) SessionDetails(ctx context.Context, sessionID string) (*SessionDetails, error) {
	var out SessionDetails
	if err := c.do(ctx, http.MethodGet, "/session/"+url.PathEscape(sessionID), nil, nil, "", "session", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SessionTerms fetches the current clause list of a session.
func (c *Client) SessionTerms(ctx context.Context, sessionID string) ([]AnalysisTerm, error) {
	var out []AnalysisTerm
	if err := c.do(ctx, http.MethodGet, "/terms/"+url.PathEscape(sessionID), nil, nil, "", "terms", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []AnalysisTerm{}
	}
	return out, nil
}

// PreviewURL asks the backend to convert a generated contract to PDF.
func (c *Client) PreviewURL(ctx context.Context, sessionID string, kind PreviewKind) (*PreviewResponse, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid preview kind %q", kind)
	}
	path := "/preview_contract/" + url.PathEscape(sessionID) + "/" + string(kind)
	var out PreviewResponse
	if err := c.do(ctx, http.MethodGet, path, nil, nil, "", "preview", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download streams the file at rawURL into w and returns the byte count.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set(skipWarningHeader, "true")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &Error{Status: resp.StatusCode, Message: statusMessage(resp.StatusCode)}
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read download body: %w", err)
	}
	return n, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body any, schema string, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", path, err)
	}
	return c.do(ctx, method, path, query, bytes.NewReader(data), "application/json", schema, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType, schema string, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(skipWarningHeader, "true")
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	c.log.Debug("backend call", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Some proxies label JSON error bodies as text/html.
		msg := ""
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &e) == nil {
			msg = e.Error
		}
		if msg == "" {
			msg = statusMessage(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		if resp.StatusCode == http.StatusNoContent && acceptsEmpty(schema) {
			return nil
		}
		return &DecodeError{Endpoint: path, Err: ErrEmptyBody}
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return &DecodeError{Endpoint: path, Err: err}
	}
	if schema != "" {
		if err := validate(schema, doc); err != nil {
			return &DecodeError{Endpoint: path, Err: err}
		}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Endpoint: path, Err: err}
	}
	return nil
}

func statusMessage(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP error! status: %d", code)
}
