package api

// PreviewKind selects which generated contract a preview refers to.
type PreviewKind string

const (
	PreviewModified PreviewKind = "modified"
	PreviewMarked   PreviewKind = "marked"
)

// Valid reports whether k is a known preview kind.
func (k PreviewKind) Valid() bool {
	return k == PreviewModified || k == PreviewMarked
}

// FileInfo describes a file stored by the backend on Cloudinary.
type FileInfo struct {
	URL                string `json:"url"`
	PublicID           string `json:"public_id,omitempty"`
	Format             string `json:"format,omitempty"`
	UserFacingFilename string `json:"user_facing_filename,omitempty"`
}

// AnalysisTerm is one clause as returned by the backend.
type AnalysisTerm struct {
	TermID                      string `json:"term_id"`
	TermText                    string `json:"term_text"`
	IsValidSharia               bool   `json:"is_valid_sharia"`
	ComplianceStatus            string `json:"compliance_status,omitempty"`
	ShariaIssue                 string `json:"sharia_issue,omitempty"`
	ReferenceNumber             string `json:"reference_number,omitempty"`
	ModifiedTerm                string `json:"modified_term,omitempty"`
	IsConfirmedByUser           bool   `json:"is_confirmed_by_user,omitempty"`
	ConfirmedModifiedText       string `json:"confirmed_modified_text,omitempty"`
	HasExpertFeedback           bool   `json:"has_expert_feedback,omitempty"`
	LastExpertFeedbackID        string `json:"last_expert_feedback_id,omitempty"`
	ExpertOverrideIsValidSharia *bool  `json:"expert_override_is_valid_sharia,omitempty"`
}

// AnalyzeResponse is returned by POST /analyze.
type AnalyzeResponse struct {
	Message                  string         `json:"message"`
	AnalysisResults          []AnalysisTerm `json:"analysis_results"`
	SessionID                string         `json:"session_id"`
	OriginalContractPlain    string         `json:"original_contract_plain,omitempty"`
	DetectedContractLanguage string         `json:"detected_contract_language,omitempty"`
	OriginalCloudinaryURL    string         `json:"original_cloudinary_url,omitempty"`
}

// GeneratedContractInfo holds the files produced by a generate call.
type GeneratedContractInfo struct {
	DocxCloudinaryInfo  *FileInfo `json:"docx_cloudinary_info,omitempty"`
	TxtCloudinaryInfo   *FileInfo `json:"txt_cloudinary_info,omitempty"`
	GenerationTimestamp string    `json:"generation_timestamp,omitempty"`
}

// PDFPreviewInfo caches converted PDF previews per kind.
type PDFPreviewInfo struct {
	Modified *FileInfo `json:"modified,omitempty"`
	Marked   *FileInfo `json:"marked,omitempty"`
}

// Get returns the cached preview for kind, or nil.
func (p *PDFPreviewInfo) Get(kind PreviewKind) *FileInfo {
	if p == nil {
		return nil
	}
	switch kind {
	case PreviewModified:
		return p.Modified
	case PreviewMarked:
		return p.Marked
	}
	return nil
}

// Set stores the preview for kind.
func (p *PDFPreviewInfo) Set(kind PreviewKind, info *FileInfo) {
	switch kind {
	case PreviewModified:
		p.Modified = info
	case PreviewMarked:
		p.Marked = info
	}
}

// Interaction is one recorded question/answer pair.
type Interaction struct {
	Question  string `json:"question,omitempty"`
	Answer    string `json:"answer,omitempty"`
	TermID    string `json:"term_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ConfirmedTerm is the backend's record of a confirmed clause.
type ConfirmedTerm struct {
	OriginalText     string `json:"original_text,omitempty"`
	ConfirmedText    string `json:"confirmed_text,omitempty"`
	ConfirmedAt      string `json:"confirmed_at,omitempty"`
	ComplianceStatus string `json:"compliance_status,omitempty"`
}

// SessionDetails is returned by GET /session/{id}.
type SessionDetails struct {
	ID                            string                   `json:"_id,omitempty"`
	SessionID                     string                   `json:"session_id"`
	OriginalFilename              string                   `json:"original_filename"`
	OriginalCloudinaryInfo        *FileInfo                `json:"original_cloudinary_info,omitempty"`
	AnalysisResultsCloudinaryInfo *FileInfo                `json:"analysis_results_cloudinary_info,omitempty"`
	OriginalFormat                string                   `json:"original_format,omitempty"`
	OriginalContractPlain         string                   `json:"original_contract_plain,omitempty"`
	OriginalContractMarkdown      string                   `json:"original_contract_markdown,omitempty"`
	DetectedContractLanguage      string                   `json:"detected_contract_language,omitempty"`
	AnalysisTimestamp             string                   `json:"analysis_timestamp,omitempty"`
	ConfirmedTerms                map[string]ConfirmedTerm `json:"confirmed_terms,omitempty"`
	Interactions                  []Interaction            `json:"interactions,omitempty"`
	ModifiedContractInfo          *GeneratedContractInfo   `json:"modified_contract_info,omitempty"`
	MarkedContractInfo            *GeneratedContractInfo   `json:"marked_contract_info,omitempty"`
	PDFPreviewInfo                *PDFPreviewInfo          `json:"pdf_preview_info,omitempty"`
}

// AskRequest is the body of POST /interact.
type AskRequest struct {
	Question string `json:"question"`
	TermID   string `json:"term_id,omitempty"`
	TermText string `json:"term_text,omitempty"`
}

// AskResponse is returned by POST /interact. Answer and Response are
// alternative fields for the answer text; see Text.
type AskResponse struct {
	Answer            string `json:"answer,omitempty"`
	Response          string `json:"response,omitempty"`
	SuggestedClause   string `json:"suggested_clause,omitempty"`
	ReferenceStandard string `json:"reference_standard,omitempty"`
	SessionID         string `json:"session_id,omitempty"`
	Success           *bool  `json:"success,omitempty"`
}

// Text returns the answer, preferring the answer field.
func (r *AskResponse) Text() string {
	if r.Answer != "" {
		return r.Answer
	}
	return r.Response
}

// ReviewRequest is the body of POST /review_modification.
type ReviewRequest struct {
	SessionID        string `json:"session_id"`
	TermID           string `json:"term_id"`
	UserModifiedText string `json:"user_modified_text"`
	OriginalTermText string `json:"original_term_text"`
	IsExpert         bool   `json:"is_expert"`
}

// ReviewResponse is returned by POST /review_modification.
type ReviewResponse struct {
	ReviewedText       string `json:"reviewed_text"`
	IsStillValidSharia bool   `json:"is_still_valid_sharia"`
	ComplianceStatus   string `json:"compliance_status,omitempty"`
	ShariaIssue        string `json:"sharia_issue,omitempty"`
	ReferenceNumber    string `json:"reference_number,omitempty"`
	NewShariaIssue     string `json:"new_sharia_issue,omitempty"`
	NewReferenceNumber string `json:"new_reference_number,omitempty"`
}

// Issue returns the reported concern, falling back to the new issue field.
func (r *ReviewResponse) Issue() string {
	if r.ShariaIssue != "" {
		return r.ShariaIssue
	}
	return r.NewShariaIssue
}

// Reference returns the cited standard, falling back to the new reference field.
func (r *ReviewResponse) Reference() string {
	if r.ReferenceNumber != "" {
		return r.ReferenceNumber
	}
	return r.NewReferenceNumber
}

// ConfirmRequest is the body of POST /confirm_modification.
type ConfirmRequest struct {
	SessionID    string `json:"session_id"`
	TermID       string `json:"term_id"`
	ModifiedText string `json:"modified_text"`
}

// ConfirmResponse is returned by POST /confirm_modification.
type ConfirmResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message,omitempty"`
	ComplianceStatus string `json:"compliance_status,omitempty"`
	ShariaIssue      string `json:"sharia_issue,omitempty"`
	ReferenceNumber  string `json:"reference_number,omitempty"`
}

// GenerateModifiedResponse is returned by POST /generate_modified_contract.
type GenerateModifiedResponse struct {
	Success                   bool   `json:"success"`
	Message                   string `json:"message,omitempty"`
	ModifiedDocxCloudinaryURL string `json:"modified_docx_cloudinary_url,omitempty"`
	ModifiedTxtCloudinaryURL  string `json:"modified_txt_cloudinary_url,omitempty"`
}

// GenerateMarkedResponse is returned by POST /generate_marked_contract.
type GenerateMarkedResponse struct {
	Success                 bool   `json:"success"`
	Message                 string `json:"message,omitempty"`
	MarkedDocxCloudinaryURL string `json:"marked_docx_cloudinary_url,omitempty"`
}

// ExpertFeedback is the expert's judgment on one clause analysis.
type ExpertFeedback struct {
	AIAnalysisApproved         *bool  `json:"aiAnalysisApproved"`
	ExpertIsValidSharia        *bool  `json:"expertIsValidSharia,omitempty"`
	ExpertComment              string `json:"expertComment"`
	ExpertCorrectedShariaIssue string `json:"expertCorrectedShariaIssue,omitempty"`
	ExpertCorrectedReference   string `json:"expertCorrectedReference,omitempty"`
	ExpertCorrectedSuggestion  string `json:"expertCorrectedSuggestion,omitempty"`
}

// ExpertFeedbackRequest is the body of POST /feedback/expert.
type ExpertFeedbackRequest struct {
	SessionID    string         `json:"session_id"`
	TermID       string         `json:"term_id"`
	FeedbackData ExpertFeedback `json:"feedback_data"`
}

// ExpertFeedbackResponse is returned by POST /feedback/expert.
type ExpertFeedbackResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	FeedbackID string `json:"feedback_id,omitempty"`
}

// PreviewResponse is returned by GET /preview_contract/{id}/{kind}.
type PreviewResponse struct {
	PDFURL string `json:"pdf_url,omitempty"`
	Error  string `json:"error,omitempty"`
}
