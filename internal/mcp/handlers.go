package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/compliance"
	"github.com/ziadkadry99/sharai/internal/session"
	"github.com/ziadkadry99/sharai/internal/upload"
)

const noSessionText = "No contract has been analyzed yet. Call analyze_contract with a contract file first."

// handleAnalyzeContract uploads a local file and reports the resulting session.
func (s *Server) handleAnalyzeContract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}

	f, err := upload.Open(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := s.sessions.UploadAndAnalyze(ctx, f)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	s.log.Info("contract analyzed via mcp", "session_id", resp.SessionID, "terms", len(resp.AnalysisResults))

	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", resp.SessionID)
	if resp.Message != "" {
		fmt.Fprintf(&b, "%s\n", resp.Message)
	}
	b.WriteString("\n")
	st := s.sessions.Snapshot()
	writeStats(&b, st.Stats())
	b.WriteString("\n")
	writeTerms(&b, st.Terms)
	return mcp.NewToolResultText(b.String()), nil
}

// handleLoadSession resumes a stored session.
func (s *Server) handleLoadSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	if err := s.sessions.Load(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	st := s.sessions.Snapshot()
	fmt.Fprintf(&b, "Session: %s", st.SessionID)
	if st.Details != nil && st.Details.OriginalFilename != "" {
		fmt.Fprintf(&b, " (%s)", st.Details.OriginalFilename)
	}
	b.WriteString("\n\n")
	writeStats(&b, st.Stats())
	return mcp.NewToolResultText(b.String()), nil
}

// handleListTerms lists clauses passing the optional status filter.
func (s *Server) handleListTerms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.sessions.Snapshot()
	if !st.HasSession() {
		return mcp.NewToolResultText(noSessionText), nil
	}

	filter := compliance.ParseFilter(request.GetString("filter", ""))
	terms := st.Filtered(filter)
	if len(terms) == 0 {
		if len(st.Terms) == 0 {
			return mcp.NewToolResultText("No analyzable terms were extracted from the document."), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("No terms match the filter %q.", filter)), nil
	}

	var b strings.Builder
	writeTerms(&b, terms)
	return mcp.NewToolResultText(b.String()), nil
}

// handleComplianceStats reports counts and the compliant percentage.
func (s *Server) handleComplianceStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.sessions.Stats()
	if stats == nil {
		return mcp.NewToolResultText(noSessionText), nil
	}
	var b strings.Builder
	writeStats(&b, stats)
	return mcp.NewToolResultText(b.String()), nil
}

// handleAskQuestion asks about one clause or the whole contract.
func (s *Server) handleAskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	var answer string
	if termID := request.GetString("term_id", ""); termID != "" {
		answer, err = s.sessions.AskAboutTerm(ctx, termID, question)
	} else {
		answer, err = s.sessions.AskGeneral(ctx, question)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("question failed: %v", err)), nil
	}
	if answer == "" {
		answer = "(the service returned an empty answer)"
	}
	return mcp.NewToolResultText(answer), nil
}

// handleReviewModification records a user edit and returns the AI review.
func (s *Server) handleReviewModification(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	termID, err := request.RequireString("term_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: term_id"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	if err := s.sessions.EditSuggestion(ctx, termID, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("review failed: %v", err)), nil
	}
	t, ok := s.sessions.Snapshot().Term(termID)
	if !ok {
		return mcp.NewToolResultError("the session changed while the review was running"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Reviewed suggestion for %s:\n%s\n\n", termID, t.ReviewedSuggestion)
	fmt.Fprintf(&b, "Status: %s\n", t.EffectiveStatus())
	if t.ReviewedSuggestionIssue != "" {
		fmt.Fprintf(&b, "Concern: %s\n", t.ReviewedSuggestionIssue)
	}
	if t.ReviewedSuggestionReference != "" {
		fmt.Fprintf(&b, "Reference: %s\n", t.ReviewedSuggestionReference)
	}
	b.WriteString("\nCall confirm_term to commit this wording.")
	return mcp.NewToolResultText(b.String()), nil
}

// handleConfirmTerm commits a clause's wording.
func (s *Server) handleConfirmTerm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	termID, err := request.RequireString("term_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: term_id"), nil
	}

	if text := request.GetString("text", ""); strings.TrimSpace(text) != "" {
		err = s.sessions.Confirm(ctx, termID, text)
	} else {
		err = s.sessions.ConfirmCurrent(ctx, termID)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("confirmation failed: %v", err)), nil
	}

	t, _ := s.sessions.Snapshot().Term(termID)
	return mcp.NewToolResultText(fmt.Sprintf("Confirmed %s:\n%s", termID, t.UserModifiedText)), nil
}

// handleGenerateContract builds the modified or marked contract.
func (s *Server) handleGenerateContract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := request.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: kind"), nil
	}

	info, err := s.sessions.Generate(ctx, api.PreviewKind(kind))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generated %s contract", kind)
	if info.GenerationTimestamp != "" {
		fmt.Fprintf(&b, " at %s", info.GenerationTimestamp)
	}
	b.WriteString("\n")
	for _, f := range []*api.FileInfo{info.DocxCloudinaryInfo, info.TxtCloudinaryInfo} {
		if f == nil || f.URL == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", f.UserFacingFilename, f.URL)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleDecisionHistory lists recorded decisions oldest first.
func (s *Server) handleDecisionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history := s.sessions.Snapshot().History
	if len(history) == 0 {
		return mcp.NewToolResultText("No decisions recorded yet."), nil
	}

	var b strings.Builder
	for _, e := range history {
		fmt.Fprintf(&b, "- %s [%s/%s]", e.Timestamp.Format(time.RFC3339), e.Actor, e.Action)
		if e.TermID != "" {
			fmt.Fprintf(&b, " %s", e.TermID)
		}
		if e.Details != "" {
			fmt.Fprintf(&b, ": %s", e.Details)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// writeStats formats the compliance summary.
func writeStats(b *strings.Builder, stats *compliance.Stats) {
	if stats == nil {
		b.WriteString(noSessionText + "\n")
		return
	}
	fmt.Fprintf(b, "Compliance: %d%% (%s)\n", stats.RoundedPercentage(), compliance.HeadlineFor(stats.Percentage))
	fmt.Fprintf(b, "Terms: %d total, %d compliant, %d warning, %d non-compliant\n",
		stats.Total, stats.Compliant, stats.Warning, stats.NonCompliant)
}

// writeTerms formats clauses as a markdown list.
func writeTerms(b *strings.Builder, terms []session.Term) {
	for _, t := range terms {
		fmt.Fprintf(b, "## %s [%s]", t.TermID, t.EffectiveStatus())
		if t.IsUserConfirmed {
			b.WriteString(" (confirmed)")
		}
		b.WriteString("\n")
		fmt.Fprintf(b, "%s\n", t.TermText)
		if t.ShariaIssue != "" {
			fmt.Fprintf(b, "Issue: %s\n", t.ShariaIssue)
		}
		if t.ReferenceNumber != "" {
			fmt.Fprintf(b, "Reference: %s\n", t.ReferenceNumber)
		}
		if current := t.CurrentText(); current != t.TermText {
			fmt.Fprintf(b, "Suggestion: %s\n", current)
		}
		b.WriteString("\n")
	}
}
