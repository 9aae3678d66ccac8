package mcp

import "github.com/mark3labs/mcp-go/mcp"

// analyzeContractTool defines the analyze_contract MCP tool.
var analyzeContractTool = mcp.NewTool("analyze_contract",
	mcp.WithDescription("Upload a contract file (PDF, TXT or DOCX) for Shariah compliance analysis. Replaces the active review session."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the contract file on the local filesystem"),
	),
)

// loadSessionTool defines the load_session MCP tool.
var loadSessionTool = mcp.NewTool("load_session",
	mcp.WithDescription("Resume an earlier review session by its id."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session id returned by a previous analysis"),
	),
)

// listTermsTool defines the list_terms MCP tool.
var listTermsTool = mcp.NewTool("list_terms",
	mcp.WithDescription("List the analyzed contract clauses with their effective compliance status, issue, reference and current suggestion."),
	mcp.WithString("filter",
		mcp.Description("Only list clauses with this status (default all)"),
		mcp.Enum("all", "compliant", "warning", "non-compliant"),
	),
)

// complianceStatsTool defines the compliance_stats MCP tool.
var complianceStatsTool = mcp.NewTool("compliance_stats",
	mcp.WithDescription("Get the compliance summary of the active contract: clause counts per status and the compliant percentage."),
)

// askQuestionTool defines the ask_question MCP tool.
var askQuestionTool = mcp.NewTool("ask_question",
	mcp.WithDescription("Ask the Shariah analysis service a question about one clause or about the whole contract."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question to ask"),
	),
	mcp.WithString("term_id",
		mcp.Description("Clause id to scope the question to; omit for a contract-wide question"),
	),
)

// reviewModificationTool defines the review_modification MCP tool.
var reviewModificationTool = mcp.NewTool("review_modification",
	mcp.WithDescription("Propose new wording for a clause and have it reviewed for Shariah compliance. The clause becomes unconfirmed until confirm_term is called."),
	mcp.WithString("term_id",
		mcp.Required(),
		mcp.Description("Clause id"),
	),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Proposed clause wording"),
	),
)

// confirmTermTool defines the confirm_term MCP tool.
var confirmTermTool = mcp.NewTool("confirm_term",
	mcp.WithDescription("Commit the final wording of a clause. Without text, the clause's current suggestion is confirmed."),
	mcp.WithString("term_id",
		mcp.Required(),
		mcp.Description("Clause id"),
	),
	mcp.WithString("text",
		mcp.Description("Wording to confirm (default: current suggestion)"),
	),
)

// generateContractTool defines the generate_contract MCP tool.
var generateContractTool = mcp.NewTool("generate_contract",
	mcp.WithDescription("Generate the clean modified contract or the marked contract showing the changes. Returns download links."),
	mcp.WithString("kind",
		mcp.Required(),
		mcp.Description("Which contract to generate"),
		mcp.Enum("modified", "marked"),
	),
)

// decisionHistoryTool defines the decision_history MCP tool.
var decisionHistoryTool = mcp.NewTool("decision_history",
	mcp.WithDescription("List the decisions recorded in this review session: edits, AI reviews, confirmations and expert feedback."),
)
