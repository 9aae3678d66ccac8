package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/sharai/internal/logger"
	"github.com/ziadkadry99/sharai/internal/session"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes contract review tools.
type Server struct {
	sessions *session.Manager
	log      *logger.Logger
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server over the given session manager.
func NewServer(sessions *session.Manager, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		sessions: sessions,
		log:      log,
	}

	s.mcp = server.NewMCPServer(
		"sharai",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(analyzeContractTool, s.handleAnalyzeContract)
	s.mcp.AddTool(loadSessionTool, s.handleLoadSession)
	s.mcp.AddTool(listTermsTool, s.handleListTerms)
	s.mcp.AddTool(complianceStatsTool, s.handleComplianceStats)
	s.mcp.AddTool(askQuestionTool, s.handleAskQuestion)
	s.mcp.AddTool(reviewModificationTool, s.handleReviewModification)
	s.mcp.AddTool(confirmTermTool, s.handleConfirmTerm)
	s.mcp.AddTool(generateContractTool, s.handleGenerateContract)
	s.mcp.AddTool(decisionHistoryTool, s.handleDecisionHistory)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
