// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Postcraft drafts to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/postcraft/internal/apperr"
	"github.com/starford/postcraft/internal/draftservice"
	"github.com/starford/postcraft/internal/models"
)

const contractURI = "postcraft://document-format"

// Server wraps the MCP server with Postcraft tools.
type Server struct {
	mcp *server.MCPServer
	svc *draftservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *draftservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Postcraft",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_drafts",
		mcp.WithDescription("List drafts, newest first, optionally filtered by status."),
		mcp.WithString("status", mcp.Description("Optional status filter"),
			mcp.Enum(models.StatusDraft, models.StatusScheduled, models.StatusPublishing, models.StatusPublished)),
		mcp.WithNumber("limit", mcp.Description("Maximum number of drafts (default 50)")),
	), s.listDrafts)

	s.mcp.AddTool(mcp.NewTool("read_draft",
		mcp.WithDescription("Read a draft: its metadata, document JSON and rendered preview."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Draft ID")),
	), s.readDraft)

	s.mcp.AddTool(mcp.NewTool("create_draft",
		mcp.WithDescription("Create a new draft. Content SHOULD be a document JSON array as "+
			"described by get_document_contract or the "+contractURI+" resource; "+
			"plain text is accepted and stored as a single unstyled paragraph."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Document JSON or plain text")),
		mcp.WithString("title", mcp.Description("Optional title; defaults to the first line")),
	), s.createDraft)

	s.mcp.AddTool(mcp.NewTool("render_content",
		mcp.WithDescription("Render document JSON to the exact text that would be published, "+
			"with Unicode styling applied and parentheses escaped. Nothing is stored."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Document JSON or plain text")),
	), s.renderContent)

	s.mcp.AddTool(mcp.NewTool("search_drafts",
		mcp.WithDescription("Full-text search through draft titles and text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDrafts)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the Postcraft document format contract. "+
			"Call this before creating drafts to produce well-formed content."),
	), s.getDocumentContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Document Format Contract",
			mcp.WithResourceDescription("JSON document format used for draft content."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDrafts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")
	limit := req.GetInt("limit", 50)

	items, _, err := s.svc.List(ctx, limit, 0, status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no drafts"), nil
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%s\t%s\t%s", it.ID, it.Status, it.Title)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(struct {
		*draftservice.DraftDetail
		Preview draftservice.Preview `json:"preview"`
	}{d, s.svc.Render(d.Content)})
}

func (s *Server) createDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Create(ctx, req.GetString("title", ""), content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", d.ID, d.Title)), nil
}

func (s *Server) renderContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Render(content))
}

func (s *Server) searchDrafts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
