// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Sitewright tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/sitewright/internal/assets"
	"github.com/starford/sitewright/internal/command"
	"github.com/starford/sitewright/internal/site"
	"github.com/starford/sitewright/internal/siteservice"
)

// ContractURI is the resource URI of the command contract.
const ContractURI = "sitewright://command-contract"

// Server wraps the MCP server with Sitewright tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *siteservice.Service
	images assets.ImageStore
}

// New creates a new MCP server with all Sitewright tools registered.
func New(svc *siteservice.Service, images assets.ImageStore) *Server {
	s := &Server{svc: svc, images: images}

	s.mcp = server.NewMCPServer(
		"Sitewright",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("rebuild_site",
		mcp.WithDescription("Rebuild the site configuration from a natural-language prompt. "+
			"Returns the explanation, the per-command report and the new configuration."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("What the site should become")),
	), s.rebuildSite)

	s.mcp.AddTool(mcp.NewTool("get_site",
		mcp.WithDescription("Return the live site configuration as JSON."),
	), s.getSite)

	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Restore the configuration before the last change."),
	), s.undo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Re-apply the last undone change."),
	), s.redo)

	s.mcp.AddTool(mcp.NewTool("get_command_contract",
		mcp.WithDescription("Returns the edit command contract used by rebuilds. "+
			"Read it to phrase prompts in terms of sections and element IDs."),
	), s.getCommandContract)

	s.mcp.AddTool(mcp.NewTool("upload_image",
		mcp.WithDescription("Store a base64 encoded image (optionally a data URL) under assets/. "+
			"Returns the /assets/... URL to reference from the site."),
		mcp.WithString("data", mcp.Required(), mcp.Description("Base64 image payload")),
	), s.uploadImage)

	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Command Contract",
			mcp.WithResourceDescription("Line-delimited JSON edit commands understood by the rebuild pipeline."),
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) rebuildSite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Rebuild(ctx, prompt, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) getSite(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, _, err := s.svc.Site(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cfg), nil
}

func (s *Server) undo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.svc.Undo(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("undone"), nil
}

func (s *Server) redo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.svc.Redo(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("redone"), nil
}

func (s *Server) getCommandContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(command.SystemPrompt), nil
}

func (s *Server) uploadImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := req.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := s.images.Store(ctx, data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store image: %v", err)), nil
	}
	return mcp.NewToolResultText(site.AssetURL(id)), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     command.SystemPrompt,
		},
	}, nil
}
