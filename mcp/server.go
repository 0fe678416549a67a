// Package mcp implements a stdio MCP server so agents can ask the relay
// to rescan files they wrote.
package mcp

import (
	"context"
	"io"

	"github.com/datakeeper/scanrelay/channel"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const ToolScanFile = "scan_file"

type Server struct {
	handler channel.Handler
	mcp     *server.MCPServer
}

func NewServer(handler channel.Handler, version string) *Server {
	s := &Server{
		handler: handler,
		mcp:     server.NewMCPServer("scanrelay", version, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool(ToolScanFile,
		mcp.WithDescription("Tell the media indexer that a file was created, changed or deleted so it gets rescanned. Fire-and-forget: success means the request was accepted."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file")),
	), s.handleScanFile)

	return s
}

// Run serves MCP over the given streams until ctx is done or in closes.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) handleScanFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := s.handler.Handle(ctx, channel.MethodScanFile, req.GetArguments())
	return resultFor(res), nil
}
