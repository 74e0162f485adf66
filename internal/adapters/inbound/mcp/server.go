package mcp

import (
	"github.com/go-logr/logr"
	"github.com/mark3labs/mcp-go/server"
)

// NewComplykitMCPServer creates a new MCP server with all complykit tools and
// resources registered. Relative paths in tool arguments are resolved
// against projectPath, which also holds .complykit.yaml.
func NewComplykitMCPServer(projectPath string, log logr.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"complykit",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, log)
	registerResources(s, projectPath)

	return s
}
