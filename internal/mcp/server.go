package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/pveldt/roster/internal/config"
	"github.com/pveldt/roster/internal/server"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) mcpserver.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"roster_projects": {
		def:     projectsToolDef,
		handler: func(h *Handlers) mcpserver.ToolHandlerFunc { return h.HandleProjects },
	},
	"roster_characters": {
		def:     charactersToolDef,
		handler: func(h *Handlers) mcpserver.ToolHandlerFunc { return h.HandleCharacters },
	},
	"roster_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) mcpserver.ToolHandlerFunc { return h.HandleExport },
	},
}

// AllToolNames returns a list of all registered tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates a new MCP server with the roster tools registered.
// All tools are read-only views over the persistence store.
func NewServer(store *server.Store, cfg *config.Config, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		"roster",
		version,
		mcpserver.WithToolCapabilities(true),
	)

	h := NewHandlers(store, cfg)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(store *server.Store, cfg *config.Config, version string) error {
	s := NewServer(store, cfg, version)
	return mcpserver.ServeStdio(s)
}
