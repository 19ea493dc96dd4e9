// ABOUTME: MCP server setup for the habit tracker.
// ABOUTME: Wraps the MCP server with a storage Repository and optional insight client.
package mcp

import (
	"context"
	"time"

	"github.com/harperreed/habits/internal/insights"
	"github.com/harperreed/habits/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	insights  *insights.Client
	now       func() time.Time
}

// NewServer creates a new MCP server with the given storage. client may be
// nil, in which case get_insights is not registered.
func NewServer(repo storage.Repository, client *insights.Client, version string) (*Server, error) {
	if version == "" {
		version = "dev"
	}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "habits",
			Version: version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		insights:  client,
		now:       time.Now,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
