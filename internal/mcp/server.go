// ABOUTME: MCP server setup for the pulse history store.
// ABOUTME: Wraps the MCP server with storage access and the batch engine options.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/pulse/internal/engine"
	"github.com/harperreed/pulse/internal/storage"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	opts      engine.Options
}

// NewServer creates a new MCP server over repo. Batch tools run with opts.
func NewServer(repo storage.Repository, opts engine.Options) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "pulse",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		opts:      opts,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) engine() *engine.Engine {
	return engine.New(s.repo, s.opts)
}
