package mcp

import (
	"context"
	"time"

	"fairness-mcp/internal/analyzer"
	"fairness-mcp/internal/config"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// ServerName identifies this server to MCP clients.
const ServerName = "fairness-mcp"

// Server exposes the fairness analyzer as MCP tools.
type Server struct {
	cfg      *config.AppConfig
	analyzer *analyzer.Analyzer
	clock    func() time.Time
}

// NewServer creates a new MCP server.
func NewServer(cfg *config.AppConfig, a *analyzer.Analyzer) *Server {
	return &Server{
		cfg:      cfg,
		analyzer: a,
		clock:    time.Now,
	}
}

// Build creates the SDK server with every tool registered.
func (s *Server) Build(version string) *sdk.Server {
	server := sdk.NewServer(&sdk.Implementation{Name: ServerName, Version: version}, nil)
	s.registerTools(server)
	return server
}

// Serve runs the MCP loop over stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context, version string) error {
	log.Info().Str("version", version).Msg("MCP Server starting Stdio loop")
	return s.Build(version).Run(ctx, &sdk.StdioTransport{})
}
