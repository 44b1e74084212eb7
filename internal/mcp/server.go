package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/knowmem/knowmem-mcp/internal/config"
	"github.com/knowmem/knowmem-mcp/internal/knowledge"
	"github.com/knowmem/knowmem-mcp/internal/searcher"
	"github.com/knowmem/knowmem-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "knowmem-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	store   *storage.Store
	service *knowledge.Service
	logger  *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.Open(cfg.DBPath, &storage.Options{
		BusyTimeout: cfg.BusyTimeout,
		MmapSize:    cfg.MmapSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	srch := searcher.New(store, cfg.CacheSize, cfg.CacheTTL)
	svc := knowledge.NewService(store, srch, logger)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:     mcpServer,
		store:   store,
		service: svc,
		logger:  logger,
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	s.logger.Info("mcp server starting",
		slog.String("name", ServerName),
		slog.String("version", ServerVersion),
		slog.String("driver", storage.DriverName))
	return server.ServeStdio(s.mcp)
}

// Close releases the underlying database without serving.
func (s *Server) Close() error {
	return s.store.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(knowledgeStoreTool(), s.handleKnowledgeStore)
	s.mcp.AddTool(knowledgeUpdateTool(), s.handleKnowledgeUpdate)
	s.mcp.AddTool(knowledgeSearchTool(), s.handleKnowledgeSearch)
}
