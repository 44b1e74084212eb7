package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/knowmem/knowmem-mcp/internal/config"
	"github.com/knowmem/knowmem-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "knowmem",
		Short: "KnowMem - persistent knowledge memory for AI agents",
		Long: `KnowMem stores short pieces of knowledge in a local SQLite database
and serves them back over MCP or the command line.

Environment variables:
  KNOWMEM_DB_PATH       Database file location (default: ~/.knowmem/knowledge.db)
  KNOWMEM_CACHE_SIZE    Search cache entries (default: 256)
  KNOWMEM_CACHE_TTL     Search cache entry lifetime (default: 60s)
  KNOWMEM_LOG_LEVEL     Log level: debug, info, warn, error (default: info)`,
		Version: fmt.Sprintf("%s (built %s, %s driver, %s build)",
			version, buildTime, storage.DriverName, storage.BuildMode),
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(updateCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(resetCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds a stderr logger; stdout stays free for MCP traffic
// and command output.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
