package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/knowmem/knowmem-mcp/internal/config"
	"github.com/knowmem/knowmem-mcp/internal/knowledge"
	"github.com/knowmem/knowmem-mcp/internal/mcp"
	"github.com/knowmem/knowmem-mcp/internal/searcher"
	"github.com/knowmem/knowmem-mcp/internal/storage"
)

// openService wires storage, searcher, and the knowledge service for a
// one-shot CLI command. The returned closer releases the database.
func openService(cfg *config.Config) (*knowledge.Service, func(), error) {
	store, err := storage.Open(cfg.DBPath, &storage.Options{
		BusyTimeout: cfg.BusyTimeout,
		MmapSize:    cfg.MmapSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	srch := searcher.New(store, cfg.CacheSize, cfg.CacheTTL)
	svc := knowledge.NewService(store, srch, newLogger(cfg))
	return svc, func() { _ = store.Close() }, nil
}

func printJSON(v interface{}) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			srv, err := mcp.NewServer(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			errChan := make(chan error, 1)
			go func() {
				errChan <- srv.Serve(ctx)
			}()

			select {
			case sig := <-sigChan:
				logger.Info("shutting down", "signal", sig.String())
				cancel()
				return nil
			case err := <-errChan:
				return err
			}
		},
	}
}

func addCmd() *cobra.Command {
	var (
		title   string
		content string
		tags    []string
		scope   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a new knowledge item",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, closeFn, err := openService(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := svc.Store(cmd.Context(), knowledge.StoreRequest{
				Title:   title,
				Content: content,
				Tags:    tags,
				Scope:   scope,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Item title (10-100 characters)")
	cmd.Flags().StringVar(&content, "content", "", "Item content (50-5000 characters)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable, up to 10)")
	cmd.Flags().StringVar(&scope, "scope", "", "Scope: global, project:<name>, or repo:<name>")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func updateCmd() *cobra.Command {
	var (
		id      string
		title   string
		content string
		tags    []string
		scope   string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Modify an existing knowledge item",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, closeFn, err := openService(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			req := knowledge.UpdateRequest{ID: id}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("content") {
				req.Content = &content
			}
			if cmd.Flags().Changed("tag") {
				req.Tags = &tags
			}
			if cmd.Flags().Changed("scope") {
				req.Scope = &scope
			}

			result, err := svc.Update(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Item identifier")
	cmd.Flags().StringVar(&title, "title", "", "Replacement title")
	cmd.Flags().StringVar(&content, "content", "", "Replacement content")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replacement tag set (repeatable)")
	cmd.Flags().StringVar(&scope, "scope", "", "Replacement scope")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func searchCmd() *cobra.Command {
	var (
		contextTags []string
		scope       string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored knowledge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, closeFn, err := openService(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			req := knowledge.SearchRequest{
				Query:       args[0],
				ContextTags: contextTags,
				Scope:       scope,
			}
			if cmd.Flags().Changed("limit") {
				req.Limit = &limit
			}

			result, err := svc.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringSliceVar(&contextTags, "tag", nil, "Context tag for ranking (repeatable)")
	cmd.Flags().StringVar(&scope, "scope", "", "Restrict to this scope plus global")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results (1-20, default 5)")

	return cmd
}

func resetCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored knowledge and rebuild the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to reset without --yes")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := storage.Open(cfg.DBPath, &storage.Options{
				BusyTimeout: cfg.BusyTimeout,
				MmapSize:    cfg.MmapSize,
			})
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}
			fmt.Println("database reset")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deletion of all stored knowledge")

	return cmd
}
