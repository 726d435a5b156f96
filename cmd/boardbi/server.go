package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/boardbi/internal/agent"
	"github.com/kalambet/boardbi/internal/api"
	"github.com/kalambet/boardbi/internal/config"
	"github.com/kalambet/boardbi/internal/dataset"
	"github.com/kalambet/boardbi/internal/gemini"
	"github.com/kalambet/boardbi/internal/monday"
	"github.com/kalambet/boardbi/internal/normalize"
	"github.com/kalambet/boardbi/internal/summarize"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the boardbi server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		withMCP, _ := cmd.Flags().GetBool("mcp")
		return runServer(configPath, withMCP)
	},
}

func init() {
	serveCmd.Flags().String("config", "", "path to YAML config file")
	serveCmd.Flags().Bool("mcp", false, "also serve MCP tools over stdio")
}

func runServer(configPath string, withMCP bool) error {
	fmt.Fprintf(os.Stderr, "boardbi version %s\n", version)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	boards := monday.NewClient(cfg.Monday.APIToken)

	var llm agent.Generator
	if cfg.Gemini.APIKey != "" {
		llm = gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
	} else {
		slog.Warn("GEMINI_API_KEY not set, chat will be degraded")
	}

	biAgent := agent.New(agent.Deps{
		Boards:         boards,
		LLM:            llm,
		Cache:          dataset.New(cfg.Cache.TTL),
		Normalizer:     normalize.New(nil, cfg.Summary.PrimaryCurrency),
		Summarizer:     summarize.New(cfg.Summary.MaxContextTokens),
		WorkOrdersID:   cfg.Monday.WorkOrdersBoardID,
		DealsID:        cfg.Monday.DealsBoardID,
		WorkOrdersName: cfg.Monday.WorkOrdersBoardName,
		DealsName:      cfg.Monday.DealsBoardName,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewHandler(biAgent),
	}

	// Optionally serve the same operations as MCP tools over stdio.
	if withMCP {
		stdioSrv := mcpserver.NewStdioServer(api.NewMCPServer(biAgent))
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
		}()
		slog.Info("MCP server started (stdio transport)")
	}

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "boardbi listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
