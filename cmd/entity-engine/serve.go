// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/entity-engine/internal/entity"
	"github.com/pdiddy/entity-engine/internal/llm"
	"github.com/pdiddy/entity-engine/internal/profile"
	"github.com/pdiddy/entity-engine/internal/scrape"
	"github.com/pdiddy/entity-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search and disambiguation service",
	Long: `Serve runs the HTTP service: search proxying, batch search, content
retrieval, find-similar, entity disambiguation, and profile generation.

The Exa API key is required. Without an Anthropic key the service still runs:
clustering uses domain grouping only and profile generation stops after the
provider summary tier.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := serviceConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	level, _ := cmd.Flags().GetString("log-level")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(level)}))

	provider, closeCache, err := newProvider(cfg)
	if err != nil {
		return err
	}
	if closeCache != nil {
		defer closeCache()
	}

	var claude *llm.Client
	if cfg.LLM.APIKey != "" {
		claude = llm.NewClient(cfg.LLM)
	}

	builder := &entity.Builder{}
	assembler := &profile.Assembler{Provider: provider, Scraper: scrape.New(cfg.Scrape)}
	if claude != nil {
		builder.Partitioner = &entity.ClaudePartitioner{LLM: claude}
		assembler.LLM = claude
	}

	srv := server.New(provider, builder, assembler, server.Options{
		Logger:     logger,
		Version:    version,
		LLMEnabled: claude != nil,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "version", version, "llm_enabled", claude != nil)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000, or server.addr from config)")
	serveCmd.Flags().String("log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
}
