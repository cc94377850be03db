package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olegrjumin/imgscope/internal/analyzer"
	"github.com/olegrjumin/imgscope/internal/collector"
	"github.com/olegrjumin/imgscope/internal/config"
	"github.com/olegrjumin/imgscope/internal/httpapi"
	"github.com/olegrjumin/imgscope/internal/httpclient"
	"github.com/olegrjumin/imgscope/internal/logging"
	"github.com/olegrjumin/imgscope/internal/service"
)

func main() {
	// Load configuration from environment variables
	cfg := config.Load()

	// Initialize logger
	logger := logging.New()

	// Initialize HTTP client for page and image fetches
	httpClient := httpclient.New(cfg.UserAgent)

	// Pick the collection strategy. Rendered collection needs a local
	// Chrome/Chromium install; fall back to static HTML collection when
	// the browser is unavailable so the service still runs.
	var col collector.Collector
	if cfg.RendererEnabled {
		rendered, err := collector.NewRendered(collector.RenderedOptions{
			ChromePath:        cfg.ChromePath,
			UserAgent:         cfg.UserAgent,
			ViewportWidth:     cfg.ViewportWidth,
			ViewportHeight:    cfg.ViewportHeight,
			NavigationTimeout: cfg.NavigationTimeout,
			SettleDelay:       cfg.SettleDelay,
		})
		if err != nil {
			logger.Error("Headless browser unavailable, using static collection", "error", err)
		} else {
			col = rendered
			logger.Info("Using rendered collection")
		}
	}
	if col == nil {
		col = collector.NewStatic(httpClient, cfg.RequestTimeout, cfg.MaxImageBytes)
		logger.Info("Using static collection")
	}

	// Initialize the analyzer with the collector and HTTP client
	anl := analyzer.New(col, httpClient, analyzer.Options{
		ImageFetchTimeout:    cfg.ImageFetchTimeout,
		MaxConcurrentFetches: cfg.MaxConcurrentFetches,
		MaxImageBytes:        cfg.MaxImageBytes,
	}, logger)

	// Initialize service with analyzer, logger, and default timeout
	svc := service.New(anl, logger, cfg.RequestTimeout)

	// Create server address from config
	addr := fmt.Sprintf(":%d", cfg.Port)

	// Create a new HTTP server
	server := httpapi.NewServer(addr, logger, svc)

	// Channel to listen for OS signals (Ctrl+C, kill, etc.)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine so it doesn't block
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil {
			logger.Error("Server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	logger.Info("Shutting down server...")

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
