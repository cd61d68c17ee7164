// Timeboard is a caching dashboard server for a project-management API.
//
// The server keeps one cached snapshot of project, task and
// time-entry data, refreshed on demand through POST /api/refresh, and
// serves it to dashboard clients through GET /api/data.
//
// Usage:
//
//	# Start server with defaults
//	timeboard --config timeboard.yaml
//
//	# Configure via environment
//	SERVER_PORT=8787 UPSTREAM_PROJECT_ID=42 timeboard
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/timeboard/internal/cache"
	"github.com/fyrsmithlabs/timeboard/internal/config"
	"github.com/fyrsmithlabs/timeboard/internal/fetch"
	"github.com/fyrsmithlabs/timeboard/internal/logging"
	"github.com/fyrsmithlabs/timeboard/internal/server"
	"github.com/fyrsmithlabs/timeboard/internal/upstream"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  timeboard           Start the timeboard server\n")
			fmt.Fprintf(os.Stderr, "  timeboard version   Show version information\n")
			os.Exit(1)
		}
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("timeboard\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the timeboard server and blocks until context is
// cancelled.
//
// Startup refuses to serve traffic on configuration problems: a
// missing or placeholder bearer token and a missing project id are
// fatal here, not at first request.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger) // Best-effort sync on shutdown
	}()

	logger.Info("Starting timeboard",
		zap.Int("port", cfg.Server.Port),
		zap.Int64("project_id", cfg.Upstream.ProjectID),
		zap.String("cache_path", cfg.Cache.Path),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout.Duration()))

	client, err := upstream.NewClient(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Token:   cfg.Upstream.Token,
	})
	if err != nil {
		return fmt.Errorf("failed to create upstream client: %w", err)
	}

	fetcher, err := fetch.NewService(client, cfg.Upstream.ProjectID, logger.Named("fetch"))
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	store, err := cache.NewStore(cfg.Cache.Path, logger.Named("cache"))
	if err != nil {
		return fmt.Errorf("failed to create cache store: %w", err)
	}

	srv, err := server.NewServer(fetcher, store, cache.NewGate(), cfg.Upstream.ProjectID, logger.Named("http"), &server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Register metrics endpoint
	srv.Echo().GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
