// Package server provides the HTTP API for timeboard.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/timeboard/internal/cache"
	"github.com/fyrsmithlabs/timeboard/internal/model"
)

// Fetcher pulls a fresh snapshot from the upstream API.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (*model.Snapshot, error)
}

// Store persists and retrieves the cached snapshot.
type Store interface {
	Read() (*model.Snapshot, bool)
	Write(*model.Snapshot) error
}

// Server provides HTTP endpoints for timeboard.
type Server struct {
	echo      *echo.Echo
	fetcher   Fetcher
	store     Store
	gate      *cache.Gate
	projectID int64
	logger    *zap.Logger
	config    *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(fetcher Fetcher, store Store, gate *cache.Gate, projectID int64, logger *zap.Logger, cfg *Config) (*Server, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if gate == nil {
		return nil, fmt.Errorf("gate cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8787,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:      e,
		fetcher:   fetcher,
		store:     store,
		gate:      gate,
		projectID: projectID,
		logger:    logger,
		config:    cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check
	s.echo.GET("/health", s.handleHealth)

	// Client bootstrap
	s.echo.GET("/config.js", s.handleConfigJS)

	// API routes
	api := s.echo.Group("/api")
	api.GET("/data", s.handleData)
	api.POST("/refresh", s.handleRefresh)
	api.GET("/refresh/status", s.handleRefreshStatus)
}

// Echo exposes the underlying router so main can attach extra
// handlers such as /metrics.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// DataResponse is the response body for GET /api/data.
type DataResponse struct {
	Cached bool            `json:"cached"`
	Data   *model.Snapshot `json:"data"`
}

// RefreshResponse is the response body for POST /api/refresh.
type RefreshResponse struct {
	Success bool            `json:"success"`
	Data    *model.Snapshot `json:"data"`
}

// StatusResponse is the response body for GET /api/refresh/status.
type StatusResponse struct {
	InProgress bool `json:"in_progress"`
}

// ErrorResponse is the error body for failed API calls.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleConfigJS injects the public project identifier for browser
// clients. The project id is not a secret.
func (s *Server) handleConfigJS(c echo.Context) error {
	script := fmt.Sprintf("window.TIMEBOARD_PROJECT_ID = %d;\n", s.projectID)
	return c.Blob(http.StatusOK, "application/javascript", []byte(script))
}

// handleData returns the cached snapshot. An absent cache is not an
// error: the client gets cached=false and decides what to render.
func (s *Server) handleData(c echo.Context) error {
	snapshot, ok := s.store.Read()
	return c.JSON(http.StatusOK, DataResponse{Cached: ok, Data: snapshot})
}

// handleRefresh runs a full fetch-and-cache cycle. Concurrent
// refreshes are rejected with 409 before any upstream request is
// made; the gate is released on every exit path.
func (s *Server) handleRefresh(c echo.Context) error {
	if !s.gate.TryBegin() {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: cache.ErrRefreshInProgress.Error()})
	}
	defer s.gate.End()

	snapshot, err := s.fetcher.FetchSnapshot(c.Request().Context())
	if err != nil {
		s.logger.Error("refresh failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}

	if err := s.store.Write(snapshot); err != nil {
		s.logger.Error("cache write failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}

	s.logger.Info("snapshot refreshed",
		zap.String("snapshot_id", snapshot.ID),
		zap.Int("tasks", len(snapshot.Tasks)),
		zap.Int("entries", len(snapshot.TimeEntries)))

	return c.JSON(http.StatusOK, RefreshResponse{Success: true, Data: snapshot})
}

// handleRefreshStatus reports whether a refresh is running.
func (s *Server) handleRefreshStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{InProgress: s.gate.InProgress()})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
