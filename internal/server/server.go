// Package server exposes the migration engine over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ledgerlift/ledgerlift/internal/engine"
	"github.com/ledgerlift/ledgerlift/internal/service"
)

// Server hosts the batch migration API.
type Server struct {
	echo    *echo.Echo
	engine  *engine.MigrationEngine
	storage service.Storage
	logger  *slog.Logger
	addr    string
}

// New creates a server bound to the given address.
func New(addr string, migrationEngine *engine.MigrationEngine, storage service.Storage, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String())
			return nil
		},
	}))

	s := &Server{
		echo:    e,
		engine:  migrationEngine,
		storage: storage,
		logger:  logger,
		addr:    addr,
	}
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.health)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/migrations", s.createMigration)
	v1.GET("/templates", s.listTemplates)
	v1.GET("/templates/:businessType", s.getTemplate)
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.addr)
	}()

	s.logger.Info("HTTP server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}
