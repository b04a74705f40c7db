// Package api exposes the engine over HTTP: sensor reading ingestion,
// community report intake and verification, and prediction queries.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/escalation"
	"github.com/wildguard/wildguard-go/internal/logging"
	"github.com/wildguard/wildguard-go/internal/prediction"
	"github.com/wildguard/wildguard-go/internal/report"
)

// Server is the HTTP front of the engine.
type Server struct {
	settings     *conf.Settings
	orchestrator *escalation.Orchestrator
	reports      *report.Service
	predictions  *prediction.Service
	echo         *echo.Echo
	log          *slog.Logger
}

// New creates the HTTP server and registers all routes.
func New(
	settings *conf.Settings,
	orchestrator *escalation.Orchestrator,
	reports *report.Service,
	predictions *prediction.Service,
	registry *prometheus.Registry,
) *Server {
	logger := logging.ForService("api")
	if logger == nil {
		logger = slog.Default().With("service", "api")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		settings:     settings,
		orchestrator: orchestrator,
		reports:      reports,
		predictions:  predictions,
		echo:         e,
		log:          logger,
	}

	e.Use(s.requestLogger)

	v1 := e.Group("/api/v1")
	v1.POST("/readings", s.postReading)
	v1.POST("/reports", s.postReport)
	v1.POST("/reports/:id/verify", s.postVerification)
	v1.GET("/threats/current", s.getCurrentThreats)
	v1.GET("/threats/summary", s.getDailySummary)

	e.GET("/healthz", s.getHealth)
	if registry != nil {
		e.GET("/metrics", echo.WrapHandler(
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return s
}

// Start serves HTTP on the configured port until the server is shut down.
func (s *Server) Start() error {
	addr := ":" + s.settings.WebServer.Port
	s.log.Info("HTTP server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requestLogger records one structured log line per request.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		err := next(c)
		s.log.Info("http request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration_ms", time.Since(started).Milliseconds())
		return err
	}
}

func (s *Server) getHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
