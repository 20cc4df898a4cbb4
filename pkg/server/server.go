// Package server exposes the orchestrator over HTTP. The upstream credential
// never leaves this process; browsers only see subtitle data.
package server

import (
	"context"
	"net/http"

	"github.com/angelospk/subsubs/pkg/core/opensubtitles"
	"github.com/angelospk/subsubs/pkg/metrics"
	"github.com/angelospk/subsubs/pkg/orchestrator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// BodyLimit caps request bodies.
const BodyLimit = "1M"

// Service is what the HTTP layer needs from the orchestrator.
type Service interface {
	SubmitSearch(ctx context.Context, session *orchestrator.Session, query string) orchestrator.SearchOutcome
	SubmitDownload(ctx context.Context, record opensubtitles.SubtitleRecord) orchestrator.DownloadOutcome
	GetHistory(ctx context.Context, limit int) orchestrator.HistoryOutcome
}

var _ Service = (*orchestrator.Orchestrator)(nil)

// Server handles HTTP requests for the subtitle API.
type Server struct {
	echo    *echo.Echo
	service Service
	logger  *log.Entry
}

// NewServer creates a new API server instance.
func NewServer(service Service, logger *log.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		service: service,
		logger:  logger.WithField("component", "server"),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.BodyLimit(BodyLimit))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := s.logger.WithFields(log.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency,
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request error")
			} else {
				entry.Info("request")
			}
			return nil
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := s.echo.Group("/api/subtitles")
	api.POST("/search", s.search)
	api.POST("/download", s.download)
	api.GET("/history", s.history)
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.WithField("address", address).Info("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
