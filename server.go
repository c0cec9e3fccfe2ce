package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"faq_matcher/internal/apperr"
	"faq_matcher/internal/chat"
	"faq_matcher/internal/config"
	"faq_matcher/internal/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP front of the chat service.
type Server struct {
	echo  *echo.Echo
	cfg   *config.Config
	chat  *chat.Service
	kb    *KnowledgeCache
	db    pinger
	cache pinger
	log   logger.Logger
	now   func() time.Time
}

func NewServer(cfg *config.Config, svc *chat.Service, kb *KnowledgeCache, db, cache pinger, log logger.Logger) *Server {
	s := &Server{
		echo:  echo.New(),
		cfg:   cfg,
		chat:  svc,
		kb:    kb,
		db:    db,
		cache: cache,
		log:   log,
		now:   time.Now,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Info("request", map[string]interface{}{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"remote_ip":  v.RemoteIP,
			})
			return nil
		},
	}))

	// Routes
	api := e.Group("/api")
	api.POST("/chat", s.handleChat)
	api.GET("/conversation/:session_id", s.handleConversation)
	api.GET("/analytics", s.handleAnalytics)
	api.POST("/feedback", s.handleFeedback)
	api.GET("/welcome", s.handleWelcome)
	api.GET("/health", s.handleHealth)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Admin endpoints for manual reload
	admin := e.Group("/admin")
	admin.POST("/reload", s.handleReload)
	admin.GET("/kb-info", s.handleKnowledgeInfo)

	return s
}

// Start blocks serving on the configured port until Shutdown.
func (s *Server) Start() error {
	addr := ":" + s.cfg.Server.Port
	s.log.Info("FAQ matcher started", map[string]interface{}{
		"addr":    addr,
		"version": s.cfg.App.Version,
	})
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := ErrorResponse{Error: "An error occurred processing your request"}

	var he *echo.HTTPError
	if stdErr, ok := apperr.As(err); ok {
		status = stdErr.HTTPStatus()
		body.Error = stdErr.Message
		body.Code = string(stdErr.Code)
		if status < http.StatusInternalServerError {
			body.Details = stdErr.Details
		}
	} else if errors.As(err, &he) {
		status = he.Code
		body.Error = fmt.Sprint(he.Message)
	}

	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("Request failed", map[string]interface{}{
			"method": c.Request().Method,
			"path":   c.Path(),
			"status": status,
		})
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.log.WithError(err).Warn("Failed to write error response", nil)
	}
}
