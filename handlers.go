package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"faq_matcher/internal/apperr"
	"faq_matcher/internal/responder"
)

const sessionPrefix = "session_"

func (s *Server) handleHealth(c echo.Context) error {
	ctx := c.Request().Context()
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: s.now().Format(time.RFC3339Nano),
		Version:   s.cfg.App.Version,
		Checks:    map[string]string{"database": "ok", "cache": "ok"},
	}
	if err := s.db.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Checks["database"] = "unavailable"
	}
	if err := s.cache.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Checks["cache"] = "unavailable"
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewInvalidRequestError("request body must be JSON")
	}
	if req.Message == nil {
		return apperr.NewMessageRequiredError("message is required")
	}

	message := strings.TrimSpace(*req.Message)
	if message == "" {
		return apperr.NewMessageRequiredError("message cannot be empty")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = sessionPrefix + uuid.NewString()
	}

	// persistence failures are logged by the service and do not change the reply
	reply, _ := s.chat.Handle(c.Request().Context(), sessionID, message)

	return c.JSON(http.StatusOK, ChatResponse{
		Success:   true,
		SessionID: sessionID,
		Data:      reply,
	})
}

func (s *Server) handleConversation(c echo.Context) error {
	sessionID := c.Param("session_id")

	history, err := s.chat.History(c.Request().Context(), sessionID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ConversationResponse{
		Success: true,
		Data: ConversationData{
			SessionID:    sessionID,
			History:      history,
			MessageCount: len(history),
		},
	})
}

func (s *Server) handleAnalytics(c echo.Context) error {
	summary, err := s.chat.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AnalyticsResponse{Success: true, Data: summary})
}

func (s *Server) handleFeedback(c echo.Context) error {
	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewInvalidRequestError("request body must be JSON")
	}
	if req.SessionID == "" || req.Rating == nil {
		return apperr.NewFeedbackInvalidError("session_id and rating are required")
	}

	if _, err := s.chat.Feedback(c.Request().Context(), req.SessionID, *req.Rating, req.Comment, req.MessageID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "Feedback submitted successfully",
	})
}

func (s *Server) handleWelcome(c echo.Context) error {
	return c.JSON(http.StatusOK, WelcomeResponse{
		Success: true,
		Data: WelcomeData{
			Message:   responder.Welcome(),
			Timestamp: s.now().Format(time.RFC3339Nano),
		},
	})
}

func (s *Server) handleReload(c echo.Context) error {
	if err := s.kb.Reload(); err != nil {
		return err
	}

	info := s.kb.Info()
	return c.JSON(http.StatusOK, ReloadResponse{
		Message:    "Knowledge base reloaded",
		Entries:    info.Entries,
		ReloadedAt: info.LoadedAt,
	})
}

func (s *Server) handleKnowledgeInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, s.kb.Info())
}
