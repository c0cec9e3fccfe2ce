package main

import (
	"time"

	"faq_matcher/internal/responder"
	"faq_matcher/internal/store"
)

// Request/Response structures
type ChatRequest struct {
	Message   *string `json:"message"`
	SessionID string  `json:"session_id"`
}

type ChatResponse struct {
	Success   bool            `json:"success"`
	SessionID string          `json:"session_id"`
	Data      responder.Reply `json:"data"`
}

type ConversationData struct {
	SessionID    string          `json:"session_id"`
	History      []store.Message `json:"history"`
	MessageCount int             `json:"message_count"`
}

type ConversationResponse struct {
	Success bool             `json:"success"`
	Data    ConversationData `json:"data"`
}

type AnalyticsResponse struct {
	Success bool           `json:"success"`
	Data    *store.Summary `json:"data"`
}

// FeedbackRequest uses a pointer for rating so a missing rating can be
// told apart from zero.
type FeedbackRequest struct {
	SessionID string `json:"session_id"`
	MessageID *int64 `json:"message_id"`
	Rating    *int   `json:"rating"`
	Comment   string `json:"comment"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type WelcomeData struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type WelcomeResponse struct {
	Success bool        `json:"success"`
	Data    WelcomeData `json:"data"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type ReloadResponse struct {
	Message    string    `json:"message"`
	Entries    int       `json:"entries"`
	ReloadedAt time.Time `json:"reloaded_at"`
}

// ErrorResponse is written by the HTTP error handler.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
