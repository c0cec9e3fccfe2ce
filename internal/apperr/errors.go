// Package apperr provides the service's structured error type and its
// mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode is a stable, client-visible error identifier.
type ErrorCode string

const (
	ErrCodeInvalidRequest       ErrorCode = "INVALID_REQUEST"
	ErrCodeMessageRequired      ErrorCode = "MESSAGE_REQUIRED"
	ErrCodeFeedbackInvalid      ErrorCode = "FEEDBACK_INVALID"
	ErrCodePersistenceFailed    ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeKnowledgeBaseInvalid ErrorCode = "KNOWLEDGE_BASE_INVALID"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError is a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the error code to a response status.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeInvalidRequest, ErrCodeMessageRequired, ErrCodeFeedbackInvalid, ErrCodeKnowledgeBaseInvalid:
		return http.StatusBadRequest
	case ErrCodePersistenceFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newError(code ErrorCode, msg, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   msg,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Invalid request", details, false, nil)
}

// NewMessageRequiredError is returned for a missing or blank chat message.
func NewMessageRequiredError(details string) *StandardError {
	return newError(ErrCodeMessageRequired, "Message is required", details, false, nil)
}

func NewFeedbackInvalidError(details string) *StandardError {
	return newError(ErrCodeFeedbackInvalid, "session_id and rating are required", details, false, nil)
}

// NewPersistenceFailedError wraps a storage failure.
func NewPersistenceFailedError(op string, err error) *StandardError {
	return newError(ErrCodePersistenceFailed, "Storage operation failed", fmt.Sprintf("op: %s, error: %v", op, err), true, err)
}

func NewKnowledgeBaseInvalidError(err error) *StandardError {
	return newError(ErrCodeKnowledgeBaseInvalid, "Knowledge base is invalid", err.Error(), false, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "An error occurred processing your request", err.Error(), false, err)
}

// As extracts a *StandardError from err's chain.
func As(err error) (*StandardError, bool) {
	var se *StandardError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
