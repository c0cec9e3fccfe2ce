// Package chat ties the responder to persistence: it answers a message,
// records the exchange and its analytics, and serves history and feedback.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/multierr"

	"faq_matcher/internal/apperr"
	"faq_matcher/internal/logger"
	"faq_matcher/internal/metrics"
	"faq_matcher/internal/responder"
	"faq_matcher/internal/sessioncache"
	"faq_matcher/internal/store"
)

// Processor answers a single message.
type Processor interface {
	Process(message string) responder.Reply
}

// Store is the persistence the service needs. *store.Store implements it.
type Store interface {
	SaveMessage(ctx context.Context, m store.Message) (int64, error)
	Conversation(ctx context.Context, sessionID string) ([]store.Message, error)
	SaveEvent(ctx context.Context, sessionID, eventType string, data interface{}) error
	Summary(ctx context.Context) (*store.Summary, error)
	SaveFeedback(ctx context.Context, f store.Feedback) (int64, error)
}

type Service struct {
	processor Processor
	store     Store
	cache     sessioncache.Cache
	log       logger.Logger
	locks     *keyedMutex
	now       func() time.Time
}

type Option func(*Service)

func WithCache(c sessioncache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(p Processor, st Store, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		processor: p,
		store:     st,
		cache:     sessioncache.Noop{},
		log:       log,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle answers message and records the exchange. The reply is always
// returned; a non-nil error only reports persistence failures.
func (s *Service) Handle(ctx context.Context, sessionID, message string) (responder.Reply, error) {
	reply := s.processor.Process(message)
	observe(reply)

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	err := s.record(ctx, sessionID, message, reply)
	if err != nil {
		s.log.WithError(err).Error("Failed to persist chat exchange", map[string]interface{}{
			"session_id":  sessionID,
			"matched_faq": reply.MatchedKey,
		})
	}

	s.log.Debug("Message processed", map[string]interface{}{
		"session_id":  sessionID,
		"intent":      reply.Intent,
		"matched_faq": reply.MatchedKey,
		"confidence":  reply.Confidence,
	})
	return reply, err
}

func (s *Service) record(ctx context.Context, sessionID, message string, reply responder.Reply) error {
	var errs error
	var cached []store.Message

	now := s.now().UTC()
	userMsg := store.Message{
		SessionID: sessionID,
		Type:      store.MessageTypeUser,
		Message:   message,
		CreatedAt: now,
	}
	if id, err := s.store.SaveMessage(ctx, userMsg); err != nil {
		errs = multierr.Append(errs, s.persistenceError("save_user_message", err))
	} else {
		userMsg.ID = id
		cached = append(cached, userMsg)
	}

	response, matched := reply.Response, reply.MatchedKey
	botMsg := store.Message{
		SessionID:  sessionID,
		Type:       store.MessageTypeBot,
		Message:    response,
		Response:   &response,
		MatchedFAQ: &matched,
		CreatedAt:  now,
	}
	if id, err := s.store.SaveMessage(ctx, botMsg); err != nil {
		errs = multierr.Append(errs, s.persistenceError("save_bot_message", err))
	} else {
		botMsg.ID = id
		cached = append(cached, botMsg)
	}

	event := map[string]interface{}{
		"intent":      reply.Intent,
		"entities":    reply.Entities,
		"matched_faq": reply.MatchedKey,
		"confidence":  reply.Confidence,
	}
	if err := s.store.SaveEvent(ctx, sessionID, store.EventMessageProcessed, event); err != nil {
		errs = multierr.Append(errs, s.persistenceError("save_event", err))
	}

	if reply.Entities.HasContact() {
		metrics.ContactsCaptured.Inc()
		if err := s.store.SaveEvent(ctx, sessionID, store.EventContactCaptured, reply.Entities); err != nil {
			errs = multierr.Append(errs, s.persistenceError("save_contact", err))
		}
	}

	if err := s.cache.Append(ctx, sessionID, cached...); err != nil {
		s.log.WithError(err).Warn("Failed to update session cache", map[string]interface{}{"session_id": sessionID})
	}
	return errs
}

func (s *Service) persistenceError(op string, err error) error {
	metrics.PersistenceErrors.WithLabelValues(op).Inc()
	return apperr.NewPersistenceFailedError(op, err)
}

func observe(reply responder.Reply) {
	metrics.MessagesProcessed.WithLabelValues(string(reply.Intent), reply.Category).Inc()
	metrics.MatchConfidence.Observe(reply.Confidence)
	if reply.Fallback != "" {
		metrics.FallbackResponses.WithLabelValues(reply.Fallback).Inc()
	}
}

// History returns the session's conversation log, oldest first, reading
// the session cache before the store.
func (s *Service) History(ctx context.Context, sessionID string) ([]store.Message, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	msgs, err := s.cache.Recent(ctx, sessionID)
	if err == nil {
		return msgs, nil
	}
	if !errors.Is(err, sessioncache.ErrCacheMiss) {
		s.log.WithError(err).Warn("Session cache read failed", map[string]interface{}{"session_id": sessionID})
	}

	msgs, err = s.store.Conversation(ctx, sessionID)
	if err != nil {
		return nil, s.persistenceError("conversation", err)
	}
	if len(msgs) > 0 {
		if err := s.cache.Fill(ctx, sessionID, msgs); err != nil {
			s.log.WithError(err).Warn("Failed to fill session cache", map[string]interface{}{"session_id": sessionID})
		}
	}
	return msgs, nil
}

func (s *Service) Summary(ctx context.Context) (*store.Summary, error) {
	summary, err := s.store.Summary(ctx)
	if err != nil {
		return nil, s.persistenceError("summary", err)
	}
	return summary, nil
}

// Feedback stores a rating for a session.
func (s *Service) Feedback(ctx context.Context, sessionID string, rating int, comment string, messageID *int64) (int64, error) {
	if strings.TrimSpace(sessionID) == "" {
		return 0, apperr.NewFeedbackInvalidError("session_id is required")
	}

	id, err := s.store.SaveFeedback(ctx, store.Feedback{
		SessionID: sessionID,
		MessageID: messageID,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		return 0, s.persistenceError("save_feedback", err)
	}

	s.log.Info("Feedback received", map[string]interface{}{
		"session_id": sessionID,
		"rating":     rating,
	})
	return id, nil
}
