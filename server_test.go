package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faq_matcher/internal/chat"
	"faq_matcher/internal/config"
	"faq_matcher/internal/logger"
	"faq_matcher/internal/responder"
	"faq_matcher/internal/sessioncache"
	"faq_matcher/internal/store"
)

var fixedNow = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Name: "faq_matcher", Version: "2.2.0"},
		Server:    config.ServerConfig{Port: "0"},
		Knowledge: config.KnowledgeConfig{Path: filepath.Join("knowledge", "faqs.yaml")},
	}
}

func setupServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	cfg := testConfig()
	log := logger.NewTestLogger(t)

	kb, err := NewKnowledgeCache(cfg.Knowledge.Path, log, responder.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	db, err := store.Open(context.Background(), config.DatabaseConfig{
		Driver: store.DriverSQLite,
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "chatbot.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache := sessioncache.Noop{}
	svc := chat.NewService(kb, db, log, chat.WithCache(cache))
	srv := NewServer(cfg, svc, kb, db, cache, log)
	srv.now = func() time.Time { return fixedNow }
	return srv, db
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestChat_MatchesFAQ(t *testing.T) {
	s, db := setupServer(t)

	rec := do(t, s, http.MethodPost, "/api/chat", `{"message":"  seo  ","session_id":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "abc", body["session_id"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "seo", data["intent"])
	assert.Equal(t, 1.0, data["confidence"])
	assert.Equal(t, "seo_services", data["category"])
	assert.Equal(t, "2024-03-01T10:30:00Z", data["timestamp"])
	assert.NotContains(t, data, "MatchedKey")

	history, err := db.Conversation(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "seo", history[0].Message)
	assert.Equal(t, "seo_services_detail", *history[1].MatchedFAQ)

	events, err := db.Events(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, store.EventMessageProcessed, events[0].Type)
}

func TestChat_GeneratesSessionID(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(t, s, http.MethodPost, "/api/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	sessionID := decode(t, rec)["session_id"].(string)
	assert.True(t, strings.HasPrefix(sessionID, sessionPrefix))
	assert.Len(t, sessionID, len(sessionPrefix)+36)
}

func TestChat_Validation(t *testing.T) {
	s, _ := setupServer(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing message", `{"session_id":"abc"}`, "MESSAGE_REQUIRED"},
		{"blank message", `{"message":"   "}`, "MESSAGE_REQUIRED"},
		{"malformed json", `{"message":`, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestConversation(t *testing.T) {
	s, _ := setupServer(t)

	do(t, s, http.MethodPost, "/api/chat", `{"message":"free consultation","session_id":"s1"}`)
	do(t, s, http.MethodPost, "/api/chat", `{"message":"jane@example.com","session_id":"s1"}`)

	rec := do(t, s, http.MethodGet, "/api/conversation/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "s1", data["session_id"])
	assert.Equal(t, 4.0, data["message_count"])

	history := data["history"].([]interface{})
	first := history[0].(map[string]interface{})
	assert.Equal(t, "user", first["message_type"])
	assert.Nil(t, first["matched_faq"])
	last := history[3].(map[string]interface{})
	assert.Equal(t, "fallback", last["matched_faq"])
	assert.Contains(t, last["message"], "(jane@example.com)")
}

func TestConversation_Unknown(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(t, s, http.MethodGet, "/api/conversation/nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, 0.0, data["message_count"])
	assert.Equal(t, []interface{}{}, data["history"])
}

func TestAnalytics(t *testing.T) {
	s, _ := setupServer(t)

	do(t, s, http.MethodPost, "/api/chat", `{"message":"seo","session_id":"a"}`)
	do(t, s, http.MethodPost, "/api/chat", `{"message":"seo","session_id":"b"}`)
	do(t, s, http.MethodPost, "/api/chat", `{"message":"qqq","session_id":"b"}`)

	rec := do(t, s, http.MethodGet, "/api/analytics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, 2.0, data["total_sessions"])
	assert.Equal(t, 3.0, data["total_messages"])

	top := data["top_faqs"].([]interface{})
	require.Len(t, top, 2)
	assert.Equal(t, map[string]interface{}{"matched_faq": "seo_services_detail", "count": 2.0}, top[0])
}

func TestFeedback(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(t, s, http.MethodPost, "/api/feedback", `{"session_id":"s1","rating":0,"comment":"meh"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Feedback submitted successfully", decode(t, rec)["message"])

	for _, body := range []string{`{"rating":5}`, `{"session_id":"s1"}`} {
		rec = do(t, s, http.MethodPost, "/api/feedback", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "FEEDBACK_INVALID", decode(t, rec)["code"])
	}
}

func TestWelcome(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(t, s, http.MethodGet, "/api/welcome", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, responder.Welcome(), data["message"])
	assert.Equal(t, "2024-03-01T10:30:00Z", data["timestamp"])
}

func TestHealth(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "2.2.0", body["version"])

	s.cache = downPinger{}
	body = decode(t, do(t, s, http.MethodGet, "/api/health", ""))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unavailable", body["checks"].(map[string]interface{})["cache"])
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := setupServer(t)
	do(t, s, http.MethodPost, "/api/chat", `{"message":"seo","session_id":"m"}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "faq_messages_processed_total")
}

func TestAdminKnowledgeInfo(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(t, s, http.MethodGet, "/admin/kb-info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, 24.0, body["entries"])
	assert.Equal(t, false, body["watching"])

	rec = do(t, s, http.MethodPost, "/admin/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 24.0, decode(t, rec)["entries"])
	assert.Equal(t, 1, s.kb.Info().Reloads)
}

func TestUnknownRoute(t *testing.T) {
	s, _ := setupServer(t)

	rec := do(t, s, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])
}
