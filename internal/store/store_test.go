package store

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faq_matcher/internal/config"
)

var fixedNow = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func setupMockDB(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(db, DriverSQLite)
	s.now = func() time.Time { return fixedNow }
	return s, mock
}

func strPtr(s string) *string { return &s }

func TestSaveMessage(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO conversations")).
		WithArgs("session-1", MessageTypeBot, "answer", "answer", "seo_overview", fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := s.SaveMessage(context.Background(), Message{
		SessionID:  "session-1",
		Type:       MessageTypeBot,
		Message:    "answer",
		Response:   strPtr("answer"),
		MatchedFAQ: strPtr("seo_overview"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMessage_NullColumns(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO conversations")).
		WithArgs("session-1", MessageTypeUser, "hi", nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	_, err := s.SaveMessage(context.Background(), Message{SessionID: "session-1", Type: MessageTypeUser, Message: "hi"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMessage_Error(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO conversations")).
		WillReturnError(errors.New("database is locked"))

	_, err := s.SaveMessage(context.Background(), Message{SessionID: "s", Type: MessageTypeUser, Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save message")
}

func TestConversation(t *testing.T) {
	s, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "session_id", "message_type", "message", "response", "matched_faq", "created_at"}).
		AddRow(1, "session-1", MessageTypeUser, "seo", nil, nil, fixedNow).
		AddRow(2, "session-1", MessageTypeBot, "We offer", "We offer", "seo_services_detail", fixedNow)
	mock.ExpectQuery(regexp.QuoteMeta("FROM conversations")).
		WithArgs("session-1").
		WillReturnRows(rows)

	history, err := s.Conversation(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, MessageTypeUser, history[0].Type)
	assert.Nil(t, history[0].Response)
	assert.Nil(t, history[0].MatchedFAQ)
	require.NotNil(t, history[1].MatchedFAQ)
	assert.Equal(t, "seo_services_detail", *history[1].MatchedFAQ)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveEvent(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analytics")).
		WithArgs("session-1", EventContactCaptured, `{"email":"a@b.com"}`, fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analytics")).
		WithArgs("session-1", "session_opened", nil, fixedNow).
		WillReturnResult(sqlmock.NewResult(2, 1))

	ctx := context.Background()
	require.NoError(t, s.SaveEvent(ctx, "session-1", EventContactCaptured, map[string]string{"email": "a@b.com"}))
	require.NoError(t, s.SaveEvent(ctx, "session-1", "session_opened", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveEvent_UnencodableData(t *testing.T) {
	s, _ := setupMockDB(t)

	err := s.SaveEvent(context.Background(), "s", "bad", map[string]interface{}{"ch": make(chan int)})
	assert.ErrorContains(t, err, "failed to encode event data")
}

func TestSummary(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT session_id) FROM conversations")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM conversations WHERE message_type = $1")).
		WithArgs(MessageTypeUser).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY matched_faq")).
		WillReturnRows(sqlmock.NewRows([]string{"matched_faq", "count"}).
			AddRow("fallback", 4).
			AddRow("seo_overview", 2))

	summary, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalSessions)
	assert.Equal(t, 7, summary.TotalMessages)
	assert.Equal(t, []FAQCount{{"fallback", 4}, {"seo_overview", 2}}, summary.TopFAQs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveFeedback(t *testing.T) {
	s, mock := setupMockDB(t)

	msgID := int64(9)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO feedback")).
		WithArgs("session-1", msgID, 5, "great", fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	id, err := s.SaveFeedback(context.Background(), Feedback{SessionID: "session-1", MessageID: &msgID, Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_UnsupportedDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = New(db, "mysql").Migrate(context.Background())
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestMigrate_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("BIGSERIAL PRIMARY KEY")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_conversations_session")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS analytics")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS feedback")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, New(db, DriverPostgres).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, config.DatabaseConfig{
		Driver: DriverSQLite,
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "chatbot.db")},
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(ctx))

	_, err = s.SaveMessage(ctx, Message{SessionID: "a", Type: MessageTypeUser, Message: "seo"})
	require.NoError(t, err)
	botID, err := s.SaveMessage(ctx, Message{SessionID: "a", Type: MessageTypeBot, Message: "answer", Response: strPtr("answer"), MatchedFAQ: strPtr("seo_overview")})
	require.NoError(t, err)
	_, err = s.SaveMessage(ctx, Message{SessionID: "b", Type: MessageTypeUser, Message: "hello"})
	require.NoError(t, err)
	_, err = s.SaveMessage(ctx, Message{SessionID: "b", Type: MessageTypeBot, Message: "menu", Response: strPtr("menu"), MatchedFAQ: strPtr("fallback")})
	require.NoError(t, err)

	history, err := s.Conversation(ctx, "a")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "seo", history[0].Message)
	assert.Equal(t, botID, history[1].ID)

	require.NoError(t, s.SaveEvent(ctx, "a", EventMessageProcessed, map[string]interface{}{"intent": "seo", "confidence": 1.0}))
	events, err := s.Events(ctx, "a")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, map[string]interface{}{"intent": "seo", "confidence": 1.0}, events[0].Data)

	summary, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalSessions)
	assert.Equal(t, 2, summary.TotalMessages)
	assert.ElementsMatch(t, []FAQCount{{"fallback", 1}, {"seo_overview", 1}}, summary.TopFAQs)

	_, err = s.SaveFeedback(ctx, Feedback{SessionID: "a", Rating: 4})
	require.NoError(t, err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported driver")
}
