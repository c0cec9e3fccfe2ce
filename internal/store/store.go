// Package store persists the conversation log, analytics events and
// feedback in SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"faq_matcher/internal/config"
)

// Store is the SQL-backed persistence layer. Queries use $N placeholders,
// which both drivers accept.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open connects using the configured driver and applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	var dsn string
	switch cfg.Driver {
	case DriverSQLite:
		dsn = cfg.SQLite.Path
	case DriverPostgres:
		dsn = cfg.Postgres.GetDSN()
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		// one connection: sqlite serializes writers anyway, and :memory:
		// databases are per connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.Postgres.MaxConnections)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdle)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	s := New(db, cfg.Driver)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver, now: time.Now}
}

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	stmts, err := schemaFor(s.driver)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMessage appends to the conversation log and returns the row id.
func (s *Store) SaveMessage(ctx context.Context, m Message) (int64, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now().UTC()
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO conversations (session_id, message_type, message, response, matched_faq, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		m.SessionID, m.Type, m.Message, nullString(m.Response), nullString(m.MatchedFAQ), m.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save message: %w", err)
	}
	return id, nil
}

// Conversation returns a session's log, oldest first.
func (s *Store) Conversation(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, message_type, message, response, matched_faq, created_at
		FROM conversations
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		var response, matchedFAQ sql.NullString
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Type, &m.Message, &response, &matchedFAQ, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Response = stringPtr(response)
		m.MatchedFAQ = stringPtr(matchedFAQ)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}
	return messages, nil
}

// SaveEvent records an analytics event. data is marshalled to JSON; nil
// is stored as NULL.
func (s *Store) SaveEvent(ctx context.Context, sessionID, eventType string, data interface{}) error {
	var payload sql.NullString
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode event data: %w", err)
		}
		payload = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analytics (session_id, event_type, event_data, created_at)
		VALUES ($1, $2, $3, $4)`,
		sessionID, eventType, payload, s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

// Events returns a session's analytics events, oldest first. event_data
// is decoded into generic JSON values.
func (s *Store) Events(ctx context.Context, sessionID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, event_type, event_data, created_at
		FROM analytics
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var (
			e    Event
			data sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Type, &data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if data.Valid {
			if err := json.Unmarshal([]byte(data.String), &e.Data); err != nil {
				return nil, fmt.Errorf("failed to decode event %d: %w", e.ID, err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Summary aggregates sessions, user messages and the five most matched FAQs.
func (s *Store) Summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{TopFAQs: make([]FAQCount, 0)}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT session_id) FROM conversations`,
	).Scan(&summary.TotalSessions); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversations WHERE message_type = $1`, MessageTypeUser,
	).Scan(&summary.TotalMessages); err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT matched_faq, COUNT(*) AS count
		FROM conversations
		WHERE matched_faq IS NOT NULL
		GROUP BY matched_faq
		ORDER BY count DESC, matched_faq ASC
		LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("failed to query top faqs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fc FAQCount
		if err := rows.Scan(&fc.MatchedFAQ, &fc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan top faq: %w", err)
		}
		summary.TopFAQs = append(summary.TopFAQs, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read top faqs: %w", err)
	}
	return summary, nil
}

// SaveFeedback stores a rating and returns the row id.
func (s *Store) SaveFeedback(ctx context.Context, f Feedback) (int64, error) {
	var messageID sql.NullInt64
	if f.MessageID != nil {
		messageID = sql.NullInt64{Int64: *f.MessageID, Valid: true}
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO feedback (session_id, message_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		f.SessionID, messageID, f.Rating, f.Comment, s.now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save feedback: %w", err)
	}
	return id, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
