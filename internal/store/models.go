package store

import "time"

// Message types recorded in the conversation log.
const (
	MessageTypeUser = "user"
	MessageTypeBot  = "bot"
)

// Analytics event types.
const (
	EventMessageProcessed = "message_processed"
	EventContactCaptured  = "contact_captured"
)

// Message is one row of the conversation log.
type Message struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Type       string    `json:"message_type"`
	Message    string    `json:"message"`
	Response   *string   `json:"response"`
	MatchedFAQ *string   `json:"matched_faq"`
	CreatedAt  time.Time `json:"timestamp"`
}

// Event is an analytics record; Data is stored as JSON.
type Event struct {
	ID        int64       `json:"id"`
	SessionID string      `json:"session_id"`
	Type      string      `json:"event_type"`
	Data      interface{} `json:"event_data,omitempty"`
	CreatedAt time.Time   `json:"timestamp"`
}

// Feedback is a rating left for a session, optionally tied to a message.
type Feedback struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	MessageID *int64    `json:"message_id,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"timestamp"`
}

// FAQCount is how often a FAQ key was the answer.
type FAQCount struct {
	MatchedFAQ string `json:"matched_faq"`
	Count      int    `json:"count"`
}

// Summary is the analytics dashboard payload.
type Summary struct {
	TotalSessions int        `json:"total_sessions"`
	TotalMessages int        `json:"total_messages"`
	TopFAQs       []FAQCount `json:"top_faqs"`
}
