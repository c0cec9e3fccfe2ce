// Package responder turns a chat message into a reply: best FAQ match or
// fallback, plus intent and extracted entities. It performs no I/O.
package responder

import (
	"time"

	"faq_matcher/internal/knowledge"
	"faq_matcher/internal/matcher"
	"faq_matcher/internal/nlp"
)

const (
	// FallbackKey is recorded as the matched FAQ when the fallback is used.
	FallbackKey = "fallback"

	FallbackKindContact = "contact"
	FallbackKindMenu    = "menu"
)

// Reply is the composed answer for one message.
type Reply struct {
	Response   string       `json:"response"`
	Intent     nlp.Intent   `json:"intent"`
	Entities   nlp.Entities `json:"entities"`
	Confidence float64      `json:"confidence"`
	Category   string       `json:"category"`
	Options    []string     `json:"options,omitempty"`
	Timestamp  string       `json:"timestamp"`

	MatchedKey string `json:"-"`
	// Fallback is empty for FAQ answers, otherwise FallbackKindContact or FallbackKindMenu.
	Fallback string `json:"-"`
}

// Responder composes replies from a Scorer. Safe for concurrent use.
type Responder struct {
	scorer    *matcher.Scorer
	threshold float64
	now       func() time.Time
}

type Option func(*Responder)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Responder) {
		r.now = now
	}
}

// WithThreshold overrides matcher.AcceptThreshold.
func WithThreshold(threshold float64) Option {
	return func(r *Responder) {
		r.threshold = threshold
	}
}

func New(scorer *matcher.Scorer, opts ...Option) *Responder {
	r := &Responder{
		scorer:    scorer,
		threshold: matcher.AcceptThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Base returns the knowledge base the responder answers from.
func (r *Responder) Base() *knowledge.Base {
	return r.scorer.Base()
}

// Process answers a single message. Any string, including an empty one,
// yields a valid reply.
func (r *Responder) Process(message string) Reply {
	intent := nlp.ExtractIntent(message)
	entities := nlp.ExtractEntities(message)
	match := r.scorer.FindBestMatch(message)

	reply := Reply{
		Intent:     intent,
		Entities:   entities,
		Confidence: match.Confidence,
		Timestamp:  r.now().Format(time.RFC3339Nano),
	}

	if match.Accepted(r.threshold) {
		reply.Response = match.Entry.Response
		reply.Category = match.Entry.Category
		reply.Options = match.Entry.Options
		reply.MatchedKey = match.Key
		return reply
	}

	reply.MatchedKey = FallbackKey
	reply.Category = knowledge.DefaultCategory
	if contact, ok := entities.Contact(); ok {
		reply.Response = contactAcknowledgement(contact)
		reply.Fallback = FallbackKindContact
	} else {
		reply.Response = fallbackMenu
		reply.Fallback = FallbackKindMenu
	}
	return reply
}
