// Package matcher ranks knowledge base entries against a chat message by
// keyword overlap.
package matcher

import (
	"strings"

	"faq_matcher/internal/knowledge"
	"faq_matcher/internal/nlp"
)

const (
	// NoMatchKey is the Result key when no entry scored at all.
	NoMatchKey = "none"

	// AcceptThreshold is the confidence a match must exceed to be used.
	// A single token hit (8/50) already clears it.
	AcceptThreshold = 0.08
)

// Result is the best entry for a message.
type Result struct {
	Entry      *knowledge.Entry
	Key        string
	Score      float64
	Confidence float64
}

// Accepted reports whether the match is strong enough to answer with.
// The comparison is strict.
func (r Result) Accepted(threshold float64) bool {
	return r.Entry != nil && r.Confidence > threshold
}

// Scorer holds a knowledge base and the rules used to score it. It is
// immutable after construction and safe for concurrent use.
type Scorer struct {
	base     *knowledge.Base
	weights  Weights
	rules    ruleSet
	keywords [][]keyword
}

type Option func(*Scorer)

// WithWeights replaces the default rule weights.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// New builds a Scorer over base. Keywords are lowered once here.
func New(base *knowledge.Base, opts ...Option) *Scorer {
	s := &Scorer{
		base:    base,
		weights: DefaultWeights,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rules = defaultRules(s.weights)

	entries := base.Entries()
	s.keywords = make([][]keyword, len(entries))
	for i, e := range entries {
		kws := make([]keyword, 0, len(e.Keywords))
		for _, raw := range e.Keywords {
			kws = append(kws, keyword{
				text:  nlp.Lower(raw),
				words: len(strings.Fields(raw)),
			})
		}
		s.keywords[i] = kws
	}
	return s
}

// Base returns the knowledge base being scored.
func (s *Scorer) Base() *knowledge.Base {
	return s.base
}

// FindBestMatch scores every entry and returns the highest. Ties keep the
// entry declared first. Confidence is score/Scale clamped to 1.
func (s *Scorer) FindBestMatch(text string) Result {
	normalized := nlp.Normalize(text)
	in := input{
		text:   normalized,
		tokens: strings.Fields(normalized),
	}

	result := Result{Key: NoMatchKey}
	entries := s.base.Entries()
	for i := range entries {
		var score float64
		for _, kw := range s.keywords[i] {
			score += s.rules.score(in, kw)
		}
		if score > result.Score {
			result.Score = score
			result.Entry = &entries[i]
			result.Key = entries[i].Key
		}
	}

	result.Confidence = s.confidence(result.Score)
	return result
}

func (s *Scorer) confidence(score float64) float64 {
	if s.weights.Scale <= 0 {
		return 0
	}
	c := score / s.weights.Scale
	if c > 1 {
		return 1
	}
	return c
}
