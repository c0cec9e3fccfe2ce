package matcher

import (
	"strings"
	"unicode/utf8"
)

// Weights are the points awarded by each scoring rule.
type Weights struct {
	Exact       float64 // whole message equals the keyword
	Contains    float64 // keyword appears inside the message
	PerWord     float64 // added to Contains for each word of the keyword
	Within      float64 // message appears inside the keyword
	Token       float64 // per message token found inside the keyword
	Scale       float64 // score that maps to confidence 1.0
	MinWithin   int     // shortest message, in runes, eligible for Within
	MinTokenLen int     // shortest token, in runes, eligible for Token
}

// DefaultWeights are the production scoring weights.
var DefaultWeights = Weights{
	Exact:       50,
	Contains:    20,
	PerWord:     5,
	Within:      15,
	Token:       8,
	Scale:       50,
	MinWithin:   3,
	MinTokenLen: 3,
}

// input is the normalized message shared by every rule.
type input struct {
	text   string
	tokens []string
}

// keyword is a lowered keyword with its word count.
type keyword struct {
	text  string
	words int
}

// Rule scores one keyword against the message. A zero score means the
// rule did not fire.
type Rule struct {
	Name  string
	Score func(in input, kw keyword) float64
}

func exactRule(w Weights) Rule {
	return Rule{Name: "exact", Score: func(in input, kw keyword) float64 {
		if in.text == kw.text {
			return w.Exact
		}
		return 0
	}}
}

func containsRule(w Weights) Rule {
	return Rule{Name: "contains", Score: func(in input, kw keyword) float64 {
		if strings.Contains(in.text, kw.text) {
			return w.Contains + w.PerWord*float64(kw.words)
		}
		return 0
	}}
}

func withinRule(w Weights) Rule {
	return Rule{Name: "within", Score: func(in input, kw keyword) float64 {
		if utf8.RuneCountInString(in.text) >= w.MinWithin && strings.Contains(kw.text, in.text) {
			return w.Within
		}
		return 0
	}}
}

func tokenRule(w Weights) Rule {
	return Rule{Name: "token", Score: func(in input, kw keyword) float64 {
		var score float64
		for _, tok := range in.tokens {
			if utf8.RuneCountInString(tok) >= w.MinTokenLen && strings.Contains(kw.text, tok) {
				score += w.Token
			}
		}
		return score
	}}
}

// ruleSet splits the rules into an ordered exclusive chain, where only the
// first rule that fires counts, and rules that always run.
type ruleSet struct {
	exclusive []Rule
	additive  []Rule
}

func defaultRules(w Weights) ruleSet {
	return ruleSet{
		exclusive: []Rule{exactRule(w), containsRule(w), withinRule(w)},
		additive:  []Rule{tokenRule(w)},
	}
}

func (rs ruleSet) score(in input, kw keyword) float64 {
	var score float64
	for _, r := range rs.exclusive {
		if s := r.Score(in, kw); s > 0 {
			score += s
			break
		}
	}
	for _, r := range rs.additive {
		score += r.Score(in, kw)
	}
	return score
}
