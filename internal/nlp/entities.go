package nlp

import (
	"regexp"
	"strings"
)

// Entity kinds.
const (
	EntityBudget = "budget"
	EntityEmail  = "email"
	EntityPhone  = "phone"
)

// Entities maps an entity kind to the first literal value found in the
// text. Kinds that were not found are absent.
type Entities map[string]string

var (
	// captured group only: the currency symbol and spacing stay outside
	budgetPattern = regexp.MustCompile(`₹?\s*(\d+(?:,\d+)*(?:k|K|lakh|lakhs?)?)`)
	emailPattern  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern  = regexp.MustCompile(`\b(?:\+91|91)?[\s-]?[6-9]\d{9}\b`)
)

// ExtractEntities runs the budget, email and phone patterns against the
// raw text. Each pattern is independent; a miss simply leaves its kind
// out of the result.
func ExtractEntities(text string) Entities {
	entities := Entities{}

	if m := budgetPattern.FindStringSubmatch(text); m != nil {
		entities[EntityBudget] = m[1]
	}
	if m := emailPattern.FindString(text); m != "" {
		entities[EntityEmail] = m
	}
	if m := phonePattern.FindString(text); m != "" {
		// the optional separator can pull in the preceding space
		entities[EntityPhone] = strings.TrimSpace(m)
	}

	return entities
}

// Contact returns the email if present, otherwise the phone number.
func (e Entities) Contact() (string, bool) {
	if v := e[EntityEmail]; v != "" {
		return v, true
	}
	if v := e[EntityPhone]; v != "" {
		return v, true
	}
	return "", false
}

// HasContact reports whether an email or phone number was captured.
func (e Entities) HasContact() bool {
	_, ok := e.Contact()
	return ok
}
