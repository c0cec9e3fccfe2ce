package nlp

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize composes the text to NFC, lowercases and trims it. Composed
// form keeps precomposed and decomposed accents comparable; ASCII passes
// through untouched.
func Normalize(text string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(text)))
}

// Lower composes and lowercases without trimming.
func Lower(text string) string {
	return strings.ToLower(norm.NFC.String(text))
}
