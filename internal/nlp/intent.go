// Package nlp derives the coarse intent label and contact entities from a
// chat message.
package nlp

import "strings"

// Intent is a coarse topical label used for analytics.
type Intent string

const (
	IntentGreeting       Intent = "greeting"
	IntentSEO            Intent = "seo"
	IntentSocialMedia    Intent = "social_media"
	IntentPaidAds        Intent = "paid_ads"
	IntentPricing        Intent = "pricing"
	IntentGettingStarted Intent = "getting_started"
	IntentBranding       Intent = "branding"
	IntentResults        Intent = "results"
	IntentContact        Intent = "contact"
	IntentGeneral        Intent = "general_inquiry"
)

type intentRule struct {
	intent   Intent
	keywords []string
}

// intentTable is scanned top to bottom and the first row with any keyword
// present wins, so a row shadows every row below it.
var intentTable = []intentRule{
	{IntentGreeting, []string{"hello", "hi", "hey", "good morning", "good afternoon"}},
	{IntentSEO, []string{"seo", "search engine", "ranking", "google", "organic"}},
	{IntentSocialMedia, []string{"social media", "instagram", "facebook", "linkedin", "twitter"}},
	{IntentPaidAds, []string{"ads", "advertising", "google ads", "facebook ads", "paid"}},
	{IntentPricing, []string{"price", "cost", "how much", "budget"}},
	{IntentGettingStarted, []string{"get started", "begin", "start", "how to start"}},
	{IntentBranding, []string{"brand", "identity", "logo", "branding"}},
	{IntentResults, []string{"results", "roi", "timeline", "how soon"}},
	{IntentContact, []string{"contact", "reach", "email", "phone", "call", "talk", "speak"}},
}

// ExtractIntent returns the intent of the first table row that has a
// keyword occurring anywhere in the lowercased text, or IntentGeneral.
// Matching is plain substring, so "this" contains "hi".
func ExtractIntent(text string) Intent {
	lower := Lower(text)
	for _, rule := range intentTable {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}

// Intents lists every label in table order followed by IntentGeneral.
func Intents() []Intent {
	out := make([]Intent, 0, len(intentTable)+1)
	for _, rule := range intentTable {
		out = append(out, rule.intent)
	}
	return append(out, IntentGeneral)
}
