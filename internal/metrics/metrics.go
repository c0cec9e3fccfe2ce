package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faq_messages_processed_total",
			Help: "Total number of chat messages answered",
		},
		[]string{"intent", "category"},
	)

	FallbackResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faq_fallback_responses_total",
			Help: "Messages answered with a fallback instead of a FAQ entry",
		},
		[]string{"kind"},
	)

	MatchConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "faq_match_confidence",
			Help:    "Confidence of the best FAQ match per message",
			Buckets: []float64{0.08, 0.16, 0.3, 0.5, 0.75, 1.0},
		},
	)

	ContactsCaptured = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "faq_contacts_captured_total",
			Help: "Messages that carried an email address or phone number",
		},
	)

	PersistenceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faq_persistence_errors_total",
			Help: "Failed storage operations",
		},
		[]string{"operation"},
	)

	KnowledgeReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faq_knowledge_reloads_total",
			Help: "Knowledge base reload attempts",
		},
		[]string{"status"},
	)

	KnowledgeEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "faq_knowledge_entries",
			Help: "Number of FAQ entries currently loaded",
		},
	)
)
