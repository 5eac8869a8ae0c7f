package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bubblesDetected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bubblex_bubbles_detected",
			Help:    "Number of speech bubbles kept per image",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	translationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bubblex_translation_fallbacks_total",
			Help: "Translations that failed and fell back to the original text",
		},
	)
)
