package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "bubblex"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace, Subsystem: "http", Name: "requests_total",
		Help: "HTTP requests served, by method, route and status code.",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace, Subsystem: "http", Name: "request_duration_seconds",
		Help:    "Latency of HTTP requests, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	ocrRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace, Subsystem: "ocr", Name: "requests_total",
		Help: "Page OCR requests, by outcome (success or error).",
	}, []string{"status"})

	// Pages with many bubbles and a remote translator can take tens of seconds.
	ocrProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace, Subsystem: "ocr", Name: "processing_duration_seconds",
		Help:    "Wall time from decoded page to finished result.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2.5, 10),
	})

	uploadSizeBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace, Subsystem: "ocr", Name: "upload_size_bytes",
		Help:    "Length of the base64 image field of OCR requests.",
		Buckets: prometheus.ExponentialBuckets(1<<10, 8, 6),
	})

	rateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace, Name: "rate_limit_hits_total",
		Help: "Requests rejected by the limiter, by window or quota kind.",
	}, []string{"type"})

	websocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace, Subsystem: "websocket", Name: "active_connections",
		Help: "Open WebSocket sessions.",
	})
)
