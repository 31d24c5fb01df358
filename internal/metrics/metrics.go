package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Qloo upstream calls
	QlooRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qloo_requests_total",
			Help: "Total number of Qloo API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // outcome: "ok", "http_error", "network_error"
	)

	QlooRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qloo_request_duration_seconds",
			Help:    "Duration of Qloo API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Taste pipeline
	TasteResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taste_resolutions_total",
			Help: "Entity resolution results by outcome",
		},
		[]string{"outcome"}, // "found", "miss", "skipped", "sample", "none"
	)

	TasteRecommendations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taste_recommendations_count",
			Help:    "Number of Qloo recommendations returned per request",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	// Text generation
	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_requests_total",
			Help: "Text generation attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Duration of text generation calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"provider"},
	)

	// HTTP surface
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests served by the API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func RecordQlooRequest(endpoint, outcome string, duration time.Duration) {
	QlooRequests.WithLabelValues(endpoint, outcome).Inc()
	QlooRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func RecordGeneration(provider, outcome string, duration time.Duration) {
	GenerationRequests.WithLabelValues(provider, outcome).Inc()
	GenerationDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
