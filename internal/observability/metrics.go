package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	requestsTotal         *prometheus.CounterVec
	latencySeconds        *prometheus.HistogramVec
	dispatchTotal         *prometheus.CounterVec
	dispatchLatency       prometheus.Histogram
	uploadRejectedTotal   *prometheus.CounterVec
	parseFailuresTotal    prometheus.Counter
	feedConnectionsTotal  prometheus.Counter
	feedEventsTotal       *prometheus.CounterVec
	gradingOutcomesTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoreline_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoreline_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		dispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoreline_dispatch_total",
			Help: "Submission dispatch attempts by outcome.",
		}, []string{"outcome"})

		dispatchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scoreline_dispatch_duration_seconds",
			Help:    "End-to-end duration of submission dispatches.",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoreline_upload_rejected_total",
			Help: "Uploads rejected before reaching the blob store.",
		}, []string{"reason"})

		parseFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoreline_feedback_parse_failures_total",
			Help: "Feedback payloads that could not be parsed.",
		})

		feedConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoreline_feed_connections_total",
			Help: "Websocket feed connections accepted.",
		})

		feedEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoreline_feed_events_total",
			Help: "Realtime submission events delivered by kind.",
		}, []string{"kind"})

		gradingOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoreline_grading_outcomes_total",
			Help: "Grading results applied by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			dispatchTotal,
			dispatchLatency,
			uploadRejectedTotal,
			parseFailuresTotal,
			feedConnectionsTotal,
			feedEventsTotal,
			gradingOutcomesTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Dispatches exposes the dispatch outcome counter.
func Dispatches() *prometheus.CounterVec {
	RegisterMetrics()
	return dispatchTotal
}

// DispatchLatency exposes the dispatch duration histogram.
func DispatchLatency() prometheus.Histogram {
	RegisterMetrics()
	return dispatchLatency
}

// UploadRejected exposes the upload rejection counter.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// ParseFailures exposes the feedback parse failure counter.
func ParseFailures() prometheus.Counter {
	RegisterMetrics()
	return parseFailuresTotal
}

// FeedConnections exposes the websocket connection counter.
func FeedConnections() prometheus.Counter {
	RegisterMetrics()
	return feedConnectionsTotal
}

// FeedEvents exposes the realtime event counter.
func FeedEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return feedEventsTotal
}

// GradingOutcomes exposes the grading outcome counter.
func GradingOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingOutcomesTotal
}
