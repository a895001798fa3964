package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	processorRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_processor_requests_total",
			Help: "HTTP requests sent to the payment processor",
		},
		[]string{"endpoint", "status"},
	)

	processorRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reconciler_processor_request_duration_seconds",
			Help:    "Duration of payment processor HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	processorRetriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_processor_retries_total",
			Help: "Retried payment processor requests",
		},
		[]string{"endpoint"},
	)
)

// RecordProcessorRequest records one HTTP attempt. A zero status means the
// request never got a response.
func RecordProcessorRequest(endpoint string, status int, start time.Time) {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	processorRequestsTotal.WithLabelValues(endpoint, label).Inc()
	processorRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// RecordProcessorRetry counts a retry of endpoint
func RecordProcessorRetry(endpoint string) {
	processorRetriesTotal.WithLabelValues(endpoint).Inc()
}
