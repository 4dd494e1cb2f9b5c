// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_api_requests_total",
			Help: "Total number of gateway API requests by action",
		},
		[]string{"action"},
	)

	APIRequestsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_api_requests_failed_total",
			Help: "Total number of failed gateway API requests by action and error code",
		},
		[]string{"action", "error_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "console_api_request_duration_seconds",
			Help: "Duration of gateway API requests in seconds",
		},
		[]string{"action"},
	)

	SessionExpiries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_session_expiries_total",
			Help: "Number of 401 responses that invalidated the session",
		},
	)
)
