// Package metrics holds the Prometheus collectors shared by the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantausikecil_ai_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pantausikecil_ai_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pantausikecil_ai_upstream_request_duration_seconds",
			Help:    "Duration of calls to the upstream backend API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"section", "outcome"},
	)

	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantausikecil_ai_model_requests_total",
			Help: "Total number of Gemini generateContent calls",
		},
		[]string{"use_case", "outcome"},
	)

	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pantausikecil_ai_model_request_duration_seconds",
			Help:    "Gemini generateContent latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"use_case"},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveUpstream records one call to the upstream backend.
func ObserveUpstream(section string, started time.Time, err error) {
	upstreamRequestDuration.WithLabelValues(section, outcome(err)).Observe(time.Since(started).Seconds())
}

// ObserveModel records one Gemini call for the given use case.
func ObserveModel(useCase string, started time.Time, err error) {
	aiRequestsTotal.WithLabelValues(useCase, outcome(err)).Inc()
	aiRequestDuration.WithLabelValues(useCase).Observe(time.Since(started).Seconds())
}

// Middleware counts requests per route template. Errors are rendered here so
// the recorded status is final, then passed on to the outer middleware.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request().Method
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Response().Status)).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return err
	}
}
