// Package middleware carries the HTTP instrumentation: prometheus metrics
// and structured request logging.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	leadsConverted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_converted_total",
			Help: "Total number of leads converted into clients",
		},
	)

	dealsWon = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deals_won_total",
			Help: "Total number of deals transitioned into CLOSED_WON",
		},
	)

	dealsWonValue = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deals_won_value_total",
			Help: "Summed value of deals transitioned into CLOSED_WON",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Metrics records request counts and latencies per route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// RecordLeadConverted counts a successful lead conversion.
func RecordLeadConverted() {
	leadsConverted.Inc()
}

// RecordDealWon counts a deal entering CLOSED_WON and its value.
func RecordDealWon(value float64) {
	dealsWon.Inc()
	dealsWonValue.Add(value)
}
