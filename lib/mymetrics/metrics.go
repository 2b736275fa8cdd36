// Package mymetrics exposes prometheus counters for http traffic and upstream behaviour.
package mymetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	apiRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghl_api_retries_total",
			Help: "Total number of retried GoHighLevel operations",
		},
		[]string{"operation"},
	)

	endpointFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghl_endpoint_fallbacks_total",
			Help: "Total number of times a fallback endpoint was tried",
		},
		[]string{"chain"},
	)

	tokenStorage = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghl_token_storage_total",
			Help: "Total number of stored token bundles per storage method",
		},
		[]string{"method"},
	)

	externalAPIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_api_errors_total",
			Help: "Total number of failed calls to external APIs",
		},
		[]string{"service"},
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

// Middleware records request counts and durations labelled by route template.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		route := routeTemplate(r)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	template, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return template
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordRetry(operation string) {
	apiRetries.WithLabelValues(operation).Inc()
}

func RecordFallback(chain string) {
	endpointFallbacks.WithLabelValues(chain).Inc()
}

func RecordTokenStorage(method string) {
	tokenStorage.WithLabelValues(method).Inc()
}

func RecordExternalError(service string) {
	externalAPIErrors.WithLabelValues(service).Inc()
}
