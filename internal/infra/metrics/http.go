package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var httpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method and status class.",
	},
	[]string{"method", "status"},
)

var httpLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_latency_ms",
		Help:    "HTTP request latency distribution in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
	},
	[]string{"method"},
)

func init() {
	register(httpRequestsTotal, httpLatencyMs)
}

func ObserveHTTP(method string, status int, latencyMs float64) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpLatencyMs.WithLabelValues(method).Observe(latencyMs)
}
