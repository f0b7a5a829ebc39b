package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	records      prometheus.Gauge
	savedQueries prometheus.Gauge
	exports      prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "screener",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		records: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "screener",
			Name:      "records_loaded",
			Help:      "Number of records in the current record set",
		}),
		savedQueries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "screener",
			Name:      "saved_queries",
			Help:      "Number of saved queries",
		}),
		exports: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "exports_total",
			Help:      "Total number of CSV exports",
		}),
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(started).Seconds())
	})
}
