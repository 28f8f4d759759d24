package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "itemledger"

// PrometheusRecorder exports metrics through a dedicated registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	mutations      *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec
	snapshotUsers  prometheus.Gauge
	snapshotItems  prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	rateLimited    prometheus.Counter
}

// NewPrometheus registers all collectors, plus Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entity_mutations_total",
				Help:      "Total number of entity mutations",
			},
			[]string{"entity", "op"},
		),
		reportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_duration_seconds",
				Help:      "Time spent computing a report from a snapshot",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"report"},
		),
		snapshotUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_users",
			Help:      "Number of users in the most recent report snapshot",
		}),
		snapshotItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_items",
			Help:      "Number of items in the most recent report snapshot",
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}

	r.registry.MustRegister(
		r.mutations,
		r.reportDuration,
		r.snapshotUsers,
		r.snapshotItems,
		r.httpRequests,
		r.httpDuration,
		r.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *PrometheusRecorder) IncEntityCreated(entity string) {
	r.mutations.WithLabelValues(entity, "create").Inc()
}

func (r *PrometheusRecorder) IncEntityUpdated(entity string) {
	r.mutations.WithLabelValues(entity, "update").Inc()
}

func (r *PrometheusRecorder) IncEntityDeleted(entity string) {
	r.mutations.WithLabelValues(entity, "delete").Inc()
}

func (r *PrometheusRecorder) ObserveReportDuration(report string, duration time.Duration) {
	r.reportDuration.WithLabelValues(report).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) ObserveSnapshotSize(users, items int) {
	r.snapshotUsers.Set(float64(users))
	r.snapshotItems.Set(float64(items))
}

func (r *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) IncRateLimited() {
	r.rateLimited.Inc()
}
