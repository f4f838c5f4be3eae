package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "btq"

// Query outcomes recorded by RecordQuery.
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomePartial = "partial"
	OutcomeInvalid = "invalid"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	queries        *prometheus.CounterVec
	reportFailures prometheus.Counter
	transactions   prometheus.Gauge
	rejectedRows   prometheus.Counter
	loads          *prometheus.CounterVec
}

// NewMetrics registers every collector on a registry of its own, so several
// instances can coexist in tests.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "engine_queries_total",
			Help:      "Analytics queries by kind and outcome.",
		}, []string{"query", "outcome"}),
		reportFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "engine_report_failures_total",
			Help:      "Item reports that could not be assembled.",
		}),
		transactions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "store_transactions",
			Help:      "Valid transactions in the current dataset.",
		}),
		rejectedRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "store_rejected_rows_total",
			Help:      "Input rows dropped by validation.",
		}),
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "store_loads_total",
			Help:      "Dataset loads by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) RecordQuery(query, outcome string) {
	m.queries.WithLabelValues(query, outcome).Inc()
}

func (m *Metrics) RecordReportFailures(n int) {
	m.reportFailures.Add(float64(n))
}

func (m *Metrics) RecordLoad(transactions, rejected int, err error) {
	if err != nil {
		m.loads.WithLabelValues("error").Inc()
		return
	}
	m.loads.WithLabelValues("ok").Inc()
	m.transactions.Set(float64(transactions))
	m.rejectedRows.Add(float64(rejected))
}
