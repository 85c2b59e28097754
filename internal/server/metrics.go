package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/ordersim/internal/orchestration"
	"github.com/agbru/ordersim/internal/order"
)

// Metrics holds the Prometheus collectors of the HTTP API and of the
// orchestrator. Each instance owns its registry so that several servers
// (and tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	activeRequests  prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	jobsStarted   *prometheus.CounterVec
	jobsFinished  *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	batchDuration *prometheus.HistogramVec
	batchFailures *prometheus.CounterVec
}

var _ orchestration.Recorder = (*Metrics)(nil)

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ordersim_active_requests",
			Help: "Number of HTTP requests being served.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ordersim_requests_total",
			Help: "HTTP requests by path, method and status code.",
		}, []string{"path", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ordersim_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		jobsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ordersim_jobs_started_total",
			Help: "Orders started by execution mode.",
		}, []string{"mode"}),
		jobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ordersim_jobs_finished_total",
			Help: "Orders finished by execution mode and final status.",
		}, []string{"mode", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ordersim_job_duration_seconds",
			Help:    "Wall-clock time spent processing one order.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
		}, []string{"mode"}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ordersim_batch_duration_seconds",
			Help:    "Wall-clock time of a whole run.",
			Buckets: []float64{0.25, 0.5, 1, 2, 3, 5, 10, 30},
		}, []string{"mode"}),
		batchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ordersim_batch_failed_jobs_total",
			Help: "Failed orders reported at the end of runs.",
		}, []string{"mode"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.activeRequests,
		m.requestsTotal,
		m.requestDuration,
		m.jobsStarted,
		m.jobsFinished,
		m.jobDuration,
		m.batchDuration,
		m.batchFailures,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m
}

// IncrementActiveRequests increments the active requests gauge.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests decrements the active requests gauge.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(path, method string, code int, d time.Duration) {
	m.requestsTotal.WithLabelValues(path, method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(d.Seconds())
}

// WritePrometheus serves the registry in the Prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// JobStarted implements orchestration.Recorder.
func (m *Metrics) JobStarted(mode orchestration.Mode) {
	m.jobsStarted.WithLabelValues(string(mode)).Inc()
}

// JobFinished implements orchestration.Recorder.
func (m *Metrics) JobFinished(mode orchestration.Mode, status order.Status, wall time.Duration) {
	m.jobsFinished.WithLabelValues(string(mode), string(status)).Inc()
	m.jobDuration.WithLabelValues(string(mode)).Observe(wall.Seconds())
}

// BatchFinished implements orchestration.Recorder.
func (m *Metrics) BatchFinished(mode orchestration.Mode, elapsed time.Duration, _, failed int) {
	m.batchDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	if failed > 0 {
		m.batchFailures.WithLabelValues(string(mode)).Add(float64(failed))
	}
}
