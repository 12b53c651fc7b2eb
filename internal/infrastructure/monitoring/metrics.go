package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Relay metrics
	Uploads          *prometheus.CounterVec
	UploadBytes      prometheus.Histogram
	Analyses         *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	Exports          *prometheus.CounterVec

	// Wizard metrics
	WizardTransitions *prometheus.CounterVec
	SessionsActive    prometheus.Gauge
	Submissions       prometheus.Counter

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	ActiveSessions int64   `json:"active_sessions"`
	Uploads        int64   `json:"uploads"`
	Analyses       int64   `json:"analyses"`
	Submissions    int64   `json:"submissions"`
	AvgDurationMS  float64 `json:"avg_request_duration_ms"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	totalDuration  float64
}

// NewMetrics creates a metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dwpnxt_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dwpnxt_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dwpnxt_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dwpnxt_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Relay metrics
		Uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dwpnxt_uploads_total",
				Help: "Uploads by result",
			},
			[]string{"result"},
		),
		UploadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dwpnxt_upload_size_bytes",
				Help:    "Size of accepted uploads",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),
		Analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dwpnxt_analyses_total",
				Help: "Analysis relays by result",
			},
			[]string{"result"},
		),
		AnalysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dwpnxt_analysis_duration_seconds",
				Help:    "Time spent waiting on the analysis backend",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
		Exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dwpnxt_exports_total",
				Help: "Export relays by format and result",
			},
			[]string{"format", "result"},
		),

		// Wizard metrics
		WizardTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dwpnxt_wizard_transitions_total",
				Help: "Wizard actions applied",
			},
			[]string{"action"},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dwpnxt_assessment_sessions_active",
				Help: "Number of mounted assessment sessions",
			},
		),
		Submissions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dwpnxt_assessment_submissions_total",
				Help: "Final assessment submissions",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "dwpnxt_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry metrics are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordUpload records an upload outcome. size is only observed on success.
func (m *Metrics) RecordUpload(result string, size int64) {
	m.Uploads.WithLabelValues(result).Inc()
	if result == ResultOK {
		m.UploadBytes.Observe(float64(size))
		m.mu.Lock()
		m.snapshot.Uploads++
		m.mu.Unlock()
	}
}

// RecordAnalysis records an analysis relay outcome
func (m *Metrics) RecordAnalysis(operation, result string, duration time.Duration) {
	m.Analyses.WithLabelValues(result).Inc()
	m.AnalysisDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if result == ResultOK {
		m.mu.Lock()
		m.snapshot.Analyses++
		m.mu.Unlock()
	}
}

// RecordExport records an export relay outcome
func (m *Metrics) RecordExport(format, result string) {
	m.Exports.WithLabelValues(format, result).Inc()
}

// RecordTransition records a wizard action
func (m *Metrics) RecordTransition(action string) {
	m.WizardTransitions.WithLabelValues(action).Inc()
}

// IncSubmissions increments the submission counter
func (m *Metrics) IncSubmissions() {
	m.Submissions.Inc()
	m.mu.Lock()
	m.snapshot.Submissions++
	m.mu.Unlock()
}

// SetSessionsActive sets the number of mounted sessions
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveSessions = int64(count)
	m.mu.Unlock()
}

// Snapshot returns current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	if snap.TotalRequests > 0 {
		snap.AvgDurationMS = snap.totalDuration / float64(snap.TotalRequests) * 1000
	}
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
