package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-staff-api/internal/models"
)

// Assignment outcomes used as metric labels.
const (
	AssignmentOutcomeCreated               = "created"
	AssignmentOutcomeQualificationRejected = "qualification_rejected"
	AssignmentOutcomeAlreadyClassTeacher   = "already_class_teacher"
	AssignmentOutcomeWorkloadExceeded      = "workload_exceeded"
	AssignmentOutcomeDuplicate             = "duplicate"
)

// Staff code retry stages used as metric labels.
const (
	CodeRetryStageExists   = "exists"
	CodeRetryStageConflict = "conflict"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	cacheLatency        prometheus.Observer
	cacheWrite          prometheus.Observer
	cacheHitRatio       prometheus.Gauge
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	dbQueryDuration     *prometheus.HistogramVec
	codesGenerated      *prometheus.CounterVec
	codeRetries         *prometheus.CounterVec
	createConflicts     prometheus.Counter
	assignmentsTotal    *prometheus.CounterVec
	assignmentsReplaced *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
	codesGeneratedCount  uint64
	codeRetryCount       uint64
	assignmentsCreated   uint64
	assignmentsRejected  uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	codesGenerated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "staff_codes_generated_total",
		Help: "Staff codes handed out by the generator",
	}, []string{"mode"})

	codeRetries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "staff_code_retries_total",
		Help: "Staff code retries by stage",
	}, []string{"stage"})

	createConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "staff_create_conflicts_exhausted_total",
		Help: "Staff creations that gave up after repeated code conflicts",
	})

	assignmentsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "staff_assignments_total",
		Help: "Assignment attempts by type and outcome",
	}, []string{"type", "outcome"})

	assignmentsReplaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "staff_assignments_superseded_total",
		Help: "Assignments deactivated by a newer conflicting assignment",
	}, []string{"type"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, dbQueryDuration,
		codesGenerated, codeRetries, createConflicts, assignmentsTotal, assignmentsReplaced, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:            registry,
		handler:             handler,
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		cacheLatency:        cacheLatency,
		cacheWrite:          cacheWrite,
		cacheHitRatio:       cacheHitRatio,
		cacheHits:           cacheHits,
		cacheMisses:         cacheMisses,
		dbQueryDuration:     dbQueryDuration,
		codesGenerated:      codesGenerated,
		codeRetries:         codeRetries,
		createConflicts:     createConflicts,
		assignmentsTotal:    assignmentsTotal,
		assignmentsReplaced: assignmentsReplaced,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCodeGenerated counts a staff code handed out under the given sequence mode.
func (m *MetricsService) RecordCodeGenerated(mode string) {
	if m == nil {
		return
	}
	m.codesGenerated.WithLabelValues(mode).Inc()
	atomic.AddUint64(&m.codesGeneratedCount, 1)
}

// RecordCodeRetry counts a retry of the code generator or the create loop.
func (m *MetricsService) RecordCodeRetry(stage string) {
	if m == nil {
		return
	}
	m.codeRetries.WithLabelValues(stage).Inc()
	atomic.AddUint64(&m.codeRetryCount, 1)
}

// RecordCreateConflictExhausted counts a create that ran out of conflict retries.
func (m *MetricsService) RecordCreateConflictExhausted() {
	if m == nil {
		return
	}
	m.createConflicts.Inc()
}

// RecordAssignment counts an assignment attempt by outcome.
func (m *MetricsService) RecordAssignment(assignmentType models.AssignmentType, outcome string) {
	if m == nil {
		return
	}
	m.assignmentsTotal.WithLabelValues(string(assignmentType), outcome).Inc()
	if outcome == AssignmentOutcomeCreated {
		atomic.AddUint64(&m.assignmentsCreated, 1)
	} else {
		atomic.AddUint64(&m.assignmentsRejected, 1)
	}
}

// RecordSupersession counts assignments ended by a newer conflicting assignment.
func (m *MetricsService) RecordSupersession(assignmentType models.AssignmentType, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.assignmentsReplaced.WithLabelValues(string(assignmentType)).Add(float64(count))
}

// Snapshot returns aggregated metrics suitable for the metrics summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		StaffCodesGenerated:      atomic.LoadUint64(&m.codesGeneratedCount),
		StaffCodeRetries:         atomic.LoadUint64(&m.codeRetryCount),
		AssignmentsCreated:       atomic.LoadUint64(&m.assignmentsCreated),
		AssignmentsRejected:      atomic.LoadUint64(&m.assignmentsRejected),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
