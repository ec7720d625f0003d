// Package metrics holds the Prometheus collectors for dataset builds and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "ll97_"

	resultSuccess = "success"
	resultError   = "error"
)

// Exported result labels.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)

var (
	registerOnce sync.Once

	buildRunsTotal   *prometheus.CounterVec
	buildLatency     *prometheus.HistogramVec
	buildRecords     prometheus.Counter
	sourceRowsLoaded *prometheus.CounterVec
	joinDuplicates   *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	httpRequestsTotal *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		buildRunsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "build_runs_total",
				Help: "Total dataset builds by result",
			},
			[]string{"result"},
		)
		buildLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "build_latency_seconds",
				Help:    "Dataset build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		buildRecords = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "build_records_total",
				Help: "Total building records projected",
			},
		)
		sourceRowsLoaded = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "source_rows_loaded_total",
				Help: "Total rows read from input sources by source",
			},
			[]string{"source"},
		)
		joinDuplicates = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "join_duplicate_keys_total",
				Help: "Total duplicate building keys seen while joining, by source",
			},
			[]string{"source"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total table exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Table export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		httpRequestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)

		prometheus.MustRegister(
			buildRunsTotal,
			buildLatency,
			buildRecords,
			sourceRowsLoaded,
			joinDuplicates,
			exportTotal,
			exportLatency,
			httpRequestsTotal,
			httpLatency,
		)
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveBuild records build latency and result.
func ObserveBuild(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if buildRunsTotal != nil {
		buildRunsTotal.WithLabelValues(result).Inc()
	}
	if buildLatency != nil {
		buildLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddBuildRecords increments the projected record counter by count.
func AddBuildRecords(count int) {
	if count <= 0 {
		return
	}
	if buildRecords != nil {
		buildRecords.Add(float64(count))
	}
}

// AddSourceRows increments the rows loaded from source by count.
func AddSourceRows(source string, count int) {
	if source == "" {
		source = "unknown"
	}
	if count <= 0 {
		return
	}
	if sourceRowsLoaded != nil {
		sourceRowsLoaded.WithLabelValues(source).Add(float64(count))
	}
}

// AddJoinDuplicates increments the duplicate key counter for source by count.
func AddJoinDuplicates(source string, count int) {
	if count <= 0 {
		return
	}
	if joinDuplicates != nil {
		joinDuplicates.WithLabelValues(source).Add(float64(count))
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequestsTotal != nil {
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
	}
}
