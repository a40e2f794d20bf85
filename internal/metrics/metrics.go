// Package metrics exposes Prometheus instrumentation for analysis runs, the
// result cache and exports.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "trendscope_"

	ResultSuccess = "success"
	ResultError   = "error"

	cacheHit  = "hit"
	cacheMiss = "miss"
)

var (
	registerOnce sync.Once

	analysisRuns    *prometheus.CounterVec
	analysisLatency *prometheus.HistogramVec
	analysisSamples prometheus.Histogram

	resultSetSize *prometheus.HistogramVec

	cacheLookups *prometheus.CounterVec

	exportTotal *prometheus.CounterVec
)

// Init registers metrics with the default Prometheus registry. Safe to call
// more than once; observation helpers are no-ops until Init has run.
func Init() {
	registerOnce.Do(func() {
		analysisRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "analysis_runs_total",
				Help: "Total analysis runs by source and result",
			},
			[]string{"source", "result"},
		)
		analysisLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "analysis_latency_seconds",
				Help:    "Analysis latency in seconds, load included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		)
		analysisSamples = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "analysis_samples",
				Help:    "Number of samples per analysed series",
				Buckets: prometheus.ExponentialBuckets(10, 4, 10),
			},
		)
		resultSetSize = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "result_set_size",
				Help:    "Number of rows per result set",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"set"},
		)
		cacheLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_lookups_total",
				Help: "Result cache lookups by outcome",
			},
			[]string{"outcome"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Result exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			analysisRuns,
			analysisLatency,
			analysisSamples,
			resultSetSize,
			cacheLookups,
			exportTotal,
		)
	})
}

// ObserveAnalysis records one analysis run.
func ObserveAnalysis(source, result string, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if analysisRuns != nil {
		analysisRuns.WithLabelValues(source, result).Inc()
	}
	if analysisLatency != nil {
		analysisLatency.WithLabelValues(source).Observe(duration.Seconds())
	}
}

// ObserveSeries records the size of an analysed series and its result sets.
func ObserveSeries(samples int, setSizes map[string]int) {
	if analysisSamples != nil {
		analysisSamples.Observe(float64(samples))
	}
	if resultSetSize == nil {
		return
	}
	for name, n := range setSizes {
		resultSetSize.WithLabelValues(name).Observe(float64(n))
	}
}

// IncCacheLookup counts a result cache hit or miss.
func IncCacheLookup(hit bool) {
	if cacheLookups == nil {
		return
	}
	if hit {
		cacheLookups.WithLabelValues(cacheHit).Inc()
		return
	}
	cacheLookups.WithLabelValues(cacheMiss).Inc()
}

// IncExport counts one export by format.
func IncExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}
