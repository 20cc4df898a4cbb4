package metrics

import (
	"time"

	coreErrors "github.com/angelospk/subsubs/pkg/core/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "subsubs"

var (
	// UpstreamRequestsTotal counts upstream calls by operation and outcome.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of OpenSubtitles API calls.",
		},
		[]string{"operation", "outcome"},
	)

	// UpstreamRequestDuration tracks upstream latency by operation.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of OpenSubtitles API calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// SearchesTotal counts search sequences by terminal state.
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of search sequences by terminal state.",
		},
		[]string{"state"},
	)

	// DownloadsTotal counts download sequences by terminal state.
	DownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Total number of download sequences by terminal state.",
		},
		[]string{"state"},
	)

	// HistoryWritesTotal counts history appends.
	HistoryWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_writes_total",
			Help:      "Total number of history appends.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		SearchesTotal,
		DownloadsTotal,
		HistoryWritesTotal,
	)
}

// Outcome classifies an upstream error into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case coreErrors.IsConfiguration(err):
		return "configuration"
	case coreErrors.IsUnavailable(err):
		return "unavailable"
	}
	if _, ok := coreErrors.AsUpstream(err); ok {
		return "upstream_error"
	}
	return "error"
}

// ObserveUpstream records one upstream call that started at start.
func ObserveUpstream(operation string, start time.Time, err error) {
	UpstreamRequestsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	UpstreamRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// HistoryWrite records the result of one history append.
func HistoryWrite(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	HistoryWritesTotal.WithLabelValues(status).Inc()
}
