package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RefreshDuration tracks how long full snapshot refreshes take.
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "timeboard",
			Subsystem: "fetch",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of full snapshot refreshes in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	// RefreshTotal counts refresh operations.
	// Labels: result (success, error)
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "timeboard",
			Subsystem: "fetch",
			Name:      "refreshes_total",
			Help:      "Total number of snapshot refresh operations",
		},
		[]string{"result"},
	)

	// DayRequestsTotal counts per-day time-entry requests.
	// Labels: result (success, error)
	DayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "timeboard",
			Subsystem: "fetch",
			Name:      "day_requests_total",
			Help:      "Total number of per-day time-entry requests",
		},
		[]string{"result"},
	)

	// EntriesFetched tracks the entry count of the last refresh.
	EntriesFetched = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "timeboard",
			Subsystem: "fetch",
			Name:      "entries_fetched",
			Help:      "Number of deduplicated time entries in the last snapshot",
		},
	)
)

// recordRefreshResult records the outcome of a refresh operation.
func recordRefreshResult(success bool) {
	if success {
		RefreshTotal.WithLabelValues("success").Inc()
	} else {
		RefreshTotal.WithLabelValues("error").Inc()
	}
}
