// Package metrics provides Prometheus metrics for link feed runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts pipeline runs by result (success, failure).
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkcomb",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"result"},
	)

	// RunDuration measures how long a full pipeline run takes.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "linkcomb",
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	// EntriesTotal counts source feed entries by status (processed, skipped).
	EntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkcomb",
			Name:      "entries_total",
			Help:      "Total number of newsletter entries read from the source feed",
		},
		[]string{"status"},
	)

	// LinksTotal counts extracted links by status and skip reason.
	LinksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkcomb",
			Name:      "links_total",
			Help:      "Total number of extracted links by outcome",
		},
		[]string{"status", "reason"},
	)

	// SourceFeedWarningsTotal counts source feeds that could not be read.
	SourceFeedWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "linkcomb",
			Name:      "source_feed_warnings_total",
			Help:      "Total number of source feed fetch or parse failures",
		},
	)

	// LastRunItems is the number of items in the most recently written feed.
	LastRunItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "linkcomb",
			Name:      "last_run_items",
			Help:      "Number of items written by the last successful run",
		},
	)

	// LastSuccessTimestamp is the Unix time of the last successful run.
	LastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "linkcomb",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful run",
		},
	)
)
