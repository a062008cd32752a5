// Package metrics holds the Prometheus collectors shared across the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by method, route, and status class
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortlink_http_requests_total",
		Help: "HTTP requests processed, by method, route, and status code.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shortlink_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// LinksCreated counts created links by generator strategy
	LinksCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortlink_links_created_total",
		Help: "Links created, by generator strategy.",
	}, []string{"strategy"})

	// GenerationConflicts counts candidate codes rejected by the store's
	// uniqueness gate
	GenerationConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortlink_generation_conflicts_total",
		Help: "Candidate codes that lost the insert race and were retried.",
	})

	// LinksDeleted counts owner-authorized deletions
	LinksDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortlink_links_deleted_total",
		Help: "Links deleted by their owners.",
	})

	// SweptLinks counts records removed by the expiration sweeper
	SweptLinks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortlink_swept_links_total",
		Help: "Expired links removed by the background sweeper.",
	})

	// SweepErrors counts failed sweep cycles
	SweepErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortlink_sweep_errors_total",
		Help: "Sweep cycles that failed and were retried next interval.",
	})
)
