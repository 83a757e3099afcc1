// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarnet_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures response time by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scholarnet_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// FigureBuilds counts figures built on demand, by kind ("pair" or "cohort").
	FigureBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarnet_figure_builds_total",
			Help: "Total number of network figures built",
		},
		[]string{"kind"},
	)

	// FigureBuildDuration measures filter, build, layout and render time.
	FigureBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scholarnet_figure_build_duration_seconds",
			Help:    "Duration of network figure builds in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// GraphNodes reports the node count of each precomputed cohort graph.
	GraphNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scholarnet_cohort_graph_nodes",
			Help: "Number of nodes in each precomputed cohort graph",
		},
		[]string{"cohort"},
	)
)
