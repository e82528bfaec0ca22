package solver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchTotal counts best-guess searches by how they were answered
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solvemind_search_total",
		Help: "Best-guess searches by outcome (computed, cached, shared, error)",
	}, []string{"outcome"})

	// searchDuration tracks full scans only
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solvemind_search_duration_seconds",
		Help:    "Duration of full best-guess scans in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~30s
	})

	// searchCandidates tracks the candidate count a scan started from
	searchCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solvemind_search_candidates",
		Help:    "Remaining candidates at the start of a best-guess scan",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
)
