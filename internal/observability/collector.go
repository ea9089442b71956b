package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters, registered on the default registry so the /metrics
// handler from InitMetrics serves them alongside the OTel-exported ones.
var (
	// ImportRuns counts finished import runs by site and terminal state.
	ImportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockplane_import_runs_total",
		Help: "Finished import runs by terminal state.",
	}, []string{"site", "state"})

	// FetchCalls counts stock fetches by the strategy that served them.
	FetchCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockplane_fetch_calls_total",
		Help: "Stock fetches by serving strategy.",
	}, []string{"site", "strategy"})

	// FetchDuration observes end-to-end fetch latency per strategy.
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockplane_fetch_duration_seconds",
		Help:    "End-to-end stock fetch latency.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"strategy"})
)
