// Package metrics holds the Prometheus collectors for trackfinder.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "trackfinder"

// Resolver Prometheus metrics.
var (
	CatalogQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_queries_total",
			Help:      "Catalog queries sent, by outcome",
		},
		[]string{"outcome"}, // "hit" / "empty" / "transient" / "malformed" / "fatal"
	)

	CatalogRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_retries_total",
			Help:      "Catalog queries retried after a transient auth failure",
		},
	)

	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Finished resolutions, by result",
		},
		[]string{"result"},
	)

	ResolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "End-to-end resolve duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	DisambiguationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disambiguations_total",
			Help:      "Disambiguator consultations, by result",
		},
		[]string{"result"}, // "override" / "kept"
	)

	JournalDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "journal_dropped_total",
			Help:      "Journal entries dropped because the write queue was full",
		},
	)
)

var registered bool

// Register registers every collector with the default registry. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(CatalogQueriesTotal)
	prometheus.MustRegister(CatalogRetriesTotal)
	prometheus.MustRegister(ResolutionsTotal)
	prometheus.MustRegister(ResolveDuration)
	prometheus.MustRegister(DisambiguationsTotal)
	prometheus.MustRegister(JournalDroppedTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpResponsesTotal)
	prometheus.MustRegister(httpInFlight)
	registered = true
}
