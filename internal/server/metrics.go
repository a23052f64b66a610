package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the API, backed by a private
// registry so tests can build servers without collector name collisions.
type Metrics struct {
	registry *prometheus.Registry

	statementsIngested *prometheus.CounterVec
	ingestDuration     prometheus.Histogram
	quoteRequests      *prometheus.CounterVec
}

// NewMetrics builds and registers all API instruments.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		statementsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "extrato_statements_ingested_total",
			Help: "Statement uploads by detected format and outcome.",
		}, []string{"format", "outcome"}),
		ingestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "extrato_ingest_duration_seconds",
			Help:    "End-to-end statement processing latency.",
			Buckets: prometheus.DefBuckets,
		}),
		quoteRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "extrato_quote_requests_total",
			Help: "Market quote requests by outcome.",
		}, []string{"outcome"}),
	}
}
