package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IngestLines counts processed bulk-ingest lines by outcome
// (success, duplicate, invalid, failed).
var IngestLines = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kinodex",
	Name:      "ingest_lines_total",
	Help:      "Bulk ingest lines processed, by outcome.",
}, []string{"outcome"})

// IngestRejected counts bulk-ingest requests rejected by the
// single-flight guard.
var IngestRejected = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "kinodex",
	Name:      "ingest_rejected_total",
	Help:      "Bulk ingest requests rejected because a pass was already running.",
})

// SearchQueries counts catalog searches by result tier
// (substring, fuzzy, none).
var SearchQueries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kinodex",
	Name:      "search_queries_total",
	Help:      "Catalog searches, by result tier.",
}, []string{"tier"})
