// Package metrics holds the Prometheus collectors of the label server.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "productlabel"

var (
	CatalogCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_hits_total",
		Help:      "Active label catalog loads served from cache.",
	})
	CatalogCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_misses_total",
		Help:      "Active label catalog loads rebuilt from the label store.",
	})
	CatalogCacheErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_errors_total",
		Help:      "Cache transport or decode failures, by operation.",
	}, []string{"op"})
	LabelConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "label_conflicts_total",
		Help:      "Label writes rejected by the store uniqueness check.",
	})
	MatchedLabels = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matched_labels_total",
		Help:      "Labels matched to products, by display context.",
	}, []string{"view"})
)

var (
	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// Init registers collectors. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			CatalogCacheHits,
			CatalogCacheMisses,
			CatalogCacheErrors,
			LabelConflicts,
			MatchedLabels,
		)
	})
}

// Handler serves the registered collectors in the Prometheus text format.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
