package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_cache_lookups_total",
			Help: "Catalog cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)

	upstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_upstream_requests_total",
			Help: "Catalog upstream requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	listShapes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_list_shapes_total",
			Help: "Listing responses by detected envelope shape",
		},
		[]string{"shape"},
	)
)
