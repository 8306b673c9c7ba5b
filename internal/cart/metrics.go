package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_operations_total",
			Help: "Total number of cart mutations by operation",
		},
		[]string{"operation"},
	)

	storageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_storage_failures_total",
			Help: "Cart slot load and persist failures that were swallowed",
		},
		[]string{"kind"},
	)

	activeStores = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_cart_active_stores",
			Help: "Number of session cart stores held in memory",
		},
	)
)
