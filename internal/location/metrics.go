package location

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	distanceCalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_distance_calculations_total",
			Help: "Distance calculations performed, by source (route or straight_line)",
		},
		[]string{"source"},
	)

	geocodeFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "location_geocode_fallbacks_total",
			Help: "Reverse geocode requests that fell back to the secondary provider",
		},
	)

	staleLookupsDiscardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "location_stale_lookups_discarded_total",
			Help: "Debounced address lookups discarded because a newer selection superseded them",
		},
	)
)
