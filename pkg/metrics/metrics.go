package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chip generation collectors. Registered on the default registry and served at /metrics.
var (
	ChipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gaia_chips_total",
		Help: "Chip generation requests by outcome.",
	}, []string{"outcome"})

	ChipDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gaia_chip_duration_seconds",
		Help:    "Wall time of a full chip generation across all requested dates.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	ProductsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gaia_products_total",
		Help: "Per pixel product records produced, split by whether the pixel had a usable model.",
	}, []string{"kind"})

	PersistAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gaia_persist_attempts_total",
		Help: "Object store writes by outcome (ok, retry, repeated_cause, exhausted).",
	}, []string{"outcome"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gaia_upstream_requests_total",
		Help: "Requests to the change detection service by resource and status class.",
	}, []string{"resource", "status"})

	InputCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gaia_input_cache_total",
		Help: "Chip input cache lookups by result.",
	}, []string{"result"})
)
