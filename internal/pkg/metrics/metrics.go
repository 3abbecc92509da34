package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfolio",
		Name:      "refresh_total",
		Help:      "Address refreshes by chain and outcome.",
	}, []string{"chain", "status"})

	RefreshDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portfolio",
		Name:      "refresh_duration_seconds",
		Help:      "Time spent refreshing one address.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"chain"})

	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfolio",
		Name:      "upstream_requests_total",
		Help:      "Outbound provider requests by provider and status class.",
	}, []string{"provider", "status"})

	PriceCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfolio",
		Name:      "price_cache_total",
		Help:      "Price lookups served from cache (hit) or upstream (miss).",
	}, []string{"result"})

	registerOnce sync.Once
)

// MustRegisterMetrics registers every collector with the default registry.
// Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RefreshTotal, RefreshDuration, UpstreamRequests, PriceCache)
	})
}

// StatusClass buckets an HTTP status for the upstream counter.
func StatusClass(status int) string {
	switch {
	case status == 0:
		return "transport_error"
	case status == 429:
		return "429"
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}
