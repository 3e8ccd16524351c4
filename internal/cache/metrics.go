// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Hits is the counter for cache lookups that returned a live entry.
// Use RegisterMetrics to register this with a Prometheus registry.
var Hits = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "gatehouse_cache_hits_total",
		Help: "Total number of cache lookups that found a live entry",
	},
)

// Misses is the counter for cache lookups that found nothing, including
// lookups that hit an expired entry.
// Use RegisterMetrics to register this with a Prometheus registry.
var Misses = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "gatehouse_cache_misses_total",
		Help: "Total number of cache lookups that found no live entry",
	},
)

// Evictions is the counter for expired entries removed, whether lazily
// on Get or by the janitor.
// Use RegisterMetrics to register this with a Prometheus registry.
var Evictions = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "gatehouse_cache_evictions_total",
		Help: "Total number of expired cache entries evicted",
	},
)

// RegisterMetrics registers cache package metrics with the given Prometheus registry.
// This must be called at startup to make metrics available on /metrics.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Hits)
	reg.MustRegister(Misses)
	reg.MustRegister(Evictions)
}

func recordHit()      { Hits.Inc() }
func recordMiss()     { Misses.Inc() }
func recordEviction() { Evictions.Inc() }

func recordEvictions(n int) {
	Evictions.Add(float64(n))
}
