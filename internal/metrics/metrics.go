// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors of the catalog service and
// serves them on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "catalog"

// Collector holds all Prometheus metrics for the application. Each
// collector owns its registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Catalog mutations by action and outcome
	Mutations *prometheus.CounterVec
	// Rows written by structural batches, by kind (updated, deleted, reparented)
	BatchRows *prometheus.CounterVec

	// View cache lookups by view
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Rows that could not be placed under their declared parent
	IntegrityWarnings *prometheus.CounterVec
}

// NewCollector creates a collector with a fresh registry. Go runtime and
// process collectors are registered alongside the application metrics.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "mutations_total",
				Help:      "Catalog mutations by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		BatchRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "batch_rows_total",
				Help:      "Rows written by structural batches",
			},
			[]string{"kind"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "view_cache_hits_total",
				Help:      "Total number of view cache hits",
			},
			[]string{"view"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "view_cache_misses_total",
				Help:      "Total number of view cache misses",
			},
			[]string{"view"},
		),
		IntegrityWarnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "integrity_warnings_total",
				Help:      "Rows promoted to roots while computing a tree view, counted once per computation",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.Mutations,
		c.BatchRows,
		c.CacheHits,
		c.CacheMisses,
		c.IntegrityWarnings,
	)
	return c
}

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Mutation records the outcome of a catalog mutation.
func (c *Collector) Mutation(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.Mutations.WithLabelValues(action, outcome).Inc()
}

// Batch records the rows a structural batch wrote.
func (c *Collector) Batch(updated, deleted, reparented int) {
	c.BatchRows.WithLabelValues("updated").Add(float64(updated))
	c.BatchRows.WithLabelValues("deleted").Add(float64(deleted))
	c.BatchRows.WithLabelValues("reparented").Add(float64(reparented))
}

// CacheLookup records a view cache hit or miss.
func (c *Collector) CacheLookup(view string, hit bool) {
	if hit {
		c.CacheHits.WithLabelValues(view).Inc()
		return
	}
	c.CacheMisses.WithLabelValues(view).Inc()
}

// IntegrityWarning records a row promoted to a root while building a tree.
func (c *Collector) IntegrityWarning(kind string) {
	c.IntegrityWarnings.WithLabelValues(kind).Inc()
}
