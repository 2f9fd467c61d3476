/*
Package monitoring provides Prometheus metrics for the switcher backend.

# Overview

Metrics cover three areas:

- Engine: events applied and rejected per kind, transition latency, and
  the size of the live app list (total, installed, removed, hot codes)
- HTTP: request count, latency and sizes per route
- WebSocket: connected views and messages in each direction

Every collector is registered on the Registerer passed to NewMetrics, so
tests and embedded servers can each use a private registry.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	timer := monitoring.NewTimer(metrics, "hotCodeUpdated")
	// ... apply event ...
	timer.Stop(monitoring.StatusApplied)
*/
package monitoring
