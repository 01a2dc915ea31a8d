/*
Package monitoring provides Prometheus metrics for the bridge and the host
simulator.

# Overview

Collectors are registered on a caller-supplied registry so that several
bridges, or several tests, never collide on the default registry. A nil
*Metrics is a valid no-op collector.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(monitoring.Handler(reg)))

	// Bridge counters
	metrics.RecordOutbound("text", "save-items")
	metrics.SetPending(3)
*/
package monitoring
